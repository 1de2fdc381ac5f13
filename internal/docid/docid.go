// Package docid generates document identifiers. Uploaded documents get a random id;
// documents ingested from a watched file get a stable id derived from the file path so a
// rewritten file replaces its earlier version.
package docid

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"

	"github.com/google/uuid"
)

const (
	prefix     = "doc_"
	filePrefix = "doc_file_"
)

// New returns a fresh random document id. Two calls never return the same id.
func New() string {
	return prefix + uuid.NewString()
}

// ForPath returns a stable document id for the given absolute path.
// Same path always yields the same ID.
func ForPath(absolutePath string) string {
	normalized := filepath.Clean(absolutePath)
	hash := sha256.Sum256([]byte(normalized))
	return filePrefix + hex.EncodeToString(hash[:16])
}
