// Package keyword provides a word index over document chunks. It answers which chunks
// contain at least one of a set of words; scoring is left to the caller.
package keyword

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/hyperjump/kotae/internal/models"
)

// ChunkRef identifies one chunk of one document.
type ChunkRef struct {
	DocumentID string
	Index      int
}

// ID returns the index key for the chunk.
func (r ChunkRef) ID() string {
	return r.DocumentID + "#" + strconv.Itoa(r.Index)
}

// ParseChunkRef reverses ChunkRef.ID.
func ParseChunkRef(id string) (ChunkRef, error) {
	i := strings.LastIndex(id, "#")
	if i <= 0 {
		return ChunkRef{}, fmt.Errorf("malformed chunk id %q", id)
	}
	n, err := strconv.Atoi(id[i+1:])
	if err != nil {
		return ChunkRef{}, fmt.Errorf("malformed chunk id %q: %w", id, err)
	}
	return ChunkRef{DocumentID: id[:i], Index: n}, nil
}

// KeywordIndex defines chunk indexing operations.
type KeywordIndex interface {
	// Index adds every chunk of doc.
	Index(ctx context.Context, doc *models.Document) error
	// Delete removes every chunk of doc.
	Delete(ctx context.Context, doc *models.Document) error
	// Candidates returns the chunks whose lowercase whitespace tokens include any of words.
	// words must already be lowercase.
	Candidates(ctx context.Context, words []string) (map[ChunkRef]struct{}, error)
	Close() error
}
