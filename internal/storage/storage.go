// Package storage defines the document store and its in-memory backends.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/hyperjump/kotae/internal/models"
)

var (
	// ErrNotFound is returned when a document id is not in the store.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when a document id is already in the store.
	ErrDuplicate = errors.New("document already exists")
)

// Storage defines document persistence operations. Implementations serialize all
// mutations and return copies, so callers may not modify shared state through results.
type Storage interface {
	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	// ListDocuments returns every document in insertion order.
	ListDocuments(ctx context.Context) ([]*models.Document, error)
	DeleteDocument(ctx context.Context, id string) error
	SetSummary(ctx context.Context, id, summary string) error

	CountDocuments(ctx context.Context) (int, error)
	CountChunks(ctx context.Context) (int, error)

	Close() error
}

// Backend names accepted by New.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// New creates the storage backend named by backend. sqliteName names the in-memory
// SQLite database and is ignored by the memory backend.
func New(backend, sqliteName string) (Storage, error) {
	switch backend {
	case "", BackendMemory:
		return NewMemoryStorage(), nil
	case BackendSQLite:
		return NewSQLiteStorage(sqliteName)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
