package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/hyperjump/kotae/internal/models"
)

// MemoryStorage implements Storage with a map guarded by a RWMutex.
type MemoryStorage struct {
	mu    sync.RWMutex
	docs  map[string]*models.Document
	order []string
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{docs: make(map[string]*models.Document)}
}

// CreateDocument stores a copy of doc.
func (m *MemoryStorage) CreateDocument(ctx context.Context, doc *models.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[doc.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, doc.ID)
	}
	m.docs[doc.ID] = doc.Clone()
	m.order = append(m.order, doc.ID)
	return nil
}

// GetDocument returns a copy of the document with the given id.
func (m *MemoryStorage) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return doc.Clone(), nil
}

// ListDocuments returns copies of all documents in insertion order.
func (m *MemoryStorage) ListDocuments(ctx context.Context) ([]*models.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.Document, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.docs[id].Clone())
	}
	return out, nil
}

// DeleteDocument removes a document.
func (m *MemoryStorage) DeleteDocument(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(m.docs, id)
	for i, o := range m.order {
		if o == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// SetSummary records a generated summary on a document.
func (m *MemoryStorage) SetSummary(ctx context.Context, id, summary string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	doc.Summary = summary
	return nil
}

// CountDocuments returns the number of stored documents.
func (m *MemoryStorage) CountDocuments(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs), nil
}

// CountChunks returns the number of chunks across all documents.
func (m *MemoryStorage) CountChunks(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, doc := range m.docs {
		n += len(doc.Chunks)
	}
	return n, nil
}

// Close is a no-op.
func (m *MemoryStorage) Close() error {
	return nil
}
