// Package models defines core data structures for documents, queries, and answers.
package models

import "time"

// Document is an uploaded text document together with its chunks.
type Document struct {
	ID         string    `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Content    string    `json:"content" db:"content"`
	Chunks     []string  `json:"chunks" db:"-"`
	UploadDate time.Time `json:"upload_date" db:"upload_date"`
	ChunkCount int       `json:"chunk_count" db:"chunk_count"`
	Summary    string    `json:"summary,omitempty" db:"summary"`
}

// Clone returns a copy of d that shares no mutable state with it.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	c := *d
	c.Chunks = append([]string(nil), d.Chunks...)
	return &c
}

// DocumentInput is the input for creating a document.
type DocumentInput struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

// UploadResponse is returned after a document has been stored.
type UploadResponse struct {
	Success    bool   `json:"success"`
	DocumentID string `json:"document_id"`
	ChunkCount int    `json:"chunk_count"`
	Filename   string `json:"filename"`
}

// DocumentList wraps the documents returned by GET /documents.
type DocumentList struct {
	Documents []*Document `json:"documents"`
}

// DeleteResponse is returned after a document has been deleted.
type DeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
