package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/kotae/internal/models"
)

// SQLiteStorage implements Storage on a named in-memory SQLite database. The database
// lives as long as the process holds its connection; nothing is written to disk.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens the in-memory database called name and initializes the schema.
// Opening the same name twice in one process shares the data.
func NewSQLiteStorage(name string) (*SQLiteStorage, error) {
	if name == "" {
		return nil, fmt.Errorf("sqlite database name is required")
	}
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", url.PathEscape(name))
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps the in-memory database alive and serializes writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		content TEXT NOT NULL,
		upload_date TIMESTAMP NOT NULL,
		chunk_count INTEGER NOT NULL,
		summary TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS document_chunks (
		document_id TEXT NOT NULL,
		chunk_index INTEGER NOT NULL,
		content TEXT NOT NULL,
		PRIMARY KEY (document_id, chunk_index)
	);
	`
	_, err := db.Exec(schema)
	return err
}

// CreateDocument inserts a document and its chunks in one transaction.
func (s *SQLiteStorage) CreateDocument(ctx context.Context, doc *models.Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE id = ?`, doc.ID).Scan(&exists); err != nil {
		return err
	}
	if exists > 0 {
		return fmt.Errorf("%w: %s", ErrDuplicate, doc.ID)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (id, name, content, upload_date, chunk_count, summary)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Name, doc.Content, doc.UploadDate, len(doc.Chunks), doc.Summary,
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO document_chunks (document_id, chunk_index, content) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, chunk := range doc.Chunks {
		if _, err := stmt.ExecContext(ctx, doc.ID, i, chunk); err != nil {
			return fmt.Errorf("failed to insert chunk %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// GetDocument returns a document and its chunks by id.
func (s *SQLiteStorage) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, content, upload_date, chunk_count, summary
		 FROM documents WHERE id = ?`, id,
	).Scan(&doc.ID, &doc.Name, &doc.Content, &doc.UploadDate, &doc.ChunkCount, &doc.Summary)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT content FROM document_chunks WHERE document_id = ? ORDER BY chunk_index`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	doc.Chunks = []string{}
	for rows.Next() {
		var chunk string
		if err := rows.Scan(&chunk); err != nil {
			return nil, err
		}
		doc.Chunks = append(doc.Chunks, chunk)
	}
	return &doc, rows.Err()
}

// ListDocuments returns all documents ordered by insertion.
func (s *SQLiteStorage) ListDocuments(ctx context.Context) ([]*models.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, content, upload_date, chunk_count, summary
		 FROM documents ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	docs := make([]*models.Document, 0)
	byID := make(map[string]*models.Document)
	for rows.Next() {
		doc := &models.Document{Chunks: []string{}}
		if err := rows.Scan(&doc.ID, &doc.Name, &doc.Content, &doc.UploadDate, &doc.ChunkCount, &doc.Summary); err != nil {
			rows.Close()
			return nil, err
		}
		docs = append(docs, doc)
		byID[doc.ID] = doc
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	chunkRows, err := s.db.QueryContext(ctx,
		`SELECT document_id, content FROM document_chunks ORDER BY document_id, chunk_index`)
	if err != nil {
		return nil, err
	}
	defer chunkRows.Close()
	for chunkRows.Next() {
		var docID, chunk string
		if err := chunkRows.Scan(&docID, &chunk); err != nil {
			return nil, err
		}
		if doc, ok := byID[docID]; ok {
			doc.Chunks = append(doc.Chunks, chunk)
		}
	}
	return docs, chunkRows.Err()
}

// DeleteDocument removes a document and its chunks.
func (s *SQLiteStorage) DeleteDocument(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM document_chunks WHERE document_id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// SetSummary records a generated summary on a document.
func (s *SQLiteStorage) SetSummary(ctx context.Context, id, summary string) error {
	result, err := s.db.ExecContext(ctx, `UPDATE documents SET summary = ? WHERE id = ?`, summary, id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// CountDocuments returns the total number of documents.
func (s *SQLiteStorage) CountDocuments(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count)
	return count, err
}

// CountChunks returns the total number of chunks.
func (s *SQLiteStorage) CountChunks(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM document_chunks`).Scan(&count)
	return count, err
}

// Close closes the database; the in-memory data is discarded with it.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
