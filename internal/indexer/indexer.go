package indexer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/hyperjump/kotae/internal/docid"
	"github.com/hyperjump/kotae/internal/keyword"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/storage"
	"go.uber.org/zap"
)

var (
	// ErrUnsupportedType is returned for files whose extension is not accepted.
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrInvalidEncoding is returned for content that is not valid UTF-8.
	ErrInvalidEncoding = errors.New("content is not valid UTF-8")
)

// Indexer chunks documents and writes them to storage and the keyword index.
type Indexer struct {
	storage      storage.Storage
	keywordIndex keyword.KeywordIndex
	chunker      *Chunker
	extensions   []string
	now          func() time.Time
	logger       *zap.Logger // optional; when set, logs debug events

	// fileMu serializes IndexFile and RemoveFile so replacing a file's document
	// (delete then create under the same id) never interleaves.
	fileMu sync.Mutex
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets a logger for debug output (document indexed, document deleted, etc.).
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) { idx.logger = l }
}

// WithKeywordIndex keeps kw in sync with storage.
func WithKeywordIndex(kw keyword.KeywordIndex) IndexerOption {
	return func(idx *Indexer) { idx.keywordIndex = kw }
}

// WithClock replaces time.Now for upload timestamps.
func WithClock(now func() time.Time) IndexerOption {
	return func(idx *Indexer) { idx.now = now }
}

// NewIndexer creates an indexer that stores into s, chunks with chunkSize characters and
// accepts files with the given extensions (empty = all).
func NewIndexer(s storage.Storage, chunkSize int, extensions []string, opts ...IndexerOption) *Indexer {
	idx := &Indexer{
		storage:    s,
		chunker:    NewChunker(chunkSize),
		extensions: extensions,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// CheckFilename returns ErrUnsupportedType unless name ends in an accepted extension.
func (idx *Indexer) CheckFilename(name string) error {
	if len(idx.extensions) > 0 && !extensionAllowed(filepath.Ext(name), idx.extensions) {
		return fmt.Errorf("%w: only text-based files (%s) are supported", ErrUnsupportedType, strings.Join(idx.extensions, ", "))
	}
	return nil
}

// IndexDocument chunks input, stores the document and indexes its chunks.
// An empty input.ID gets a fresh random id.
func (idx *Indexer) IndexDocument(ctx context.Context, input *models.DocumentInput) (*models.Document, error) {
	if !utf8.ValidString(input.Content) {
		return nil, ErrInvalidEncoding
	}
	if input.ID == "" {
		input.ID = docid.New()
	}
	chunks := idx.chunker.Chunk(input.Content)
	if chunks == nil {
		chunks = []string{}
	}
	doc := &models.Document{
		ID:         input.ID,
		Name:       input.Name,
		Content:    input.Content,
		Chunks:     chunks,
		UploadDate: idx.now(),
		ChunkCount: len(chunks),
	}
	if err := idx.storage.CreateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}
	if idx.keywordIndex != nil {
		if err := idx.keywordIndex.Index(ctx, doc); err != nil {
			_ = idx.storage.DeleteDocument(ctx, doc.ID)
			return nil, fmt.Errorf("failed to index keywords: %w", err)
		}
	}
	if idx.logger != nil {
		idx.logger.Debug("indexer document indexed",
			zap.String("id", doc.ID), zap.String("name", doc.Name), zap.Int("chunks", doc.ChunkCount))
	}
	return doc, nil
}

// IndexFile reads a file from path and indexes it under an id derived from its absolute
// path, replacing any earlier version of the same file.
func (idx *Indexer) IndexFile(ctx context.Context, path string) (*models.Document, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	if err := idx.CheckFilename(absPath); err != nil {
		return nil, err
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("not a regular file: %s", absPath)
	}
	content, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	id := docid.ForPath(absPath)
	idx.fileMu.Lock()
	defer idx.fileMu.Unlock()
	if err := idx.DeleteDocument(ctx, id); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	return idx.IndexDocument(ctx, &models.DocumentInput{
		ID:      id,
		Name:    filepath.Base(absPath),
		Content: string(content),
	})
}

// RemoveFile deletes the document previously indexed from path.
func (idx *Indexer) RemoveFile(ctx context.Context, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("absolute path: %w", err)
	}
	idx.fileMu.Lock()
	defer idx.fileMu.Unlock()
	return idx.DeleteDocument(ctx, docid.ForPath(absPath))
}

// DeleteDocument removes a document from storage and the keyword index.
// Returns an error wrapping storage.ErrNotFound when the id is unknown.
func (idx *Indexer) DeleteDocument(ctx context.Context, id string) error {
	doc, err := idx.storage.GetDocument(ctx, id)
	if err != nil {
		return err
	}
	if err := idx.storage.DeleteDocument(ctx, id); err != nil {
		return err
	}
	if idx.keywordIndex != nil {
		if err := idx.keywordIndex.Delete(ctx, doc); err != nil {
			return fmt.Errorf("failed to delete from keyword index: %w", err)
		}
	}
	if idx.logger != nil {
		idx.logger.Debug("indexer document deleted", zap.String("id", id))
	}
	return nil
}

func extensionAllowed(ext string, allowed []string) bool {
	extNorm := strings.ToLower(strings.TrimPrefix(ext, "."))
	if extNorm == "" {
		return false
	}
	for _, a := range allowed {
		if strings.ToLower(strings.TrimPrefix(a, ".")) == extNorm {
			return true
		}
	}
	return false
}
