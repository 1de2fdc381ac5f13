// Package assistant answers questions over uploaded documents. It ties together the
// indexer, the retriever, the answer generator and the analytics aggregator.
package assistant

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/analytics"
	"github.com/hyperjump/kotae/internal/indexer"
	"github.com/hyperjump/kotae/internal/llm"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/search"
	"github.com/hyperjump/kotae/internal/storage"
)

const (
	// NoInformationAnswer is returned when no chunk shares a word with the query.
	NoInformationAnswer = "I couldn't find relevant information in the documents."
	// NotConfiguredMessage tells the operator how to enable the answer provider.
	NotConfiguredMessage = "OpenAI API key not configured. Please set OPENAI_API_KEY environment variable."

	msgNoDocuments      = "No documents uploaded."
	msgDocumentNotFound = "Document not found."
	msgDocumentDeleted  = "Document deleted."
	msgUnsupportedType  = "Only text-based files (.txt, .md, .csv) are supported."
	msgInvalidEncoding  = "File content must be valid UTF-8 text."
)

// Assistant serves uploads, queries, summaries and document management.
type Assistant struct {
	store     storage.Storage
	indexer   *indexer.Indexer
	engine    *search.Engine
	generator llm.Generator
	analytics *analytics.Aggregator
	metrics   *analytics.Metrics

	topK      int
	uploadDir string
	now       func() time.Time
	logger    *zap.Logger
}

// Option configures an Assistant.
type Option func(*Assistant)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Assistant) { a.logger = l }
}

// WithMetrics keeps the document gauge in m current.
func WithMetrics(m *analytics.Metrics) Option {
	return func(a *Assistant) { a.metrics = m }
}

// WithTopK sets how many chunks are retrieved per query.
func WithTopK(k int) Option {
	return func(a *Assistant) { a.topK = k }
}

// WithUploadDir keeps a copy of every uploaded file in dir.
func WithUploadDir(dir string) Option {
	return func(a *Assistant) { a.uploadDir = dir }
}

// WithClock replaces time.Now for response timing.
func WithClock(now func() time.Time) Option {
	return func(a *Assistant) { a.now = now }
}

// New creates an Assistant.
func New(store storage.Storage, idx *indexer.Indexer, engine *search.Engine, gen llm.Generator, agg *analytics.Aggregator, opts ...Option) *Assistant {
	a := &Assistant{
		store:     store,
		indexer:   idx,
		engine:    engine,
		generator: gen,
		analytics: agg,
		topK:      search.DefaultTopK,
		now:       time.Now,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Upload stores filename's content as a new document.
func (a *Assistant) Upload(ctx context.Context, filename string, content []byte) (*models.UploadResponse, error) {
	name := filepath.Base(filepath.Clean("/" + filename))
	if err := a.indexer.CheckFilename(name); err != nil {
		return nil, newError(KindInvalidInput, msgUnsupportedType, err)
	}

	doc, err := a.indexer.IndexDocument(ctx, &models.DocumentInput{Name: name, Content: string(content)})
	if err != nil {
		if errors.Is(err, indexer.ErrInvalidEncoding) {
			return nil, newError(KindInvalidInput, msgInvalidEncoding, err)
		}
		return nil, newError(KindUnexpected, err.Error(), err)
	}
	a.saveUpload(name, content)
	a.refreshDocumentGauge(ctx)

	a.logger.Info("document uploaded",
		zap.String("id", doc.ID), zap.String("name", doc.Name), zap.Int("chunks", doc.ChunkCount))
	return &models.UploadResponse{
		Success:    true,
		DocumentID: doc.ID,
		ChunkCount: doc.ChunkCount,
		Filename:   doc.Name,
	}, nil
}

// Query answers req from the stored documents. When no chunk matches, it returns a fixed
// answer without calling the provider or recording analytics.
func (a *Assistant) Query(ctx context.Context, req *models.QueryRequest) (*models.QueryResponse, error) {
	start := a.now()
	if err := req.Validate(); err != nil {
		return nil, newError(KindInvalidInput, err.Error(), err)
	}
	n, err := a.store.CountDocuments(ctx)
	if err != nil {
		return nil, newError(KindUnexpected, err.Error(), err)
	}
	if n == 0 {
		return nil, newError(KindInvalidInput, msgNoDocuments, nil)
	}

	chunks, err := a.engine.Search(ctx, req.Query, a.topK)
	if err != nil {
		return nil, newError(KindUnexpected, err.Error(), err)
	}
	if len(chunks) == 0 {
		return &models.QueryResponse{Response: NoInformationAnswer, Sources: []string{}, ResponseTime: 0}, nil
	}

	contextText, sources := search.AssembleContext(chunks)
	if !a.generator.Configured() {
		return nil, newError(KindNotConfigured, NotConfiguredMessage, llm.ErrNotConfigured)
	}
	answer, err := a.generator.Answer(ctx, contextText, req.Query, req.Language)
	if err != nil {
		return nil, a.providerError("answer", err)
	}

	elapsed := a.now().Sub(start).Seconds()
	a.analytics.Record(elapsed, req.Query, sources)
	a.logger.Debug("query answered",
		zap.String("query", req.Query),
		zap.Int("chunks", len(chunks)),
		zap.Strings("sources", sources),
		zap.Float64("response_time", elapsed))
	return &models.QueryResponse{Response: answer, Sources: sources, ResponseTime: elapsed}, nil
}

// Summarize generates a summary of one document and stores it on the document,
// replacing any earlier summary.
func (a *Assistant) Summarize(ctx context.Context, req *models.SummaryRequest) (*models.SummaryResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, newError(KindInvalidInput, err.Error(), err)
	}
	doc, err := a.store.GetDocument(ctx, req.DocumentID)
	if err != nil {
		return nil, a.storeError(err)
	}
	if !a.generator.Configured() {
		return nil, newError(KindNotConfigured, NotConfiguredMessage, llm.ErrNotConfigured)
	}
	summary, err := a.generator.Summarize(ctx, doc.Content)
	if err != nil {
		return nil, a.providerError("summarize", err)
	}
	if err := a.store.SetSummary(ctx, doc.ID, summary); err != nil {
		return nil, a.storeError(err)
	}
	return &models.SummaryResponse{Success: true, Summary: summary}, nil
}

// Documents lists every stored document in upload order.
func (a *Assistant) Documents(ctx context.Context) (*models.DocumentList, error) {
	docs, err := a.store.ListDocuments(ctx)
	if err != nil {
		return nil, newError(KindUnexpected, err.Error(), err)
	}
	if docs == nil {
		docs = []*models.Document{}
	}
	return &models.DocumentList{Documents: docs}, nil
}

// Delete removes a document. Unknown ids are KindNotFound.
func (a *Assistant) Delete(ctx context.Context, id string) (*models.DeleteResponse, error) {
	if err := a.indexer.DeleteDocument(ctx, id); err != nil {
		return nil, a.storeError(err)
	}
	a.refreshDocumentGauge(ctx)
	a.logger.Info("document deleted", zap.String("id", id))
	return &models.DeleteResponse{Success: true, Message: msgDocumentDeleted}, nil
}

// CheckFilename reports whether files named name are accepted for ingestion.
func (a *Assistant) CheckFilename(name string) error {
	return a.indexer.CheckFilename(name)
}

// IndexFile ingests a file from disk, replacing the document previously read from the
// same path.
func (a *Assistant) IndexFile(ctx context.Context, path string) (*models.Document, error) {
	doc, err := a.indexer.IndexFile(ctx, path)
	if err != nil {
		return nil, err
	}
	a.refreshDocumentGauge(ctx)
	return doc, nil
}

// RemoveFile deletes the document read from path.
func (a *Assistant) RemoveFile(ctx context.Context, path string) error {
	if err := a.indexer.RemoveFile(ctx, path); err != nil {
		return err
	}
	a.refreshDocumentGauge(ctx)
	return nil
}

// Analytics returns a snapshot of the query statistics.
func (a *Assistant) Analytics() models.AnalyticsSnapshot {
	return a.analytics.Snapshot()
}

// Health reports document and query counts and whether the provider is configured.
func (a *Assistant) Health(ctx context.Context) (*models.HealthResponse, error) {
	n, err := a.store.CountDocuments(ctx)
	if err != nil {
		return nil, newError(KindUnexpected, err.Error(), err)
	}
	chunks, err := a.store.CountChunks(ctx)
	if err != nil {
		return nil, newError(KindUnexpected, err.Error(), err)
	}
	return &models.HealthResponse{
		Status:         "healthy",
		DocumentsCount: n,
		ChunksCount:    chunks,
		TotalQueries:   a.analytics.TotalQueries(),
		LLMConfigured:  a.generator.Configured(),
	}, nil
}

func (a *Assistant) providerError(op string, err error) error {
	if errors.Is(err, llm.ErrNotConfigured) {
		return newError(KindNotConfigured, NotConfiguredMessage, err)
	}
	a.logger.Error("provider call failed", zap.String("op", op), zap.Error(err))
	return newError(KindProviderFailure, err.Error(), err)
}

func (a *Assistant) storeError(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return newError(KindNotFound, msgDocumentNotFound, err)
	}
	return newError(KindUnexpected, err.Error(), err)
}

func (a *Assistant) saveUpload(name string, content []byte) {
	if a.uploadDir == "" {
		return
	}
	if err := os.MkdirAll(a.uploadDir, 0o755); err != nil {
		a.logger.Warn("failed to create upload dir", zap.String("dir", a.uploadDir), zap.Error(err))
		return
	}
	path := filepath.Join(a.uploadDir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		a.logger.Warn("failed to save upload", zap.String("path", path), zap.Error(err))
	}
}

func (a *Assistant) refreshDocumentGauge(ctx context.Context) {
	if a.metrics == nil {
		return
	}
	n, err := a.store.CountDocuments(ctx)
	if err != nil {
		a.logger.Warn("failed to count documents", zap.Error(err))
		return
	}
	a.metrics.SetDocuments(n)
}
