// Package search retrieves the chunks relevant to a query and assembles them into
// prompt context.
package search

import (
	"context"
	"fmt"
	"sort"

	"github.com/hyperjump/kotae/internal/keyword"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/storage"
	"go.uber.org/zap"
)

// DefaultTopK is the number of chunks returned when the caller does not ask for a count.
const DefaultTopK = 5

// Engine scores stored chunks against queries by keyword overlap.
type Engine struct {
	storage      storage.Storage
	keywordIndex keyword.KeywordIndex
	logger       *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithKeywordIndex narrows scoring to chunks kw reports as sharing a word with the query.
func WithKeywordIndex(kw keyword.KeywordIndex) EngineOption {
	return func(e *Engine) { e.keywordIndex = kw }
}

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates a search engine over s.
func NewEngine(s storage.Storage, opts ...EngineOption) *Engine {
	e := &Engine{storage: s, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search returns up to topK chunks sharing at least one word with query, best first.
// An empty result means nothing matched; it is not an error.
func (e *Engine) Search(ctx context.Context, query string, topK int) ([]models.ScoredChunk, error) {
	docs, err := e.storage.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	queryWords := Tokenize(query)
	if len(queryWords) == 0 {
		return []models.ScoredChunk{}, nil
	}

	var allow func(docID string, index int) bool
	if e.keywordIndex != nil {
		candidates, err := e.keywordIndex.Candidates(ctx, queryWords.Words())
		if err != nil {
			return nil, fmt.Errorf("keyword candidates: %w", err)
		}
		allow = func(docID string, index int) bool {
			_, ok := candidates[keyword.ChunkRef{DocumentID: docID, Index: index}]
			return ok
		}
	}
	results := rank(queryWords, docs, topK, allow)
	e.logger.Debug("search completed",
		zap.String("query", query), zap.Int("documents", len(docs)), zap.Int("results", len(results)))
	return results, nil
}

// rank scores chunks in document then chunk order, drops zero scores and stable-sorts by
// score so ties keep that order. allow, when set, skips chunks before scoring.
func rank(queryWords WordSet, docs []*models.Document, topK int, allow func(string, int) bool) []models.ScoredChunk {
	if topK <= 0 {
		topK = DefaultTopK
	}
	scored := make([]models.ScoredChunk, 0)
	if len(queryWords) == 0 {
		return scored
	}
	for _, doc := range docs {
		for i, chunk := range doc.Chunks {
			if allow != nil && !allow(doc.ID, i) {
				continue
			}
			score := queryWords.Overlap(Tokenize(chunk))
			if score == 0 {
				continue
			}
			scored = append(scored, models.ScoredChunk{
				Text:         chunk,
				DocumentID:   doc.ID,
				DocumentName: doc.Name,
				Score:        score,
			})
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}
