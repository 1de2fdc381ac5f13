package keyword

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/whitespace"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/hyperjump/kotae/internal/models"
)

// wordAnalyzer splits on whitespace and lowercases, matching how queries are tokenized.
// The standard analyzer would also split on punctuation and drop matches like "cat."
// that the retriever treats as distinct words.
const wordAnalyzer = "kotae_words"

// chunkDoc is the indexed representation of one chunk.
type chunkDoc struct {
	DocumentID string `json:"doc_id"`
	Content    string `json:"content"`
}

// BleveIndex implements KeywordIndex using a memory-only Bleve index.
type BleveIndex struct {
	index bleve.Index
}

// NewBleveIndex creates an empty in-memory Bleve index.
func NewBleveIndex() (*BleveIndex, error) {
	im := bleve.NewIndexMapping()
	if err := im.AddCustomAnalyzer(wordAnalyzer, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     whitespace.Name,
		"token_filters": []string{lowercase.Name},
	}); err != nil {
		return nil, fmt.Errorf("failed to register analyzer: %w", err)
	}

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = wordAnalyzer
	textFieldMapping.Store = false
	textFieldMapping.IncludeTermVectors = false
	docMapping.AddFieldMappingsAt("content", textFieldMapping)
	keywordFieldMapping := bleve.NewKeywordFieldMapping()
	docMapping.AddFieldMappingsAt("doc_id", keywordFieldMapping)
	im.DefaultMapping = docMapping

	index, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// Index indexes each chunk of doc in one batch. Chunks are lowercased with strings.ToLower
// before analysis so indexed terms equal the words the retriever produces; bleve's own
// filter would turn a word-final Σ into ς.
func (b *BleveIndex) Index(ctx context.Context, doc *models.Document) error {
	if len(doc.Chunks) == 0 {
		return nil
	}
	batch := b.index.NewBatch()
	for i, chunk := range doc.Chunks {
		ref := ChunkRef{DocumentID: doc.ID, Index: i}
		if err := batch.Index(ref.ID(), chunkDoc{DocumentID: doc.ID, Content: strings.ToLower(chunk)}); err != nil {
			return fmt.Errorf("failed to index chunk %s: %w", ref.ID(), err)
		}
	}
	return b.index.Batch(batch)
}

// Delete removes each chunk of doc in one batch.
func (b *BleveIndex) Delete(ctx context.Context, doc *models.Document) error {
	if len(doc.Chunks) == 0 {
		return nil
	}
	batch := b.index.NewBatch()
	for i := range doc.Chunks {
		batch.Delete(ChunkRef{DocumentID: doc.ID, Index: i}.ID())
	}
	return b.index.Batch(batch)
}

// Candidates runs a disjunction of exact term queries, one per word, and returns every hit.
// The request is re-run with a larger size while the index reports more matches than
// were returned, so chunks indexed during the search are not cut by bleve's ranking.
func (b *BleveIndex) Candidates(ctx context.Context, words []string) (map[ChunkRef]struct{}, error) {
	out := make(map[ChunkRef]struct{})
	if len(words) == 0 {
		return out, nil
	}
	total, err := b.index.DocCount()
	if err != nil {
		return nil, fmt.Errorf("failed to count chunks: %w", err)
	}
	if total == 0 {
		return out, nil
	}

	queries := make([]blevequery.Query, 0, len(words))
	for _, w := range words {
		tq := bleve.NewTermQuery(w)
		tq.SetField("content")
		queries = append(queries, tq)
	}
	req := bleve.NewSearchRequest(bleve.NewDisjunctionQuery(queries...))
	req.Size = int(total)
	for {
		results, err := b.index.SearchInContext(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("Bleve search failed: %w", err)
		}
		if results.Total > uint64(len(results.Hits)) && uint64(req.Size) < results.Total {
			req.Size = int(results.Total)
			continue
		}
		for _, hit := range results.Hits {
			ref, err := ParseChunkRef(hit.ID)
			if err != nil {
				return nil, err
			}
			out[ref] = struct{}{}
		}
		return out, nil
	}
}

// Close closes the index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}
