package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/analytics"
	"github.com/hyperjump/kotae/internal/assistant"
	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/indexer"
	"github.com/hyperjump/kotae/internal/keyword"
	"github.com/hyperjump/kotae/internal/llm"
	"github.com/hyperjump/kotae/internal/search"
	"github.com/hyperjump/kotae/internal/storage"
)

// Components holds initialized services.
type Components struct {
	Storage      storage.Storage
	KeywordIndex keyword.KeywordIndex
	Engine       *search.Engine
	Indexer      *indexer.Indexer
	Generator    *llm.OpenAIClient
	Analytics    *analytics.Aggregator
	Metrics      *analytics.Metrics
	Assistant    *assistant.Assistant
}

// Close releases the store and the keyword index.
func (c *Components) Close() {
	if c.KeywordIndex != nil {
		_ = c.KeywordIndex.Close()
	}
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, debug bool) (*Components, error) {
	store, err := storage.New(cfg.Storage.Backend, cfg.Storage.SQLiteName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	c := &Components{Storage: store}

	idxOpts := []indexer.IndexerOption{}
	engineOpts := []search.EngineOption{}
	if debug {
		idxOpts = append(idxOpts, indexer.WithLogger(logger))
		engineOpts = append(engineOpts, search.WithLogger(logger))
	}
	if cfg.Retrieval.KeywordIndexOrDefault() {
		kw, err := keyword.NewBleveIndex()
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to initialize keyword index: %w", err)
		}
		c.KeywordIndex = kw
		idxOpts = append(idxOpts, indexer.WithKeywordIndex(kw))
		engineOpts = append(engineOpts, search.WithKeywordIndex(kw))
	}

	c.Indexer = indexer.NewIndexer(store, cfg.Retrieval.ChunkSize, cfg.Uploads.Extensions, idxOpts...)
	c.Engine = search.NewEngine(store, engineOpts...)
	c.Generator = llm.NewOpenAIClient(cfg.LLM, llm.WithLogger(logger))
	c.Metrics = analytics.NewMetrics()
	c.Analytics = analytics.NewAggregator(
		analytics.WithHistoryLimit(cfg.Analytics.HistoryLimit),
		analytics.WithMetrics(c.Metrics),
	)
	c.Assistant = assistant.New(store, c.Indexer, c.Engine, c.Generator, c.Analytics,
		assistant.WithLogger(logger),
		assistant.WithMetrics(c.Metrics),
		assistant.WithTopK(cfg.Retrieval.TopK),
		assistant.WithUploadDir(cfg.Uploads.Dir),
	)
	return c, nil
}
