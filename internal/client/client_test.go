package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/analytics"
	"github.com/hyperjump/kotae/internal/assistant"
	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/indexer"
	"github.com/hyperjump/kotae/internal/keyword"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/search"
	"github.com/hyperjump/kotae/internal/server"
	"github.com/hyperjump/kotae/internal/storage"
)

type echoGenerator struct{}

func (echoGenerator) Answer(_ context.Context, _, query, _ string) (string, error) {
	return "answer to " + query, nil
}

func (echoGenerator) Summarize(context.Context, string) (string, error) {
	return "- summary", nil
}

func (echoGenerator) Configured() bool { return true }

func newTestClient(t *testing.T) *Client {
	t.Helper()
	store := storage.NewMemoryStorage()
	kw, err := keyword.NewBleveIndex()
	require.NoError(t, err)
	t.Cleanup(func() { _ = kw.Close() })

	idx := indexer.NewIndexer(store, indexer.DefaultChunkSize, config.DefaultExtensions, indexer.WithKeywordIndex(kw))
	engine := search.NewEngine(store, search.WithKeywordIndex(kw))
	a := assistant.New(store, idx, engine, echoGenerator{}, analytics.NewAggregator())
	srv := httptest.NewServer(server.NewServer(a, &config.ServerConfig{AllowedOrigins: []string{"*"}}, zap.NewNop()).Router())
	t.Cleanup(srv.Close)

	c, err := New(srv.URL+"/", 0)
	require.NoError(t, err)
	return c
}

func TestNew_InvalidURL(t *testing.T) {
	_, err := New("localhost:8000", 0)
	assert.Error(t, err)
	_, err = New("http://", 0)
	assert.Error(t, err)
}

func TestClient_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	path := filepath.Join(t.TempDir(), "pets.txt")
	require.NoError(t, os.WriteFile(path, []byte("The cat sat. The dog ran. The cat slept."), 0o644))

	up, err := c.Upload(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "pets.txt", up.Filename)
	assert.Equal(t, 1, up.ChunkCount)

	ans, err := c.Query(ctx, &models.QueryRequest{Query: "cat"})
	require.NoError(t, err)
	assert.Equal(t, "answer to cat", ans.Response)
	assert.Equal(t, []string{"pets.txt"}, ans.Sources)

	sum, err := c.Summarize(ctx, up.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, "- summary", sum.Summary)

	docs, err := c.Documents(ctx)
	require.NoError(t, err)
	require.Len(t, docs.Documents, 1)
	assert.Equal(t, "- summary", docs.Documents[0].Summary)

	stats, err := c.Analytics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalQueries)

	health, err := c.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, health.DocumentsCount)
	assert.True(t, health.LLMConfigured)

	del, err := c.Delete(ctx, up.DocumentID)
	require.NoError(t, err)
	assert.True(t, del.Success)
}

func TestClient_APIErrors(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	_, err := c.Query(ctx, &models.QueryRequest{Query: "cat"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "err: %v", err)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "No documents uploaded.", apiErr.Message)

	_, err = c.Delete(ctx, "doc_missing")
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)

	path := filepath.Join(t.TempDir(), "deck.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0o644))
	_, err = c.Upload(ctx, path)
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}
