package keyword

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/kotae/internal/models"
)

func newTestIndex(t *testing.T) *BleveIndex {
	t.Helper()
	idx, err := NewBleveIndex()
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func TestBleveIndex_Candidates(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)
	require.NoError(t, idx.Index(ctx, &models.Document{ID: "d1", Chunks: []string{
		"The Cat sat on the mat.",
		"Dogs bark loudly",
	}}))
	require.NoError(t, idx.Index(ctx, &models.Document{ID: "d2", Chunks: []string{
		"a cat. and a dog",
	}}))

	n, err := idx.index.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)

	got, err := idx.Candidates(ctx, []string{"cat"})
	require.NoError(t, err)
	assert.Equal(t, map[ChunkRef]struct{}{{DocumentID: "d1", Index: 0}: {}}, got,
		"whitespace tokens keep punctuation, so \"cat.\" is not \"cat\"")

	got, err = idx.Candidates(ctx, []string{"cat.", "dogs"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Contains(t, got, ChunkRef{DocumentID: "d1", Index: 1})
	assert.Contains(t, got, ChunkRef{DocumentID: "d2", Index: 0})
}

func TestBleveIndex_Candidates_FinalSigma(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)
	require.NoError(t, idx.Index(ctx, &models.Document{ID: "d1", Chunks: []string{"ΟΔΟΣ ends here"}}))

	got, err := idx.Candidates(ctx, []string{strings.ToLower("ΟΔΟΣ")})
	require.NoError(t, err)
	assert.Equal(t, map[ChunkRef]struct{}{{DocumentID: "d1", Index: 0}: {}}, got)
}

func TestBleveIndex_Candidates_ReturnsEveryMatchWhileIndexing(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)
	const existing = 40
	for i := 0; i < existing; i++ {
		require.NoError(t, idx.Index(ctx, &models.Document{
			ID:     fmt.Sprintf("old%d", i),
			Chunks: []string{"the " + strings.Repeat("the ", i%5) + "policy"},
		}))
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 40; i++ {
			_ = idx.Index(ctx, &models.Document{
				ID:     fmt.Sprintf("new%d", i),
				Chunks: []string{"the the the the the the the the"},
			})
		}
	}()

	for round := 0; round < 20; round++ {
		got, err := idx.Candidates(ctx, []string{"the"})
		require.NoError(t, err)
		for i := 0; i < existing; i++ {
			require.Contains(t, got, ChunkRef{DocumentID: fmt.Sprintf("old%d", i), Index: 0})
		}
	}
	wg.Wait()
}

func TestBleveIndex_Delete(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)
	doc := &models.Document{ID: "d1", Chunks: []string{"alpha", "beta"}}
	require.NoError(t, idx.Index(ctx, doc))
	require.NoError(t, idx.Delete(ctx, doc))

	got, err := idx.Candidates(ctx, []string{"alpha", "beta"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBleveIndex_EmptyInputs(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)
	got, err := idx.Candidates(ctx, []string{"anything"})
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, idx.Index(ctx, &models.Document{ID: "d1", Chunks: []string{"x"}}))
	got, err = idx.Candidates(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestChunkRef_RoundTrip(t *testing.T) {
	ref := ChunkRef{DocumentID: "doc_file_ab#cd", Index: 12}
	parsed, err := ParseChunkRef(ref.ID())
	require.NoError(t, err)
	assert.Equal(t, ref, parsed)

	_, err = ParseChunkRef("no-index")
	assert.Error(t, err)
	_, err = ParseChunkRef("doc#x")
	assert.Error(t, err)
}
