package search

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/kotae/internal/keyword"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/storage"
)

func doc(id, name string, chunks ...string) *models.Document {
	return &models.Document{ID: id, Name: name, Chunks: chunks, ChunkCount: len(chunks)}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("The  cat\tTHE cat. sat\n")
	assert.Equal(t, WordSet{"the": {}, "cat": {}, "cat.": {}, "sat": {}}, got)
	assert.Empty(t, Tokenize("   "))
}

func TestWordSet_Overlap(t *testing.T) {
	a := Tokenize("cat dog bird")
	b := Tokenize("dog bird fish fox")
	assert.Equal(t, 2, a.Overlap(b))
	assert.Equal(t, 2, b.Overlap(a))
	assert.Zero(t, a.Overlap(Tokenize("")))
}

func rankQuery(query string, docs []*models.Document, topK int) []models.ScoredChunk {
	return rank(Tokenize(query), docs, topK, nil)
}

func TestRank_Example(t *testing.T) {
	docs := []*models.Document{doc("d1", "pets.txt", "The cat sat. The dog ran. The cat slept.")}
	got := rankQuery("cat", docs, 5)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Score)
	assert.Equal(t, "pets.txt", got[0].DocumentName)
	assert.Equal(t, "d1", got[0].DocumentID)
}

func TestRank_QueryDuplicatesCollapse(t *testing.T) {
	docs := []*models.Document{doc("d1", "a", "cat dog")}
	got := rankQuery("cat CAT cat", docs, 5)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Score)
}

func TestRank_OrderAndTies(t *testing.T) {
	docs := []*models.Document{
		doc("d1", "a", "red apple", "green pear", "red green apple"),
		doc("d2", "b", "green apple", "nothing here"),
	}
	got := rankQuery("red green apple", docs, 10)
	var texts []string
	for _, c := range got {
		texts = append(texts, c.Text)
	}
	assert.Equal(t, []string{"red green apple", "red apple", "green apple", "green pear"}, texts)
	assert.Equal(t, []int{3, 2, 2, 1}, []int{got[0].Score, got[1].Score, got[2].Score, got[3].Score})
}

func TestRank_TopK(t *testing.T) {
	var chunks []string
	for i := 0; i < 10; i++ {
		chunks = append(chunks, fmt.Sprintf("word chunk%d", i))
	}
	docs := []*models.Document{doc("d1", "a", chunks...)}
	got := rankQuery("word", docs, 3)
	require.Len(t, got, 3)
	assert.Equal(t, "word chunk0", got[0].Text)
	assert.Equal(t, "word chunk2", got[2].Text)

	assert.Len(t, rankQuery("word", docs, 0), DefaultTopK)
}

func TestRank_NoMatch(t *testing.T) {
	docs := []*models.Document{doc("d1", "a", "alpha beta")}
	got := rankQuery("gamma", docs, 5)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Empty(t, rankQuery("", docs, 5))
}

func TestRank_BetterDocumentDisplacesLowest(t *testing.T) {
	docs := []*models.Document{
		doc("d1", "a", "one x", "one two y", "one z", "two w", "one v", "two u"),
	}
	before := rankQuery("one two three", docs, 5)
	require.Len(t, before, 5)
	lowest := before[len(before)-1]

	docs = append(docs, doc("d2", "b", "one two three"))
	after := rankQuery("one two three", docs, 5)
	require.Len(t, after, 5)
	assert.Equal(t, "d2", after[0].DocumentID)
	assert.Equal(t, 3, after[0].Score)
	assert.NotContains(t, after, lowest)
}

func TestEngine_Search_WithAndWithoutIndex(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	kw, err := keyword.NewBleveIndex()
	require.NoError(t, err)
	defer kw.Close()

	docs := []*models.Document{
		doc("d1", "handbook.md", "Vacation policy allows twenty days.", "Remote work requires approval."),
		doc("d2", "faq.txt", "How many vacation days do I get? Twenty.", "Parking is free."),
		doc("d3", "misc.csv", "name,days\nalice,20"),
		doc("d4", "greek.txt", "ΟΔΟΣ ends here"),
	}
	for _, d := range docs {
		require.NoError(t, store.CreateDocument(ctx, d))
		require.NoError(t, kw.Index(ctx, d))
	}

	plain := NewEngine(store)
	indexed := NewEngine(store, WithKeywordIndex(kw))
	for _, q := range []string{"vacation days", "Twenty.", "parking policy", "nothing matches", "REMOTE work", "ΟΔΟΣ"} {
		want, err := plain.Search(ctx, q, 5)
		require.NoError(t, err)
		got, err := indexed.Search(ctx, q, 5)
		require.NoError(t, err)
		assert.Equal(t, want, got, "query %q", q)
	}

	got, err := indexed.Search(ctx, "ΟΔΟΣ", 5)
	require.NoError(t, err)
	require.Len(t, got, 1, "word-final capital sigma must match through the index")
	assert.Equal(t, "d4", got[0].DocumentID)
}

func TestEngine_Search_IgnoresStaleIndexEntries(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	kw, err := keyword.NewBleveIndex()
	require.NoError(t, err)
	defer kw.Close()

	d := doc("d1", "gone.txt", "orphan words")
	require.NoError(t, kw.Index(ctx, d))

	got, err := NewEngine(store, WithKeywordIndex(kw)).Search(ctx, "orphan", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}
