package indexer

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunker_SingleChunk(t *testing.T) {
	c := NewChunker(1000)
	chunks := c.Chunk("The cat sat. The dog ran. The cat slept.")
	assert.Equal(t, []string{"The cat sat. The dog ran. The cat slept."}, chunks)
}

func TestChunker_AddsMissingTerminator(t *testing.T) {
	c := NewChunker(1000)
	assert.Equal(t, []string{"First line second line. Last."}, c.Chunk("First line\nsecond line. Last"))
}

func TestChunker_Empty(t *testing.T) {
	c := NewChunker(10)
	for _, in := range []string{"", "   ", "\n\n", " . ", ". . "} {
		assert.Empty(t, c.Chunk(in), "input %q", in)
	}
}

func TestChunker_SplitsOnBudget(t *testing.T) {
	c := NewChunker(40)
	text := "Alpha beta gamma. Delta epsilon zeta. Eta theta iota. Kappa lambda mu."
	chunks := c.Chunk(text)
	require.Len(t, chunks, 2)
	assert.Equal(t, "Alpha beta gamma. Delta epsilon zeta.", chunks[0])
	assert.Equal(t, "Eta theta iota. Kappa lambda mu.", chunks[1])
}

func TestChunker_OversizedSentenceIsKept(t *testing.T) {
	c := NewChunker(10)
	long := strings.Repeat("word ", 10) + "end"
	chunks := c.Chunk("Short. " + long + ". Tail.")
	require.Len(t, chunks, 3)
	assert.Equal(t, "Short.", chunks[0])
	assert.Equal(t, long+".", chunks[1])
	assert.Equal(t, "Tail.", chunks[2])
}

func TestChunker_ReconstructsSentences(t *testing.T) {
	sentences := []string{
		"Go is a statically typed language",
		"It was designed at Google",
		"Goroutines make concurrency cheap",
		"Channels pass values between goroutines",
		"The standard library is broad",
	}
	text := strings.Join(sentences, ". ") + "."
	for _, size := range []int{20, 50, 80, 1000} {
		chunks := NewChunker(size).Chunk(text)
		var got []string
		for _, ch := range chunks {
			for _, s := range strings.Split(ch, ". ") {
				got = append(got, strings.TrimSuffix(s, "."))
			}
		}
		assert.Equal(t, sentences, got, "size %d", size)
	}
}

func TestChunker_BoundedSize(t *testing.T) {
	text := strings.Repeat("Lorem ipsum dolor sit amet. Consectetur adipiscing elit sed. ", 40)
	size := 100
	longest := len("Consectetur adipiscing elit sed. ")
	for _, ch := range NewChunker(size).Chunk(text) {
		assert.LessOrEqual(t, utf8.RuneCountInString(ch), size+longest)
	}
}

func TestChunker_Deterministic(t *testing.T) {
	text := strings.Repeat("One two three. Four five six. ", 50)
	c := NewChunker(64)
	assert.Equal(t, c.Chunk(text), c.Chunk(text))
}

func TestNewChunker_DefaultSize(t *testing.T) {
	assert.Equal(t, DefaultChunkSize, NewChunker(0).chunkSize)
}
