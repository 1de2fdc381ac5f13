// Package indexer turns uploaded text into stored, searchable documents.
package indexer

import (
	"strings"
	"unicode/utf8"
)

const (
	// DefaultChunkSize is the chunk budget in characters.
	DefaultChunkSize = 1000

	sentenceTerminator = ". "
)

// Chunker splits text into sentence-aligned passages of bounded size.
type Chunker struct {
	chunkSize int
}

// NewChunker creates a chunker whose chunks stay within chunkSize characters unless a
// single sentence is longer. A non-positive size falls back to DefaultChunkSize.
func NewChunker(chunkSize int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Chunker{chunkSize: chunkSize}
}

// Chunk splits text into chunks. Newlines become spaces, the text is cut into sentences on
// ". ", and sentences are packed greedily: when the next sentence would push a non-empty
// chunk past the size limit the chunk is closed. Sentences are never cut, so one long
// sentence becomes its own oversized chunk. Blank text yields no chunks.
func (c *Chunker) Chunk(text string) []string {
	normalized := strings.ReplaceAll(text, "\n", " ")
	var (
		chunks  []string
		current strings.Builder
		length  int
	)
	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			chunks = append(chunks, s)
		}
		current.Reset()
		length = 0
	}
	for _, sentence := range strings.Split(normalized, sentenceTerminator) {
		if strings.TrimSpace(sentence) == "" {
			continue
		}
		n := utf8.RuneCountInString(sentence)
		if length > 0 && length+n > c.chunkSize {
			flush()
		}
		current.WriteString(sentence)
		// The final sentence usually keeps its own period.
		if strings.HasSuffix(sentence, ".") {
			current.WriteString(" ")
			length += n + 1
		} else {
			current.WriteString(sentenceTerminator)
			length += n + 2
		}
	}
	flush()
	return chunks
}
