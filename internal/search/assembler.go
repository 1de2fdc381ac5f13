package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hyperjump/kotae/internal/models"
)

const contextSeparator = "\n\n---\n\n"

// AssembleContext renders ranked chunks as prompt context, keeping their order, and
// returns the distinct document names they came from, sorted.
func AssembleContext(chunks []models.ScoredChunk) (string, []string) {
	parts := make([]string, 0, len(chunks))
	seen := make(map[string]struct{}, len(chunks))
	sources := make([]string, 0)
	for _, c := range chunks {
		parts = append(parts, fmt.Sprintf("[Source: %s]\n%s", c.DocumentName, c.Text))
		if _, ok := seen[c.DocumentName]; !ok {
			seen[c.DocumentName] = struct{}{}
			sources = append(sources, c.DocumentName)
		}
	}
	sort.Strings(sources)
	return strings.Join(parts, contextSeparator), sources
}
