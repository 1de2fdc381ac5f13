// Package llm produces answers and summaries with a chat completion model.
package llm

import "context"

// Generator answers questions over assembled context and summarizes documents.
type Generator interface {
	// Answer asks the model to answer query from contextText, replying in language.
	Answer(ctx context.Context, contextText, query, language string) (string, error)
	// Summarize asks the model for a short bullet summary of content.
	Summarize(ctx context.Context, content string) (string, error)
	// Configured reports whether provider credentials are available.
	Configured() bool
}
