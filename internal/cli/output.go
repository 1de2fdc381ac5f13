// Package cli formats API responses for the Kotae command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/pkg/utils"
)

// OutputFormat selects how responses are printed.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

const rule = "─────────────────────────────────────────────────────────"

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputText, "":
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteAnswer prints a query answer with its sources.
func WriteAnswer(w io.Writer, resp *models.QueryResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, resp)
	}
	fmt.Fprintf(w, "\n%s\n\n", resp.Response)
	if len(resp.Sources) > 0 {
		fmt.Fprintf(w, "Sources: %s\n", strings.Join(resp.Sources, ", "))
	}
	fmt.Fprintf(w, "Answered in %.2fs\n", resp.ResponseTime)
	return nil
}

// WriteUpload prints the result of an upload.
func WriteUpload(w io.Writer, resp *models.UploadResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, resp)
	}
	fmt.Fprintf(w, "Uploaded %s as %s (%d chunks)\n", resp.Filename, resp.DocumentID, resp.ChunkCount)
	return nil
}

// WriteSummary prints a document summary.
func WriteSummary(w io.Writer, resp *models.SummaryResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, resp)
	}
	fmt.Fprintf(w, "%s\n", resp.Summary)
	return nil
}

// WriteDocuments prints one block per document without its full content.
func WriteDocuments(w io.Writer, list *models.DocumentList, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, list)
	}
	if len(list.Documents) == 0 {
		fmt.Fprintln(w, "No documents uploaded.")
		return nil
	}
	fmt.Fprintf(w, "%d documents\n\n", len(list.Documents))
	for _, doc := range list.Documents {
		fmt.Fprintln(w, rule)
		fmt.Fprintf(w, "ID: %s\n", doc.ID)
		fmt.Fprintf(w, "Name: %s\n", doc.Name)
		fmt.Fprintf(w, "Uploaded: %s | Chunks: %d\n", doc.UploadDate.Format(time.RFC3339), doc.ChunkCount)
		if doc.Summary != "" {
			fmt.Fprintf(w, "\n%s\n", doc.Summary)
		} else {
			fmt.Fprintf(w, "\n%s\n", TruncateWords(doc.Content, 30))
		}
		fmt.Fprintln(w)
	}
	return nil
}

// WriteAnalytics prints query statistics. recent limits how many of the latest questions
// are listed in text mode.
func WriteAnalytics(w io.Writer, snap *models.AnalyticsSnapshot, format OutputFormat, recent int) error {
	if format == OutputJSON {
		return writeJSON(w, snap)
	}
	fmt.Fprintf(w, "Total queries: %d\n", snap.TotalQueries)
	fmt.Fprintf(w, "Average response time: %.2fs\n", snap.AvgResponseTime)

	if len(snap.DocumentsUsed) > 0 {
		fmt.Fprintln(w, "\nDocuments cited:")
		names := make([]string, 0, len(snap.DocumentsUsed))
		for name := range snap.DocumentsUsed {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool {
			ci, cj := snap.DocumentsUsed[names[i]], snap.DocumentsUsed[names[j]]
			if ci != cj {
				return ci > cj
			}
			return names[i] < names[j]
		})
		for _, name := range names {
			fmt.Fprintf(w, "  %4d  %s\n", snap.DocumentsUsed[name], name)
		}
	}

	questions := snap.TopQuestions
	if recent > 0 && len(questions) > recent {
		questions = questions[len(questions)-recent:]
	}
	if len(questions) > 0 {
		fmt.Fprintln(w, "\nRecent questions:")
		for i := len(questions) - 1; i >= 0; i-- {
			q := questions[i]
			fmt.Fprintf(w, "  %s  %s\n", q.Timestamp.Format(time.RFC3339), utils.Truncate(q.Query, 80))
		}
	}
	return nil
}

// WriteHealth prints the server health.
func WriteHealth(w io.Writer, h *models.HealthResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, h)
	}
	llm := "configured"
	if !h.LLMConfigured {
		llm = "not configured"
	}
	fmt.Fprintf(w, "Status: %s\nDocuments: %d\nChunks: %d\nQueries: %d\nLLM: %s\n",
		h.Status, h.DocumentsCount, h.ChunksCount, h.TotalQueries, llm)
	return nil
}

// WriteDelete prints the result of deleting document id.
func WriteDelete(w io.Writer, id string, resp *models.DeleteResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, resp)
	}
	fmt.Fprintf(w, "%s %s\n", resp.Message, id)
	return nil
}

// TruncateWords returns up to maxWords from the space-separated string.
func TruncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ") + "..."
}
