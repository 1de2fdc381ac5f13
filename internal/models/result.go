package models

import "time"

// ScoredChunk is a chunk matched by a query. It only lives for the duration of that query.
type ScoredChunk struct {
	Text         string `json:"chunk"`
	DocumentID   string `json:"doc_id"`
	DocumentName string `json:"doc_name"`
	Score        int    `json:"score"`
}

// QueryRecord is one entry of the analytics query history.
type QueryRecord struct {
	Query     string    `json:"query"`
	Timestamp time.Time `json:"timestamp"`
}

// AnalyticsSnapshot is a point-in-time copy of the aggregated query statistics.
type AnalyticsSnapshot struct {
	TotalQueries    int            `json:"total_queries"`
	AvgResponseTime float64        `json:"avg_response_time"`
	TopQuestions    []QueryRecord  `json:"top_questions"`
	DocumentsUsed   map[string]int `json:"documents_used"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status         string `json:"status"`
	DocumentsCount int    `json:"documents_count"`
	ChunksCount    int    `json:"chunks_count"`
	TotalQueries   int    `json:"total_queries"`
	LLMConfigured  bool   `json:"llm_configured"`
}
