// Package analytics aggregates query statistics for the service lifetime.
package analytics

import (
	"sync"
	"time"

	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/pkg/utils"
)

// Aggregator counts answered queries, tracks their mean response time, keeps the query
// history and counts how often each document was cited. It is safe for concurrent use.
type Aggregator struct {
	mu            sync.Mutex
	totalQueries  int
	avgResponse   float64
	history       []models.QueryRecord
	documentsUsed map[string]int

	historyLimit int
	now          func() time.Time
	metrics      *Metrics
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithHistoryLimit keeps only the most recent n queries in the history. n <= 0 keeps all.
func WithHistoryLimit(n int) Option {
	return func(a *Aggregator) { a.historyLimit = n }
}

// WithClock sets the time source used to stamp history entries.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// WithMetrics mirrors every recorded query into m.
func WithMetrics(m *Metrics) Option {
	return func(a *Aggregator) { a.metrics = m }
}

// NewAggregator returns an empty aggregator.
func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{
		documentsUsed: make(map[string]int),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Record folds one answered query into the statistics. sources are the distinct document
// names cited by the answer.
func (a *Aggregator) Record(responseTime float64, query string, sources []string) {
	a.mu.Lock()
	a.totalQueries++
	a.avgResponse = utils.RunningMean(a.avgResponse, a.totalQueries, responseTime)
	a.history = append(a.history, models.QueryRecord{Query: query, Timestamp: a.now()})
	if a.historyLimit > 0 && len(a.history) > a.historyLimit {
		a.history = append([]models.QueryRecord(nil), a.history[len(a.history)-a.historyLimit:]...)
	}
	for _, s := range sources {
		a.documentsUsed[s]++
	}
	a.mu.Unlock()

	if a.metrics != nil {
		a.metrics.observeQuery(responseTime, sources)
	}
}

// TotalQueries returns the number of recorded queries.
func (a *Aggregator) TotalQueries() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.totalQueries
}

// Snapshot returns a copy of the current statistics. Later records do not change it.
func (a *Aggregator) Snapshot() models.AnalyticsSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	used := make(map[string]int, len(a.documentsUsed))
	for k, v := range a.documentsUsed {
		used[k] = v
	}
	history := make([]models.QueryRecord, len(a.history))
	copy(history, a.history)
	return models.AnalyticsSnapshot{
		TotalQueries:    a.totalQueries,
		AvgResponseTime: a.avgResponse,
		TopQuestions:    history,
		DocumentsUsed:   used,
	}
}
