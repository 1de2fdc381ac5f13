package analytics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes query statistics in Prometheus format on a private registry.
type Metrics struct {
	registry     *prometheus.Registry
	queries      prometheus.Counter
	responseTime prometheus.Histogram
	citations    *prometheus.CounterVec
	documents    prometheus.Gauge
}

// NewMetrics creates the collectors and registers them along with the Go runtime and
// process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		queries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kotae",
			Name:      "queries_total",
			Help:      "Number of queries answered by the model.",
		}),
		responseTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "kotae",
			Name:      "query_duration_seconds",
			Help:      "End-to-end time to answer a query.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}),
		citations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kotae",
			Name:      "document_citations_total",
			Help:      "Number of answers citing each document.",
		}, []string{"document"}),
		documents: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "kotae",
			Name:      "documents",
			Help:      "Number of documents currently stored.",
		}),
	}
	m.registry.MustRegister(
		m.queries,
		m.responseTime,
		m.citations,
		m.documents,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// SetDocuments records the current number of stored documents.
func (m *Metrics) SetDocuments(n int) {
	m.documents.Set(float64(n))
}

// Handler serves the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) observeQuery(responseTime float64, sources []string) {
	m.queries.Inc()
	m.responseTime.Observe(responseTime)
	for _, s := range sources {
		m.citations.WithLabelValues(s).Inc()
	}
}
