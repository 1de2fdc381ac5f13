// Package server provides the HTTP API for Kotae.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/analytics"
	"github.com/hyperjump/kotae/internal/assistant"
	"github.com/hyperjump/kotae/internal/config"
)

// DefaultMaxUploadBytes bounds an upload request body when no limit is configured.
const DefaultMaxUploadBytes = 10 << 20

// Server is the HTTP server for the Kotae API.
type Server struct {
	assistant      *assistant.Assistant
	metrics        *analytics.Metrics
	config         *config.ServerConfig
	maxUploadBytes int64
	logger         *zap.Logger

	mu      sync.Mutex
	server  *http.Server
	stopped bool
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics exposes m on /metrics.
func WithMetrics(m *analytics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithMaxUploadBytes limits the size of upload request bodies.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) { s.maxUploadBytes = n }
}

// NewServer creates a server with the given dependencies.
func NewServer(a *assistant.Assistant, cfg *config.ServerConfig, logger *zap.Logger, opts ...Option) *Server {
	s := &Server{
		assistant:      a,
		config:         cfg,
		maxUploadBytes: DefaultMaxUploadBytes,
		logger:         logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.maxUploadBytes <= 0 {
		s.maxUploadBytes = DefaultMaxUploadBytes
	}
	return s
}

// Router builds the HTTP handler with all routes and middleware.
func (s *Server) Router() http.Handler {
	timeout := s.config.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware(s.config.AllowedOrigins))
	r.Use(middleware.Timeout(timeout))
	r.Use(middleware.Compress(5))

	r.Get("/api", s.handleRoot)
	r.Post("/upload", s.handleUpload)
	r.Post("/query", s.handleQuery)
	r.Post("/summarize", s.handleSummarize)
	r.Get("/documents", s.handleListDocuments)
	r.Delete("/documents/{id}", s.handleDeleteDocument)
	r.Get("/analytics", s.handleAnalytics)
	r.Get("/health", s.handleHealth)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	if info, err := os.Stat(s.config.StaticDir); s.config.StaticDir != "" && err == nil && info.IsDir() {
		s.mountFrontend(r, s.config.StaticDir)
	} else {
		r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
			s.respondError(w, http.StatusNotFound, "Not found")
		})
	}
	return r
}

// Start starts the HTTP server and blocks until it stops. After Stop it returns
// http.ErrServerClosed.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return http.ErrServerClosed
	}
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.server
	s.mu.Unlock()

	s.logger.Info("Starting server", zap.String("addr", addr))
	return srv.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.stopped = true
	srv := s.server
	s.mu.Unlock()
	if srv != nil {
		return srv.Shutdown(ctx)
	}
	return nil
}
