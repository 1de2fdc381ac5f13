package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/server"
	"github.com/hyperjump/kotae/internal/watcher"
	"github.com/hyperjump/kotae/pkg/utils"
)

const shutdownTimeout = 10 * time.Second

func newServerCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long: `Start the HTTP API. Documents and analytics live in memory for the lifetime of
the process. Files dropped into the configured watch directories are ingested
as documents.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(opts.envFile); err != nil {
				return err
			}
			cfg, resolvedConfigPath, err := loadConfig(opts.configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			debugMode := cfg.Debug || opts.debug
			logger, err := utils.NewLogger(debugMode)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			logger.Info("config loaded",
				zap.String("config_path", resolvedConfigPath),
				zap.Bool("debug", debugMode),
				zap.String("storage", cfg.Storage.Backend),
				zap.Bool("llm_configured", cfg.LLM.Configured()),
			)
			if !cfg.LLM.Configured() {
				logger.Warn("OPENAI_API_KEY not set; query and summarize will fail until it is configured")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg, logger, debugMode)
		},
	}
}

// runServer serves the API and ingests watched directories until ctx is cancelled or
// the HTTP server fails.
func runServer(ctx context.Context, cfg *config.Config, logger *zap.Logger, debug bool) error {
	components, err := initializeComponents(cfg, logger, debug)
	if err != nil {
		return fmt.Errorf("failed to initialize components: %w", err)
	}
	defer components.Close()
	if chunks, err := components.Storage.CountChunks(ctx); err == nil {
		logger.Info("document store ready", zap.String("backend", cfg.Storage.Backend), zap.Int("chunks", chunks))
	}

	srv := server.NewServer(components.Assistant, &cfg.Server, logger,
		server.WithMetrics(components.Metrics),
		server.WithMaxUploadBytes(cfg.Uploads.MaxBytes),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	if len(cfg.Watch.Directories) > 0 {
		w := watcher.New(cfg.Watch.Directories, cfg.Watch.RecursiveOrDefault(),
			components.Assistant, watcher.WithLogger(logger))
		g.Go(func() error { return w.Run(gctx) })
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Stop(shutdownCtx)
	})
	return g.Wait()
}
