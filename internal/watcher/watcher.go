// Package watcher ingests text files dropped into inbox directories. Created or rewritten
// files are indexed after a short debounce, removed or renamed files are deleted.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/storage"
)

const defaultDebounce = 400 * time.Millisecond

// Ingester turns files into documents.
type Ingester interface {
	// CheckFilename returns an error for files the ingester does not accept.
	CheckFilename(name string) error
	IndexFile(ctx context.Context, path string) (*models.Document, error)
	RemoveFile(ctx context.Context, path string) error
}

// Watcher watches inbox directories and feeds file changes to an Ingester.
type Watcher struct {
	roots     []string
	recursive bool
	ingester  Ingester
	debounce  time.Duration
	logger    *zap.Logger

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	pending map[string]*time.Timer
	ctx     context.Context
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets a logger for ingestion events.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// WithDebounce sets how long a file must stay quiet before it is indexed.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// New creates a watcher over roots. Only files accepted by ing.CheckFilename are ingested.
func New(roots []string, recursive bool, ing Ingester, opts ...Option) *Watcher {
	w := &Watcher{
		roots:     append([]string(nil), roots...),
		recursive: recursive,
		ingester:  ing,
		debounce:  defaultDebounce,
		logger:    zap.NewNop(),
		pending:   make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run creates missing inbox directories, ingests the files already in them and then
// follows changes until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fs watcher: %w", err)
	}
	defer fsw.Close()

	w.mu.Lock()
	w.fsw = fsw
	w.ctx = ctx
	w.mu.Unlock()
	defer w.stopPending()

	for _, root := range w.roots {
		if err := w.addRoot(root); err != nil {
			return fmt.Errorf("watch %s: %w", root, err)
		}
	}
	w.logger.Info("watching inbox directories",
		zap.Strings("roots", w.roots), zap.Bool("recursive", w.recursive))
	for _, root := range w.roots {
		w.syncDirectory(ctx, root)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, ev fsnotify.Event) {
	path := ev.Name
	if !w.underRoot(path) {
		return
	}
	w.logger.Debug("watcher event", zap.String("op", ev.Op.String()), zap.String("path", path))
	switch {
	case ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write):
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			if ev.Has(fsnotify.Create) {
				w.handleNewDirectory(ctx, path)
			}
			return
		}
		if w.accepts(path) {
			w.debounceIndex(path)
		}
	case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
		w.cancelDebounce(path)
		if w.accepts(path) {
			w.remove(ctx, path)
		}
	}
}

// handleNewDirectory starts watching a directory created under a root and ingests the
// files already inside it.
func (w *Watcher) handleNewDirectory(ctx context.Context, dir string) {
	if !w.recursive {
		return
	}
	w.mu.Lock()
	fsw := w.fsw
	w.mu.Unlock()
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if err := fsw.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", zap.String("path", path), zap.Error(err))
		}
		return nil
	})
	w.syncDirectory(ctx, dir)
}

func (w *Watcher) addRoot(root string) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return err
	}
	if !w.recursive {
		return w.fsw.Add(root)
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return w.fsw.Add(path)
	})
}

func (w *Watcher) syncDirectory(ctx context.Context, root string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != root && !w.recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if w.accepts(path) {
			w.index(ctx, path)
		}
		return nil
	})
}

func (w *Watcher) index(ctx context.Context, path string) {
	doc, err := w.ingester.IndexFile(ctx, path)
	if err != nil {
		w.logger.Warn("failed to ingest file", zap.String("path", path), zap.Error(err))
		return
	}
	w.logger.Info("ingested file",
		zap.String("path", path), zap.String("id", doc.ID), zap.Int("chunks", doc.ChunkCount))
}

func (w *Watcher) remove(ctx context.Context, path string) {
	err := w.ingester.RemoveFile(ctx, path)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		w.logger.Debug("removed file was not ingested", zap.String("path", path))
	case err != nil:
		w.logger.Warn("failed to remove document for file", zap.String("path", path), zap.Error(err))
	default:
		w.logger.Info("removed document for file", zap.String("path", path))
	}
}

func (w *Watcher) debounceIndex(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		ctx := w.ctx
		w.mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		w.index(ctx, path)
	})
}

func (w *Watcher) cancelDebounce(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
		delete(w.pending, path)
	}
}

func (w *Watcher) stopPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
}

func (w *Watcher) underRoot(path string) bool {
	clean := filepath.Clean(path)
	for _, root := range w.roots {
		if inDir(filepath.Clean(root), clean) {
			return true
		}
	}
	return false
}

func inDir(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (w *Watcher) accepts(path string) bool {
	return w.ingester.CheckFilename(path) == nil
}
