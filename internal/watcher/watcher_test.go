package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/storage"
)

type fakeIngester struct {
	mu      sync.Mutex
	indexed []string
	removed []string
	known   map[string]bool
	exts    []string
}

func newFakeIngester() *fakeIngester {
	return &fakeIngester{known: make(map[string]bool), exts: []string{".txt", ".md"}}
}

func (f *fakeIngester) CheckFilename(name string) error {
	for _, e := range f.exts {
		if strings.EqualFold(filepath.Ext(name), e) {
			return nil
		}
	}
	return errors.New("unsupported file type")
}

func (f *fakeIngester) IndexFile(_ context.Context, path string) (*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed = append(f.indexed, filepath.Base(path))
	f.known[path] = true
	return &models.Document{ID: "doc_" + filepath.Base(path), Name: filepath.Base(path), ChunkCount: 1}, nil
}

func (f *fakeIngester) RemoveFile(_ context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.known[path] {
		return storage.ErrNotFound
	}
	delete(f.known, path)
	f.removed = append(f.removed, filepath.Base(path))
	return nil
}

func (f *fakeIngester) snapshot() (indexed, removed []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	indexed = append([]string(nil), f.indexed...)
	removed = append([]string(nil), f.removed...)
	sort.Strings(indexed)
	sort.Strings(removed)
	return indexed, removed
}

func startWatcher(t *testing.T, roots []string, recursive bool, ing Ingester) {
	t.Helper()
	w := New(roots, recursive, ing, WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Run: %v", err)
		}
	})
	// Give the watcher time to register the roots before files change.
	time.Sleep(100 * time.Millisecond)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestWatcher_Accepts(t *testing.T) {
	w := New([]string{"/inbox"}, true, newFakeIngester())
	tests := []struct {
		path string
		want bool
	}{
		{"/inbox/b.txt", true},
		{"/inbox/b.TXT", true},
		{"/inbox/b.md", true},
		{"/inbox/b.pdf", false},
		{"/inbox/b", false},
	}
	for _, tt := range tests {
		if got := w.accepts(tt.path); got != tt.want {
			t.Errorf("accepts(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestInDir(t *testing.T) {
	tests := []struct {
		dir  string
		path string
		want bool
	}{
		{"/tmp/a", "/tmp/a", true},
		{"/tmp/a", "/tmp/a/b.txt", true},
		{"/tmp/a", "/tmp/b", false},
		{"/tmp/a", "/tmp/a/../b", false},
	}
	for _, tt := range tests {
		got := inDir(tt.dir, tt.path)
		if got != tt.want {
			t.Errorf("inDir(%q, %q) = %v, want %v", tt.dir, tt.path, got, tt.want)
		}
	}
}

func TestWatcher_IngestsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	if err := writeFile(filepath.Join(dir, "a.txt"), "hello"); err != nil {
		t.Fatal(err)
	}
	if err := writeFile(filepath.Join(dir, "ignore.xyz"), "x"); err != nil {
		t.Fatal(err)
	}
	ing := newFakeIngester()
	startWatcher(t, []string{dir}, true, ing)

	indexed, _ := ing.snapshot()
	if len(indexed) != 1 || indexed[0] != "a.txt" {
		t.Errorf("indexed = %v, want [a.txt]", indexed)
	}
}

func TestWatcher_CreatesMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "inbox")
	startWatcher(t, []string{root}, true, newFakeIngester())
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		t.Fatalf("root not created: %v", err)
	}
}

func TestWatcher_IndexesNewAndRemovesDeletedFiles(t *testing.T) {
	dir := t.TempDir()
	ing := newFakeIngester()
	startWatcher(t, []string{dir}, true, ing)

	path := filepath.Join(dir, "notes.md")
	if err := writeFile(path, "first"); err != nil {
		t.Fatal(err)
	}
	if err := writeFile(filepath.Join(dir, "skip.pdf"), "pdf"); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool {
		indexed, _ := ing.snapshot()
		return contains(indexed, "notes.md")
	})

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool {
		_, removed := ing.snapshot()
		return contains(removed, "notes.md")
	})

	indexed, _ := ing.snapshot()
	if contains(indexed, "skip.pdf") {
		t.Errorf("skip.pdf should not be ingested: %v", indexed)
	}
}

func TestWatcher_DebouncesRapidWrites(t *testing.T) {
	dir := t.TempDir()
	ing := newFakeIngester()
	startWatcher(t, []string{dir}, true, ing)

	path := filepath.Join(dir, "draft.txt")
	for i := 0; i < 5; i++ {
		if err := writeFile(path, "version"); err != nil {
			t.Fatal(err)
		}
	}
	waitFor(t, func() bool {
		indexed, _ := ing.snapshot()
		return contains(indexed, "draft.txt")
	})
	time.Sleep(100 * time.Millisecond)
	indexed, _ := ing.snapshot()
	if len(indexed) != 1 {
		t.Errorf("indexed %d times, want 1: %v", len(indexed), indexed)
	}
}

func TestWatcher_NewSubdirectory(t *testing.T) {
	dir := t.TempDir()
	ing := newFakeIngester()
	startWatcher(t, []string{dir}, true, ing)

	nested := filepath.Join(dir, "team", "policies")
	if err := mkdirAll(nested); err != nil {
		t.Fatal(err)
	}
	if err := writeFile(filepath.Join(nested, "leave.txt"), "twenty days"); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool {
		indexed, _ := ing.snapshot()
		return contains(indexed, "leave.txt")
	})
}

func TestWatcher_NonRecursiveSkipsSubdirectories(t *testing.T) {
	dir := t.TempDir()
	if err := mkdirAll(filepath.Join(dir, "sub")); err != nil {
		t.Fatal(err)
	}
	if err := writeFile(filepath.Join(dir, "sub", "deep.txt"), "deep"); err != nil {
		t.Fatal(err)
	}
	if err := writeFile(filepath.Join(dir, "top.txt"), "top"); err != nil {
		t.Fatal(err)
	}
	ing := newFakeIngester()
	startWatcher(t, []string{dir}, false, ing)

	indexed, _ := ing.snapshot()
	if len(indexed) != 1 || indexed[0] != "top.txt" {
		t.Errorf("indexed = %v, want [top.txt]", indexed)
	}
}

func TestWatcher_RemoveUnknownFileIsIgnored(t *testing.T) {
	w := New([]string{"/inbox"}, true, newFakeIngester())
	w.remove(context.Background(), "/inbox/never-seen.txt")
}

func mkdirAll(path string) error {
	return os.MkdirAll(path, 0o755)
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
