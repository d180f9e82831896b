package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for FileWatcher:
// - NewFileWatcher succeeds on existing directories and fails on missing ones
// - A markdown change fires the callback after the debounce period
// - Rapid changes to several files are batched, sorted and deduplicated
// - Extension filtering is case-insensitive and ignores other files
// - Excluded paths never fire the callback
// - New subdirectories are watched; skipped directories are not
// - Stop is idempotent and works without Start
// - Context cancellation stops the watcher

const testDebounce = 50 * time.Millisecond

// recorder collects callback batches.
type recorder struct {
	mu      sync.Mutex
	batches [][]string
	fired   chan struct{}
}

func newRecorder() *recorder {
	return &recorder{fired: make(chan struct{}, 16)}
}

func (r *recorder) callback(_ context.Context, files []string) {
	r.mu.Lock()
	r.batches = append(r.batches, files)
	r.mu.Unlock()
	r.fired <- struct{}{}
}

func (r *recorder) wait(t *testing.T) []string {
	t.Helper()
	select {
	case <-r.fired:
	case <-time.After(3 * time.Second):
		t.Fatal("callback not called after timeout")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.batches[len(r.batches)-1]
}

func (r *recorder) expectNone(t *testing.T) {
	t.Helper()
	select {
	case <-r.fired:
		r.mu.Lock()
		defer r.mu.Unlock()
		t.Fatalf("unexpected callback with %v", r.batches[len(r.batches)-1])
	case <-time.After(4 * testDebounce):
	}
}

func startWatcher(t *testing.T, dir string, opts ...Option) *recorder {
	t.Helper()

	opts = append([]Option{WithDebounce(testDebounce)}, opts...)
	fw, err := NewFileWatcher([]string{dir}, []string{".md", ".markdown"}, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, fw.Stop()) })

	rec := newRecorder()
	require.NoError(t, fw.Start(context.Background(), rec.callback))

	// Let the watcher settle before producing events
	time.Sleep(50 * time.Millisecond)
	return rec
}

func TestNewFileWatcher_Success(t *testing.T) {
	t.Parallel()

	fw, err := NewFileWatcher([]string{t.TempDir()}, []string{".md"})

	require.NoError(t, err)
	require.NotNil(t, fw)
	require.NoError(t, fw.Stop())
	require.NoError(t, fw.Stop())
}

func TestNewFileWatcher_InvalidDirectory(t *testing.T) {
	t.Parallel()

	fw, err := NewFileWatcher([]string{filepath.Join(t.TempDir(), "nonexistent")}, []string{".md"})

	assert.Error(t, err)
	assert.Nil(t, fw)
}

func TestFileWatcher_SingleChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rec := startWatcher(t, dir)

	doc := filepath.Join(dir, "design.md")
	require.NoError(t, os.WriteFile(doc, []byte("# Design\n"), 0644))

	assert.Equal(t, []string{doc}, rec.wait(t))
}

func TestFileWatcher_BatchesRapidChanges(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rec := startWatcher(t, dir, WithDebounce(200*time.Millisecond))

	b := filepath.Join(dir, "b.md")
	a := filepath.Join(dir, "a.markdown")
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(b, []byte(strings.Repeat("x", i+1)), 0644))
		require.NoError(t, os.WriteFile(a, []byte(strings.Repeat("y", i+1)), 0644))
	}

	assert.Equal(t, []string{a, b}, rec.wait(t))
}

func TestFileWatcher_ExtensionFilter(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rec := startWatcher(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "image.png"), []byte("x"), 0644))
	rec.expectNone(t)

	upper := filepath.Join(dir, "README.MD")
	require.NoError(t, os.WriteFile(upper, []byte("x"), 0644))
	assert.Equal(t, []string{upper}, rec.wait(t))
}

func TestFileWatcher_Exclude(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	report := filepath.Join(dir, "conversion-report.md")
	rec := startWatcher(t, dir, WithExclude(report))

	require.NoError(t, os.WriteFile(report, []byte("# Report\n"), 0644))
	rec.expectNone(t)
}

func TestFileWatcher_NewAndSkippedDirectories(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	skipped := filepath.Join(dir, "node_modules")
	require.NoError(t, os.MkdirAll(skipped, 0755))

	rec := startWatcher(t, dir, WithSkipDir(func(path string) bool {
		return filepath.Base(path) == "node_modules"
	}))

	require.NoError(t, os.WriteFile(filepath.Join(skipped, "readme.md"), []byte("x"), 0644))
	rec.expectNone(t)

	sub := filepath.Join(dir, "docs")
	require.NoError(t, os.MkdirAll(sub, 0755))
	// Give the watcher time to add the new directory
	time.Sleep(100 * time.Millisecond)

	doc := filepath.Join(sub, "guide.md")
	require.NoError(t, os.WriteFile(doc, []byte("x"), 0644))
	assert.Contains(t, rec.wait(t), doc)
}

func TestFileWatcher_ContextCancellation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fw, err := NewFileWatcher([]string{dir}, []string{".md"}, WithDebounce(testDebounce))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	rec := newRecorder()
	require.NoError(t, fw.Start(ctx, rec.callback))

	cancel()
	done := make(chan struct{})
	go func() {
		_ = fw.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop after cancellation")
	}
}
