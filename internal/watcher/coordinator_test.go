package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Coordinator:
// - Run blocks until the context is cancelled, then stops the watcher
// - A start failure is returned and the watcher is stopped
// - Each batch of changes triggers one rebuild with the changed files
// - Rebuild errors do not stop watching
// - Empty batches are ignored
// - End to end: writing a document through a real watcher triggers a rebuild

type mockFileWatcher struct {
	mu       sync.Mutex
	callback func(ctx context.Context, files []string)
	startErr error
	started  chan struct{}
	stopped  bool
}

func newMockFileWatcher() *mockFileWatcher {
	return &mockFileWatcher{started: make(chan struct{})}
}

func (m *mockFileWatcher) Start(ctx context.Context, callback func(ctx context.Context, files []string)) error {
	if m.startErr != nil {
		return m.startErr
	}
	m.mu.Lock()
	m.callback = callback
	m.mu.Unlock()
	close(m.started)
	return nil
}

func (m *mockFileWatcher) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
	return nil
}

func (m *mockFileWatcher) fire(ctx context.Context, files []string) {
	m.mu.Lock()
	cb := m.callback
	m.mu.Unlock()
	cb(ctx, files)
}

func (m *mockFileWatcher) isStopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}

func TestCoordinator_RunUntilCancelled(t *testing.T) {
	t.Parallel()

	files := newMockFileWatcher()
	var calls [][]string
	rebuild := func(_ context.Context, changed []string) error {
		calls = append(calls, changed)
		if len(calls) == 1 {
			return errors.New("boom")
		}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- NewCoordinator(files, rebuild, nil).Run(ctx) }()

	<-files.started
	files.fire(ctx, []string{"a.md"})
	files.fire(ctx, nil)
	files.fire(ctx, []string{"a.md", "b.md"})

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	assert.Equal(t, [][]string{{"a.md"}, {"a.md", "b.md"}}, calls)
	assert.True(t, files.isStopped())
}

func TestCoordinator_StartError(t *testing.T) {
	t.Parallel()

	files := newMockFileWatcher()
	files.startErr = errors.New("no watcher")

	err := NewCoordinator(files, func(context.Context, []string) error { return nil }, nil).Run(context.Background())

	assert.EqualError(t, err, "no watcher")
	assert.True(t, files.isStopped())
}

func TestCoordinator_EndToEnd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fw, err := NewFileWatcher([]string{dir}, []string{".md"}, WithDebounce(testDebounce))
	require.NoError(t, err)

	rebuilt := make(chan []string, 4)
	rebuild := func(_ context.Context, changed []string) error {
		rebuilt <- changed
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- NewCoordinator(fw, rebuild, nil).Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	doc := filepath.Join(dir, "arch.md")
	require.NoError(t, os.WriteFile(doc, []byte("# Arch\n"), 0644))

	select {
	case changed := <-rebuilt:
		assert.Equal(t, []string{doc}, changed)
	case <-time.After(3 * time.Second):
		t.Fatal("rebuild not triggered")
	}

	cancel()
	require.NoError(t, <-errCh)
}
