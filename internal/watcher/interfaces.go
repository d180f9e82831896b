package watcher

import "context"

// FileWatcher monitors document directories for changes with debouncing.
type FileWatcher interface {
	// Start begins watching, calling callback with each debounced batch of
	// changed files. It returns immediately.
	Start(ctx context.Context, callback func(ctx context.Context, files []string)) error

	// Stop stops the file watcher and cleans up resources.
	Stop() error
}

// RebuildFunc regenerates output after the given files changed.
type RebuildFunc func(ctx context.Context, changed []string) error
