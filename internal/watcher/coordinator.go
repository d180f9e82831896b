package watcher

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Coordinator routes debounced file changes to a rebuild function.
type Coordinator struct {
	files   FileWatcher
	rebuild RebuildFunc
	logger  *zap.Logger
}

// NewCoordinator creates a coordinator. A nil logger discards output.
func NewCoordinator(files FileWatcher, rebuild RebuildFunc, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		files:   files,
		rebuild: rebuild,
		logger:  logger,
	}
}

// Run starts the file watcher and blocks until ctx is cancelled. Rebuild
// errors are logged and watching continues.
func (c *Coordinator) Run(ctx context.Context) error {
	if err := c.files.Start(ctx, c.handleFileChange); err != nil {
		c.cleanup()
		return err
	}

	<-ctx.Done()
	c.cleanup()
	return nil
}

func (c *Coordinator) cleanup() {
	if err := c.files.Stop(); err != nil {
		c.logger.Warn("file watcher stop failed", zap.Error(err))
	}
}

// handleFileChange runs one rebuild for a batch of changed files.
func (c *Coordinator) handleFileChange(ctx context.Context, files []string) {
	if len(files) == 0 {
		return
	}

	c.logger.Info("documents changed", zap.Int("files", len(files)))
	start := time.Now()

	if err := c.rebuild(ctx, files); err != nil {
		c.logger.Error("rebuild failed", zap.Error(err))
		return
	}

	c.logger.Info("rebuild complete", zap.Duration("took", time.Since(start)))
}
