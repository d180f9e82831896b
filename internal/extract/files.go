package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrUnreadable indicates a document that could not be read or decoded as UTF-8 text.
var ErrUnreadable = errors.New("document is not readable text")

// ExtractFile reads a markdown file and extracts its diagrams.
func ExtractFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{Path: path, Skipped: true}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	if !utf8.Valid(data) {
		return Document{Path: path, Skipped: true}, fmt.Errorf("%w: %s is not valid UTF-8", ErrUnreadable, path)
	}

	return Document{
		Path:    path,
		Records: Extract(string(data)),
	}, nil
}

// FileExtractor extracts diagrams from many files.
type FileExtractor struct {
	concurrency int
	logger      *zap.Logger
}

// NewFileExtractor creates an extractor that reads at most concurrency files at once.
// A concurrency below 1 means sequential processing.
func NewFileExtractor(concurrency int, logger *zap.Logger) *FileExtractor {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileExtractor{
		concurrency: concurrency,
		logger:      logger,
	}
}

// ExtractFiles extracts every path and returns one Document per path, in input order.
// Unreadable files are not errors: they come back with Skipped set and no records.
// The only error is context cancellation.
func (fe *FileExtractor) ExtractFiles(ctx context.Context, paths []string) ([]Document, error) {
	docs := make([]Document, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(fe.concurrency)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			doc, err := ExtractFile(path)
			if err != nil {
				fe.logger.Debug("skipping document", zap.String("path", path), zap.Error(err))
			} else {
				fe.logger.Debug("extracted document",
					zap.String("path", path),
					zap.Int("diagrams", len(doc.Records)))
			}
			docs[i] = doc
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}
