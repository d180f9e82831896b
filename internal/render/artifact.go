package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mvp-joe/archdiag/internal/diagram"
)

// Output describes the files written for one artifact.
type Output struct {
	Source   string // the .dot or .svg file
	Image    string // rendered image, empty when not rendered
	Fallback bool   // DOT source kept because Graphviz is unavailable
}

// WriteArtifact writes the artifact source next to outBase. DOT sources are
// rendered with gv when it is available; SVG artifacts are final as written.
func WriteArtifact(ctx context.Context, gv *Graphviz, artifact diagram.Artifact, outBase string) (Output, error) {
	if dir := filepath.Dir(outBase); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return Output{}, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	out := Output{Source: outBase + artifact.Extension()}
	if err := os.WriteFile(out.Source, []byte(artifact.Body), 0644); err != nil {
		return Output{}, fmt.Errorf("failed to write %s: %w", out.Source, err)
	}

	if artifact.Format != diagram.FormatDOT {
		return out, nil
	}
	if gv == nil || !gv.Available() {
		out.Fallback = true
		return out, nil
	}

	image, err := gv.Render(ctx, artifact.Body, outBase)
	if err != nil {
		return out, err
	}
	out.Image = image
	return out, nil
}
