package render

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Graphviz renders DOT sources with the dot binary.
type Graphviz struct {
	Binary  string        // defaults to "dot"
	Format  string        // output format passed to -T, defaults to "png"
	Timeout time.Duration // defaults to DefaultTimeout
}

func (g *Graphviz) binary() string {
	if g.Binary == "" {
		return "dot"
	}
	return g.Binary
}

func (g *Graphviz) format() string {
	if g.Format == "" {
		return "png"
	}
	return g.Format
}

// Available reports whether the dot binary is on PATH.
func (g *Graphviz) Available() bool {
	_, err := lookPath(g.binary())
	return err == nil
}

// Version returns the first line of `dot -V`, which Graphviz prints on stderr.
func (g *Graphviz) Version(ctx context.Context) (string, error) {
	res, err := run(ctx, g.Timeout, "", "", g.binary(), "-V")
	if err != nil {
		return "", err
	}
	out := strings.TrimSpace(res.stderr)
	if out == "" {
		out = strings.TrimSpace(res.stdout)
	}
	line, _, _ := strings.Cut(out, "\n")
	return line, nil
}

// Render feeds source to dot and writes outBase plus the format extension.
// It returns the written path.
func (g *Graphviz) Render(ctx context.Context, source, outBase string) (string, error) {
	out := outBase + "." + g.format()
	if _, err := run(ctx, g.Timeout, "", source, g.binary(), "-T"+g.format(), "-o", out); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", out, err)
	}
	return out, nil
}
