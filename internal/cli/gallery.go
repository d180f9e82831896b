package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mvp-joe/archdiag/internal/diagram"
	"github.com/mvp-joe/archdiag/internal/patterns"
	"github.com/mvp-joe/archdiag/internal/render"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	galleryDir   string
	galleryRun   bool
	galleryQuiet bool
)

// galleryCmd represents the gallery command
var galleryCmd = &cobra.Command{
	Use:   "gallery",
	Short: "Generate every pattern script and diagram type into one directory",
	Long: `Gallery writes the script of every architecture pattern and an example of
every diagram type, plus a README.md index linking them. DOT diagrams are
rendered when Graphviz is installed; pattern scripts are run with --run.

Example:
  archdiag gallery -o ./gallery --run
`,
	RunE: runGallery,
}

func init() {
	rootCmd.AddCommand(galleryCmd)
	galleryCmd.Flags().StringVarP(&galleryDir, "output", "o", "./gallery", "Gallery directory")
	galleryCmd.Flags().BoolVar(&galleryRun, "run", false, "Run pattern scripts with Python to render PNGs")
	galleryCmd.Flags().BoolVarP(&galleryQuiet, "quiet", "q", false, "Hide the progress bar")
}

// galleryItem is the outcome of one gallery entry.
type galleryItem struct {
	Kind   string // "pattern" or "diagram"
	Name   string
	Source string
	Image  string
	Err    error
}

type galleryOptions struct {
	Dir   string
	Run   bool
	Quiet bool
}

func runGallery(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	opts := galleryOptions{Dir: galleryDir, Run: galleryRun, Quiet: galleryQuiet}
	_, err = buildGallery(cmd.Context(), cmd.OutOrStdout(), cfg.Graphviz(), cfg.Python(), opts)
	return err
}

// buildGallery generates every entry. A failing entry does not stop the
// others; the returned error summarises the failures.
func buildGallery(ctx context.Context, w io.Writer, gv *render.Graphviz, py *render.Python, opts galleryOptions) ([]galleryItem, error) {
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", opts.Dir, err)
	}

	all := patterns.All()
	types := diagram.Types()
	progress := newGalleryProgress(w, len(all)+len(types), opts.Quiet)

	items := make([]galleryItem, 0, len(all)+len(types))

	for _, p := range all {
		progress.OnItemStart(p.Name)
		items = append(items, galleryPattern(ctx, py, opts, p))
		progress.OnItemDone()
	}

	for _, info := range types {
		progress.OnItemStart(string(info.Type))
		items = append(items, galleryDiagram(ctx, gv, opts.Dir, info.Type))
		progress.OnItemDone()
	}
	progress.Finish()

	index := filepath.Join(opts.Dir, "README.md")
	if err := os.WriteFile(index, []byte(galleryIndex(opts.Dir, items)), 0644); err != nil {
		return items, fmt.Errorf("failed to write %s: %w", index, err)
	}

	failed := 0
	for _, item := range items {
		if item.Err != nil {
			failed++
			printFailure(w, "%s %s: %v", item.Kind, item.Name, item.Err)
			logger.Warn("gallery item failed", zap.String("name", item.Name), zap.Error(item.Err))
		}
	}

	printSuccess(w, "Gallery written to %s (%d of %d items)", opts.Dir, len(items)-failed, len(items))
	if failed > 0 {
		return items, fmt.Errorf("%d of %d gallery items failed", failed, len(items))
	}
	return items, nil
}

func galleryPattern(ctx context.Context, py *render.Python, opts galleryOptions, p patterns.Pattern) galleryItem {
	item := galleryItem{Kind: "pattern", Name: p.Name}

	dir := filepath.Join(opts.Dir, "patterns")
	if err := os.MkdirAll(dir, 0755); err != nil {
		item.Err = err
		return item
	}

	code, err := p.Render(p.Description, p.Name)
	if err != nil {
		item.Err = err
		return item
	}

	item.Source = filepath.Join(dir, p.Name+".py")
	if err := os.WriteFile(item.Source, []byte(code), 0644); err != nil {
		item.Err = err
		return item
	}

	if opts.Run {
		if err := py.RunScript(ctx, item.Source); err != nil {
			item.Err = err
			return item
		}
		item.Image = filepath.Join(dir, p.Name+".png")
	}
	return item
}

func galleryDiagram(ctx context.Context, gv *render.Graphviz, root string, typ diagram.Type) galleryItem {
	item := galleryItem{Kind: "diagram", Name: string(typ)}

	title := strings.ToUpper(string(typ[:1])) + string(typ[1:]) + " Example"
	artifact, err := diagram.Build(typ, title, nil, diagram.Options{})
	if err != nil {
		item.Err = err
		return item
	}

	out, err := render.WriteArtifact(ctx, gv, artifact, filepath.Join(root, "diagrams", string(typ)))
	item.Source = out.Source
	item.Image = out.Image
	if artifact.Format == diagram.FormatSVG {
		item.Image = out.Source
	}
	item.Err = err
	return item
}

// galleryIndex renders the README.md that links every entry.
func galleryIndex(root string, items []galleryItem) string {
	var b strings.Builder
	b.WriteString("# archdiag Gallery\n")

	sections := []struct{ kind, title string }{
		{"pattern", "Architecture Patterns"},
		{"diagram", "Diagram Types"},
	}
	for _, section := range sections {
		fmt.Fprintf(&b, "\n## %s\n", section.title)
		for _, item := range items {
			if item.Kind != section.kind || item.Err != nil {
				continue
			}
			fmt.Fprintf(&b, "\n### %s\n\n", item.Name)
			if item.Image != "" {
				fmt.Fprintf(&b, "![%s](%s)\n\n", item.Name, relLink(root, item.Image))
			}
			fmt.Fprintf(&b, "Source: [%s](%s)\n", filepath.Base(item.Source), relLink(root, item.Source))
		}
	}
	return b.String()
}

func relLink(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
