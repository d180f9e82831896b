package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/mvp-joe/archdiag/internal/discovery"
	"github.com/mvp-joe/archdiag/internal/extract"
	"github.com/mvp-joe/archdiag/internal/report"
	"github.com/mvp-joe/archdiag/internal/watcher"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	extractOutputDir string
	extractReport    string
	extractManifest  string
	extractDryRun    bool
	extractPreview   bool
	extractWatch     bool
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <glob>...",
	Short: "Extract ASCII diagrams from markdown into a conversion report",
	Long: `Extract scans markdown documents for ASCII-art diagrams inside fenced code
blocks and writes a conversion report. Each report section carries the
diagram, its location, the surrounding context and a suggested image name,
ready for an assistant to redraw as an architecture diagram.

Only .md and .markdown files are scanned. Patterns support ** for recursive
matching. Unreadable files and patterns that match nothing are skipped.

Examples:
  # Scan all docs and write conversion-report.md
  archdiag extract "docs/**/*.md"

  # Show what would be extracted without writing anything
  archdiag extract README.md "docs/*.md" --dry-run

  # Also write a JSON manifest and preview the report
  archdiag extract "**/*.md" --manifest diagrams.json --preview

  # Rewrite the report whenever a document changes
  archdiag extract "docs/**/*.md" --watch
`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVarP(&extractOutputDir, "output-dir", "o", "./diagrams", "Directory for the converted images")
	extractCmd.Flags().StringVarP(&extractReport, "report", "r", "conversion-report.md", "Report destination")
	extractCmd.Flags().StringVar(&extractManifest, "manifest", "", "Also write a JSON manifest of the diagrams to this path")
	extractCmd.Flags().BoolVar(&extractDryRun, "dry-run", false, "Print the summary without writing any file")
	extractCmd.Flags().BoolVar(&extractPreview, "preview", false, "Render the report in the terminal")
	extractCmd.Flags().BoolVar(&extractWatch, "watch", false, "Re-run extraction when documents change")
}

// extractOptions holds the resolved settings of one extract invocation.
type extractOptions struct {
	Root        string
	Patterns    []string
	OutputDir   string
	Report      string
	Manifest    string
	DryRun      bool
	Preview     bool
	Ignore      []string
	Concurrency int
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, root, err := loadConfig()
	if err != nil {
		return err
	}

	// Flags win over config only when given explicitly
	opts := extractOptions{
		Root:        root,
		Patterns:    args,
		OutputDir:   cfg.Extract.OutputDir,
		Report:      cfg.Extract.Report,
		Manifest:    extractManifest,
		DryRun:      extractDryRun,
		Preview:     extractPreview,
		Ignore:      cfg.Extract.Ignore,
		Concurrency: cfg.Extract.Concurrency,
	}
	if cmd.Flags().Changed("output-dir") {
		opts.OutputDir = extractOutputDir
	}
	if cmd.Flags().Changed("report") {
		opts.Report = extractReport
	}

	run, err := newExtractRun(opts, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := run.Run(ctx); err != nil {
		return err
	}
	if !extractWatch {
		return nil
	}
	return run.Watch(ctx, watcher.DefaultDebounce)
}

// extractRun performs extraction passes with fixed options.
type extractRun struct {
	opts      extractOptions
	resolver  *discovery.Resolver
	extractor *extract.FileExtractor
	out       io.Writer
}

func newExtractRun(opts extractOptions, out io.Writer) (*extractRun, error) {
	resolver, err := discovery.NewResolver(opts.Root, opts.Ignore)
	if err != nil {
		return nil, fmt.Errorf("failed to create resolver: %w", err)
	}
	return &extractRun{
		opts:      opts,
		resolver:  resolver,
		extractor: extract.NewFileExtractor(opts.Concurrency, logger),
		out:       out,
	}, nil
}

// Run performs one extraction pass and returns the number of diagrams found.
// The report is written only when diagrams were found and this is not a
// dry run.
func (r *extractRun) Run(ctx context.Context) (int, error) {
	files, err := r.resolver.Resolve(r.opts.Patterns)
	if err != nil {
		return 0, err
	}
	logger.Debug("resolved documents", zap.Int("count", len(files)))

	docs, err := r.extractor.ExtractFiles(ctx, files)
	if err != nil {
		return 0, err
	}

	for i := range docs {
		docs[i].Path = r.display(docs[i].Path)
		r.printDocument(docs[i])
	}

	entries := report.Entries(docs)
	fmt.Fprintln(r.out)
	fmt.Fprintf(r.out, "%s %d\n", headerColor.Sprint("Total diagrams found:"), len(entries))

	if len(entries) == 0 {
		printWarning(r.out, "No ASCII diagrams found in the specified files.")
		return 0, nil
	}

	content := report.Build(entries)

	if r.opts.Preview {
		if err := r.preview(content); err != nil {
			return len(entries), err
		}
	}

	if r.opts.DryRun {
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, "[Dry run - no files generated]")
		return len(entries), nil
	}

	if err := report.Write(r.path(r.opts.Report), content); err != nil {
		return len(entries), err
	}
	printSuccess(r.out, "Report written to %s", r.opts.Report)

	if r.opts.Manifest != "" {
		if err := report.WriteManifest(r.path(r.opts.Manifest), entries); err != nil {
			return len(entries), err
		}
		printSuccess(r.out, "Manifest written to %s", r.opts.Manifest)
	}

	if r.opts.OutputDir != "" {
		if err := os.MkdirAll(r.path(r.opts.OutputDir), 0755); err != nil {
			return len(entries), fmt.Errorf("failed to create output directory: %w", err)
		}
		fmt.Fprintf(r.out, "  Images go to: %s\n", r.opts.OutputDir)
	}

	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, "Next step - ask your assistant:")
	fmt.Fprintf(r.out, "  %s\n", strings.ReplaceAll(report.Instruction, "\n", "\n  "))

	return len(entries), nil
}

func (r *extractRun) printDocument(doc extract.Document) {
	fmt.Fprintf(r.out, "%s %s\n", headerColor.Sprint("Processing:"), doc.Path)
	switch {
	case doc.Skipped:
		printWarning(r.out, "  Skipped: not readable as text")
	case len(doc.Records) == 0:
		fmt.Fprintln(r.out, "  No ASCII diagrams found")
	default:
		fmt.Fprintf(r.out, "  Found %d ASCII diagram(s)\n", len(doc.Records))
		for _, record := range doc.Records {
			fmt.Fprintf(r.out, "    - %s\n", record)
		}
	}
}

func (r *extractRun) preview(content string) error {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(previewStyle),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("creating preview renderer: %w", err)
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return fmt.Errorf("rendering preview: %w", err)
	}
	fmt.Fprint(r.out, rendered)
	return nil
}

// previewStyle is the glamour style used by --preview.
var previewStyle = "dark"

// Watch re-runs extraction whenever a markdown file under the pattern
// directories changes, until ctx is cancelled. Files written by the run
// itself are not watched.
func (r *extractRun) Watch(ctx context.Context, debounce time.Duration) error {
	dirs := r.resolver.WatchDirs(r.opts.Patterns)
	if len(dirs) == 0 {
		return fmt.Errorf("nothing to watch: no directory matches %s", strings.Join(r.opts.Patterns, ", "))
	}

	exclude := []string{r.path(r.opts.Report)}
	if r.opts.Manifest != "" {
		exclude = append(exclude, r.path(r.opts.Manifest))
	}

	fw, err := watcher.NewFileWatcher(dirs, []string{".md", ".markdown"},
		watcher.WithDebounce(debounce),
		watcher.WithLogger(logger),
		watcher.WithSkipDir(r.resolver.Ignored),
		watcher.WithExclude(exclude...),
	)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	rebuild := func(ctx context.Context, changed []string) error {
		fmt.Fprintln(r.out)
		fmt.Fprintf(r.out, "Change detected in %d file(s), re-extracting...\n", len(changed))
		_, err := r.Run(ctx)
		return err
	}

	fmt.Fprintln(r.out)
	fmt.Fprintf(r.out, "Watching %d director(ies) for changes. Press Ctrl+C to stop.\n", len(dirs))
	return watcher.NewCoordinator(fw, rebuild, logger).Run(ctx)
}

// path resolves a configured path against the project root.
func (r *extractRun) path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(r.opts.Root, p)
}

// display shortens paths under the project root for output and the report.
func (r *extractRun) display(path string) string {
	rel, err := filepath.Rel(r.opts.Root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
