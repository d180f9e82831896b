package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mvp-joe/archdiag/internal/discovery"
	"github.com/mvp-joe/archdiag/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Extract Command:
// - Run prints per-file summaries, the total, writes report, manifest and output dir
// - Run with --dry-run prints the summary and writes nothing
// - Run with no diagrams prints a warning and writes nothing, dry run or not
// - Run reports unreadable files as skipped and keeps going
// - Run keeps report sources relative to the project root
// - Run with --preview renders the report to the output
// - Run fails on invalid glob patterns
// - Watch rewrites the report when a document is added, stops on cancellation
// - Watch fails when no pattern directory exists

const flowDoc = "# Platform\n\n## Ingestion\n\n```\n+------+     +-------+\n| API  | --> | Queue |\n+------+     +-------+\n```\n"

const twoDiagramDoc = "## Flow\n\n```\n+---+\n| A |\n+---+\n```\n\n## Data\n\n```\nsource --> sink\n  |\n  v\n```\n"

func extractOpts(root string, patterns ...string) extractOptions {
	return extractOptions{
		Root:        root,
		Patterns:    patterns,
		OutputDir:   "diagrams",
		Report:      "conversion-report.md",
		Ignore:      discovery.DefaultIgnore,
		Concurrency: 2,
	}
}

func runExtractOnce(t *testing.T, opts extractOptions) (int, string, error) {
	t.Helper()
	var out bytes.Buffer
	run, err := newExtractRun(opts, &out)
	require.NoError(t, err)
	total, err := run.Run(context.Background())
	return total, out.String(), err
}

func TestExtract_WritesReportAndManifest(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeDoc(t, root, "docs/platform.md", flowDoc)
	writeDoc(t, root, "docs/guide.md", twoDiagramDoc)
	writeDoc(t, root, "docs/empty.md", "# Nothing\n")

	opts := extractOpts(root, "docs/*.md")
	opts.Manifest = "out/diagrams.json"

	total, out, err := runExtractOnce(t, opts)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	assert.Contains(t, out, "Processing: "+filepath.Join("docs", "empty.md"))
	assert.Contains(t, out, "  No ASCII diagrams found")
	assert.Contains(t, out, "  Found 2 ASCII diagram(s)")
	assert.Contains(t, out, "    - Lines 3-7: Flow")
	assert.Contains(t, out, "    - Lines 5-9: Ingestion")
	assert.Contains(t, out, "Total diagrams found: 3")
	assert.Contains(t, out, "Report written to conversion-report.md")
	assert.Contains(t, out, "Manifest written to out/diagrams.json")
	assert.NotContains(t, out, "[Dry run")

	data, err := os.ReadFile(filepath.Join(root, "conversion-report.md"))
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "**Total Diagrams:** 3")
	assert.Contains(t, content, "**Source:** `"+filepath.Join("docs", "guide.md")+"`")
	assert.Contains(t, content, "**Suggested output filename:** `ingestion.png`")

	// Files resolve in sorted order: empty, guide, platform
	guideIdx := bytes.Index(data, []byte("`flow.png`"))
	ingestionIdx := bytes.Index(data, []byte("`ingestion.png`"))
	assert.Less(t, guideIdx, ingestionIdx)

	var manifest report.ManifestDoc
	raw, err := os.ReadFile(filepath.Join(root, "out", "diagrams.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &manifest))
	assert.Equal(t, 3, manifest.Total)
	assert.Equal(t, "data.png", manifest.Diagrams[1].Filename)

	info, err := os.Stat(filepath.Join(root, "diagrams"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestExtract_DryRun(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeDoc(t, root, "README.md", flowDoc)

	opts := extractOpts(root, "README.md")
	opts.DryRun = true
	opts.Manifest = "diagrams.json"

	total, out, err := runExtractOnce(t, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Contains(t, out, "[Dry run - no files generated]")

	for _, name := range []string{"conversion-report.md", "diagrams.json", "diagrams"} {
		_, err := os.Stat(filepath.Join(root, name))
		assert.True(t, os.IsNotExist(err), "%s should not exist", name)
	}
}

func TestExtract_NoDiagrams(t *testing.T) {
	t.Parallel()

	for _, dryRun := range []bool{false, true} {
		root := t.TempDir()
		writeDoc(t, root, "notes.md", "# Notes\n\n```\nplain\ntext\nonly\n```\n")

		opts := extractOpts(root, "*.md", "missing/*.md")
		opts.DryRun = dryRun

		total, out, err := runExtractOnce(t, opts)
		require.NoError(t, err)
		assert.Equal(t, 0, total)
		assert.Contains(t, out, "Total diagrams found: 0")
		assert.Contains(t, out, "No ASCII diagrams found in the specified files.")
		assert.NotContains(t, out, "[Dry run")

		_, err = os.Stat(filepath.Join(root, "conversion-report.md"))
		assert.True(t, os.IsNotExist(err))
	}
}

func TestExtract_SkipsUnreadableFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeDoc(t, root, "a.md", flowDoc)
	writeDoc(t, root, "b.md", string([]byte{0xff, 0xfe, 0x00}))

	total, out, err := runExtractOnce(t, extractOpts(root, "*.md"))
	require.NoError(t, err)

	assert.Equal(t, 1, total)
	assert.Contains(t, out, "Skipped: not readable as text")
}

func TestExtract_InvalidPattern(t *testing.T) {
	t.Parallel()

	_, _, err := runExtractOnce(t, extractOpts(t.TempDir(), "docs/[a.md"))

	assert.Error(t, err)
}

func TestExtract_Preview(t *testing.T) {
	previewStyle = "notty"
	t.Cleanup(func() { previewStyle = "dark" })

	root := t.TempDir()
	writeDoc(t, root, "a.md", flowDoc)

	opts := extractOpts(root, "a.md")
	opts.DryRun = true
	_, plain, err := runExtractOnce(t, opts)
	require.NoError(t, err)

	opts.Preview = true
	_, previewed, err := runExtractOnce(t, opts)
	require.NoError(t, err)

	assert.Greater(t, len(previewed), len(plain))
	assert.Contains(t, previewed, "Queue")
}

func TestExtract_WatchRebuildsReport(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "docs/platform.md", flowDoc)
	reportPath := filepath.Join(root, "conversion-report.md")

	out := &syncBuffer{}
	run, err := newExtractRun(extractOpts(root, "docs/*.md"), out)
	require.NoError(t, err)

	_, err = run.Run(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- run.Watch(ctx, 50*time.Millisecond) }()

	require.Eventually(t, func() bool {
		return bytes.Contains([]byte(out.String()), []byte("Watching 1 director(ies)"))
	}, 2*time.Second, 20*time.Millisecond)
	time.Sleep(100 * time.Millisecond)

	writeDoc(t, root, "docs/egress.md", "## Egress\n\n```\nqueue --> worker\n  |\n  v\n```\n")

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(reportPath)
		return err == nil && bytes.Contains(data, []byte("## Diagram 2"))
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancellation")
	}

	assert.Contains(t, out.String(), "re-extracting...")
}

func TestExtract_WatchWithoutDirectories(t *testing.T) {
	t.Parallel()

	run, err := newExtractRun(extractOpts(t.TempDir(), "missing/**/*.md"), &bytes.Buffer{})
	require.NoError(t, err)

	err = run.Watch(context.Background(), 50*time.Millisecond)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to watch")
}
