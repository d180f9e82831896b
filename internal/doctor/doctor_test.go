package doctor

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/mvp-joe/archdiag/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Doctor:
// - Checks run in order and print a summary
// - A check whose requirement failed is skipped and does not fail the report
// - A failing check prints its hint
// - With working tools every check passes
// - With an old Python and no diagrams library the dependent checks are skipped
// - Without Graphviz the rendering check is skipped

const healthyPython = `#!/bin/sh
case "$1" in
  --version) echo "Python 3.11.4"; exit 0 ;;
esac
case "$2" in
  *"with Diagram("*) touch test.png ;;
  *__version__*) echo "0.23.4" ;;
esac
`

const brokenPython = `#!/bin/sh
case "$1" in
  --version) echo "Python 3.8.10"; exit 0 ;;
esac
echo "ModuleNotFoundError: No module named 'diagrams'" >&2
exit 1
`

const fakeDot = `#!/bin/sh
out=""
while [ $# -gt 0 ]; do
  case "$1" in
    -V) echo "dot - graphviz version 9.0.0 (0)" >&2; exit 0 ;;
    -o) out="$2"; shift ;;
  esac
  shift
done
cat > "$out"
`

// writeTool writes an executable shell script. Tests that use it are not
// parallel: forking while a script is still open for writing fails with ETXTBSY.
func writeTool(t *testing.T, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script tools require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0755))
	return path
}

func results(report Report) map[string]Result {
	out := make(map[string]Result, len(report.Results))
	for _, r := range report.Results {
		out[r.Name] = r
	}
	return out
}

func TestRun_DependencySkipping(t *testing.T) {
	t.Parallel()

	checks := []Check{
		{Name: "base", Label: "Checking base...", Hint: "install base", Run: func(context.Context) (string, error) {
			return "", errors.New("base missing")
		}},
		{Name: "other", Label: "Checking other...", Run: func(context.Context) (string, error) {
			return "ok", nil
		}},
		{Name: "child", Label: "Checking child...", Requires: []string{"base"}, Run: func(context.Context) (string, error) {
			t.Error("child must not run")
			return "", nil
		}},
	}

	var buf bytes.Buffer
	report := New(nil, nil, nil).run(context.Background(), &buf, checks)

	require.Len(t, report.Results, 3)
	assert.False(t, report.Passed())
	assert.False(t, report.Results[0].Passed)
	assert.Equal(t, "install base", report.Results[0].Hint)
	assert.True(t, report.Results[1].Passed)
	assert.True(t, report.Results[2].Skipped)
	assert.Equal(t, "requires base", report.Results[2].Detail)

	out := buf.String()
	assert.Contains(t, out, "Checking base... ❌ base missing\n   install base\n")
	assert.Contains(t, out, "Checking other... ✅ ok\n")
	assert.NotContains(t, out, "Checking child...")
	assert.Contains(t, out, "  base: ❌ FAIL\n")
	assert.Contains(t, out, "  child: ⏭️  SKIP (requires base)\n")
	assert.Contains(t, out, "Some checks failed")
}

func TestReport_PassedIgnoresSkipped(t *testing.T) {
	t.Parallel()

	report := Report{Results: []Result{
		{Name: "a", Passed: true},
		{Name: "b", Skipped: true},
	}}

	assert.True(t, report.Passed())
}

func TestDoctor_AllPass(t *testing.T) {
	py := &render.Python{Binary: writeTool(t, "python3", healthyPython)}
	gv := &render.Graphviz{Binary: writeTool(t, "dot", fakeDot)}

	var buf bytes.Buffer
	report := New(py, gv, nil).Run(context.Background(), &buf)

	assert.True(t, report.Passed(), buf.String())
	require.Len(t, report.Results, 6)

	byName := results(report)
	assert.Equal(t, "Python 3.11.4", byName[CheckPython].Detail)
	assert.Equal(t, "dot - graphviz version 9.0.0 (0)", byName[CheckGraphviz].Detail)
	assert.Equal(t, "Version 0.23.4", byName[CheckDiagrams].Detail)
	assert.True(t, byName[CheckProviders].Passed)
	assert.True(t, byName[CheckGeneration].Passed)
	assert.True(t, byName[CheckRendering].Passed)
	assert.Contains(t, buf.String(), "All checks passed")
}

func TestDoctor_BrokenPythonWithoutGraphviz(t *testing.T) {
	py := &render.Python{Binary: writeTool(t, "python3", brokenPython)}
	gv := &render.Graphviz{Binary: filepath.Join(t.TempDir(), "missing-dot")}

	var buf bytes.Buffer
	report := New(py, gv, nil).Run(context.Background(), &buf)

	assert.False(t, report.Passed())
	byName := results(report)

	assert.False(t, byName[CheckPython].Passed)
	assert.Contains(t, byName[CheckPython].Detail, "need 3.9+")
	assert.False(t, byName[CheckGraphviz].Passed)
	assert.Contains(t, byName[CheckGraphviz].Hint, "brew install graphviz")
	assert.False(t, byName[CheckDiagrams].Passed)
	assert.Contains(t, byName[CheckDiagrams].Detail, "No module named 'diagrams'")
	assert.True(t, byName[CheckProviders].Skipped)
	assert.True(t, byName[CheckGeneration].Skipped)
	assert.True(t, byName[CheckRendering].Skipped)
	assert.Contains(t, buf.String(), "pip install diagrams")
}
