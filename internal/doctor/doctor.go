// Package doctor verifies that the external tools archdiag shells out to are
// installed and working.
package doctor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mvp-joe/archdiag/internal/diagram"
	"github.com/mvp-joe/archdiag/internal/render"
	"go.uber.org/zap"
)

// Check names.
const (
	CheckPython     = "Python 3.9+"
	CheckGraphviz   = "Graphviz"
	CheckDiagrams   = "Diagrams library"
	CheckProviders  = "Azure providers"
	CheckGeneration = "Diagram generation"
	CheckRendering  = "DOT rendering"
)

const rule = "============================================================"

// Check is one verification step. It runs only when every check named in
// Requires has passed.
type Check struct {
	Name     string
	Label    string // progress text printed before the result
	Hint     string // printed under a failure
	Requires []string
	Run      func(ctx context.Context) (string, error)
}

// Result is the outcome of one check.
type Result struct {
	Name    string
	Passed  bool
	Skipped bool
	Detail  string
	Hint    string
}

// Report collects the results of a doctor run.
type Report struct {
	Results []Result
}

// Passed reports whether no check failed. Skipped checks do not count.
func (r Report) Passed() bool {
	for _, res := range r.Results {
		if !res.Passed && !res.Skipped {
			return false
		}
	}
	return true
}

// Doctor runs the installation checks.
type Doctor struct {
	python   *render.Python
	graphviz *render.Graphviz
	logger   *zap.Logger
}

// New creates a Doctor for the given tools.
func New(python *render.Python, graphviz *render.Graphviz, logger *zap.Logger) *Doctor {
	if python == nil {
		python = &render.Python{}
	}
	if graphviz == nil {
		graphviz = &render.Graphviz{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Doctor{python: python, graphviz: graphviz, logger: logger}
}

// Checks returns the checks in execution order.
func (d *Doctor) Checks() []Check {
	return []Check{
		{
			Name:  CheckPython,
			Label: "Checking Python version...",
			Hint:  "Install Python 3.9 or newer and make sure it is on PATH",
			Run:   d.checkPython,
		},
		{
			Name:  CheckGraphviz,
			Label: "Checking Graphviz...",
			Hint: "Install with:\n" +
				"- macOS:   brew install graphviz\n" +
				"- Linux:   sudo apt install graphviz\n" +
				"- Windows: choco install graphviz",
			Run: d.checkGraphviz,
		},
		{
			Name:  CheckDiagrams,
			Label: "Checking diagrams library...",
			Hint:  "Install with: pip install diagrams",
			Run:   d.checkDiagrams,
		},
		{
			Name:     CheckProviders,
			Label:    "Checking Azure diagram providers...",
			Hint:     "Upgrade with: pip install --upgrade diagrams",
			Requires: []string{CheckDiagrams},
			Run:      d.checkProviders,
		},
		{
			Name:     CheckGeneration,
			Label:    "Testing diagram generation...",
			Requires: []string{CheckDiagrams},
			Run:      d.checkGeneration,
		},
		{
			Name:     CheckRendering,
			Label:    "Testing DOT rendering...",
			Requires: []string{CheckGraphviz},
			Run:      d.checkRendering,
		},
	}
}

// Run executes every check in order, printing progress and a summary to w.
func (d *Doctor) Run(ctx context.Context, w io.Writer) Report {
	return d.run(ctx, w, d.Checks())
}

func (d *Doctor) run(ctx context.Context, w io.Writer, checks []Check) Report {
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "archdiag - Installation Verification")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)

	var report Report
	passed := make(map[string]bool)

	for _, check := range checks {
		res := Result{Name: check.Name}

		if missing := unmet(check.Requires, passed); missing != "" {
			res.Skipped = true
			res.Detail = "requires " + missing
			report.Results = append(report.Results, res)
			d.logger.Debug("check skipped", zap.String("check", check.Name), zap.String("requires", missing))
			continue
		}

		fmt.Fprint(w, check.Label+" ")
		detail, err := check.Run(ctx)
		if err != nil {
			res.Detail = err.Error()
			res.Hint = check.Hint
			fmt.Fprintf(w, "❌ %s\n", res.Detail)
			if res.Hint != "" {
				for _, line := range strings.Split(res.Hint, "\n") {
					fmt.Fprintf(w, "   %s\n", line)
				}
			}
		} else {
			res.Passed = true
			res.Detail = detail
			fmt.Fprintf(w, "✅ %s\n", detail)
		}
		passed[check.Name] = res.Passed
		report.Results = append(report.Results, res)
		d.logger.Debug("check finished", zap.String("check", check.Name), zap.Bool("passed", res.Passed))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "Summary")
	fmt.Fprintln(w, rule)
	for _, res := range report.Results {
		status := "✅ PASS"
		switch {
		case res.Skipped:
			status = "⏭️  SKIP (" + res.Detail + ")"
		case !res.Passed:
			status = "❌ FAIL"
		}
		fmt.Fprintf(w, "  %s: %s\n", res.Name, status)
	}
	fmt.Fprintln(w)

	if report.Passed() {
		fmt.Fprintln(w, "🎉 All checks passed! You're ready to create diagrams.")
	} else {
		fmt.Fprintln(w, "⚠️  Some checks failed. Please install missing prerequisites.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Quick install commands:")
		fmt.Fprintln(w, "  brew install graphviz     # macOS")
		fmt.Fprintln(w, "  pip install diagrams      # Python library")
	}
	fmt.Fprintln(w)

	return report
}

// unmet returns the first required check that has not passed, or "".
func unmet(requires []string, passed map[string]bool) string {
	for _, name := range requires {
		if !passed[name] {
			return name
		}
	}
	return ""
}

func (d *Doctor) checkPython(ctx context.Context) (string, error) {
	v, err := d.python.Version(ctx)
	if err != nil {
		return "", err
	}
	if !v.AtLeast(3, 9) {
		return "", fmt.Errorf("found Python %d.%d, need 3.9+", v.Major, v.Minor)
	}
	return "Python " + v.String(), nil
}

func (d *Doctor) checkGraphviz(ctx context.Context) (string, error) {
	if !d.graphviz.Available() {
		return "", errors.New("dot not found on PATH")
	}
	version, err := d.graphviz.Version(ctx)
	if err != nil {
		return "", err
	}
	return version, nil
}

const diagramsVersionCode = `import diagrams
print(getattr(diagrams, "__version__", "installed"))`

func (d *Doctor) checkDiagrams(ctx context.Context) (string, error) {
	out, err := d.python.Exec(ctx, "", diagramsVersionCode)
	if err != nil {
		return "", err
	}
	return "Version " + strings.TrimSpace(out), nil
}

const providersCode = `from diagrams.azure.integration import LogicApps, ServiceBus, APIManagement
from diagrams.azure.compute import FunctionApps
from diagrams.azure.database import CosmosDb
from diagrams.azure.storage import BlobStorage
from diagrams.azure.security import KeyVaults`

func (d *Doctor) checkProviders(ctx context.Context) (string, error) {
	if _, err := d.python.Exec(ctx, "", providersCode); err != nil {
		return "", err
	}
	return "All core providers available", nil
}

const generationCode = `from diagrams import Diagram
from diagrams.azure.integration import LogicApps
with Diagram("Test", show=False, filename="test"):
    LogicApps("Test")`

func (d *Doctor) checkGeneration(ctx context.Context) (string, error) {
	dir, err := os.MkdirTemp("", "archdiag-doctor-")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(dir)

	if _, err := d.python.Exec(ctx, dir, generationCode); err != nil {
		return "", err
	}
	if _, err := os.Stat(filepath.Join(dir, "test.png")); err != nil {
		return "", errors.New("diagram file not created")
	}
	return "Successfully generated test diagram", nil
}

func (d *Doctor) checkRendering(ctx context.Context) (string, error) {
	artifact, err := diagram.Build(diagram.Process, "Doctor", nil, diagram.Options{})
	if err != nil {
		return "", err
	}

	dir, err := os.MkdirTemp("", "archdiag-doctor-")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(dir)

	out, err := d.graphviz.Render(ctx, artifact.Body, filepath.Join(dir, "test"))
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(out); err != nil {
		return "", errors.New("rendered file not created")
	}
	return "Successfully rendered test diagram", nil
}
