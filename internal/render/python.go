package render

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Python runs generated pattern scripts and probes the interpreter.
type Python struct {
	Binary  string        // defaults to "python3"
	Timeout time.Duration // defaults to DefaultTimeout
}

// PythonVersion is a parsed interpreter version.
type PythonVersion struct {
	Major int
	Minor int
	Patch int
}

func (v PythonVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// AtLeast reports whether v is major.minor or newer.
func (v PythonVersion) AtLeast(major, minor int) bool {
	if v.Major != major {
		return v.Major > major
	}
	return v.Minor >= minor
}

var pythonVersionRe = regexp.MustCompile(`Python (\d+)\.(\d+)(?:\.(\d+))?`)

// ParsePythonVersion parses `python --version` output such as "Python 3.11.4".
func ParsePythonVersion(out string) (PythonVersion, error) {
	m := pythonVersionRe.FindStringSubmatch(out)
	if m == nil {
		return PythonVersion{}, fmt.Errorf("unrecognised version output %q", strings.TrimSpace(out))
	}
	var v PythonVersion
	v.Major, _ = strconv.Atoi(m[1])
	v.Minor, _ = strconv.Atoi(m[2])
	if m[3] != "" {
		v.Patch, _ = strconv.Atoi(m[3])
	}
	return v, nil
}

func (p *Python) binary() string {
	if p.Binary == "" {
		return "python3"
	}
	return p.Binary
}

// Available reports whether the interpreter is on PATH.
func (p *Python) Available() bool {
	_, err := lookPath(p.binary())
	return err == nil
}

// Version runs `python --version`. Old interpreters print it on stderr.
func (p *Python) Version(ctx context.Context) (PythonVersion, error) {
	res, err := run(ctx, p.Timeout, "", "", p.binary(), "--version")
	if err != nil {
		return PythonVersion{}, err
	}
	return ParsePythonVersion(res.stdout + res.stderr)
}

// Import checks that module can be imported.
func (p *Python) Import(ctx context.Context, module string) error {
	if _, err := run(ctx, p.Timeout, "", "", p.binary(), "-c", "import "+module); err != nil {
		return fmt.Errorf("import %s: %w", module, err)
	}
	return nil
}

// Exec runs inline code with -c in dir and returns its stdout.
func (p *Python) Exec(ctx context.Context, dir, code string) (string, error) {
	res, err := run(ctx, p.Timeout, dir, "", p.binary(), "-c", code)
	if err != nil {
		return "", err
	}
	return res.stdout, nil
}

// RunScript executes a script from its own directory so relative output
// filenames land next to it.
func (p *Python) RunScript(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if _, err := run(ctx, p.Timeout, filepath.Dir(abs), "", p.binary(), abs); err != nil {
		return fmt.Errorf("failed to run %s: %w", path, err)
	}
	return nil
}
