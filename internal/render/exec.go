// Package render shells out to the external tools that turn generated
// sources into images: Graphviz for DOT and Python for pattern scripts.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const (
	// DefaultTimeout bounds every external command.
	DefaultTimeout = 60 * time.Second
)

var (
	// ErrNotInstalled is returned when a tool binary cannot be found on PATH.
	ErrNotInstalled = errors.New("not installed")
	// ErrTimeout is returned when a tool runs longer than its timeout.
	ErrTimeout = errors.New("timed out")
)

// lookPath is a test seam over exec.LookPath.
var lookPath = exec.LookPath

// result holds the captured output of a finished command.
type result struct {
	stdout string
	stderr string
}

// run executes binary with args, feeding stdin when non-empty.
func run(ctx context.Context, timeout time.Duration, dir, stdin, binary string, args ...string) (result, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, binary, args...)
	cmd.Dir = dir
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := result{stdout: stdout.String(), stderr: stderr.String()}
	if err != nil {
		if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
			return res, fmt.Errorf("%s %w after %s", binary, ErrTimeout, timeout)
		}
		if errors.Is(err, exec.ErrNotFound) {
			return res, fmt.Errorf("%s %w: %w", binary, ErrNotInstalled, err)
		}
		if msg := strings.TrimSpace(res.stderr); msg != "" {
			return res, fmt.Errorf("%s failed: %s", binary, msg)
		}
		return res, fmt.Errorf("%s failed: %w", binary, err)
	}
	return res, nil
}
