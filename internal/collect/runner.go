// Package collect invokes the project's type-checker and linter and
// parses their output into diagnostic records.
package collect

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// ToolResult captures one subprocess invocation. A nonzero exit code is
// data, not failure: compilers exit nonzero whenever findings exist.
type ToolResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Combined returns stdout followed by stderr; some tools split their
// report across both streams.
func (r ToolResult) Combined() string {
	if r.Stderr == "" {
		return r.Stdout
	}
	if r.Stdout == "" {
		return r.Stderr
	}
	return r.Stdout + "\n" + r.Stderr
}

// Runner runs an external tool in a directory. Implemented by ExecRunner
// for real subprocesses and by fakes in tests.
type Runner interface {
	Run(ctx context.Context, dir string, argv []string) (ToolResult, error)
}

// ErrToolMissing marks a binary that could not be started at all. This is
// fatal for collection, unlike nonzero exits or timeouts.
var ErrToolMissing = errors.New("tool binary missing")

// ErrToolTimeout marks a tool that exceeded its deadline. The caller
// treats this as that one tool failing, not the whole run.
var ErrToolTimeout = errors.New("tool timed out")

// ExecRunner runs tools as blocking subprocesses with a bounded timeout.
type ExecRunner struct {
	Timeout time.Duration
}

func (e ExecRunner) Run(ctx context.Context, dir string, argv []string) (ToolResult, error) {
	if len(argv) == 0 {
		return ToolResult{}, fmt.Errorf("collect: empty command")
	}
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := ToolResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return res, fmt.Errorf("%w: %s", ErrToolTimeout, argv[0])
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		// не запустился вовсе — бинаря нет или нет прав
		return res, fmt.Errorf("%w: %s: %v", ErrToolMissing, argv[0], err)
	}
	return res, nil
}
