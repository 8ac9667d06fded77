// Package runner starts installer and uninstaller processes.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"appsnap/internal/debug"
)

// Runner executes processes and reports their exit codes. A non-nil error
// means the process could not be started at all.
type Runner struct {
	stdout io.Writer
	stderr io.Writer
}

// Option configures a Runner.
type Option func(*Runner)

// WithOutput redirects child stdout and stderr.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(r *Runner) {
		r.stdout = stdout
		r.stderr = stderr
	}
}

// New creates a Runner that inherits the current stdio.
func New(opts ...Option) *Runner {
	r := &Runner{
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run starts exe with args, waits for it and returns its exit code.
func (r *Runner) Run(ctx context.Context, exe string, args []string) (int, error) {
	debug.Debug("run", "exe", exe, "args", args)

	//nolint:gosec // G204: installer path and arguments come from the catalog
	cmd := exec.CommandContext(ctx, exe, args...)
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr

	return exitCode(cmd.Run(), exe)
}

// RunShell executes a command line through the platform shell and returns
// its exit code.
func (r *Runner) RunShell(ctx context.Context, line string) (int, error) {
	debug.Debug("run shell", "line", line)
	return r.runShell(ctx, line)
}

func exitCode(err error, what string) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, fmt.Errorf("start %s: %w", what, err)
}
