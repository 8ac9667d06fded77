//go:build !windows

package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// runShell interprets line with POSIX shell quoting rules.
func (r *Runner) runShell(ctx context.Context, line string) (int, error) {
	prog, err := syntax.NewParser().Parse(strings.NewReader(line), "command")
	if err != nil {
		return -1, fmt.Errorf("parse command line: %w", err)
	}

	sh, err := interp.New(
		interp.Env(expand.ListEnviron(os.Environ()...)),
		interp.StdIO(nil, r.stdout, r.stderr),
	)
	if err != nil {
		return -1, fmt.Errorf("create interpreter: %w", err)
	}

	err = sh.Run(ctx, prog)
	if err == nil {
		return 0, nil
	}
	var status interp.ExitStatus
	if errors.As(err, &status) {
		return int(status), nil
	}
	return -1, fmt.Errorf("run command line: %w", err)
}
