//go:build windows

package runner

import (
	"context"
	"os/exec"
	"syscall"
)

// runShell hands line to cmd.exe untouched. Uninstall strings are written for
// cmd quoting rules, including unescaped backslashes.
func (r *Runner) runShell(ctx context.Context, line string) (int, error) {
	//nolint:gosec // G204: command line comes from the uninstall registry record
	cmd := exec.CommandContext(ctx, "cmd.exe")
	cmd.SysProcAttr = &syscall.SysProcAttr{CmdLine: `/S /C "` + line + `"`}
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr
	return exitCode(cmd.Run(), "cmd.exe")
}
