package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"github.com/mattn/go-isatty"

	"appsnap/internal/debug"
)

func main() {
	runMain(os.Args, defaultEnvironment(), os.Exit)
}

// SilentExitError reports an exit code without emitting error output.
type SilentExitError struct {
	Code int
}

func (e SilentExitError) Error() string {
	return fmt.Sprintf("exit %d", e.Code)
}

// environment holds the process-level dependencies of the CLI. Nil
// collaborators are built from configuration.
type environment struct {
	stdout io.Writer
	stderr io.Writer

	fetcher  fetcher
	runner   procRunner
	registry uninstallReader

	copyToClipboard func(string) error
	interactive     func() bool
}

func defaultEnvironment() *environment {
	return &environment{
		stdout:          os.Stdout,
		stderr:          os.Stderr,
		copyToClipboard: clipboard.WriteAll,
		interactive: func() bool {
			fd := os.Stderr.Fd()
			return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
		},
	}
}

// execute runs the CLI command with the provided args.
func execute(args []string, env *environment) error {
	cmd := newRootCmd(env)
	if len(args) > 1 {
		cmd.SetArgs(args[1:])
	}
	cmd.SetOut(env.stdout)
	cmd.SetErr(env.stderr)
	return cmd.Execute()
}

// runMain executes the CLI and exits on failure.
func runMain(args []string, env *environment, exit func(int)) {
	err := execute(args, env)
	if err != nil && debug.Enabled() {
		debug.Error("command failed", "err", err)
	}
	debug.Close()
	if err == nil {
		return
	}
	var silent SilentExitError
	if errors.As(err, &silent) {
		exit(silent.Code)
		return
	}
	printError(env.stderr, err)
	exit(1)
}
