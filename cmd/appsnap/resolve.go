package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"appsnap/internal/lifecycle"
)

type resolveResult struct {
	Package string `json:"package" yaml:"package"`
	Version string `json:"version" yaml:"version"`
	Status  string `json:"status" yaml:"status"`
	Reason  string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

type resolveResults []resolveResult

func (r resolveResults) Header() []string {
	return []string{"PACKAGE", "LATEST", "STATUS"}
}

func (r resolveResults) Rows() [][]string {
	rows := make([][]string, len(r))
	for i, res := range r {
		status := res.Status
		if res.Reason != "" {
			status += ": " + res.Reason
		}
		rows[i] = []string{res.Package, res.Version, status}
	}
	return rows
}

func newResolveCmd(env *environment) *cobra.Command {
	var copyVersion bool

	cmd := &cobra.Command{
		Use:   "resolve <package>...",
		Short: "Print the latest available version of packages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			a, err := newApp(env)
			if err != nil {
				return err
			}
			defer a.close()

			pkgs, err := a.packages(args)
			if err != nil {
				return err
			}

			prog := newProgress(env)
			results := make(resolveResults, 0, len(pkgs))
			failed := false
			for _, pkg := range pkgs {
				prog.Status(fmt.Sprintf("Resolving %s...", pkg.Name))
				latest := a.orchestrator(pkg).Resolve(ctx)
				res := resolveResult{
					Package: pkg.Name,
					Version: latest.String(),
					Status:  latest.Status.String(),
				}
				if latest.Err != nil {
					res.Reason = latest.Err.Error()
				}
				if !latest.Usable() {
					failed = true
				}
				results = append(results, res)
			}
			prog.Stop()

			if err := a.writer.Write(results); err != nil {
				return err
			}

			if copyVersion {
				if err := copyResolved(env, results); err != nil {
					return err
				}
			}
			if failed {
				return SilentExitError{Code: 1}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&copyVersion, "copy", false, "Copy the resolved version to the clipboard")
	return cmd
}

// copyResolved puts the resolved versions on the clipboard, one per line.
func copyResolved(env *environment, results resolveResults) error {
	var versions []string
	for _, res := range results {
		if res.Status == lifecycle.Resolved.String() {
			versions = append(versions, res.Version)
		}
	}
	if len(versions) == 0 || env.copyToClipboard == nil {
		return nil
	}
	text := strings.Join(versions, "\n")
	if err := env.copyToClipboard(text); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	_, _ = fmt.Fprintln(env.stderr, dimStyle.Render(fmt.Sprintf("Copied '%s' to clipboard.", text)))
	return nil
}
