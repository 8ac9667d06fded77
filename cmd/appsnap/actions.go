package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"appsnap/internal/debug"
	"appsnap/internal/lifecycle"
)

type actionResult struct {
	Package string `json:"package" yaml:"package"`
	Action  string `json:"action" yaml:"action"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	OK      bool   `json:"ok" yaml:"ok"`
	Detail  string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

type actionResults []actionResult

func (r actionResults) Header() []string {
	return []string{"PACKAGE", "ACTION", "VERSION", "RESULT", "DETAIL"}
}

func (r actionResults) Rows() [][]string {
	rows := make([][]string, len(r))
	for i, res := range r {
		result := failStyle.Render("failed")
		if res.OK {
			result = okStyle.Render("ok")
		}
		rows[i] = []string{res.Package, res.Action, res.Version, result, res.Detail}
	}
	return rows
}

// action runs one lifecycle step. A non-nil error aborts the command.
type action func(ctx context.Context, o *lifecycle.Orchestrator) (ok bool, detail string, err error)

type actionSpec struct {
	use       string
	short     string
	verb      string
	needStore bool
	// spawns is set for steps that run installers or uninstallers sharing
	// the terminal.
	spawns    bool
	run       action
}

func newActionCmd(env *environment, step actionSpec) *cobra.Command {
	return &cobra.Command{
		Use:   step.use,
		Short: step.short,
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
			if step.needStore {
				if err := a.openStore(ctx); err != nil {
					return err
				}
			}

			prog := newStepProgress(env, step.spawns)
			results := make(actionResults, 0, len(pkgs))
			failed := false
			for _, pkg := range pkgs {
				prog.Status(fmt.Sprintf("%s %s...", step.verb, pkg.Name))
				o := a.orchestrator(pkg)
				ok, detail, err := step.run(ctx, o)
				if err != nil {
					prog.Stop()
					return fmt.Errorf("%s %s: %w", cmd.Name(), pkg.Name, err)
				}
				if !ok {
					failed = true
					if detail == "" {
						detail = failureDetail(o.Latest())
					}
				}
				results = append(results, actionResult{
					Package: pkg.Name,
					Action:  cmd.Name(),
					Version: o.Latest().String(),
					OK:      ok,
					Detail:  detail,
				})
			}
			prog.Stop()

			if err := a.writer.Write(results); err != nil {
				return err
			}
			if failed {
				return SilentExitError{Code: 1}
			}
			return nil
		},
	}
}

// failureDetail explains a failed step; resolution problems take priority.
func failureDetail(latest lifecycle.Latest) string {
	if !latest.Usable() && latest.Err != nil {
		return latest.Err.Error()
	}
	if debug.Enabled() {
		if path, err := debug.GetLogPath(); err == nil {
			return "see " + path
		}
	}
	return "see warnings above"
}

func newDownloadCmd(env *environment) *cobra.Command {
	return newActionCmd(env, actionSpec{
		use:   "download <package>...",
		short: "Download the latest installer into the cache",
		verb:  "Downloading",
		run: func(ctx context.Context, o *lifecycle.Orchestrator) (bool, string, error) {
			path, ok := o.Download(ctx)
			return ok, path, nil
		},
	})
}

func newInstallCmd(env *environment) *cobra.Command {
	return newActionCmd(env, actionSpec{
		use:       "install <package>...",
		short:     "Download and run the latest installer",
		verb:      "Installing",
		needStore: true,
		spawns:    true,
		run: func(ctx context.Context, o *lifecycle.Orchestrator) (bool, string, error) {
			ok, err := o.Install(ctx)
			return ok, "", err
		},
	})
}

func newUninstallCmd(env *environment) *cobra.Command {
	return newActionCmd(env, actionSpec{
		use:       "uninstall <package>...",
		short:     "Run the uninstaller recorded by the installed version",
		verb:      "Uninstalling",
		needStore: true,
		spawns:    true,
		run: func(ctx context.Context, o *lifecycle.Orchestrator) (bool, string, error) {
			ok, err := o.Uninstall(ctx)
			return ok, "", err
		},
	})
}

func newUpgradeCmd(env *environment) *cobra.Command {
	return newActionCmd(env, actionSpec{
		use:       "upgrade <package>...",
		short:     "Install the latest version, uninstalling first where required",
		verb:      "Upgrading",
		needStore: true,
		spawns:    true,
		run: func(ctx context.Context, o *lifecycle.Orchestrator) (bool, string, error) {
			ok, err := o.Upgrade(ctx)
			return ok, "", err
		},
	})
}
