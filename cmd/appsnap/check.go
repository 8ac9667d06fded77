package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"appsnap/internal/config"
	"appsnap/internal/lifecycle"
)

type checkResults []lifecycle.CheckResult

func (r checkResults) Header() []string {
	return []string{"PACKAGE", "INSTALLED", "LATEST", "STATE"}
}

func (r checkResults) Rows() [][]string {
	rows := make([][]string, len(r))
	for i, res := range r {
		installed := res.Installed
		if installed == "" {
			installed = "-"
		}
		state := string(res.State)
		switch res.State {
		case lifecycle.CheckOutdated:
			state = failStyle.Render(state)
		case lifecycle.CheckCurrent:
			state = okStyle.Render(state)
		}
		rows[i] = []string{res.Package, installed, res.Latest, state}
	}
	return rows
}

func newCheckCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "check [package]...",
		Short: "Compare installed versions with the latest available",
		Long: "Resolve every package (or the named ones) concurrently and report which\n" +
			"installed packages are outdated.",
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
			if err := a.openStore(ctx); err != nil {
				return err
			}
			records, err := a.store.List(ctx)
			if err != nil {
				return err
			}
			installed := make(map[string]string, len(records))
			for _, rec := range records {
				installed[rec.Package] = rec.Version
			}

			orchestrators := make([]*lifecycle.Orchestrator, len(pkgs))
			for i, pkg := range pkgs {
				orchestrators[i] = a.orchestrator(pkg)
			}

			prog := newProgress(env)
			prog.Status(fmt.Sprintf("Resolving %d packages...", len(pkgs)))
			results, err := lifecycle.Check(ctx, orchestrators, installed, config.GetInt(config.KeyConcurrency))
			prog.Stop()
			if err != nil {
				return err
			}
			return a.writer.Write(checkResults(results))
		},
	}
}
