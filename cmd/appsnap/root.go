package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"appsnap/internal/config"
	"appsnap/internal/debug"
	"appsnap/internal/fetch"
	"appsnap/internal/lifecycle"
	"appsnap/internal/registry"
)

type (
	fetcher         = fetch.Fetcher
	procRunner      = lifecycle.Runner
	uninstallReader = registry.Reader
)

type rootFlags struct {
	catalogPath string
	installDir  string
	cacheDir    string
	dbPath      string
	format      string
	concurrency int
	debug       bool
}

func newRootCmd(env *environment) *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "appsnap",
		Short:         "Resolve, download and install the latest version of applications",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := debug.Init(flags.debug); err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}
			if err := config.Initialize(); err != nil {
				return fmt.Errorf("initialize config: %w", err)
			}
			return config.ApplyOverrides(flags.overrides(cmd))
		},
	}
	cmd.SetVersionTemplate(versionString() + "\n")

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.catalogPath, "catalog", "", "Path to the package catalog (TOML)")
	pf.StringVar(&flags.installDir, "install-dir", "", "Root directory applications are installed under")
	pf.StringVar(&flags.cacheDir, "cache-dir", "", "Directory for downloaded installers")
	pf.StringVar(&flags.dbPath, "db-path", "", "Path to the installed-versions database")
	pf.StringVarP(&flags.format, "output", "o", "", "Output format (table, json, yaml)")
	pf.IntVar(&flags.concurrency, "concurrency", 0, "Packages resolved at once by check")
	pf.BoolVar(&flags.debug, "debug", false, "Write a debug log to ~/.appsnap/debug.log")

	cmd.AddCommand(
		newResolveCmd(env),
		newCheckCmd(env),
		newShowCmd(env),
		newDownloadCmd(env),
		newInstallCmd(env),
		newUninstallCmd(env),
		newUpgradeCmd(env),
		newVersionCmd(env),
	)
	return cmd
}

// overrides returns config values for flags set on the command line.
func (f *rootFlags) overrides(cmd *cobra.Command) map[string]any {
	out := map[string]any{}
	set := func(flag, key string, value any) {
		if cmd.Flags().Changed(flag) {
			out[key] = value
		}
	}
	set("catalog", config.KeyCatalogPath, strings.TrimSpace(f.catalogPath))
	set("install-dir", config.KeyInstallDir, strings.TrimSpace(f.installDir))
	set("cache-dir", config.KeyCacheDir, strings.TrimSpace(f.cacheDir))
	set("db-path", config.KeyDatabasePath, strings.TrimSpace(f.dbPath))
	set("output", config.KeyOutputFormat, strings.TrimSpace(f.format))
	set("concurrency", config.KeyConcurrency, f.concurrency)
	return out
}

// commandContext returns the command's context, falling back to Background
// when the command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
