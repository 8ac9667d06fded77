package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"appsnap/internal/config"
	"appsnap/internal/fetch"
	"appsnap/internal/version"
)

// Version information - injected at build time via ldflags
var (
	Version   = "dev"
	Build     = "unknown"
	BuildTime = ""
)

// releaseSource lists appsnap's own releases.
const releaseSource = fetch.GitHubScheme + "appsnap/appsnap"

const updateCheckTimeout = 5 * time.Second

func versionString() string {
	var b strings.Builder
	fmt.Fprintf(&b, "appsnap version %s", Version)
	if Build != "unknown" && Build != "" {
		fmt.Fprintf(&b, " (build: %s)", Build)
	}
	if BuildTime != "" {
		fmt.Fprintf(&b, " [%s]", BuildTime)
	}
	return b.String()
}

// printVersion prints the version information
func printVersion(w io.Writer) {
	_, _ = fmt.Fprintln(w, appStyle.Render(versionString()))
	_, _ = fmt.Fprintf(w, "Go version: %s\n", runtime.Version())
	_, _ = fmt.Fprintf(w, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)

	if Version == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, setting := range info.Settings {
				if setting.Key == "vcs.revision" && len(setting.Value) > 7 {
					_, _ = fmt.Fprintf(w, "Commit: %s\n", setting.Value[:7])
					break
				}
			}
		}
	}
}

// newerRelease reports the newest release tag when it is newer than current.
// Tags are compared with the same resolver used for packages.
func newerRelease(ctx context.Context, f fetch.Fetcher, current string) (string, bool, error) {
	text, err := f.Fetch(ctx, releaseSource)
	if err != nil {
		return "", false, err
	}
	var tags []string
	for _, line := range strings.Split(text, "\n") {
		if tag := strings.TrimPrefix(strings.TrimSpace(line), "v"); tag != "" {
			tags = append(tags, tag)
		}
	}
	latest, ok := version.Resolve(tags)
	if !ok {
		return "", false, nil
	}
	current = strings.TrimPrefix(current, "v")
	if current == "dev" || current == "" {
		return latest, true, nil
	}
	winner, _ := version.Resolve([]string{current, latest})
	return latest, winner != current, nil
}

func newVersionCmd(env *environment) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printVersion(env.stdout)
			if !check {
				return nil
			}

			f := env.fetcher
			if f == nil {
				f = fetch.NewGitHubFetcher(&http.Client{Timeout: updateCheckTimeout}, config.GetString(config.KeyGitHubToken))
			}
			ctx, cancel := context.WithTimeout(commandContext(cmd), updateCheckTimeout)
			defer cancel()

			latest, newer, err := newerRelease(ctx, f, Version)
			switch {
			case err != nil:
				_, _ = fmt.Fprintf(env.stderr, "Warning: update check failed: %v\n", err)
			case newer:
				_, _ = fmt.Fprintln(env.stdout, okStyle.Render(fmt.Sprintf("A newer release is available: %s", latest)))
			default:
				_, _ = fmt.Fprintln(env.stdout, dimStyle.Render("appsnap is up to date."))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "Check GitHub for a newer release")
	return cmd
}
