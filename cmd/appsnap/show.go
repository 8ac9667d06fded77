package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"appsnap/internal/catalog"
	"appsnap/internal/lifecycle"
	"appsnap/internal/template"
)

func newShowCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "show <package>",
		Short: "Describe a package with its templates filled in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(env)
			if err != nil {
				return err
			}
			defer a.close()

			pkgs, err := a.packages(args)
			if err != nil {
				return err
			}
			pkg := pkgs[0]

			prog := newProgress(env)
			prog.Status(fmt.Sprintf("Resolving %s...", pkg.Name))
			o := a.orchestrator(pkg)
			latest := o.Resolve(commandContext(cmd))
			prog.Stop()

			render := buildMarkdownRenderer(env.interactive != nil && env.interactive(), markdownWidth)
			_, err = fmt.Fprintln(env.stdout, render(describePackage(o, latest)))
			return err
		},
	}
}

// describePackage renders a package and its resolved templates as markdown.
func describePackage(o *lifecycle.Orchestrator, latest lifecycle.Latest) string {
	pkg := o.Package()
	v := ""
	if latest.Status == lifecycle.Resolved {
		v = latest.Version
	}
	fill := func(s string) string {
		return template.ReplaceVersion(s, v)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", pkg.Name)
	if desc := strings.TrimSpace(pkg.Description); desc != "" {
		b.WriteString(desc)
		b.WriteString("\n\n")
	}

	latestText := latest.String()
	if !latest.Usable() {
		latestText = "unknown"
		if latest.Err != nil {
			latestText += " (" + latest.Err.Error() + ")"
		}
	}

	b.WriteString("| Field | Value |\n|---|---|\n")
	row := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		fmt.Fprintf(&b, "| %s | `%s` |\n", name, strings.ReplaceAll(value, "|", `\|`))
	}
	row("Latest", latestText)
	row("Scrape", pkg.Scrape)
	row("Download", fill(pkg.DownloadURL()))
	row("Filename", fill(pkg.Filename))
	row("Referer", fill(pkg.RefererURL()))
	row("Install args", strings.Join(o.InstallArgs(), " "))
	row("Install dir", o.InstallDir())
	row("Uninstall key", fill(pkg.Uninstall))
	row("Upgrades in place", upgradeText(pkg))
	row("SHA256", pkg.SHA256)
	return b.String()
}

func upgradeText(pkg catalog.Package) string {
	if pkg.UpgradesInPlace() {
		return "yes"
	}
	return "no, uninstalls first"
}
