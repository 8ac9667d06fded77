// Package lifecycle resolves a package's latest version and drives its
// download, install, uninstall and upgrade steps.
//
// An Orchestrator serves one package. It resolves the latest version at most
// once and reuses the result for every later step, so a package's lifecycle
// never mixes versions. Expected failures such as an unreachable page, a
// failed download or a non-zero installer exit are reported as a false
// result and logged. Only registry and store faults are returned as errors.
package lifecycle

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"appsnap/internal/catalog"
	"appsnap/internal/debug"
	appErrors "appsnap/internal/errors"
	"appsnap/internal/registry"
	"appsnap/internal/template"
	"appsnap/internal/version"
)

// Deps bundles the collaborators an Orchestrator drives.
type Deps struct {
	Fetcher  Fetcher
	Cache    Cache
	Runner   Runner
	Registry Registry
	Store    Store
}

// Orchestrator runs the lifecycle of one package. It is not safe for
// concurrent use; give each package its own Orchestrator.
type Orchestrator struct {
	pkg         catalog.Package
	installRoot string
	deps        Deps
	latest      Latest
}

// New creates an Orchestrator for pkg. installRoot is the directory under
// which #INSTALL_DIR# places the package.
func New(pkg catalog.Package, installRoot string, deps Deps) *Orchestrator {
	return &Orchestrator{
		pkg:         pkg,
		installRoot: installRoot,
		deps:        deps,
	}
}

// Package returns the package configuration.
func (o *Orchestrator) Package() catalog.Package {
	return o.pkg
}

// Latest returns the cached resolution without triggering one.
func (o *Orchestrator) Latest() Latest {
	return o.latest
}

// Resolve determines the package's latest version. The first call fetches
// and resolves; later calls return the cached outcome.
func (o *Orchestrator) Resolve(ctx context.Context) Latest {
	if o.latest.Status != Unresolved {
		return o.latest
	}
	o.latest = o.resolve(ctx)
	switch o.latest.Status {
	case Resolved:
		debug.Debug("resolved latest version", "package", o.pkg.Name, "version", o.latest.Version)
	case Failed:
		debug.Warn("could not determine version", "package", o.pkg.Name, "err", o.latest.Err)
	}
	return o.latest
}

func (o *Orchestrator) resolve(ctx context.Context) Latest {
	if !o.pkg.Versioned() {
		return Latest{Status: Unversioned}
	}
	pattern, err := o.pkg.VersionPattern()
	if err != nil {
		return failed(appErrors.CodeConfigurationError, "invalid version pattern", err)
	}
	text, err := o.deps.Fetcher.Fetch(ctx, o.pkg.Scrape)
	if err != nil {
		return failed(appErrors.CodeUnavailable, "scrape source unavailable", err)
	}
	raws := version.Extract(text, pattern)
	v, ok := version.Resolve(raws)
	if !ok {
		return failed(appErrors.CodeVersionNotFound,
			fmt.Sprintf("no version found among %d candidates", len(raws)), nil)
	}
	return Latest{Status: Resolved, Version: v}
}

func failed(code appErrors.Code, msg string, err error) Latest {
	return Latest{Status: Failed, Err: appErrors.New(code, msg, err)}
}

// substitute replaces version placeholders with the resolved version. It is
// a no-op until a concrete version is known.
func (o *Orchestrator) substitute(s string) string {
	if o.latest.Status != Resolved {
		return s
	}
	return template.ReplaceVersion(s, o.latest.Version)
}

// substituteAll replaces version and install directory placeholders.
func (o *Orchestrator) substituteAll(s string) string {
	return template.ReplaceInstallDir(o.substitute(s), o.installRoot, o.pkg.Name)
}

// InstallDir returns the directory #INSTALL_DIR# expands to.
func (o *Orchestrator) InstallDir() string {
	return template.InstallPath(o.installRoot, o.pkg.Name)
}

// Download makes sure the installer for the latest version is in the cache
// and returns its path. A cached copy is reused; otherwise older cached
// versions are removed before downloading.
func (o *Orchestrator) Download(ctx context.Context) (string, bool) {
	if latest := o.Resolve(ctx); !latest.Usable() {
		return "", false
	}

	url := o.substitute(o.pkg.DownloadURL())
	filename := o.substitute(o.pkg.Filename)
	referer := o.substitute(o.pkg.RefererURL())

	path := o.deps.Cache.CachedPath(filename)
	if o.deps.Cache.Exists(path) {
		debug.Debug("using cached installer", "package", o.pkg.Name, "path", path)
		return path, true
	}

	o.removeStale()

	debug.Info("downloading", "package", o.pkg.Name, "url", url, "filename", filename)
	if err := o.deps.Cache.Download(ctx, url, filename, referer); err != nil {
		debug.Warn("download failed", "package", o.pkg.Name, "url", url, "err", err)
		return "", false
	}

	if sum := strings.TrimSpace(o.pkg.SHA256); sum != "" {
		if err := o.deps.Cache.Verify(path, sum); err != nil {
			debug.Warn("checksum mismatch", "package", o.pkg.Name, "path", path, "err", err)
			if rmErr := o.deps.Cache.Remove(path); rmErr != nil {
				debug.Warn("could not remove rejected download", "path", path, "err", rmErr)
			}
			return "", false
		}
	}
	return path, true
}

// removeStale deletes cached installers of any version of this package.
func (o *Orchestrator) removeStale() {
	pattern := template.Glob(o.pkg.Filename)
	matches, err := o.deps.Cache.ListMatching(pattern)
	if err != nil {
		debug.Warn("could not list cached installers", "package", o.pkg.Name, "pattern", pattern, "err", err)
		return
	}
	for _, path := range matches {
		debug.Debug("removing stale installer", "package", o.pkg.Name, "path", path)
		if err := o.deps.Cache.Remove(path); err != nil {
			debug.Warn("could not remove stale installer", "path", path, "err", err)
		}
	}
}

// InstallArgs returns the installer arguments with placeholders substituted.
// Empty parameters are omitted.
func (o *Orchestrator) InstallArgs() []string {
	var args []string
	for _, param := range []string{o.pkg.InstParam, o.pkg.ChInstDir} {
		if strings.TrimSpace(param) == "" {
			continue
		}
		args = append(args, o.substituteAll(param))
	}
	return args
}

// Install downloads the latest installer if needed, runs it and records the
// installed version.
func (o *Orchestrator) Install(ctx context.Context) (bool, error) {
	path, ok := o.Download(ctx)
	if !ok {
		return false, nil
	}

	args := o.InstallArgs()
	debug.Info("installing", "package", o.pkg.Name, "installer", path, "args", args)
	code, err := o.deps.Runner.Run(ctx, path, args)
	if err != nil {
		debug.Warn("installer could not start", "package", o.pkg.Name, "err", err)
		return false, nil
	}
	if code != 0 {
		debug.Warn("installer failed", "package", o.pkg.Name, "exit", code)
		return false, nil
	}

	if err := o.deps.Store.SaveInstalledVersion(ctx, o.pkg.Name, o.latest.String()); err != nil {
		return false, appErrors.New(appErrors.CodeStoreError, "record installed version", err)
	}
	return true, nil
}

// UninstallCommand returns the shell command line for uninstalling, built
// from the registry record.
func (o *Orchestrator) UninstallCommand(uninstallString string) string {
	line := NormalizeUninstallString(uninstallString)
	if param := o.substituteAll(o.pkg.UninstParam); param != "" {
		line += " " + param
	}
	return strings.TrimSpace(line)
}

// Uninstall looks up the package's uninstall record and runs it. The record
// key may contain version placeholders, so resolution is attempted first,
// but uninstall proceeds with the key as written when resolution fails.
func (o *Orchestrator) Uninstall(ctx context.Context) (bool, error) {
	o.Resolve(ctx)

	key := o.substitute(o.pkg.Uninstall)
	if strings.TrimSpace(key) == "" {
		debug.Warn("no uninstall key configured", "package", o.pkg.Name)
		return false, nil
	}

	uninstallString, err := o.deps.Registry.LookupUninstallString(key)
	if err != nil {
		if stderrors.Is(err, registry.ErrNotFound) {
			debug.Warn("no uninstall record", "package", o.pkg.Name, "key", key)
			return false, nil
		}
		return false, appErrors.New(appErrors.CodeRegistryError, "read uninstall record", err)
	}

	line := o.UninstallCommand(uninstallString)
	debug.Info("uninstalling", "package", o.pkg.Name, "command", line)
	code, err := o.deps.Runner.RunShell(ctx, line)
	if err != nil {
		debug.Warn("uninstaller could not start", "package", o.pkg.Name, "err", err)
		return false, nil
	}
	if code != 0 {
		debug.Warn("uninstaller failed", "package", o.pkg.Name, "exit", code)
		return false, nil
	}

	if err := o.deps.Store.DeleteInstalledVersion(ctx, o.pkg.Name); err != nil {
		return false, appErrors.New(appErrors.CodeStoreError, "clear installed version", err)
	}
	return true, nil
}

// Upgrade installs the latest version. Packages that cannot upgrade in place
// are uninstalled first, and install is skipped if that fails.
func (o *Orchestrator) Upgrade(ctx context.Context) (bool, error) {
	if !o.pkg.UpgradesInPlace() {
		ok, err := o.Uninstall(ctx)
		if err != nil || !ok {
			return false, err
		}
	}
	return o.Install(ctx)
}

// NormalizeUninstallString quotes the executable of an unquoted uninstall
// command line, taking everything up to the first ".exe" as the path. A line
// without ".exe" is quoted whole.
func NormalizeUninstallString(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || s[0] == '"' {
		return s
	}
	i := strings.Index(strings.ToLower(s), ".exe")
	if i < 0 {
		return `"` + s + `"`
	}
	end := i + len(".exe")
	return `"` + s[:end] + `"` + s[end:]
}
