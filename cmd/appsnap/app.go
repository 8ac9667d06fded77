package main

import (
	"context"
	"fmt"
	"net/http"

	"appsnap/internal/cache"
	"appsnap/internal/catalog"
	"appsnap/internal/config"
	appErrors "appsnap/internal/errors"
	"appsnap/internal/fetch"
	"appsnap/internal/lifecycle"
	"appsnap/internal/output"
	"appsnap/internal/registry"
	"appsnap/internal/runner"
	"appsnap/internal/store"
)

// app wires configuration into the lifecycle collaborators for one command.
type app struct {
	env        *environment
	catalog    *catalog.Catalog
	fetcher    fetch.Fetcher
	cache      *cache.Cache
	runner     lifecycle.Runner
	registry   registry.Reader
	store      *store.Store
	installDir string
	writer     *output.Writer
}

func newApp(env *environment) (*app, error) {
	catalogPath := config.GetPath(config.KeyCatalogPath)
	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return nil, appErrors.New(appErrors.CodeConfigurationError, "load catalog", err)
	}

	format, err := output.ParseFormat(config.GetString(config.KeyOutputFormat))
	if err != nil {
		return nil, appErrors.New(appErrors.CodeConfigurationError, err.Error(), err)
	}

	userAgent := config.GetString(config.KeyFetchUserAgent)

	a := &app{
		env:        env,
		catalog:    cat,
		fetcher:    env.fetcher,
		cache:      cache.New(config.GetPath(config.KeyCacheDir), cache.WithUserAgent(userAgent)),
		runner:     env.runner,
		registry:   env.registry,
		installDir: config.GetPath(config.KeyInstallDir),
		writer:     output.NewWriter(format, env.stdout),
	}
	if a.fetcher == nil {
		timeout := config.GetDuration(config.KeyFetchTimeout)
		a.fetcher = fetch.Router{
			Web: fetch.NewHTTPFetcher(
				fetch.WithTimeout(timeout),
				fetch.WithRate(config.GetFloat(config.KeyFetchRate)),
				fetch.WithUserAgent(userAgent),
			),
			GitHub: fetch.NewGitHubFetcher(&http.Client{Timeout: timeout}, config.GetString(config.KeyGitHubToken)),
		}
	}
	if a.runner == nil {
		a.runner = runner.New(runner.WithOutput(env.stdout, env.stderr))
	}
	if a.registry == nil {
		a.registry = registry.NewSystem()
	}
	return a, nil
}

// openStore opens the installed-versions database.
func (a *app) openStore(ctx context.Context) error {
	if a.store != nil {
		return nil
	}
	s, err := store.Open(ctx, config.GetPath(config.KeyDatabasePath))
	if err != nil {
		return appErrors.New(appErrors.CodeStoreError, "open installed-versions database", err)
	}
	a.store = s
	return nil
}

func (a *app) close() {
	if a.store != nil {
		_ = a.store.Close()
	}
}

// packages resolves package names, defaulting to the whole catalog.
func (a *app) packages(names []string) ([]catalog.Package, error) {
	if len(names) == 0 {
		names = a.catalog.Names()
	}
	pkgs := make([]catalog.Package, 0, len(names))
	for _, name := range names {
		pkg, err := a.catalog.Get(name)
		if err != nil {
			return nil, appErrors.New(appErrors.CodeNotFound, fmt.Sprintf("unknown package %q", name), err)
		}
		pkgs = append(pkgs, pkg)
	}
	return pkgs, nil
}

// orchestrator creates a fresh orchestrator for pkg.
func (a *app) orchestrator(pkg catalog.Package) *lifecycle.Orchestrator {
	deps := lifecycle.Deps{
		Fetcher:  a.fetcher,
		Cache:    a.cache,
		Runner:   a.runner,
		Registry: a.registry,
	}
	if a.store != nil {
		deps.Store = a.store
	}
	return lifecycle.New(pkg, a.installDir, deps)
}
