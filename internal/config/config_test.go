package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
)

func TestInitializeLoadsDefaults(t *testing.T) {
	reset()
	t.Cleanup(reset)

	tmp := t.TempDir()
	userCfg := filepath.Join(tmp, "user.yaml")

	if err := Initialize(WithWorkingDir(tmp), WithUserConfig(userCfg)); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	if got := GetInt(KeyConcurrency); got != DefaultConcurrency {
		t.Fatalf("expected default %s to be %d, got %d", KeyConcurrency, DefaultConcurrency, got)
	}
	if got := GetDuration(KeyFetchTimeout); got != DefaultFetchTimeout {
		t.Fatalf("expected default %s to be %s, got %s", KeyFetchTimeout, DefaultFetchTimeout, got)
	}
	if got := GetString(KeyOutputFormat); got != "table" {
		t.Fatalf("expected default %s to be table, got %q", KeyOutputFormat, got)
	}
	if got := GetPath(KeyCatalogPath); !strings.HasSuffix(got, filepath.Join(configDirName, "catalog.toml")) {
		t.Fatalf("unexpected default catalog path %q", got)
	}
	if got := GetFloat(KeyFetchRate); got != DefaultFetchRate {
		t.Fatalf("expected default %s to be %v, got %v", KeyFetchRate, DefaultFetchRate, got)
	}
}

func TestProjectConfigOverridesUser(t *testing.T) {
	reset()
	t.Cleanup(reset)

	tmp := t.TempDir()
	projectDir := filepath.Join(tmp, "repo")
	mustMkdir(t, filepath.Join(projectDir, "nested", "deeper"))
	writeFile(t, filepath.Join(projectDir, configDirName, configFileName), `
install-dir: /project/apps
database:
  path: /project/installed.db
`)

	userCfg := filepath.Join(tmp, "user.yaml")
	writeFile(t, userCfg, `
install-dir: /user/apps
cache-dir: /user/cache
database:
  path: /user/installed.db
`)

	if err := Initialize(
		WithWorkingDir(filepath.Join(projectDir, "nested", "deeper")),
		WithUserConfig(userCfg),
	); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	if got := GetString(KeyInstallDir); got != "/project/apps" {
		t.Fatalf("expected project config to win for %s, got %q", KeyInstallDir, got)
	}
	if got := GetString(KeyDatabasePath); got != "/project/installed.db" {
		t.Fatalf("expected project database path, got %q", got)
	}
	if got := GetString(KeyCacheDir); got != "/user/cache" {
		t.Fatalf("expected user cache dir to survive merge, got %q", got)
	}
}

func TestEnvironmentAndOverridesPrecedence(t *testing.T) {
	reset()
	t.Cleanup(reset)

	tmp := t.TempDir()
	projectCfg := filepath.Join(tmp, configDirName, configFileName)
	writeFile(t, projectCfg, `
fetch:
  timeout: 10s
  user-agent: project-agent
`)

	t.Setenv("APPSNAP_FETCH_TIMEOUT", "45s")
	t.Setenv("APPSNAP_FETCH_USER_AGENT", "env-agent")

	if err := Initialize(
		WithWorkingDir(tmp),
		WithUserConfig(filepath.Join(tmp, "missing.yaml")),
	); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	if got := GetDuration(KeyFetchTimeout); got != 45*time.Second {
		t.Fatalf("expected env override for %s, got %s", KeyFetchTimeout, got)
	}
	if got := GetString(KeyFetchUserAgent); got != "env-agent" {
		t.Fatalf("expected env override for %s, got %q", KeyFetchUserAgent, got)
	}

	if err := ApplyOverrides(map[string]any{KeyFetchUserAgent: "flag-agent"}); err != nil {
		t.Fatalf("ApplyOverrides returned error: %v", err)
	}
	if got := GetString(KeyFetchUserAgent); got != "flag-agent" {
		t.Fatalf("expected CLI override for %s, got %q", KeyFetchUserAgent, got)
	}
}

func TestGetPathExpandsHome(t *testing.T) {
	reset()
	t.Cleanup(reset)

	tmp := t.TempDir()
	if err := Initialize(WithWorkingDir(tmp), WithUserConfig(filepath.Join(tmp, "user.yaml"))); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}
	if err := ApplyOverrides(map[string]any{KeyCacheDir: "~/cache"}); err != nil {
		t.Fatalf("ApplyOverrides returned error: %v", err)
	}

	home, err := homedir.Dir()
	if err != nil {
		t.Fatalf("homedir: %v", err)
	}
	if got, want := GetPath(KeyCacheDir), filepath.Join(home, "cache"); got != want {
		t.Fatalf("GetPath(%s) = %q, want %q", KeyCacheDir, got, want)
	}
}

func TestConfigPathIsDirectory(t *testing.T) {
	reset()
	t.Cleanup(reset)

	tmp := t.TempDir()
	userCfg := filepath.Join(tmp, "user.yaml")
	mustMkdir(t, userCfg)

	err := Initialize(WithWorkingDir(tmp), WithUserConfig(userCfg))
	if err == nil || !strings.Contains(err.Error(), "is a directory") {
		t.Fatalf("expected directory error, got %v", err)
	}
}

func mustMkdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	mustMkdir(t, filepath.Dir(path))
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write file %s: %v", path, err)
	}
}
