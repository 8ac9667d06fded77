package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	KeyInstallDir  = "install-dir"
	KeyCacheDir    = "cache-dir"
	KeyConcurrency = "concurrency"

	KeyDatabasePath   = "database.path"
	KeyCatalogPath    = "catalog.path"
	KeyFetchTimeout   = "fetch.timeout"
	KeyFetchRate      = "fetch.rate"
	KeyFetchUserAgent = "fetch.user-agent"
	KeyGitHubToken    = "github.token"
	KeyOutputFormat   = "output.format"
)

const (
	// DefaultConcurrency bounds how many packages are resolved at once.
	DefaultConcurrency = 4
	// DefaultFetchTimeout bounds a single page or download request.
	DefaultFetchTimeout = 30 * time.Second
	// DefaultFetchRate is the number of requests per second across all fetches.
	DefaultFetchRate = 4.0
	// DefaultUserAgent is sent with every HTTP request.
	DefaultUserAgent = "appsnap"

	configDirName  = ".appsnap"
	configFileName = "config.yaml"
	envPrefix      = "APPSNAP"
)

type initSettings struct {
	workingDir     string
	userConfigPath string
}

// Option configures Initialize behaviour. Useful for tests to override paths.
type Option func(*initSettings)

// WithWorkingDir overrides the directory where project config discovery starts.
func WithWorkingDir(dir string) Option {
	return func(cfg *initSettings) {
		cfg.workingDir = dir
	}
}

// WithUserConfig overrides the default user config path.
func WithUserConfig(path string) Option {
	return func(cfg *initSettings) {
		cfg.userConfigPath = path
	}
}

var (
	configOnce sync.Once
	configMu   sync.RWMutex
	configInst *viper.Viper
	initErr    error
)

// Initialize loads configuration using the precedence:
// defaults < user config < project config < environment variables < overrides.
func Initialize(opts ...Option) error {
	configOnce.Do(func() {
		settings := initSettings{}
		for _, opt := range opts {
			opt(&settings)
		}
		initErr = load(settings)
	})
	return initErr
}

// ApplyOverrides injects values typically coming from CLI flags.
func ApplyOverrides(overrides map[string]any) error {
	if len(overrides) == 0 {
		return nil
	}
	if err := Initialize(); err != nil {
		return err
	}
	configMu.Lock()
	defer configMu.Unlock()
	if configInst == nil {
		return errNotInitialized
	}
	for k, v := range overrides {
		configInst.Set(k, v)
	}
	return nil
}

var errNotInitialized = errors.New("configuration not initialized")

// get reads key through read, returning the zero value when configuration
// could not be loaded.
func get[T any](key string, read func(*viper.Viper, string) T) T {
	if err := Initialize(); err != nil {
		var zero T
		return zero
	}
	configMu.RLock()
	defer configMu.RUnlock()
	if configInst == nil {
		var zero T
		return zero
	}
	return read(configInst, key)
}

// GetString fetches a string configuration value, initializing on demand.
func GetString(key string) string {
	return get(key, (*viper.Viper).GetString)
}

// GetInt fetches an integer configuration value, initializing on demand.
func GetInt(key string) int {
	return get(key, (*viper.Viper).GetInt)
}

// GetFloat fetches a float configuration value, initializing on demand.
func GetFloat(key string) float64 {
	return get(key, (*viper.Viper).GetFloat64)
}

// GetDuration fetches a duration configuration value, initializing on demand.
func GetDuration(key string) time.Duration {
	return get(key, (*viper.Viper).GetDuration)
}

// GetPath fetches a path value and expands a leading '~'.
func GetPath(key string) string {
	raw := strings.TrimSpace(GetString(key))
	if raw == "" {
		return ""
	}
	expanded, err := homedir.Expand(raw)
	if err != nil {
		return raw
	}
	return expanded
}

// layer is one YAML file merged over the defaults.
type layer struct {
	name string
	path string
}

func load(settings initSettings) error {
	workingDir := strings.TrimSpace(settings.workingDir)
	if workingDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("determine working directory: %w", err)
		}
		workingDir = wd
	}

	userPath := strings.TrimSpace(settings.userConfigPath)
	if userPath == "" {
		home, err := homedir.Dir()
		if err != nil {
			return fmt.Errorf("determine user home: %w", err)
		}
		userPath = filepath.Join(home, configDirName, configFileName)
	}
	projectPath, err := discoverProjectConfig(workingDir)
	if err != nil {
		return err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if err := setDefaults(v); err != nil {
		return err
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for _, l := range []layer{{"user", userPath}, {"project", projectPath}} {
		if err := mergeLayer(v, l.path); err != nil {
			return fmt.Errorf("load %s config: %w", l.name, err)
		}
	}

	configMu.Lock()
	defer configMu.Unlock()
	configInst = v
	return nil
}

// mergeLayer merges the YAML file at path into v. Missing and empty files
// are skipped.
func mergeLayer(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	//nolint:gosec // G304: reads the user and project config files by design of the CLI
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		return fmt.Errorf("read %s: %w", path, err)
	case len(bytes.TrimSpace(data)) == 0:
		return nil
	}
	if err := v.MergeConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// discoverProjectConfig walks from dir towards the root looking for
// .appsnap/config.yaml. It returns "" when none exists.
func discoverProjectConfig(dir string) (string, error) {
	for {
		candidate := filepath.Join(dir, configDirName, configFileName)
		info, err := os.Stat(candidate)
		switch {
		case err == nil && info.IsDir():
			return "", fmt.Errorf("config path %s is a directory", candidate)
		case err == nil:
			return candidate, nil
		case !errors.Is(err, fs.ErrNotExist):
			return "", fmt.Errorf("stat %s: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func setDefaults(v *viper.Viper) error {
	home, err := homedir.Dir()
	if err != nil {
		return fmt.Errorf("determine user home: %w", err)
	}
	base := filepath.Join(home, configDirName)

	v.SetDefault(KeyInstallDir, filepath.Join(home, "Apps"))
	v.SetDefault(KeyCacheDir, filepath.Join(base, "cache"))
	v.SetDefault(KeyConcurrency, DefaultConcurrency)
	v.SetDefault(KeyDatabasePath, filepath.Join(base, "installed.db"))
	v.SetDefault(KeyCatalogPath, filepath.Join(base, "catalog.toml"))
	v.SetDefault(KeyFetchTimeout, DefaultFetchTimeout)
	v.SetDefault(KeyFetchRate, DefaultFetchRate)
	v.SetDefault(KeyFetchUserAgent, DefaultUserAgent)
	v.SetDefault(KeyGitHubToken, "")
	v.SetDefault(KeyOutputFormat, "table")
	return nil
}

// reset clears package state for tests.
func reset() {
	configMu.Lock()
	defer configMu.Unlock()
	configInst = nil
	initErr = nil
	configOnce = sync.Once{}
}

// ResetForTesting clears package state for tests in other packages.
// Returns a cleanup function that should be deferred.
func ResetForTesting(t interface{ TempDir() string }) func() {
	reset()
	tmp := t.TempDir()
	_ = Initialize(WithWorkingDir(tmp), WithUserConfig(filepath.Join(tmp, "user.yaml")))
	return reset
}
