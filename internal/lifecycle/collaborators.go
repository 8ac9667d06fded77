package lifecycle

import "context"

// Fetcher retrieves the text of a scrape source.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Cache stores downloaded installers by filename.
type Cache interface {
	CachedPath(filename string) string
	Exists(path string) bool
	Download(ctx context.Context, url, filename, referer string) error
	ListMatching(pattern string) ([]string, error)
	Remove(path string) error
	Verify(path, sha256 string) error
}

// Runner starts processes. The error is reserved for processes that could
// not be started; a failing process is reported through its exit code.
type Runner interface {
	Run(ctx context.Context, exe string, args []string) (int, error)
	RunShell(ctx context.Context, line string) (int, error)
}

// Registry reads uninstall command lines. A missing record is reported with
// an error wrapping registry.ErrNotFound.
type Registry interface {
	LookupUninstallString(key string) (string, error)
}

// Store persists the installed version of each package.
type Store interface {
	SaveInstalledVersion(ctx context.Context, pkg, version string) error
	DeleteInstalledVersion(ctx context.Context, pkg string) error
}
