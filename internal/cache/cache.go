// Package cache stores downloaded installers in a local directory.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Error variables for cache-specific errors.
var (
	ErrDownloadFailed   = errors.New("download failed")
	ErrChecksumMismatch = errors.New("checksum verification failed")
	ErrInvalidFilename  = errors.New("invalid cache filename")
)

// Cache is a directory of downloaded files.
type Cache struct {
	dir        string
	httpClient *http.Client
	userAgent  string
}

// Option configures a Cache.
type Option func(*Cache)

// WithHTTPClient sets a custom HTTP client for downloads.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Cache) {
		c.httpClient = client
	}
}

// WithUserAgent sets the User-Agent header for downloads.
func WithUserAgent(ua string) Option {
	return func(c *Cache) {
		c.userAgent = ua
	}
}

// New creates a cache rooted at dir.
func New(dir string, opts ...Option) *Cache {
	c := &Cache{
		dir: dir,
		httpClient: &http.Client{
			Timeout: 0, // No timeout for downloads
		},
		userAgent: "appsnap",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// CachedPath returns where filename is stored in the cache.
func (c *Cache) CachedPath(filename string) string {
	return filepath.Join(c.dir, filename)
}

// Exists reports whether path is an existing regular file.
func (c *Cache) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// ListMatching returns cached files matching a glob pattern relative to the
// cache directory.
func (c *Cache) ListMatching(pattern string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(c.dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	return matches, nil
}

// Remove deletes a cached file. Missing files are not an error.
func (c *Cache) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

// Download fetches url into the cache as filename. The file is written to a
// temporary name first and renamed into place on success, so a failed
// download never leaves a partial file under filename.
func (c *Cache) Download(ctx context.Context, url, filename, referer string) error {
	if err := validateFilename(filename); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/octet-stream")
	req.Header.Set("User-Agent", c.userAgent)
	if referer != "" {
		req.Header.Set("Referer", referer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrDownloadFailed, resp.StatusCode)
	}

	//nolint:gosec // G301: cache directory needs standard permissions
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, ".download-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, c.CachedPath(filename)); err != nil {
		cleanup()
		return fmt.Errorf("move download into cache: %w", err)
	}
	return nil
}

func validateFilename(filename string) error {
	if strings.TrimSpace(filename) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidFilename)
	}
	if filepath.Base(filename) != filename || filename == "." || filename == ".." {
		return fmt.Errorf("%w: %q must not contain path separators", ErrInvalidFilename, filename)
	}
	return nil
}

// verifyChecksum verifies a file against an expected SHA256 checksum.
func verifyChecksum(path, expected string) error {
	//nolint:gosec // G304: Path comes from caller; this is intentional for checksum verification
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("hash file: %w", err)
	}

	actual := hex.EncodeToString(h.Sum(nil))
	if !strings.EqualFold(actual, strings.TrimSpace(expected)) {
		return fmt.Errorf("%w: expected %s, got %s", ErrChecksumMismatch, expected, actual)
	}

	return nil
}

// Verify checks a cached file against an expected SHA256 checksum.
func (c *Cache) Verify(path, expected string) error {
	return verifyChecksum(path, expected)
}
