// Package fetch retrieves the raw text that version patterns are matched
// against.
//
// Sources:
//   - http(s) URLs are fetched as page text by HTTPFetcher.
//   - github:owner/repo lists release tags, one per line, via GitHubFetcher.
//
// Any failure is reported as ErrUnavailable (wrapped with the cause) so that
// callers can treat a missing page as "no versions" rather than a fault.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnavailable indicates the text source could not be read.
var ErrUnavailable = errors.New("fetch: source unavailable")

// GitHubScheme prefixes scrape sources served by GitHubFetcher.
const GitHubScheme = "github:"

// Fetcher returns the text behind a source URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// MapFetcher serves text from memory, keyed by URL. Useful for tests and
// offline catalogs.
type MapFetcher struct {
	Pages map[string]string
}

// Fetch returns the page stored under url.
func (m MapFetcher) Fetch(_ context.Context, url string) (string, error) {
	text, ok := m.Pages[url]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnavailable, url)
	}
	return text, nil
}

// Router dispatches github: sources to GitHub and everything else to Web.
type Router struct {
	Web    Fetcher
	GitHub Fetcher
}

// Fetch picks the fetcher for url.
func (r Router) Fetch(ctx context.Context, url string) (string, error) {
	if strings.HasPrefix(url, GitHubScheme) {
		if r.GitHub == nil {
			return "", fmt.Errorf("%w: no github fetcher configured for %s", ErrUnavailable, url)
		}
		return r.GitHub.Fetch(ctx, url)
	}
	if r.Web == nil {
		return "", fmt.Errorf("%w: no web fetcher configured for %s", ErrUnavailable, url)
	}
	return r.Web.Fetch(ctx, url)
}
