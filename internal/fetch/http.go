package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// DefaultTimeout bounds one page request.
const DefaultTimeout = 30 * time.Second

// maxPageSize is the largest page accepted. Larger pages are rejected rather
// than truncated so a version list is never cut short.
const maxPageSize = 16 << 20

// HTTPFetcher reads page text over HTTP. Requests share a rate limiter so that
// concurrent resolutions do not hammer the same hosts.
type HTTPFetcher struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	maxSize    int64
}

// HTTPOption configures an HTTPFetcher.
type HTTPOption func(*HTTPFetcher)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(f *HTTPFetcher) {
		f.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) HTTPOption {
	return func(f *HTTPFetcher) {
		f.httpClient.Timeout = timeout
	}
}

// WithRate limits requests to perSecond, with a burst of one. A non-positive
// value disables limiting.
func WithRate(perSecond float64) HTTPOption {
	return func(f *HTTPFetcher) {
		if perSecond <= 0 {
			f.limiter = nil
			return
		}
		f.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) HTTPOption {
	return func(f *HTTPFetcher) {
		f.userAgent = ua
	}
}

// NewHTTPFetcher creates a page fetcher.
func NewHTTPFetcher(opts ...HTTPOption) *HTTPFetcher {
	f := &HTTPFetcher{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		userAgent:  "appsnap",
		maxSize:    maxPageSize,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the body of url as text.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("%w: rate limiter: %v", ErrUnavailable, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: create request: %v", ErrUnavailable, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s: status %d", ErrUnavailable, url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSize+1))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	if int64(len(body)) > f.maxSize {
		return "", fmt.Errorf("%w: %s: page exceeds %d bytes", ErrUnavailable, url, f.maxSize)
	}
	return string(body), nil
}
