package fetch

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v33/github"
)

// GitHubFetcher lists a repository's release tags as newline separated text,
// newest first as returned by the API. Drafts are skipped.
type GitHubFetcher struct {
	client   *github.Client
	maxPages int
}

// NewGitHubFetcher constructs a GitHubFetcher. token may be empty for
// anonymous access; httpClient may be nil.
func NewGitHubFetcher(httpClient *http.Client, token string) *GitHubFetcher {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if token != "" {
		base := httpClient.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		clone := *httpClient
		clone.Transport = &tokenTransport{token: token, base: base}
		httpClient = &clone
	}
	return &GitHubFetcher{
		client:   github.NewClient(httpClient),
		maxPages: 3,
	}
}

// Fetch accepts sources of the form github:owner/repo.
func (g *GitHubFetcher) Fetch(ctx context.Context, source string) (string, error) {
	owner, repo, err := ParseGitHubSource(source)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var tags []string
	opts := &github.ListOptions{PerPage: 100}
	for page := 0; page < g.maxPages; page++ {
		releases, resp, err := g.client.Repositories.ListReleases(ctx, owner, repo, opts)
		if err != nil {
			return "", fmt.Errorf("%w: list releases for %s/%s: %v", ErrUnavailable, owner, repo, err)
		}
		for _, rel := range releases {
			if rel.GetDraft() {
				continue
			}
			tags = append(tags, rel.GetTagName())
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return strings.Join(tags, "\n"), nil
}

// ParseGitHubSource splits github:owner/repo.
func ParseGitHubSource(source string) (string, string, error) {
	rest := strings.TrimPrefix(source, GitHubScheme)
	owner, repo, ok := strings.Cut(rest, "/")
	if rest == source || !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", fmt.Errorf("invalid github source %q, want github:owner/repo", source)
	}
	return owner, repo, nil
}

type tokenTransport struct {
	token string
	base  http.RoundTripper
}

func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "token "+t.token)
	return t.base.RoundTrip(clone)
}
