package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"

	"appsnap/internal/fetch"
)

type fakeCache struct {
	files      map[string]bool
	downloads  []string
	referers   []string
	urls       []string
	removed    []string
	failFetch  bool
	verifyErr  error
	listErr    error
	verifyArgs []string
}

func newFakeCache(files ...string) *fakeCache {
	c := &fakeCache{files: map[string]bool{}}
	for _, f := range files {
		c.files[c.CachedPath(f)] = true
	}
	return c
}

func (c *fakeCache) CachedPath(filename string) string {
	return path.Join("/cache", filename)
}

func (c *fakeCache) Exists(p string) bool {
	return c.files[p]
}

func (c *fakeCache) Download(_ context.Context, url, filename, referer string) error {
	c.urls = append(c.urls, url)
	c.referers = append(c.referers, referer)
	if c.failFetch {
		return errors.New("connection reset")
	}
	c.downloads = append(c.downloads, filename)
	c.files[c.CachedPath(filename)] = true
	return nil
}

func (c *fakeCache) ListMatching(pattern string) ([]string, error) {
	if c.listErr != nil {
		return nil, c.listErr
	}
	var out []string
	for p := range c.files {
		if ok, _ := path.Match(c.CachedPath(pattern), p); ok {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (c *fakeCache) Remove(p string) error {
	c.removed = append(c.removed, p)
	delete(c.files, p)
	return nil
}

func (c *fakeCache) Verify(p, sum string) error {
	c.verifyArgs = append(c.verifyArgs, p, sum)
	return c.verifyErr
}

type call struct {
	kind string
	exe  string
	args []string
}

type fakeRunner struct {
	calls     []call
	runCode   int
	shellCode int
	runErr    error
	log       *[]string
}

func (r *fakeRunner) Run(_ context.Context, exe string, args []string) (int, error) {
	r.calls = append(r.calls, call{kind: "run", exe: exe, args: args})
	if r.log != nil {
		*r.log = append(*r.log, "install")
	}
	return r.runCode, r.runErr
}

func (r *fakeRunner) RunShell(_ context.Context, line string) (int, error) {
	r.calls = append(r.calls, call{kind: "shell", exe: line})
	if r.log != nil {
		*r.log = append(*r.log, "uninstall")
	}
	return r.shellCode, nil
}

type fakeStore struct {
	versions map[string]string
	err      error
}

func newFakeStore() *fakeStore {
	return &fakeStore{versions: map[string]string{}}
}

func (s *fakeStore) SaveInstalledVersion(_ context.Context, pkg, version string) error {
	if s.err != nil {
		return s.err
	}
	s.versions[pkg] = version
	return nil
}

func (s *fakeStore) DeleteInstalledVersion(_ context.Context, pkg string) error {
	if s.err != nil {
		return s.err
	}
	delete(s.versions, pkg)
	return nil
}

type countingFetcher struct {
	pages map[string]string
	calls int
}

func (f *countingFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.calls++
	return fetch.MapFetcher{Pages: f.pages}.Fetch(ctx, url)
}

type brokenRegistry struct{}

func (brokenRegistry) LookupUninstallString(key string) (string, error) {
	return "", fmt.Errorf("open %s: access denied", key)
}
