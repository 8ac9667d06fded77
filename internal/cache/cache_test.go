package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestDownload(t *testing.T) {
	var gotReferer string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReferer = r.Header.Get("Referer")
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("installer bytes"))
	}))
	defer server.Close()

	dir := filepath.Join(t.TempDir(), "cache")
	c := New(dir)

	err := c.Download(context.Background(), server.URL+"/setup.exe", "setup-1.0.exe", "https://example.org/page")
	if err != nil {
		t.Fatalf("Download() error: %v", err)
	}
	if gotReferer != "https://example.org/page" {
		t.Errorf("Referer = %q", gotReferer)
	}

	path := c.CachedPath("setup-1.0.exe")
	if !c.Exists(path) {
		t.Fatalf("expected %s to exist", path)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "installer bytes" {
		t.Fatalf("cached content = %q, %v", data, err)
	}

	err = c.Download(context.Background(), server.URL+"/missing", "other.exe", "")
	if !errors.Is(err, ErrDownloadFailed) {
		t.Fatalf("Download(missing) error = %v, want ErrDownloadFailed", err)
	}
	if c.Exists(c.CachedPath("other.exe")) {
		t.Error("failed download must not leave a file behind")
	}

	leftovers, _ := c.ListMatching(".download-*")
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}

func TestDownloadRejectsPaths(t *testing.T) {
	c := New(t.TempDir())
	for _, name := range []string{"", "../escape.exe", filepath.Join("sub", "x.exe")} {
		if err := c.Download(context.Background(), "http://127.0.0.1:1/", name, ""); !errors.Is(err, ErrInvalidFilename) {
			t.Errorf("Download(%q) error = %v, want ErrInvalidFilename", name, err)
		}
	}
}

func TestListMatchingAndRemove(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)
	for _, name := range []string{"foo-1.0.exe", "foo-1.1.exe", "foobar-1.0.exe", "bar-1.0.exe"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	matches, err := c.ListMatching("foo-*.exe")
	if err != nil {
		t.Fatalf("ListMatching() error: %v", err)
	}
	sort.Strings(matches)
	want := []string{filepath.Join(dir, "foo-1.0.exe"), filepath.Join(dir, "foo-1.1.exe")}
	if len(matches) != 2 || matches[0] != want[0] || matches[1] != want[1] {
		t.Fatalf("ListMatching() = %v, want %v", matches, want)
	}

	for _, m := range matches {
		if err := c.Remove(m); err != nil {
			t.Fatalf("Remove(%s) error: %v", m, err)
		}
	}
	if err := c.Remove(filepath.Join(dir, "foo-1.0.exe")); err != nil {
		t.Errorf("Remove(missing) should be a no-op, got %v", err)
	}
	if !c.Exists(filepath.Join(dir, "foobar-1.0.exe")) {
		t.Error("unrelated file was removed")
	}
}

func TestVerifyChecksumFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	content := []byte("test content")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("create test file: %v", err)
	}
	sum := sha256.Sum256(content)
	expected := hex.EncodeToString(sum[:])

	if err := verifyChecksum(path, expected); err != nil {
		t.Errorf("verifyChecksum() error: %v", err)
	}
	if err := verifyChecksum(path, "deadbeef"); !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("verifyChecksum(wrong) error = %v, want ErrChecksumMismatch", err)
	}
	if err := verifyChecksum(filepath.Join(t.TempDir(), "missing"), expected); err == nil {
		t.Error("verifyChecksum(missing) should fail")
	}
}
