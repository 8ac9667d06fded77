// Package catalog loads per-package configuration from a TOML file.
//
// A catalog maps package names to the templates that drive resolution and the
// install lifecycle:
//
//	[packages.firefox]
//	scrape   = "https://example.org/firefox/releases/"
//	version  = 'Firefox Setup ([0-9.]+)\.exe'
//	filename = "Firefox Setup #VERSION#.exe"
package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"appsnap/internal/fetch"
)

// ErrUnknownPackage is returned when a package is not in the catalog.
var ErrUnknownPackage = errors.New("catalog: unknown package")

// Package is the read-only configuration of one package.
type Package struct {
	Name        string `toml:"-"`
	Description string `toml:"description"`

	// Scrape is the page (or github:owner/repo source) listing versions.
	Scrape string `toml:"scrape"`
	// Version is the pattern matching the package's version strings.
	Version string `toml:"version"`

	Download string `toml:"download"`
	Filename string `toml:"filename"`
	Referer  string `toml:"referer"`
	SHA256   string `toml:"sha256"`

	InstParam   string `toml:"instparam"`
	ChInstDir   string `toml:"chinstdir"`
	Uninstall   string `toml:"uninstall"`
	UninstParam string `toml:"uninstparam"`

	// Upgrades reports whether a new version installs over the old one.
	// When false the old version is uninstalled first.
	Upgrades *bool `toml:"upgrades"`
}

// Versioned reports whether the package declares a scrape source and pattern.
func (p Package) Versioned() bool {
	return strings.TrimSpace(p.Scrape) != "" && strings.TrimSpace(p.Version) != ""
}

// UpgradesInPlace reports whether upgrades skip the uninstall step. Defaults
// to true when unset.
func (p Package) UpgradesInPlace() bool {
	return p.Upgrades == nil || *p.Upgrades
}

// VersionPattern compiles the package's version pattern.
func (p Package) VersionPattern() (*regexp.Regexp, error) {
	re, err := regexp.Compile(p.Version)
	if err != nil {
		return nil, fmt.Errorf("package %s: compile version pattern: %w", p.Name, err)
	}
	return re, nil
}

// scrapesGitHub reports whether versions come from a github:owner/repo
// source rather than a web page.
func (p Package) scrapesGitHub() bool {
	return strings.HasPrefix(p.Scrape, fetch.GitHubScheme)
}

// DownloadURL returns the download template, falling back to the scrape URL.
// A github: source is never a download URL.
func (p Package) DownloadURL() string {
	if p.Download != "" || p.scrapesGitHub() {
		return p.Download
	}
	return p.Scrape
}

// RefererURL returns the referer template, falling back to a web scrape URL
// and then to the download template.
func (p Package) RefererURL() string {
	if p.Referer != "" {
		return p.Referer
	}
	if p.Scrape != "" && !p.scrapesGitHub() {
		return p.Scrape
	}
	return p.Download
}

// Validate checks the fields every lifecycle operation depends on.
func (p Package) Validate() error {
	var problems []string
	if strings.TrimSpace(p.Filename) == "" {
		problems = append(problems, "filename is required")
	}
	switch {
	case p.DownloadURL() != "":
	case p.scrapesGitHub():
		problems = append(problems, "download is required with a github: scrape source")
	default:
		problems = append(problems, "download or scrape is required")
	}
	if strings.TrimSpace(p.Version) != "" {
		if _, err := regexp.Compile(p.Version); err != nil {
			problems = append(problems, fmt.Sprintf("invalid version pattern: %v", err))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("package %s: %s", p.Name, strings.Join(problems, "; "))
	}
	return nil
}

// Catalog is a set of package definitions keyed by name.
type Catalog struct {
	Packages map[string]Package `toml:"packages"`
}

// Load reads and validates a catalog file.
func Load(path string) (*Catalog, error) {
	//nolint:gosec // G304: catalog path comes from user configuration
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	cat, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return cat, nil
}

// Parse decodes and validates a catalog.
func Parse(r io.Reader) (*Catalog, error) {
	var cat Catalog
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(&cat); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("parse at line %d column %d: %w", row, col, err)
		}
		return nil, fmt.Errorf("parse: %w", err)
	}
	if cat.Packages == nil {
		cat.Packages = map[string]Package{}
	}
	for name, pkg := range cat.Packages {
		pkg.Name = name
		if err := pkg.Validate(); err != nil {
			return nil, err
		}
		cat.Packages[name] = pkg
	}
	return &cat, nil
}

// Get returns the named package.
func (c *Catalog) Get(name string) (Package, error) {
	pkg, ok := c.Packages[name]
	if !ok {
		return Package{}, fmt.Errorf("%w: %s", ErrUnknownPackage, name)
	}
	return pkg, nil
}

// Names returns the package names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.Packages))
	for name := range c.Packages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
