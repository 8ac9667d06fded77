// Package template rewrites catalog templates by replacing version and path
// placeholders with concrete values.
package template

import (
	"path/filepath"
	"regexp"
	"strings"

	"appsnap/internal/version"
)

// Placeholder tokens recognised in catalog strings.
const (
	Version           = "#VERSION#"
	MajorVersion      = "#MAJOR_VERSION#"
	MajorMinorVersion = "#MAJORMINOR_VERSION#"
	DotlessVersion    = "#DOTLESS_VERSION#"
	DashToDotVersion  = "#DASHTODOT_VERSION#"
	InstallDir        = "#INSTALL_DIR#"
)

// VersionPlaceholders lists every token derived from the resolved version.
var VersionPlaceholders = []string{
	Version,
	MajorVersion,
	MajorMinorVersion,
	DotlessVersion,
	DashToDotVersion,
}

var (
	majorRegex      = regexp.MustCompile(`^[0-9]+`)
	majorMinorRegex = regexp.MustCompile(`^[0-9]+` + version.Delimiters + `[0-9]+`)
	delimiterRegex  = regexp.MustCompile(version.Delimiters)
)

// Values holds every derivation of one resolved version.
type Values struct {
	Version           string
	MajorVersion      string
	MajorMinorVersion string
	DotlessVersion    string
	DashToDotVersion  string
}

// derive computes the placeholder values for a resolved version. A version
// without a leading digit run has an empty MajorVersion; MajorMinorVersion
// falls back to the full version.
func derive(v string) Values {
	majorMinor := majorMinorRegex.FindString(v)
	if majorMinor == "" {
		majorMinor = v
	}
	return Values{
		Version:           v,
		MajorVersion:      majorRegex.FindString(v),
		MajorMinorVersion: majorMinor,
		DotlessVersion:    delimiterRegex.ReplaceAllString(v, ""),
		DashToDotVersion:  strings.ReplaceAll(v, "-", "."),
	}
}

// ReplaceVersion substitutes the version placeholders in s. It returns s
// unchanged when v is empty.
func ReplaceVersion(s, v string) string {
	if v == "" {
		return s
	}
	d := derive(v)
	return strings.NewReplacer(
		Version, d.Version,
		MajorVersion, d.MajorVersion,
		MajorMinorVersion, d.MajorMinorVersion,
		DotlessVersion, d.DotlessVersion,
		DashToDotVersion, d.DashToDotVersion,
	).Replace(s)
}

// InstallPath joins the install root with the package name.
func InstallPath(root, pkg string) string {
	return filepath.Join(root, pkg)
}

// ReplaceInstallDir substitutes #INSTALL_DIR# with the package's install path.
// It does not need a resolved version.
func ReplaceInstallDir(s, root, pkg string) string {
	if !strings.Contains(s, InstallDir) {
		return s
	}
	return strings.ReplaceAll(s, InstallDir, InstallPath(root, pkg))
}

// Glob turns a filename template into a glob pattern that matches every
// version of the file. Version placeholders become '*' and glob
// metacharacters in the literal text are escaped.
func Glob(filename string) string {
	var b strings.Builder
	for len(filename) > 0 {
		if token, ok := leadingPlaceholder(filename); ok {
			b.WriteByte('*')
			filename = filename[len(token):]
			continue
		}
		switch c := filename[0]; c {
		case '*', '?', '[':
			b.WriteByte('[')
			b.WriteByte(c)
			b.WriteByte(']')
		case '\\':
			// filepath.Match treats backslash as an escape except on Windows,
			// where it is the separator.
			if filepath.Separator != '\\' {
				b.WriteByte('\\')
			}
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
		filename = filename[1:]
	}
	return b.String()
}

func leadingPlaceholder(s string) (string, bool) {
	for _, token := range VersionPlaceholders {
		if strings.HasPrefix(s, token) {
			return token, true
		}
	}
	return "", false
}
