//go:build windows

package registry

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"

	"appsnap/internal/debug"
)

// uninstallRoots are searched in order; 32-bit installers on 64-bit Windows
// register under WOW6432Node.
var uninstallRoots = []string{
	`Software\Microsoft\Windows\CurrentVersion\Uninstall`,
	`Software\WOW6432Node\Microsoft\Windows\CurrentVersion\Uninstall`,
}

// System reads HKEY_LOCAL_MACHINE.
type System struct{}

// NewSystem returns a Reader backed by the Windows registry.
func NewSystem() Reader {
	return System{}
}

// LookupUninstallString returns the UninstallString value for key.
func (System) LookupUninstallString(key string) (string, error) {
	for _, root := range uninstallRoots {
		path := root + `\` + key
		s, err := readString(path, UninstallValue)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, registry.ErrNotExist) {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		debug.Debug("uninstall key not present", "path", path)
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, key)
}

func readString(path, name string) (string, error) {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, path, registry.QUERY_VALUE)
	if err != nil {
		return "", err
	}
	defer func() { _ = k.Close() }()

	s, _, err := k.GetStringValue(name)
	return s, err
}
