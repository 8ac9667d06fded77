//go:build !windows

package registry

import "fmt"

// System has no uninstall metadata outside Windows; every lookup misses.
type System struct{}

// NewSystem returns the platform Reader.
func NewSystem() Reader {
	return System{}
}

// LookupUninstallString always reports ErrNotFound.
func (System) LookupUninstallString(key string) (string, error) {
	return "", fmt.Errorf("%w: %s", ErrNotFound, key)
}
