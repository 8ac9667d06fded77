// Package registry reads uninstall metadata recorded by installers.
package registry

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no uninstall record exists for a key.
var ErrNotFound = errors.New("registry: uninstall record not found")

// UninstallValue is the value holding the uninstall command line.
const UninstallValue = "UninstallString"

// Reader looks up the uninstall command line recorded under a key name.
// A missing record yields ErrNotFound; any other error means the metadata
// store itself could not be read.
type Reader interface {
	LookupUninstallString(key string) (string, error)
}

// MapReader is an in-memory Reader keyed by uninstall key name.
type MapReader map[string]string

// LookupUninstallString returns the command line stored under key.
func (m MapReader) LookupUninstallString(key string) (string, error) {
	s, ok := m[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return s, nil
}
