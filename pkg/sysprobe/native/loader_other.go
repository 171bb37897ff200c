//go:build !darwin && !freebsd && !linux && !(aix && cgo)

package native

import (
	"errors"
	"fmt"
)

// unsupportedLoader fails every open. It keeps Resolve's contract intact
// on platforms without a usable dynamic loader binding.
type unsupportedLoader struct{}

// DefaultLoader returns a loader that reports every image as unavailable.
func DefaultLoader() Loader {
	return unsupportedLoader{}
}

func (unsupportedLoader) Open(image string, _ OpenFlags) (Handle, error) {
	return 0, fmt.Errorf("%w: %s: %w", ErrImageUnavailable, image, errors.ErrUnsupported)
}

func (unsupportedLoader) Lookup(_ Handle, symbol string) (uintptr, error) {
	return 0, fmt.Errorf("%w: %s: %w", ErrSymbolUnavailable, symbol, errors.ErrUnsupported)
}
