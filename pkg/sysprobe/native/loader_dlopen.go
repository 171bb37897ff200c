//go:build darwin || freebsd || linux

package native

import (
	"fmt"

	"github.com/ebitengine/purego"
)

// dlLoader loads images through the platform dynamic loader without cgo.
type dlLoader struct{}

// DefaultLoader returns the process-wide dynamic loader.
func DefaultLoader() Loader {
	return dlLoader{}
}

func (dlLoader) Open(image string, flags OpenFlags) (Handle, error) {
	h, err := purego.Dlopen(image, int(flags))
	if err != nil {
		return 0, fmt.Errorf("%w: dlopen %s: %v", ErrImageUnavailable, image, err)
	}
	return Handle(h), nil
}

func (dlLoader) Lookup(h Handle, symbol string) (uintptr, error) {
	addr, err := purego.Dlsym(uintptr(h), symbol)
	if err != nil {
		return 0, fmt.Errorf("%w: dlsym %s: %v", ErrSymbolUnavailable, symbol, err)
	}
	return addr, nil
}
