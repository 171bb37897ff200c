// Package perfstat binds the AIX performance-statistics library.
//
// Only the binding is handled here. The statistics records themselves are
// retrieved by callers through the resolved symbol addresses and are not
// interpreted by sysprobe.
package perfstat

import (
	"fmt"

	"github.com/jamesainslie/sysprobe/pkg/sysprobe/native"
)

// Library is a bound perfstat image.
type Library struct {
	binding *native.Binding
}

// Open resolves the perfstat capability with loader. When no candidate
// can be bound the error satisfies errors.Is(err, native.ErrBindingUnavailable).
func Open(loader native.Loader) (*Library, error) {
	binding, err := native.Ensure(loader, native.Perfstat())
	if err != nil {
		return nil, fmt.Errorf("opening perfstat: %w", err)
	}
	return &Library{binding: binding}, nil
}

// Image returns the archive member that was bound.
func (l *Library) Image() string {
	return l.binding.Image()
}

// Flags returns the loader options used.
func (l *Library) Flags() native.OpenFlags {
	return l.binding.Flags()
}

// Available reports whether symbol was resolved.
func (l *Library) Available(symbol string) bool {
	_, ok := l.binding.Symbol(symbol)
	return ok
}

// Symbol returns the address of a resolved perfstat entry point.
func (l *Library) Symbol(symbol string) (uintptr, bool) {
	return l.binding.Symbol(symbol)
}

// Symbols returns the resolved entry point names, sorted.
func (l *Library) Symbols() []string {
	return l.binding.Symbols()
}
