// Package native locates native libraries at runtime and binds the
// symbols a capability needs.
//
// A Capability lists candidate images in fallback order. Resolve tries
// them strictly in that order and returns the first candidate whose image
// loads and exports every required symbol. Later candidates are never
// attempted once one succeeds. Candidates exist because the same
// interface ships under different image or archive-member names across
// OS releases.
//
// Loading a native image has process-wide effects. A successfully bound
// image is never unloaded, and resolving the same capability again (from
// any goroutine) simply loads it again, which the OS loader treats as a
// reference-count bump.
package native

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jamesainslie/sysprobe/pkg/sysprobe/logging"
)

var logger = logging.Get("native")

var (
	// ErrBindingUnavailable is returned when no candidate of a capability
	// could be bound.
	ErrBindingUnavailable = errors.New("no binding could be resolved")

	// ErrImageUnavailable is wrapped by loaders when an image does not
	// exist or cannot be loaded.
	ErrImageUnavailable = errors.New("native image unavailable")

	// ErrSymbolUnavailable is wrapped by loaders when a loaded image does
	// not export a required symbol.
	ErrSymbolUnavailable = errors.New("native symbol unavailable")
)

// Handle is an opaque reference to a loaded native image.
type Handle uintptr

// Loader opens native images and looks up their symbols.
//
// Errors meaning "not found or not loadable" must wrap ErrImageUnavailable
// or ErrSymbolUnavailable. Resolve moves on to the next candidate only for
// those; any other error stops resolution.
type Loader interface {
	Open(image string, flags OpenFlags) (Handle, error)
	Lookup(h Handle, symbol string) (uintptr, error)
}

// Candidate is one attempt at locating a capability.
type Candidate struct {
	// Image is a library path, optionally with an archive-member suffix
	// such as "libperfstat.a(shr_64.o)".
	Image string

	// Flags are passed unchanged to the loader.
	Flags OpenFlags
}

// Capability describes a logical native interface.
type Capability struct {
	// Name identifies the capability (e.g., "perfstat").
	Name string

	// Candidates are tried in order.
	Candidates []Candidate

	// Symbols must all resolve for a candidate to be accepted.
	Symbols []string
}

// Attempt records the outcome of one failed candidate.
type Attempt struct {
	Candidate Candidate
	Err       error
}

// BindingError reports that every candidate of a capability failed.
type BindingError struct {
	Capability string
	Attempts   []Attempt
}

// Error implements error.
func (e *BindingError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Capability, ErrBindingUnavailable)
	if len(e.Attempts) == 0 {
		b.WriteString(" (no candidates)")
		return b.String()
	}
	for _, a := range e.Attempts {
		fmt.Fprintf(&b, "; %s: %v", a.Candidate.Image, a.Err)
	}
	return b.String()
}

// Is reports ErrBindingUnavailable.
func (e *BindingError) Is(target error) bool {
	return target == ErrBindingUnavailable
}

// Binding is a resolved capability. The caller owns it for the duration
// of its queries; bindings are read-only after Resolve returns.
type Binding struct {
	capability string
	image      string
	flags      OpenFlags
	handle     Handle
	symbols    map[string]uintptr
}

// Capability returns the capability name.
func (b *Binding) Capability() string { return b.capability }

// Image returns the image that was bound.
func (b *Binding) Image() string { return b.image }

// Flags returns the open flags the image was loaded with.
func (b *Binding) Flags() OpenFlags { return b.flags }

// Handle returns the loader handle.
func (b *Binding) Handle() Handle { return b.handle }

// Symbol returns the address of a resolved symbol.
func (b *Binding) Symbol(name string) (uintptr, bool) {
	addr, ok := b.symbols[name]
	return addr, ok
}

// Symbols returns the resolved symbol names, sorted.
func (b *Binding) Symbols() []string {
	names := make([]string, 0, len(b.symbols))
	for name := range b.symbols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve binds capability using loader. It returns either a complete
// binding or an error; on exhaustion the error is a *BindingError.
func Resolve(loader Loader, capability Capability) (*Binding, error) {
	bindErr := &BindingError{Capability: capability.Name}

	for _, candidate := range capability.Candidates {
		binding, err := bind(loader, capability, candidate)
		if err == nil {
			logger.Debug("capability bound",
				"capability", capability.Name,
				"image", candidate.Image,
				"flags", int(candidate.Flags))
			return binding, nil
		}
		if !errors.Is(err, ErrImageUnavailable) && !errors.Is(err, ErrSymbolUnavailable) {
			return nil, fmt.Errorf("%s: binding %s: %w", capability.Name, candidate.Image, err)
		}

		logger.Debug("candidate unavailable",
			"capability", capability.Name,
			"image", candidate.Image,
			"err", err)
		bindErr.Attempts = append(bindErr.Attempts, Attempt{Candidate: candidate, Err: err})
	}

	return nil, bindErr
}

// Ensure makes sure capability is bound and returns the binding. It is
// safe to call repeatedly and concurrently; a capability that is already
// loaded binds again as a no-op at the OS level.
func Ensure(loader Loader, capability Capability) (*Binding, error) {
	return Resolve(loader, capability)
}

// bind opens one candidate and resolves every symbol of capability.
// A handle whose symbols did not all resolve is left loaded.
func bind(loader Loader, capability Capability, candidate Candidate) (*Binding, error) {
	handle, err := loader.Open(candidate.Image, candidate.Flags)
	if err != nil {
		return nil, err
	}

	symbols := make(map[string]uintptr, len(capability.Symbols))
	for _, name := range capability.Symbols {
		addr, err := loader.Lookup(handle, name)
		if err != nil {
			return nil, err
		}
		symbols[name] = addr
	}

	return &Binding{
		capability: capability.Name,
		image:      candidate.Image,
		flags:      candidate.Flags,
		handle:     handle,
		symbols:    symbols,
	}, nil
}
