// Package platform maps integer OS-type codes to canonical platform
// descriptors. The table is fixed at init and never mutated, so every
// function here is safe for concurrent use.
//
// Basic usage:
//
//	d := platform.Describe(0)
//	fmt.Println(d.Name) // "macOS"
//
//	p := platform.Current()
//	fmt.Println(p) // e.g. "Linux"
package platform

import (
	"errors"
	"fmt"
	"strings"
)

// Platform is the ordinal of an operating system family.
type Platform int

// Platform ordinals. The order matches the OS-type codes reported by
// native platform detection and must not be changed.
const (
	MacOS Platform = iota
	Linux
	Windows
	Solaris
	FreeBSD
	OpenBSD
	WindowsCE
	AIX
	Android
	GNU
	KFreeBSD
	NetBSD

	// Unknown is the sentinel. Every ordinal outside [0, Unknown) maps here.
	Unknown
)

// ErrUnknownPlatform is returned by Parse when a name matches no platform.
var ErrUnknownPlatform = errors.New("unknown platform")

// Descriptor is the immutable identity of a platform.
type Descriptor struct {
	// Ordinal is the platform's position in the enumeration.
	Ordinal int `json:"ordinal" yaml:"ordinal"`

	// Name is the canonical display name (e.g., "macOS").
	Name string `json:"name" yaml:"name"`
}

// String returns the display name.
func (d Descriptor) String() string {
	return d.Name
}

// descriptors is indexed by ordinal. The last entry is the sentinel.
var descriptors = [...]Descriptor{
	MacOS:     {Ordinal: int(MacOS), Name: "macOS"},
	Linux:     {Ordinal: int(Linux), Name: "Linux"},
	Windows:   {Ordinal: int(Windows), Name: "Windows"},
	Solaris:   {Ordinal: int(Solaris), Name: "Solaris"},
	FreeBSD:   {Ordinal: int(FreeBSD), Name: "FreeBSD"},
	OpenBSD:   {Ordinal: int(OpenBSD), Name: "OpenBSD"},
	WindowsCE: {Ordinal: int(WindowsCE), Name: "Windows CE"},
	AIX:       {Ordinal: int(AIX), Name: "AIX"},
	Android:   {Ordinal: int(Android), Name: "Android"},
	GNU:       {Ordinal: int(GNU), Name: "GNU"},
	KFreeBSD:  {Ordinal: int(KFreeBSD), Name: "kFreeBSD"},
	NetBSD:    {Ordinal: int(NetBSD), Name: "NetBSD"},
	Unknown:   {Ordinal: int(Unknown), Name: "Unknown"},
}

// Describe returns the descriptor for ordinal. It never fails: negative
// or out-of-range ordinals yield the Unknown descriptor.
func Describe(ordinal int) Descriptor {
	if ordinal < 0 || ordinal >= int(Unknown) {
		return descriptors[Unknown]
	}
	return descriptors[ordinal]
}

// Name returns Describe(ordinal).Name.
func Name(ordinal int) string {
	return Describe(ordinal).Name
}

// All returns the valid descriptors in ordinal order, excluding the
// sentinel. The returned slice is a copy.
func All() []Descriptor {
	all := make([]Descriptor, int(Unknown))
	copy(all, descriptors[:Unknown])
	return all
}

// Descriptor returns the descriptor for p.
func (p Platform) Descriptor() Descriptor {
	return Describe(int(p))
}

// String returns the display name of p.
func (p Platform) String() string {
	return Name(int(p))
}

// Parse looks up a platform by display name, ignoring case.
// "Unknown" itself parses to the sentinel.
func Parse(name string) (Platform, error) {
	for _, d := range descriptors {
		if strings.EqualFold(d.Name, strings.TrimSpace(name)) {
			return Platform(d.Ordinal), nil
		}
	}
	return Unknown, fmt.Errorf("%w: %q", ErrUnknownPlatform, name)
}
