package platform

import "runtime"

// goosPlatforms maps runtime.GOOS values to platform ordinals.
// GOOS values with no counterpart in the enumeration are absent.
var goosPlatforms = map[string]Platform{
	"darwin":  MacOS,
	"ios":     MacOS,
	"linux":   Linux,
	"android": Android,
	"windows": Windows,
	"solaris": Solaris,
	"illumos": Solaris,
	"freebsd": FreeBSD,
	"openbsd": OpenBSD,
	"netbsd":  NetBSD,
	"aix":     AIX,
}

// FromGOOS returns the platform for a Go GOOS value, or Unknown.
func FromGOOS(goos string) Platform {
	if p, ok := goosPlatforms[goos]; ok {
		return p
	}
	return Unknown
}

// Current returns the platform the binary was built for.
func Current() Platform {
	return FromGOOS(runtime.GOOS)
}
