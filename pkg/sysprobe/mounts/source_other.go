//go:build !darwin && !freebsd && !openbsd && !linux

package mounts

import "github.com/jamesainslie/sysprobe/pkg/sysprobe/nativetext"

// NativeWith reports ErrUnsupported on this platform.
func NativeWith(_ nativetext.Decoder) (Querier, error) {
	return nil, ErrUnsupported
}
