//go:build linux

package mounts

import (
	"golang.org/x/sys/unix"

	"github.com/jamesainslie/sysprobe/pkg/sysprobe/nativetext"
)

// NativeWith returns the mount table querier using dec for text fields.
// Linux has no getfsstat(2); the table is read from /proc/self/mounts
// through the same two-call protocol.
func NativeWith(dec nativetext.Decoder) (Querier, error) {
	return Table[procMount]{
		Source:  procSource{procRoot: "/proc", statfs: unix.Statfs},
		Extract: extractProcMount,
		Text:    dec,
	}, nil
}

func extractProcMount(m *procMount) Raw {
	return Raw{
		From:      m.device,
		On:        m.mountPoint,
		FSType:    m.fsType,
		BlockSize: uint64(m.stat.Bsize),
		Blocks:    m.stat.Blocks,
		Free:      m.stat.Bfree,
		Avail:     m.stat.Bavail,
	}
}
