//go:build freebsd

package mounts

import (
	"golang.org/x/sys/unix"

	"github.com/jamesainslie/sysprobe/pkg/sysprobe/nativetext"
)

// statfsSource calls getfsstat(2). x/sys derives the byte size from the
// slice, so bufsize is implied by len(buf).
type statfsSource struct{}

func (statfsSource) Getfsstat(buf []unix.Statfs_t, _ int, flags int) (int, error) {
	return unix.Getfsstat(buf, flags)
}

func extractStatfs(s *unix.Statfs_t) Raw {
	avail := uint64(0)
	if s.Bavail > 0 {
		avail = uint64(s.Bavail)
	}
	return Raw{
		From:      s.Mntfromname[:],
		On:        s.Mntonname[:],
		FSType:    s.Fstypename[:],
		BlockSize: s.Bsize,
		Blocks:    s.Blocks,
		Free:      s.Bfree,
		Avail:     avail,
	}
}

// NativeWith returns the mount table querier using dec for text fields.
func NativeWith(dec nativetext.Decoder) (Querier, error) {
	return Table[unix.Statfs_t]{
		Source:  statfsSource{},
		Extract: extractStatfs,
		Text:    dec,
	}, nil
}
