// Package mounts reads the kernel's filesystem mount table through the
// two-call getfsstat protocol and normalizes it into a device to
// mount-point map.
//
// # Protocol
//
// The native interface cannot return a result of unknown length in one
// call, so every query makes two:
//
//  1. A sizing call with no buffer, zero size and SizingFlags returns the
//     number of mounted filesystems.
//  2. A fill call with a buffer of exactly that many records, its byte
//     size, and PopulateFlags fills in the records and returns how many
//     it wrote.
//
// # Snapshot semantics
//
// Queries are best-effort snapshots. A filesystem mounted or unmounted
// between the two calls is not reconciled: the fill call's count is
// authoritative and nothing past it is read. Callers that need a
// consistent view must keep mount activity quiescent themselves.
package mounts

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"github.com/jamesainslie/sysprobe/pkg/sysprobe/logging"
	"github.com/jamesainslie/sysprobe/pkg/sysprobe/nativetext"
)

var logger = logging.Get("mounts")

// Flags for the two native calls.
const (
	// SizingFlags is passed with the empty sizing call.
	SizingFlags = 0

	// PopulateFlags requests that the records be filled in.
	PopulateFlags = 16
)

// DevicePrefix is stripped from device names before they are used as keys.
const DevicePrefix = "/dev/"

var (
	// ErrNativeCallFailed wraps errors returned by the sizing or fill call.
	ErrNativeCallFailed = errors.New("native query failed")

	// ErrUnsupported is returned by Native on platforms without a mount
	// table source.
	ErrUnsupported = errors.New("mount table query not supported on this platform")
)

// Source is the native getfsstat surface for record type R.
//
// With a nil buf and zero bufsize it returns the number of available
// records. Otherwise it fills at most len(buf) records and returns how
// many were written.
type Source[R any] interface {
	Getfsstat(buf []R, bufsize int, flags int) (int, error)
}

// Raw holds the fields of one native record that the query uses.
// Text fields are native NUL-terminated byte arrays.
type Raw struct {
	From      []byte
	On        []byte
	FSType    []byte
	BlockSize uint64
	Blocks    uint64
	Free      uint64
	Avail     uint64
}

// Record is one decoded mount table entry.
type Record struct {
	// Device is the source device with DevicePrefix removed.
	Device string `json:"device" yaml:"device"`

	// MountPoint is the absolute mount path.
	MountPoint string `json:"mount_point" yaml:"mount_point"`

	// FSType is the filesystem type name (e.g., "apfs").
	FSType string `json:"fs_type" yaml:"fs_type"`

	// Total, Free and Avail are sizes in bytes. Avail is the space
	// available to unprivileged users.
	Total uint64 `json:"total" yaml:"total"`
	Free  uint64 `json:"free" yaml:"free"`
	Avail uint64 `json:"avail" yaml:"avail"`
}

// MountMap maps a normalized device identifier to its mount point.
type MountMap map[string]string

// Querier issues fresh mount table queries.
type Querier interface {
	// Records returns the decoded entries in native order.
	Records() ([]Record, error)

	// Names returns the same entries as Records, but sizes may be zero
	// when the source can skip looking them up.
	Names() ([]Record, error)

	// QueryAll returns the device to mount-point map.
	QueryAll() (MountMap, error)
}

// namesSource is implemented by sources that can fill records without
// per-mount size lookups.
type namesSource[R any] interface {
	NamesOnly() Source[R]
}

// Table runs the two-call protocol against a Source and decodes its records.
// A Table holds no state between calls and is safe for concurrent use if
// its Source is.
type Table[R any] struct {
	Source  Source[R]
	Extract func(*R) Raw
	Text    nativetext.Decoder
}

var _ Querier = Table[struct{}]{}

// QueryAll returns device to mount-point mappings. When the native table
// reports the same device more than once, the later entry wins.
func (t Table[R]) QueryAll() (MountMap, error) {
	records, err := t.Names()
	if err != nil {
		return nil, err
	}

	return Map(records), nil
}

// Records performs one sizing call and, when anything is mounted, one
// fill call, then decodes the filled records.
func (t Table[R]) Records() ([]Record, error) {
	return t.read(t.Source)
}

// Names is Records without sizes on sources that can skip them.
func (t Table[R]) Names() ([]Record, error) {
	src := t.Source
	if n, ok := src.(namesSource[R]); ok {
		src = n.NamesOnly()
	}
	return t.read(src)
}

func (t Table[R]) read(src Source[R]) ([]Record, error) {
	count, err := src.Getfsstat(nil, 0, SizingFlags)
	if err != nil {
		return nil, fmt.Errorf("%w: sizing call: %w", ErrNativeCallFailed, err)
	}
	if count <= 0 {
		logger.Debug("mount table empty")
		return []Record{}, nil
	}

	buf := make([]R, count)
	recordSize := int(unsafe.Sizeof(buf[0]))

	filled, err := src.Getfsstat(buf, count*recordSize, PopulateFlags)
	if err != nil {
		return nil, fmt.Errorf("%w: fill call: %w", ErrNativeCallFailed, err)
	}
	if filled != count {
		logger.Debug("mount table changed between calls", "sized", count, "filled", filled)
	}
	filled = max(min(filled, count), 0)

	records := make([]Record, 0, filled)
	for i := range buf[:filled] {
		record, err := t.decode(t.Extract(&buf[i]))
		if err != nil {
			return nil, fmt.Errorf("mount record %d: %w", i, err)
		}
		records = append(records, record)
	}

	logger.Debug("mount table read", "count", len(records))
	return records, nil
}

func (t Table[R]) decode(raw Raw) (Record, error) {
	from, err := t.Text.Decode(raw.From)
	if err != nil {
		return Record{}, fmt.Errorf("device: %w", err)
	}
	on, err := t.Text.Decode(raw.On)
	if err != nil {
		return Record{}, fmt.Errorf("mount point: %w", err)
	}
	fsType, err := t.Text.Decode(raw.FSType)
	if err != nil {
		return Record{}, fmt.Errorf("filesystem type: %w", err)
	}

	return Record{
		Device:     strings.TrimPrefix(from, DevicePrefix),
		MountPoint: on,
		FSType:     fsType,
		Total:      raw.Blocks * raw.BlockSize,
		Free:       raw.Free * raw.BlockSize,
		Avail:      raw.Avail * raw.BlockSize,
	}, nil
}

// Native returns the mount table querier for the running platform.
func Native() (Querier, error) {
	return NativeWith(nativetext.Decoder{})
}

// QueryAll queries the running platform's mount table.
func QueryAll() (MountMap, error) {
	q, err := Native()
	if err != nil {
		return nil, err
	}
	return q.QueryAll()
}
