package mounts

import (
	"fmt"

	"github.com/gobwas/glob"
)

// Filter selects records by mount point and filesystem type patterns.
// Patterns use glob syntax with '/' as the separator for mount points,
// so "/System/Volumes/*" matches direct children only and
// "/System/Volumes/**" matches any depth.
type Filter struct {
	exclude []glob.Glob
	fsTypes []glob.Glob
}

// NewFilter compiles the exclude (mount point) and fsTypes patterns.
// An empty fsTypes list accepts every type.
func NewFilter(exclude, fsTypes []string) (*Filter, error) {
	f := &Filter{}
	for _, pattern := range exclude {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		f.exclude = append(f.exclude, g)
	}
	for _, pattern := range fsTypes {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid filesystem type pattern %q: %w", pattern, err)
		}
		f.fsTypes = append(f.fsTypes, g)
	}
	return f, nil
}

// Keep reports whether r passes the filter.
func (f *Filter) Keep(r Record) bool {
	for _, g := range f.exclude {
		if g.Match(r.MountPoint) {
			return false
		}
	}
	if len(f.fsTypes) == 0 {
		return true
	}
	for _, g := range f.fsTypes {
		if g.Match(r.FSType) {
			return true
		}
	}
	return false
}

// Apply returns the records that pass the filter, in order.
func (f *Filter) Apply(records []Record) []Record {
	kept := make([]Record, 0, len(records))
	for _, r := range records {
		if f.Keep(r) {
			kept = append(kept, r)
		}
	}
	return kept
}

// Map builds a MountMap from records; later duplicates win.
func Map(records []Record) MountMap {
	m := make(MountMap, len(records))
	for _, r := range records {
		m[r.Device] = r.MountPoint
	}
	return m
}

// Filtered returns a Querier whose results pass f.
func Filtered(q Querier, f *Filter) Querier {
	return filtered{q: q, f: f}
}

type filtered struct {
	q Querier
	f *Filter
}

func (fq filtered) Records() ([]Record, error) {
	records, err := fq.q.Records()
	if err != nil {
		return nil, err
	}
	return fq.f.Apply(records), nil
}

func (fq filtered) Names() ([]Record, error) {
	records, err := fq.q.Names()
	if err != nil {
		return nil, err
	}
	return fq.f.Apply(records), nil
}

func (fq filtered) QueryAll() (MountMap, error) {
	records, err := fq.Names()
	if err != nil {
		return nil, err
	}
	return Map(records), nil
}
