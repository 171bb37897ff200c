package mounts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter(t *testing.T) {
	records := []Record{
		{Device: "disk3s1s1", MountPoint: "/", FSType: "apfs"},
		{Device: "disk3s6", MountPoint: "/System/Volumes/VM", FSType: "apfs"},
		{Device: "disk3s5", MountPoint: "/System/Volumes/Data/home", FSType: "autofs"},
		{Device: "disk4s1", MountPoint: "/Volumes/USB", FSType: "msdos"},
		{Device: "devfs", MountPoint: "/dev", FSType: "devfs"},
	}

	tests := []struct {
		name    string
		exclude []string
		fsTypes []string
		want    []string
	}{
		{
			name: "no patterns keeps all",
			want: []string{"/", "/System/Volumes/VM", "/System/Volumes/Data/home", "/Volumes/USB", "/dev"},
		},
		{
			name:    "single star stays within one segment",
			exclude: []string{"/System/Volumes/*"},
			want:    []string{"/", "/System/Volumes/Data/home", "/Volumes/USB", "/dev"},
		},
		{
			name:    "double star crosses segments",
			exclude: []string{"/System/**"},
			want:    []string{"/", "/Volumes/USB", "/dev"},
		},
		{
			name:    "fs type include",
			fsTypes: []string{"apfs", "ms*"},
			want:    []string{"/", "/System/Volumes/VM", "/Volumes/USB"},
		},
		{
			name:    "exclude wins over include",
			exclude: []string{"/Volumes/*"},
			fsTypes: []string{"msdos"},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFilter(tt.exclude, tt.fsTypes)
			require.NoError(t, err)

			got := []string{}
			for _, r := range f.Apply(records) {
				got = append(got, r.MountPoint)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewFilter_InvalidPattern(t *testing.T) {
	_, err := NewFilter([]string{"/Volumes/[a"}, nil)
	assert.Error(t, err)

	_, err = NewFilter(nil, []string{"[a"})
	assert.Error(t, err)
}

func TestFiltered(t *testing.T) {
	src := &fakeSource{
		count: 3,
		records: []fakeStatfs{
			statfs("/dev/disk3s1", "/", "apfs"),
			statfs("devfs", "/dev", "devfs"),
			statfs("/dev/disk4s1", "/Volumes/USB", "msdos"),
		},
		filled: -1,
	}
	f, err := NewFilter([]string{"/dev"}, nil)
	require.NoError(t, err)

	q := Filtered(newTable(src), f)

	got, err := q.QueryAll()
	require.NoError(t, err)
	assert.Equal(t, MountMap{"disk3s1": "/", "disk4s1": "/Volumes/USB"}, got)
}
