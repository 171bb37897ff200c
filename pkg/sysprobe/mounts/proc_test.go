//go:build linux

package mounts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func writeMounts(t *testing.T, root, content string) {
	t.Helper()
	dir := filepath.Join(root, "self")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mounts"), []byte(content), 0o644))
}

func procTable(root string, statfs func(string, *unix.Statfs_t) error) Table[procMount] {
	return Table[procMount]{
		Source:  procSource{procRoot: root, statfs: statfs},
		Extract: extractProcMount,
	}
}

func TestProcSource_QueryAll(t *testing.T) {
	root := t.TempDir()
	writeMounts(t, root, `/dev/sda1 / ext4 rw,relatime 0 0
proc /proc proc rw,nosuid,nodev,noexec,relatime 0 0
/dev/sdb1 /media/My\040Disk vfat rw 0 0

/dev/sda1 /var/lib/docker ext4 rw 0 0
`)

	got, err := procTable(root, nil).QueryAll()
	require.NoError(t, err)

	assert.Equal(t, MountMap{
		"sda1": "/var/lib/docker",
		"proc": "/proc",
		"sdb1": "/media/My Disk",
	}, got)
}

func TestProcSource_SizesFromStatfs(t *testing.T) {
	root := t.TempDir()
	writeMounts(t, root, "/dev/nvme0n1p2 / btrfs rw 0 0\n")

	var queried []string
	fake := func(path string, st *unix.Statfs_t) error {
		queried = append(queried, path)
		st.Bsize = 4096
		st.Blocks = 10
		st.Bfree = 4
		st.Bavail = 3
		return nil
	}

	records, err := procTable(root, fake).Records()
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, []string{"/"}, queried)
	assert.Equal(t, Record{
		Device:     "nvme0n1p2",
		MountPoint: "/",
		FSType:     "btrfs",
		Total:      40960,
		Free:       16384,
		Avail:      12288,
	}, records[0])
}

func TestProcSource_QueryAllSkipsStatfs(t *testing.T) {
	root := t.TempDir()
	writeMounts(t, root, "/dev/sda1 / ext4 rw 0 0\nserver:/export /mnt/nfs nfs4 rw 0 0\n")

	calls := 0
	hung := func(string, *unix.Statfs_t) error {
		calls++
		return nil
	}
	table := procTable(root, hung)

	got, err := table.QueryAll()
	require.NoError(t, err)
	assert.Equal(t, MountMap{"sda1": "/", "server:/export": "/mnt/nfs"}, got)
	assert.Zero(t, calls)

	f, err := NewFilter(nil, []string{"nfs*"})
	require.NoError(t, err)
	_, err = Filtered(table, f).QueryAll()
	require.NoError(t, err)
	assert.Zero(t, calls)

	_, err = table.Records()
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestProcSource_Empty(t *testing.T) {
	root := t.TempDir()
	writeMounts(t, root, "")

	got, err := procTable(root, nil).QueryAll()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestProcSource_MissingFile(t *testing.T) {
	_, err := procTable(t.TempDir(), nil).QueryAll()
	assert.ErrorIs(t, err, ErrNativeCallFailed)
}

func TestProcSource_FillStopsAtBuffer(t *testing.T) {
	root := t.TempDir()
	writeMounts(t, root, "/dev/a /a ext4 rw 0 0\n/dev/b /b ext4 rw 0 0\n/dev/c /c ext4 rw 0 0\n")

	buf := make([]procMount, 2)
	n, err := procSource{procRoot: root}.Getfsstat(buf, 0, PopulateFlags)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "/b", string(buf[1].mountPoint))
}

func TestUnescapeOctal(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`/plain`, "/plain"},
		{`/a\040b`, "/a b"},
		{`/tab\011x`, "/tab\tx"},
		{`/back\134slash`, `/back\slash`},
		{`/trailing\04`, `/trailing\04`},
		{`/notoctal\089`, `/notoctal\089`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, string(unescapeOctal([]byte(tt.in))))
		})
	}
}
