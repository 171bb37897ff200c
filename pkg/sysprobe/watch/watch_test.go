package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/jamesainslie/sysprobe/pkg/sysprobe/mounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedQuerier returns maps from a script, repeating the last one.
type scriptedQuerier struct {
	mu     sync.Mutex
	script []mounts.MountMap
	calls  int
	err    error
}

func (s *scriptedQuerier) QueryAll() (mounts.MountMap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	i := min(s.calls, len(s.script)-1)
	s.calls++
	return s.script[i], nil
}

func (s *scriptedQuerier) Records() ([]mounts.Record, error) {
	return nil, errors.New("not used")
}

func (s *scriptedQuerier) Names() ([]mounts.Record, error) {
	return nil, errors.New("not used")
}

func TestDiff(t *testing.T) {
	prev := mounts.MountMap{"disk0s1": "/", "disk2s1": "/Volumes/USB", "disk3": "/Volumes/Old"}
	next := mounts.MountMap{"disk0s1": "/", "disk2s1": "/Volumes/USB 1", "disk4": "/Volumes/New"}

	c := Diff(prev, next)

	assert.Equal(t, mounts.MountMap{"disk2s1": "/Volumes/USB 1", "disk4": "/Volumes/New"}, c.Added)
	assert.Equal(t, mounts.MountMap{"disk2s1": "/Volumes/USB", "disk3": "/Volumes/Old"}, c.Removed)
	assert.Equal(t, next, c.Current)
	assert.False(t, c.Empty())

	assert.True(t, Diff(prev, prev).Empty())
}

func TestNew_NoWatchablePaths(t *testing.T) {
	_, err := New(&scriptedQuerier{}, Options{Paths: []string{filepath.Join(t.TempDir(), "missing")}})
	assert.ErrorIs(t, err, ErrNoPaths)
}

func TestNew_SkipsMissingPaths(t *testing.T) {
	dir := t.TempDir()
	w, err := New(&scriptedQuerier{}, Options{Paths: []string{"/nonexistent-sysprobe", dir}})
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	assert.Equal(t, []string{dir}, w.Paths())
}

func TestRun_ReportsChangeAfterEvent(t *testing.T) {
	dir := t.TempDir()
	q := &scriptedQuerier{script: []mounts.MountMap{
		{"disk0s1": "/"},
		{"disk0s1": "/", "disk5s1": filepath.Join(dir, "USB")},
	}}

	w, err := New(q, Options{Paths: []string{dir}, Debounce: 20 * time.Millisecond})
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	changes := make(chan Change, 1)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(c Change) {
			changes <- c
			cancel()
		})
	}()

	// Keep poking until the watcher has its baseline and sees an event.
	var poker sync.WaitGroup
	poker.Add(1)
	go func() {
		defer poker.Done()
		for i := 0; ctx.Err() == nil; i++ {
			_ = os.Mkdir(filepath.Join(dir, "vol"+string(rune('a'+i%26))), 0o755)
			time.Sleep(50 * time.Millisecond)
		}
	}()

	select {
	case c := <-changes:
		assert.Equal(t, mounts.MountMap{"disk5s1": filepath.Join(dir, "USB")}, c.Added)
		assert.Empty(t, c.Removed)
	case <-time.After(5 * time.Second):
		t.Fatal("no change delivered")
	}

	assert.ErrorIs(t, <-done, context.Canceled)
	poker.Wait()
}

func TestRun_IntervalReportsChangeWithoutEvent(t *testing.T) {
	q := &scriptedQuerier{script: []mounts.MountMap{
		{"sda1": "/"},
		{"sda1": "/", "sdb1": "/mnt/backup"},
	}}

	w, err := New(q, Options{Paths: []string{t.TempDir()}, Interval: 20 * time.Millisecond})
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var got Change
	err = w.Run(ctx, func(c Change) {
		got = c
		cancel()
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, mounts.MountMap{"sdb1": "/mnt/backup"}, got.Added)
	assert.Empty(t, got.Removed)
}

func TestDefaultPaths_LinuxUserMedia(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("linux volume layout")
	}
	t.Setenv("USER", "alice")

	assert.Subset(t, DefaultPaths(), []string{"/run/media/alice", "/media/alice"})
}

func TestRun_InitialQueryError(t *testing.T) {
	dir := t.TempDir()
	boom := errors.New("native failure")

	w, err := New(&scriptedQuerier{err: boom}, Options{Paths: []string{dir}})
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	err = w.Run(context.Background(), func(Change) {})
	assert.ErrorIs(t, err, boom)
}

func TestClose_Idempotent(t *testing.T) {
	w, err := New(&scriptedQuerier{}, Options{Paths: []string{t.TempDir()}})
	require.NoError(t, err)

	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
