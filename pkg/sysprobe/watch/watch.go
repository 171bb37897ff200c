// Package watch re-queries the mount table when volume directories change.
//
// Directory events are only a hint that something may have been mounted
// or unmounted. Every hint triggers a fresh mount table query; the only
// state kept between queries is the previous map, needed to report what
// changed.
package watch

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jamesainslie/sysprobe/pkg/sysprobe/logging"
	"github.com/jamesainslie/sysprobe/pkg/sysprobe/mounts"
)

var logger = logging.Get("watch")

// DefaultDebounce is how long the watcher waits for events to settle.
const DefaultDebounce = 500 * time.Millisecond

// ErrNoPaths is returned by New when none of the paths can be watched.
var ErrNoPaths = errors.New("no watchable paths")

// Change describes how the mount map differs from the previous query.
type Change struct {
	// Added holds devices that are new or now mounted elsewhere.
	Added mounts.MountMap

	// Removed holds devices that disappeared or moved, with their old
	// mount points.
	Removed mounts.MountMap

	// Current is the full map from the query that produced the change.
	Current mounts.MountMap
}

// Empty reports whether nothing changed.
func (c Change) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0
}

// Diff compares two mount maps.
func Diff(prev, next mounts.MountMap) Change {
	c := Change{
		Added:   mounts.MountMap{},
		Removed: mounts.MountMap{},
		Current: next,
	}
	for dev, mp := range next {
		if old, ok := prev[dev]; !ok || old != mp {
			c.Added[dev] = mp
		}
	}
	for dev, mp := range prev {
		if cur, ok := next[dev]; !ok || cur != mp {
			c.Removed[dev] = mp
		}
	}
	return c
}

// DefaultPaths returns directories where removable volumes usually
// appear on the running platform.
func DefaultPaths() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"/Volumes"}
	case "linux":
		paths := []string{"/media", "/mnt", "/run/media"}
		// udisks mounts one level down, under a per-user directory.
		if u := os.Getenv("USER"); u != "" {
			paths = append(paths, filepath.Join("/run/media", u), filepath.Join("/media", u))
		}
		return paths
	case "freebsd", "openbsd", "netbsd":
		return []string{"/media", "/mnt"}
	default:
		return nil
	}
}

// Options configures a Watcher.
type Options struct {
	// Paths are the directories to watch. Missing ones are skipped.
	Paths []string

	// Debounce is the quiet period before re-querying. Zero uses
	// DefaultDebounce.
	Debounce time.Duration

	// Interval re-queries periodically even without directory events,
	// catching mounts onto directories that are not watched. Zero
	// disables the periodic query.
	Interval time.Duration
}

// Watcher delivers mount table changes.
type Watcher struct {
	querier  mounts.Querier
	fsw      *fsnotify.Watcher
	debounce time.Duration
	interval time.Duration
	paths    []string

	closeOnce sync.Once
}

// New creates a watcher over opts.Paths that queries q on every change.
func New(q mounts.Querier, opts Options) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	w := &Watcher{
		querier:  q,
		fsw:      fsw,
		debounce: opts.Debounce,
		interval: max(opts.Interval, 0),
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}

	for _, path := range opts.Paths {
		if info, err := os.Stat(path); err != nil || !info.IsDir() {
			logger.Warn("skipping watch path", "path", path, "err", err)
			continue
		}
		if err := fsw.Add(path); err != nil {
			logger.Warn("cannot watch path", "path", path, "err", err)
			continue
		}
		w.paths = append(w.paths, path)
	}

	if len(w.paths) == 0 {
		_ = fsw.Close()
		return nil, fmt.Errorf("%w: %v", ErrNoPaths, opts.Paths)
	}

	return w, nil
}

// Paths returns the directories actually being watched.
func (w *Watcher) Paths() []string {
	return append([]string(nil), w.paths...)
}

// Run queries the mount table once to establish a baseline, then calls
// onChange after each settled burst of events, and on each Interval
// tick, that changed the map.
// It returns when ctx is done, with ctx.Err(), or when the underlying
// watcher fails. A failed query is logged and retried on the next event.
func (w *Watcher) Run(ctx context.Context, onChange func(Change)) error {
	prev, err := w.querier.QueryAll()
	if err != nil {
		return fmt.Errorf("initial mount query: %w", err)
	}
	logger.Debug("watching", "paths", w.paths, "mounts", len(prev))

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	var tick <-chan time.Time
	if w.interval > 0 {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	requery := func() {
		next, err := w.querier.QueryAll()
		if err != nil {
			logger.Warn("mount query failed", "err", err)
			return
		}
		change := Diff(prev, next)
		prev = maps.Clone(next)
		if !change.Empty() {
			onChange(change)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			logger.Debug("volume event", "name", event.Name, "op", event.Op.String())
			timer.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watching volumes: %w", err)

		case <-timer.C:
			requery()

		case <-tick:
			requery()
		}
	}
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.fsw.Close()
	})
	return err
}
