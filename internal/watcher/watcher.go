// Package watcher provides background monitoring of archive source
// directories, detecting accepted files that appear, change or disappear and
// emitting alerts for them.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/blackwell-systems/archivewatch/internal/pathgate"
)

// maxConcurrentRoots bounds how many roots are walked at once.
const maxConcurrentRoots = 4

// FileState is what the watcher remembers about an accepted file.
type FileState struct {
	Path      string
	Extension string
	Size      int64
	ModTime   time.Time
}

// WatchState captures a point-in-time view of every watched root.
type WatchState struct {
	Timestamp time.Time
	Files     map[string]FileState // canonical path -> state
	Rejected  int                  // regular files outside the allow-list

	// RootErrors maps a configured root to the reason it could not be walked.
	RootErrors map[string]string
}

// Alert represents a notable event detected by the watcher.
type Alert struct {
	Level   string // "info", "warning", "critical"
	Kind    string // "added", "modified", "removed", "root"
	Title   string
	Message string
	File    FileState
	Time    time.Time
}

// Watcher scans a set of root directories at a regular interval, and early
// when the filesystem reports a change, emitting alerts for accepted files.
type Watcher struct {
	roots         []string
	gate          *pathgate.Gate
	interval      time.Duration
	debounce      time.Duration
	previous      *WatchState
	exclude       map[string]bool // directories never descended into
	alertFn       func(Alert)     // callback for emitting alerts
	lastAlertKeys map[string]bool // dedup: suppress repeated identical alerts
}

// New creates a Watcher over roots. Roots pass through gate.Directory and
// files through gate.CheckExtension on every scan.
func New(roots []string, gate *pathgate.Gate, interval time.Duration, alertFn func(Alert)) *Watcher {
	return &Watcher{
		roots:         roots,
		gate:          gate,
		interval:      interval,
		debounce:      500 * time.Millisecond,
		alertFn:       alertFn,
		lastAlertKeys: make(map[string]bool),
	}
}

// Exclude keeps the given directories, and everything below them, out of
// every scan. Paths must be canonical, as produced by the path gate.
func (w *Watcher) Exclude(dirs ...string) {
	if w.exclude == nil {
		w.exclude = make(map[string]bool, len(dirs))
	}
	for _, d := range dirs {
		if d != "" {
			w.exclude[d] = true
		}
	}
}

// skipDir reports whether the walk below root should not enter p.
func (w *Watcher) skipDir(root, p, name string) bool {
	return p != root && (hidden(name) || w.exclude[p])
}

// Run starts the watch loop. It takes an initial snapshot, then checks at
// every interval and shortly after any change notification. Blocks until ctx
// is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	initial, err := w.Snapshot()
	if err != nil {
		return fmt.Errorf("initial snapshot: %w", err)
	}
	w.previous = initial

	changes, stop := w.notifications()
	defer stop()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	var settle <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.emit(w.Check())
		case _, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			if settle == nil {
				settle = time.After(w.debounce)
			}
		case <-settle:
			settle = nil
			w.emit(w.Check())
		}
	}
}

func (w *Watcher) emit(alerts []Alert) {
	if w.alertFn == nil {
		return
	}
	for _, a := range alerts {
		w.alertFn(a)
	}
}

// notifications subscribes to change events on every reachable root and
// its non-hidden subdirectories. Directories created later are subscribed
// as they appear. When the platform offers no notifications the returned
// channel is nil and the loop falls back to polling.
func (w *Watcher) notifications() (<-chan struct{}, func()) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, func() {}
	}

	for _, root := range w.roots {
		dir, err := w.gate.Directory(pathgate.Raw(root), pathgate.Options{})
		if err != nil {
			continue
		}
		w.subscribe(fsw, dir.String())
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		for {
			select {
			case ev, ok := <-fsw.Events:
				if !ok {
					return
				}
				if ev.Has(fsnotify.Create) && w.gate.IsDir(pathgate.Path(ev.Name)) {
					w.subscribe(fsw, ev.Name)
				}
				select {
				case out <- struct{}{}:
				default:
				}
			case _, ok := <-fsw.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return out, func() { _ = fsw.Close() }
}

func (w *Watcher) subscribe(fsw *fsnotify.Watcher, dir string) {
	for _, d := range w.watchDirs(dir) {
		_ = fsw.Add(d)
	}
}

// watchDirs lists dir and every directory below it that scanRoot would
// descend into.
func (w *Watcher) watchDirs(dir string) []string {
	var dirs []string
	_ = afero.Walk(w.gate.FS(), dir, func(p string, info os.FileInfo, err error) error {
		if err != nil || !info.IsDir() {
			return nil
		}
		if w.skipDir(dir, p, info.Name()) {
			return filepath.SkipDir
		}
		dirs = append(dirs, p)
		return nil
	})
	return dirs
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// Check performs a single check cycle: takes a new snapshot, compares against
// the previous state, updates the previous state, and returns any alerts.
// Identical root alerts are suppressed until the root's state changes.
func (w *Watcher) Check() []Alert {
	curr, err := w.Snapshot()
	if err != nil {
		return []Alert{{
			Level:   "warning",
			Kind:    "root",
			Title:   "Snapshot failed",
			Message: fmt.Sprintf("Could not scan watched directories: %v", err),
			Time:    time.Now(),
		}}
	}

	var raw []Alert
	if w.previous != nil {
		raw = Compare(w.previous, curr)
	}

	// File alerts are already edge-triggered by Compare; only recurring
	// root conditions are deduplicated across cycles.
	currentKeys := make(map[string]bool, len(raw))
	var alerts []Alert
	for _, a := range raw {
		if a.Kind != "root" {
			alerts = append(alerts, a)
			continue
		}
		key := a.Level + ":" + a.Title + ":" + a.Message
		currentKeys[key] = true
		if !w.lastAlertKeys[key] {
			alerts = append(alerts, a)
		}
	}
	w.lastAlertKeys = currentKeys

	w.previous = curr
	return alerts
}

// Snapshot walks every root concurrently and records the accepted files.
// Unreachable roots are reported in RootErrors rather than failing the
// snapshot; unexpected walk errors do fail it.
func (w *Watcher) Snapshot() (*WatchState, error) {
	state := &WatchState{
		Timestamp:  time.Now(),
		Files:      make(map[string]FileState),
		RootErrors: make(map[string]string),
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(maxConcurrentRoots)

	for _, root := range w.roots {
		g.Go(func() error {
			files, rejected, err := w.scanRoot(root)

			mu.Lock()
			defer mu.Unlock()
			var rootErr *rootError
			if errors.As(err, &rootErr) {
				state.RootErrors[root] = rootErr.Error()
				return nil
			}
			if err != nil {
				return fmt.Errorf("scanning %s: %w", root, err)
			}
			for p, f := range files {
				state.Files[p] = f
			}
			state.Rejected += rejected
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return state, nil
}

// rootError marks a root the gate refused.
type rootError struct {
	err error
}

func (e *rootError) Error() string { return e.err.Error() }
func (e *rootError) Unwrap() error { return e.err }

// scanRoot walks one root. Hidden directories are skipped, as are entries
// that vanish or become unreadable mid-walk.
func (w *Watcher) scanRoot(root string) (map[string]FileState, int, error) {
	dir, err := w.gate.Directory(pathgate.Raw(root), pathgate.Options{})
	if err != nil {
		return nil, 0, &rootError{err: err}
	}

	files := make(map[string]FileState)
	rejected := 0
	fsys := w.gate.FS()

	err = afero.Walk(fsys, dir.String(), func(p string, info os.FileInfo, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			if w.skipDir(dir.String(), p, info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		ok, err := w.gate.CheckExtension(pathgate.Path(p), pathgate.Options{SkipProvision: true})
		if errors.Is(err, pathgate.ErrNotAFile) {
			return nil
		}
		if err != nil {
			return err
		}
		if !ok {
			rejected++
			return nil
		}

		// Walk does not follow links; report the target's metadata.
		if info.Mode()&os.ModeSymlink != 0 {
			if info, err = fsys.Stat(p); err != nil {
				return nil
			}
		}

		files[p] = FileState{
			Path:      p,
			Extension: strings.ToLower(strings.TrimPrefix(pathgate.Path(p).Suffix(), ".")),
			Size:      info.Size(),
			ModTime:   info.ModTime(),
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return files, rejected, nil
}
