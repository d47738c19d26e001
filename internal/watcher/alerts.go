package watcher

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
)

// Compare detects changes between two watch states and returns alerts,
// ordered root problems first and then by path.
func Compare(prev, curr *WatchState) []Alert {
	var alerts []Alert

	alerts = append(alerts, compareRoots(prev, curr)...)
	alerts = append(alerts, compareFiles(prev, curr)...)

	return alerts
}

// compareRoots reports roots that are unavailable in curr, and roots that
// recovered since prev.
func compareRoots(prev, curr *WatchState) []Alert {
	var alerts []Alert
	now := time.Now()

	for _, root := range sortedKeys(curr.RootErrors) {
		alerts = append(alerts, Alert{
			Level:   "warning",
			Kind:    "root",
			Title:   fmt.Sprintf("Watch root unavailable: %s", filepath.Base(root)),
			Message: curr.RootErrors[root],
			File:    FileState{Path: root},
			Time:    now,
		})
	}

	for _, root := range sortedKeys(prev.RootErrors) {
		if _, still := curr.RootErrors[root]; still {
			continue
		}
		alerts = append(alerts, Alert{
			Level:   "info",
			Kind:    "root",
			Title:   fmt.Sprintf("Watch root available: %s", filepath.Base(root)),
			Message: root,
			File:    FileState{Path: root},
			Time:    now,
		})
	}

	return alerts
}

// compareFiles reports accepted files that were added, modified (size or
// modification time changed) or removed.
func compareFiles(prev, curr *WatchState) []Alert {
	var alerts []Alert
	now := time.Now()

	for _, p := range sortedKeys(curr.Files) {
		f := curr.Files[p]
		old, existed := prev.Files[p]
		switch {
		case !existed:
			alerts = append(alerts, Alert{
				Level:   "info",
				Kind:    "added",
				Title:   fmt.Sprintf("New file: %s", filepath.Base(p)),
				Message: fmt.Sprintf("%s (%s)", p, humanize.IBytes(uint64(f.Size))),
				File:    f,
				Time:    now,
			})
		case old.Size != f.Size || !old.ModTime.Equal(f.ModTime):
			alerts = append(alerts, Alert{
				Level:   "info",
				Kind:    "modified",
				Title:   fmt.Sprintf("File changed: %s", filepath.Base(p)),
				Message: fmt.Sprintf("%s (%s -> %s)", p, humanize.IBytes(uint64(old.Size)), humanize.IBytes(uint64(f.Size))),
				File:    f,
				Time:    now,
			})
		}
	}

	for _, p := range sortedKeys(prev.Files) {
		if _, ok := curr.Files[p]; ok {
			continue
		}
		alerts = append(alerts, Alert{
			Level:   "warning",
			Kind:    "removed",
			Title:   fmt.Sprintf("File removed: %s", filepath.Base(p)),
			Message: fmt.Sprintf("%s is no longer present", p),
			File:    prev.Files[p],
			Time:    now,
		})
	}

	return alerts
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
