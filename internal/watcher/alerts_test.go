package watcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeState(files ...FileState) *WatchState {
	s := &WatchState{
		Files:      make(map[string]FileState),
		RootErrors: make(map[string]string),
	}
	for _, f := range files {
		s.Files[f.Path] = f
	}
	return s
}

var t0 = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func TestCompare_IdenticalStates(t *testing.T) {
	f := FileState{Path: "/in/a.txt", Size: 3, ModTime: t0}
	assert.Empty(t, Compare(makeState(f), makeState(f)))
	assert.Empty(t, Compare(makeState(), makeState()))
}

func TestCompare_Added(t *testing.T) {
	f := FileState{Path: "/in/a.txt", Size: 2048, ModTime: t0}

	alerts := Compare(makeState(), makeState(f))
	require.Len(t, alerts, 1)
	assert.Equal(t, "added", alerts[0].Kind)
	assert.Equal(t, "info", alerts[0].Level)
	assert.Equal(t, "New file: a.txt", alerts[0].Title)
	assert.Contains(t, alerts[0].Message, "2.0 KiB")
	assert.Equal(t, f, alerts[0].File)
}

func TestCompare_Modified(t *testing.T) {
	before := FileState{Path: "/in/a.txt", Size: 3, ModTime: t0}

	tests := []struct {
		name  string
		after FileState
	}{
		{"size changed", FileState{Path: "/in/a.txt", Size: 4, ModTime: t0}},
		{"mtime changed", FileState{Path: "/in/a.txt", Size: 3, ModTime: t0.Add(time.Second)}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			alerts := Compare(makeState(before), makeState(tc.after))
			require.Len(t, alerts, 1)
			assert.Equal(t, "modified", alerts[0].Kind)
			assert.Equal(t, tc.after, alerts[0].File)
		})
	}
}

func TestCompare_Removed(t *testing.T) {
	f := FileState{Path: "/in/a.txt", Size: 3, ModTime: t0}

	alerts := Compare(makeState(f), makeState())
	require.Len(t, alerts, 1)
	assert.Equal(t, "removed", alerts[0].Kind)
	assert.Equal(t, "warning", alerts[0].Level)
	assert.Equal(t, f, alerts[0].File)
}

func TestCompare_OrdersRootsThenPaths(t *testing.T) {
	prev := makeState()
	curr := makeState(
		FileState{Path: "/in/b.txt"},
		FileState{Path: "/in/a.txt"},
	)
	curr.RootErrors["/mnt/usb"] = "directory /mnt/usb: not a directory"

	alerts := Compare(prev, curr)
	require.Len(t, alerts, 3)
	assert.Equal(t, "root", alerts[0].Kind)
	assert.Equal(t, "/in/a.txt", alerts[1].File.Path)
	assert.Equal(t, "/in/b.txt", alerts[2].File.Path)
}

func TestCompare_RootRecovered(t *testing.T) {
	prev := makeState()
	prev.RootErrors["/mnt/usb"] = "gone"

	alerts := Compare(prev, makeState())
	require.Len(t, alerts, 1)
	assert.Equal(t, "info", alerts[0].Level)
	assert.Equal(t, "Watch root available: usb", alerts[0].Title)
}
