// Package store provides SQLite persistence for archivewatch file events.
package store

import "time"

// Snapshot groups the events recorded by one run of a command.
type Snapshot struct {
	ID      int64     `json:"id"`
	TakenAt time.Time `json:"taken_at"`
	Command string    `json:"command"`
	Version string    `json:"version"`
}

// FileEvent is a change to an accepted file observed by the watcher.
type FileEvent struct {
	ID         int64     `json:"id"`
	SnapshotID int64     `json:"snapshot_id"`
	Kind       string    `json:"kind"`
	Path       string    `json:"path"`
	Extension  string    `json:"extension,omitempty"`
	Size       int64     `json:"size"`
	ModTime    time.Time `json:"mod_time,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}
