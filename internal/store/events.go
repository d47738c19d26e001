package store

import (
	"database/sql"
	"errors"
	"time"
)

// CreateSnapshot inserts a new snapshot and returns its ID.
func (db *DB) CreateSnapshot(command, version string) (int64, error) {
	result, err := db.conn.Exec(
		"INSERT INTO snapshots (taken_at, command, version) VALUES (?, ?, ?)",
		time.Now().UTC().Format(time.RFC3339), command, version,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetLatestSnapshot returns the most recent snapshot, or nil if none exist.
func (db *DB) GetLatestSnapshot() (*Snapshot, error) {
	row := db.conn.QueryRow("SELECT id, taken_at, command, version FROM snapshots ORDER BY id DESC LIMIT 1")

	var s Snapshot
	var takenAt string
	err := row.Scan(&s.ID, &takenAt, &s.Command, &s.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.TakenAt, _ = time.Parse(time.RFC3339, takenAt)
	return &s, nil
}

// InsertFileEvent records a file event. RecordedAt defaults to now.
func (db *DB) InsertFileEvent(fe *FileEvent) error {
	if fe.RecordedAt.IsZero() {
		fe.RecordedAt = time.Now()
	}

	var modTime sql.NullString
	if !fe.ModTime.IsZero() {
		modTime = sql.NullString{String: fe.ModTime.UTC().Format(time.RFC3339Nano), Valid: true}
	}

	result, err := db.conn.Exec(
		`INSERT INTO file_events
		(snapshot_id, kind, path, extension, size, mod_time, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		fe.SnapshotID, fe.Kind, fe.Path, fe.Extension, fe.Size, modTime,
		fe.RecordedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return err
	}
	fe.ID, err = result.LastInsertId()
	return err
}

// RecentFileEvents returns up to limit events, newest first.
func (db *DB) RecentFileEvents(limit int) ([]FileEvent, error) {
	rows, err := db.conn.Query(
		`SELECT id, snapshot_id, kind, path, extension, size, mod_time, recorded_at
		 FROM file_events ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	return scanFileEvents(rows)
}

// FileEventsForPath returns every event recorded for path, oldest first.
func (db *DB) FileEventsForPath(path string) ([]FileEvent, error) {
	rows, err := db.conn.Query(
		`SELECT id, snapshot_id, kind, path, extension, size, mod_time, recorded_at
		 FROM file_events WHERE path = ? ORDER BY id ASC`,
		path,
	)
	if err != nil {
		return nil, err
	}
	return scanFileEvents(rows)
}

func scanFileEvents(rows *sql.Rows) ([]FileEvent, error) {
	defer func() { _ = rows.Close() }()

	var events []FileEvent
	for rows.Next() {
		var fe FileEvent
		var ext, modTime sql.NullString
		var recordedAt string
		if err := rows.Scan(&fe.ID, &fe.SnapshotID, &fe.Kind, &fe.Path, &ext,
			&fe.Size, &modTime, &recordedAt); err != nil {
			return nil, err
		}
		fe.Extension = ext.String
		if modTime.Valid {
			fe.ModTime, _ = time.Parse(time.RFC3339Nano, modTime.String)
		}
		fe.RecordedAt, _ = time.Parse(time.RFC3339Nano, recordedAt)
		events = append(events, fe)
	}
	return events, rows.Err()
}
