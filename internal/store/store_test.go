package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestGetLatestSnapshot_Empty(t *testing.T) {
	db := openTestDB(t)

	s, err := db.GetLatestSnapshot()
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestCreateSnapshot(t *testing.T) {
	db := openTestDB(t)

	first, err := db.CreateSnapshot("watch", "dev")
	require.NoError(t, err)
	second, err := db.CreateSnapshot("watch", "1.2.0")
	require.NoError(t, err)
	assert.Greater(t, second, first)

	s, err := db.GetLatestSnapshot()
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, second, s.ID)
	assert.Equal(t, "1.2.0", s.Version)
	assert.False(t, s.TakenAt.IsZero())
}

func TestFileEvents(t *testing.T) {
	db := openTestDB(t)

	snap, err := db.CreateSnapshot("watch", "dev")
	require.NoError(t, err)

	mod := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	events := []*FileEvent{
		{SnapshotID: snap, Kind: "added", Path: "/data/a.txt", Extension: "txt", Size: 4, ModTime: mod},
		{SnapshotID: snap, Kind: "added", Path: "/data/b.pdf", Extension: "pdf", Size: 10},
		{SnapshotID: snap, Kind: "modified", Path: "/data/a.txt", Extension: "txt", Size: 8, ModTime: mod.Add(time.Hour)},
	}
	for _, fe := range events {
		require.NoError(t, db.InsertFileEvent(fe))
		assert.NotZero(t, fe.ID)
	}

	recent, err := db.RecentFileEvents(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "modified", recent[0].Kind)
	assert.Equal(t, "/data/b.pdf", recent[1].Path)
	assert.True(t, recent[1].ModTime.IsZero())

	history, err := db.FileEventsForPath("/data/a.txt")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "added", history[0].Kind)
	assert.True(t, mod.Equal(history[0].ModTime))
	assert.Equal(t, int64(8), history[1].Size)
	assert.False(t, history[1].RecordedAt.IsZero())
}

func TestInsertFileEvent_UnknownSnapshot(t *testing.T) {
	db := openTestDB(t)

	err := db.InsertFileEvent(&FileEvent{SnapshotID: 999, Kind: "added", Path: "/x"})
	assert.Error(t, err)
}

func TestOpen_CreatesFileAndReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "archivewatch.db")

	db, err := Open(path)
	require.NoError(t, err)
	id, err := db.CreateSnapshot("watch", "dev")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()

	s, err := db.GetLatestSnapshot()
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, id, s.ID)
}
