package tasks

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "liber/internal/config"
)

func TestNewClient(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "tasks.db")

	client, err := NewClient(dbPath, DefaultConfig())
	require.NoError(t, err)
	defer client.Close()

	assert.FileExists(t, dbPath)
}

func TestClient_StopBeforeStart(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "tasks.db")

	client, err := NewClient(dbPath, DefaultConfig())
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.True(t, client.Stop(ctx))
}

func TestFromConfig(t *testing.T) {
	cfg := FromConfig(appconfig.Tasks{
		Workers:     4,
		RetryDelay:  30 * time.Second,
		TaskTimeout: time.Minute,
	})

	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 30*time.Second, cfg.RetryDelay)
	assert.Equal(t, time.Minute, cfg.TaskTimeout)
	// Unset fields fall back to defaults
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 15*time.Minute, cfg.ReleaseAfter)
}

type fakeCleaner struct {
	cutoff  time.Time
	deleted int64
	err     error
}

func (f *fakeCleaner) DeleteOldEvents(olderThan time.Time) (int64, error) {
	f.cutoff = olderThan
	return f.deleted, f.err
}

func TestCleanupAuditEventsProcessor(t *testing.T) {
	cleaner := &fakeCleaner{deleted: 7}
	processor := CleanupAuditEventsProcessor(cleaner)

	err := processor(context.Background(), CleanupAuditEventsTask{RetentionDays: 10})

	require.NoError(t, err)
	expected := time.Now().AddDate(0, 0, -10)
	assert.WithinDuration(t, expected, cleaner.cutoff, time.Minute)
}

func TestCleanupAuditEventsProcessor_DefaultRetention(t *testing.T) {
	cleaner := &fakeCleaner{}
	processor := CleanupAuditEventsProcessor(cleaner)

	err := processor(context.Background(), CleanupAuditEventsTask{})

	require.NoError(t, err)
	expected := time.Now().AddDate(0, 0, -30)
	assert.WithinDuration(t, expected, cleaner.cutoff, time.Minute)
}

type fakeDumpCreator struct {
	name     string
	filename string
	err      error
}

func (f *fakeDumpCreator) Create(_ context.Context, name string) (string, error) {
	f.name = name
	return f.filename, f.err
}

type fakeRecorder struct {
	requestedBy uint
	filename    string
	runErr      error
	calls       int
}

func (f *fakeRecorder) RecordBackupResult(requestedBy uint, filename string, runErr error) {
	f.calls++
	f.requestedBy = requestedBy
	f.filename = filename
	f.runErr = runErr
}

func TestBackupProcessor(t *testing.T) {
	creator := &fakeDumpCreator{filename: "nightly.sql"}
	recorder := &fakeRecorder{}
	processor := BackupProcessor(creator, recorder)

	err := processor(context.Background(), BackupTask{Name: "nightly", RequestedBy: 3})

	require.NoError(t, err)
	assert.Equal(t, "nightly", creator.name)
	assert.Equal(t, 1, recorder.calls)
	assert.Equal(t, uint(3), recorder.requestedBy)
	assert.Equal(t, "nightly.sql", recorder.filename)
	assert.NoError(t, recorder.runErr)
}

func TestBackupProcessor_Failure(t *testing.T) {
	creator := &fakeDumpCreator{err: errors.New("pg_dump failed")}
	recorder := &fakeRecorder{}
	processor := BackupProcessor(creator, recorder)

	err := processor(context.Background(), BackupTask{Name: "nightly"})

	require.Error(t, err)
	assert.Equal(t, 1, recorder.calls)
	assert.Error(t, recorder.runErr)
}
