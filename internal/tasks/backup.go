package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// DumpCreator produces a database dump and returns its filename.
type DumpCreator interface {
	Create(ctx context.Context, name string) (string, error)
}

// BackupResultRecorder is notified when a queued backup finishes.
type BackupResultRecorder interface {
	RecordBackupResult(requestedBy uint, filename string, runErr error)
}

// BackupTask dumps the database in the background so admin requests return
// immediately.
type BackupTask struct {
	Name        string `json:"name"`
	RequestedBy uint   `json:"requested_by"`
}

// Config returns the queue configuration for backup tasks. A single worker
// slot keeps concurrent pg_dump runs from competing for the directory.
func (t BackupTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "database_backup",
		MaxAttempts: 2,
		Backoff:     2 * time.Minute,
		Timeout:     10 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   7 * 24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// BackupProcessor creates a processor function for BackupTask.
func BackupProcessor(creator DumpCreator, recorder BackupResultRecorder) backlite.QueueProcessor[BackupTask] {
	return func(ctx context.Context, task BackupTask) error {
		if creator == nil {
			return fmt.Errorf("backup service not configured")
		}

		filename, err := creator.Create(ctx, task.Name)
		if recorder != nil {
			recorder.RecordBackupResult(task.RequestedBy, filename, err)
		}
		if err != nil {
			return fmt.Errorf("database backup: %w", err)
		}

		log.Printf("[TASK] Database backup completed: %s", filename)
		return nil
	}
}

// NewBackupQueue creates a backlite queue for backup tasks.
func NewBackupQueue(creator DumpCreator, recorder BackupResultRecorder) backlite.Queue {
	return backlite.NewQueue(BackupProcessor(creator, recorder))
}
