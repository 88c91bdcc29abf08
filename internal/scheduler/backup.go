// Package scheduler runs periodic maintenance jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"liber/internal/database/audit"
	"liber/internal/entities"
)

// DumpCreator produces a database dump and returns its filename.
type DumpCreator interface {
	Create(ctx context.Context, name string) (string, error)
}

// BackupScheduler runs database backups on a cron schedule.
type BackupScheduler struct {
	backups  DumpCreator
	auditLog *audit.Repository
	schedule string

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewBackupScheduler creates a scheduler for the given cron schedule. An
// empty schedule disables scheduled backups.
func NewBackupScheduler(backups DumpCreator, auditLog *audit.Repository, schedule string) *BackupScheduler {
	return &BackupScheduler{
		backups:  backups,
		auditLog: auditLog,
		schedule: schedule,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler if a schedule is configured.
func (s *BackupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if s.schedule == "" {
		log.Printf("Backup scheduler: disabled")
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.runBackup()
	})
	if err != nil {
		return fmt.Errorf("invalid backup schedule %q: %w", s.schedule, err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Backup scheduler: started with schedule %q", s.schedule)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running backup to finish.
func (s *BackupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Backup scheduler: stopped")
}

// IsRunning returns whether the scheduler is active.
func (s *BackupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRunTime returns when the next scheduled backup will occur.
func (s *BackupScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *BackupScheduler) runBackup() {
	log.Printf("Scheduled backup: starting")
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	// Empty name gets the timestamped default
	filename, err := s.backups.Create(ctx, "")
	if err != nil {
		log.Printf("Scheduled backup: failed: %v", err)
		s.logAudit("", err)
		return
	}

	log.Printf("Scheduled backup: wrote %s in %v", filename, time.Since(startTime).Round(time.Millisecond))
	s.logAudit(filename, nil)
}

func (s *BackupScheduler) logAudit(filename string, runErr error) {
	if s.auditLog == nil {
		return
	}

	event := &entities.AuditEvent{
		EventType:   entities.AuditEventBackup,
		Action:      "scheduled_backup",
		Description: "Scheduled database backup",
		Status:      entities.AuditStatusSuccess,
	}
	if filename != "" {
		event.Description = "Scheduled database backup: " + filename
	}
	if runErr != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = runErr.Error()
	}

	if err := s.auditLog.LogEvent(event); err != nil {
		log.Printf("Scheduled backup: failed to record audit event: %v", err)
	}
}
