package scheduler

import (
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"liber/internal/tasks"
)

// Audit cleanup runs nightly; the retention window is measured in days so a
// finer schedule buys nothing.
const auditCleanupSchedule = "30 4 * * *"

// AuditCleanupScheduler enqueues an audit retention task on a fixed nightly
// schedule. The actual deletion happens on the task queue workers.
type AuditCleanupScheduler struct {
	queue         *tasks.Client
	retentionDays int

	cron      *cron.Cron
	mu        sync.Mutex
	isRunning bool
}

// NewAuditCleanupScheduler creates a scheduler that prunes audit events older
// than retentionDays once per night.
func NewAuditCleanupScheduler(queue *tasks.Client, retentionDays int) *AuditCleanupScheduler {
	return &AuditCleanupScheduler{
		queue:         queue,
		retentionDays: retentionDays,
		cron:          cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the nightly schedule. Without a task queue the scheduler stays
// disabled.
func (s *AuditCleanupScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if s.queue == nil {
		log.Printf("Audit cleanup scheduler: disabled (no task queue)")
		return nil
	}

	_, err := s.cron.AddFunc(auditCleanupSchedule, func() {
		s.enqueueCleanup()
	})
	if err != nil {
		return fmt.Errorf("invalid audit cleanup schedule %q: %w", auditCleanupSchedule, err)
	}

	s.cron.Start()
	s.isRunning = true

	log.Printf("Audit cleanup scheduler: started (retention %d days)", s.retentionDays)
	return nil
}

// Stop halts the schedule, waiting for a running enqueue to finish.
func (s *AuditCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.isRunning = false

	log.Printf("Audit cleanup scheduler: stopped")
}

func (s *AuditCleanupScheduler) enqueueCleanup() {
	task := tasks.CleanupAuditEventsTask{RetentionDays: s.retentionDays}
	if _, err := s.queue.Add(task).Save(); err != nil {
		log.Printf("Audit cleanup scheduler: failed to enqueue task: %v", err)
	}
}
