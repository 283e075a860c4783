// Package scheduler runs periodic maintenance jobs. The only job today is
// revision retention: old import revisions are purged on a cron schedule so
// the database holds a bounded number of batches.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/mvasilenko/spreadhub/internal/audit"
)

// RevisionPurger deletes all but the newest revisions.
type RevisionPurger interface {
	PurgeRevisionsKeeping(keep int) (int64, error)
}

// RetentionConfig controls the retention job.
type RetentionConfig struct {
	Enabled       bool
	Schedule      string // standard 5-field cron expression
	KeepRevisions int
}

// RetentionScheduler purges stale revisions on a cron schedule.
type RetentionScheduler struct {
	purger       RevisionPurger
	auditService *audit.Service
	config       RetentionConfig

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewRetentionScheduler creates a scheduler instance.
func NewRetentionScheduler(purger RevisionPurger, auditService *audit.Service, cfg RetentionConfig) *RetentionScheduler {
	return &RetentionScheduler{
		purger:       purger,
		auditService: auditService,
		config:       cfg,
		cron:         cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler if retention is enabled.
func (s *RetentionScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.config.Enabled {
		log.Printf("Retention scheduler: disabled")
		return nil
	}
	if s.config.KeepRevisions <= 0 {
		return fmt.Errorf("retention keep count must be positive, got %d", s.config.KeepRevisions)
	}

	entryID, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.runPurge()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule retention job with '%s': %w", s.config.Schedule, err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Retention scheduler: started with schedule '%s', keeping %d revisions",
		s.config.Schedule, s.config.KeepRevisions)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler.
func (s *RetentionScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}

	s.cron.Remove(s.entryID)
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()

	s.isRunning = false
	log.Printf("Retention scheduler: stopped")
}

// RunNow executes one purge immediately, outside the schedule.
func (s *RetentionScheduler) RunNow() (int64, error) {
	deleted, err := s.purger.PurgeRevisionsKeeping(s.config.KeepRevisions)
	if s.auditService != nil {
		s.auditService.LogRetention(deleted, err)
	}
	return deleted, err
}

func (s *RetentionScheduler) runPurge() {
	deleted, err := s.RunNow()
	if err != nil {
		log.Printf("Retention scheduler: purge failed: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("Retention scheduler: purged %d rows from old revisions", deleted)
	}
}
