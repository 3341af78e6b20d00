// Package scheduler runs periodic housekeeping jobs.
package scheduler

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"bookbatch/internal/database/sessions"
)

// SessionCleanupScheduler periodically deletes finished import sessions
// older than the retention window.
type SessionCleanupScheduler struct {
	sessions  *sessions.Repository
	schedule  string
	retention time.Duration

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool
}

// NewSessionCleanupScheduler creates a new scheduler instance.
func NewSessionCleanupScheduler(repo *sessions.Repository, schedule string, retention time.Duration) *SessionCleanupScheduler {
	return &SessionCleanupScheduler{
		sessions:  repo,
		schedule:  schedule,
		retention: retention,
		cron:      cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler.
func (s *SessionCleanupScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.runCleanup()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule session cleanup job: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true
	log.Printf("Session cleanup scheduler started (schedule %q, retention %s)", s.schedule, s.retention)
	return nil
}

// Stop halts the scheduler, waiting for a running job to finish.
func (s *SessionCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.isRunning = false
	log.Println("Session cleanup scheduler stopped")
}

func (s *SessionCleanupScheduler) runCleanup() {
	deleted, err := s.sessions.DeleteStale(s.retention)
	if err != nil {
		log.Printf("Session cleanup failed: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("Session cleanup removed %d finished sessions older than %s", deleted, s.retention)
	}
}
