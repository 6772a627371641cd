package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"alfredoptarigan/nps-analyzer/internal/logger"
)

// Scheduler runs the periodic backup job.
type Scheduler interface {
	Start(ctx context.Context) error
	Stop()
}

type scheduler struct {
	backups  BackupService
	schedule string
	log      *logger.Logger

	cron    *cron.Cron
	mu      sync.Mutex
	started bool
}

func NewScheduler(backups BackupService, schedule string, log *logger.Logger) Scheduler {
	log = log.With("component", "scheduler")
	return &scheduler{
		backups:  backups,
		schedule: schedule,
		log:      log,
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.PrintfLogger(log)),
			cron.SkipIfStillRunning(cron.PrintfLogger(log)),
		)),
	}
}

// Start registers the backup job and starts the cron loop. ctx is handed
// to every run.
func (s *scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, func() { s.runBackup(ctx) }); err != nil {
		return fmt.Errorf("invalid backup schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.started = true
	s.log.Info("🚀 backup scheduler started", "schedule", s.schedule)
	return nil
}

// Stop waits for a running backup to finish.
func (s *scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.log.Info("🛑 stopping backup scheduler")
	<-s.cron.Stop().Done()
	s.started = false
	s.log.Info("✅ backup scheduler stopped")
}

func (s *scheduler) runBackup(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	info, err := s.backups.Backup(ctx)
	if err != nil {
		s.log.Error("❌ scheduled backup failed", "error", err)
		return
	}
	s.log.Info("✅ scheduled backup completed", "file", info.Name, "size", info.Size)
}
