package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"alfredoptarigan/nps-analyzer/internal/logger"
	"alfredoptarigan/nps-analyzer/internal/models"
)

type countingBackups struct {
	mu    sync.Mutex
	calls int
}

func (c *countingBackups) Backup(context.Context) (*models.BackupInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return &models.BackupInfo{Name: "backup-test.json"}, nil
}
func (c *countingBackups) List() ([]models.BackupInfo, error) { return nil, nil }
func (c *countingBackups) Purge() (int, error)                { return 0, nil }

func (c *countingBackups) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestScheduler_RejectsInvalidSchedule(t *testing.T) {
	s := NewScheduler(&countingBackups{}, "every now and then", logger.NewNop())
	if err := s.Start(context.Background()); err == nil {
		t.Fatalf("expected an error for an invalid schedule")
	}
}

func TestScheduler_RunsBackups(t *testing.T) {
	backups := &countingBackups{}
	s := NewScheduler(backups, "@every 1s", logger.NewNop())

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for backups.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	s.Stop()

	if backups.count() == 0 {
		t.Fatalf("expected at least one scheduled backup")
	}
}
