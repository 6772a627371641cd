package services

import (
	"path/filepath"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"alfredoptarigan/nps-analyzer/internal/config"
	"alfredoptarigan/nps-analyzer/internal/logger"
	"alfredoptarigan/nps-analyzer/internal/repositories"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "nps-test.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// steppingClock returns a clock that advances by step on every call.
func steppingClock(start time.Time, step time.Duration) func() time.Time {
	current := start
	return func() time.Time {
		now := current
		current = current.Add(step)
		return now
	}
}

type testStore struct {
	db      *gorm.DB
	store   HistoryStore
	backups BackupService
	dir     string
}

func newTestStore(t *testing.T) *testStore {
	t.Helper()

	db := newTestDB(t)
	historyRepo := repositories.NewHistoryRepository(db)
	evalRepo := repositories.NewEvaluationRepository(db)
	uploadRepo := repositories.NewUploadRepository(db)
	log := logger.NewNop()
	clock := func() time.Time { return fixedNow }

	dir := filepath.Join(t.TempDir(), "backups")
	backups := NewBackupService(dir, 5, steppingClock(fixedNow, time.Second), historyRepo, uploadRepo, evalRepo, log)
	store := NewHistoryStore(db, historyRepo, evalRepo, uploadRepo, backups, clock, log)

	return &testStore{db: db, store: store, backups: backups, dir: dir}
}
