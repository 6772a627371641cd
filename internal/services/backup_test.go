package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"

	"alfredoptarigan/nps-analyzer/internal/logger"
	"alfredoptarigan/nps-analyzer/internal/models"
	"alfredoptarigan/nps-analyzer/internal/repositories"
)

func newTestBackupService(t *testing.T, clock func() time.Time) (BackupService, string, HistoryStore) {
	t.Helper()

	db := newTestDB(t)
	historyRepo := repositories.NewHistoryRepository(db)
	evalRepo := repositories.NewEvaluationRepository(db)
	uploadRepo := repositories.NewUploadRepository(db)

	dir := filepath.Join(t.TempDir(), "backups")
	backups := NewBackupService(dir, 5, clock, historyRepo, uploadRepo, evalRepo, logger.NewNop())
	store := NewHistoryStore(db, historyRepo, evalRepo, uploadRepo, backups, func() time.Time { return fixedNow }, logger.NewNop())
	return backups, dir, store
}

func TestBackupService_RetainsFiveNewest(t *testing.T) {
	backups, dir, _ := newTestBackupService(t, steppingClock(fixedNow, time.Minute))
	ctx := context.Background()

	var names []string
	for i := 0; i < 6; i++ {
		info, err := backups.Backup(ctx)
		if err != nil {
			t.Fatalf("backup %d: %v", i, err)
		}
		names = append(names, info.Name)
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(files) != 5 {
		t.Fatalf("expected 5 backups on disk, got %d", len(files))
	}
	if _, err := os.Stat(filepath.Join(dir, names[0])); !os.IsNotExist(err) {
		t.Fatalf("oldest backup %s should have been removed", names[0])
	}

	listed, err := backups.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 5 || listed[0].Name != names[5] || listed[4].Name != names[1] {
		t.Fatalf("unexpected listing: %+v", listed)
	}
}

func TestBackupService_NamesStayOrderedWithFrozenClock(t *testing.T) {
	backups, _, _ := newTestBackupService(t, func() time.Time { return fixedNow })
	ctx := context.Background()

	first, err := backups.Backup(ctx)
	if err != nil {
		t.Fatalf("first backup: %v", err)
	}
	second, err := backups.Backup(ctx)
	if err != nil {
		t.Fatalf("second backup: %v", err)
	}
	if !(first.Name < second.Name) {
		t.Fatalf("expected %s < %s", first.Name, second.Name)
	}
	if first.Name != "backup-2025-06-15T10-30-00.000Z.json" {
		t.Fatalf("unexpected name %s", first.Name)
	}
}

func TestBackupService_SnapshotContent(t *testing.T) {
	backups, dir, store := newTestBackupService(t, steppingClock(fixedNow, time.Second))
	ctx := context.Background()

	if _, err := store.RecordBatch(ctx, "snap.csv", onDate("2024-03-05", evals(models.PlanPro, 10, 2))); err != nil {
		t.Fatalf("record: %v", err)
	}

	info, err := backups.Backup(ctx)
	if err != nil {
		t.Fatalf("backup: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, info.Name))
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}

	var snapshot models.Snapshot
	if err := sonic.Unmarshal(data, &snapshot); err != nil {
		t.Fatalf("decode backup: %v", err)
	}
	if len(snapshot.History) != 1 || len(snapshot.Uploads) != 1 || len(snapshot.Evaluations) != 2 {
		t.Fatalf("unexpected snapshot sizes: %d/%d/%d", len(snapshot.History), len(snapshot.Uploads), len(snapshot.Evaluations))
	}
	if snapshot.History[0].Scores()[models.PlanPro] != 0 {
		t.Fatalf("unexpected PRO NPS in snapshot: %+v", snapshot.History[0].Scores())
	}
	if !strings.Contains(string(data), `"nps_by_plan"`) {
		t.Fatalf("snapshot misses nps_by_plan")
	}
}

func TestBackupService_PurgeAndEmptyList(t *testing.T) {
	backups, _, _ := newTestBackupService(t, steppingClock(fixedNow, time.Second))

	listed, err := backups.List()
	if err != nil || len(listed) != 0 {
		t.Fatalf("expected empty list before any backup, got %v (%v)", listed, err)
	}

	for i := 0; i < 3; i++ {
		if _, err := backups.Backup(context.Background()); err != nil {
			t.Fatalf("backup: %v", err)
		}
	}

	removed, err := backups.Purge()
	if err != nil || removed != 3 {
		t.Fatalf("expected 3 removed, got %d (%v)", removed, err)
	}
}
