package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"alfredoptarigan/nps-analyzer/internal/logger"
	"alfredoptarigan/nps-analyzer/internal/models"
	"alfredoptarigan/nps-analyzer/internal/repositories"
)

const (
	backupPrefix = "backup-"
	backupSuffix = ".json"
	// Fixed width so that lexical order of file names is chronological order.
	backupStampLayout = "2006-01-02T15-04-05.000Z"
)

type BackupService interface {
	Backup(ctx context.Context) (*models.BackupInfo, error)
	List() ([]models.BackupInfo, error)
	Purge() (int, error)
}

type backupService struct {
	dir         string
	retention   int
	now         func() time.Time
	historyRepo repositories.HistoryRepository
	uploadRepo  repositories.UploadRepository
	evalRepo    repositories.EvaluationRepository
	log         *logger.Logger

	mu   sync.Mutex
	last time.Time
}

func NewBackupService(
	dir string,
	retention int,
	now func() time.Time,
	historyRepo repositories.HistoryRepository,
	uploadRepo repositories.UploadRepository,
	evalRepo repositories.EvaluationRepository,
	log *logger.Logger,
) BackupService {
	if retention < 1 {
		retention = 1
	}
	return &backupService{
		dir:         dir,
		retention:   retention,
		now:         now,
		historyRepo: historyRepo,
		uploadRepo:  uploadRepo,
		evalRepo:    evalRepo,
		log:         log.With("component", "backup"),
	}
}

// Backup writes a JSON snapshot of the store and prunes old snapshots so
// that only the newest retention files remain.
func (b *backupService) Backup(ctx context.Context) (*models.BackupInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := os.MkdirAll(b.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	history, err := b.historyRepo.FindSince(ctx, "")
	if err != nil {
		return nil, err
	}
	uploads, err := b.uploadRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	evals, err := b.evalRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	stamp := b.nextStamp()
	snapshot := models.Snapshot{
		CreatedAt:   stamp,
		History:     history,
		Uploads:     uploads,
		Evaluations: evals,
	}

	data, err := sonic.ConfigStd.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}

	name := backupPrefix + stamp.Format(backupStampLayout) + backupSuffix
	path := filepath.Join(b.dir, name)
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write backup: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return nil, fmt.Errorf("failed to finalize backup: %w", err)
	}

	b.log.Info("backup created",
		"file", name,
		"history_entries", len(history),
		"evaluations", len(evals),
	)

	if err := b.prune(); err != nil {
		// The new snapshot is already on disk.
		b.log.Warn("failed to prune old backups", "error", err)
	}

	return &models.BackupInfo{
		Name:      name,
		Size:      int64(len(data)),
		CreatedAt: stamp,
	}, nil
}

// List returns the retained backups, newest first.
func (b *backupService) List() ([]models.BackupInfo, error) {
	names, err := b.backupNames()
	if err != nil {
		return nil, err
	}

	backups := make([]models.BackupInfo, 0, len(names))
	for i := len(names) - 1; i >= 0; i-- {
		name := names[i]
		info, err := os.Stat(filepath.Join(b.dir, name))
		if err != nil {
			continue
		}
		createdAt, err := parseBackupStamp(name)
		if err != nil {
			createdAt = info.ModTime().UTC()
		}
		backups = append(backups, models.BackupInfo{
			Name:      name,
			Size:      info.Size(),
			CreatedAt: createdAt,
		})
	}
	return backups, nil
}

// Purge deletes every backup file and returns how many were removed.
func (b *backupService) Purge() (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	names, err := b.backupNames()
	if err != nil {
		return 0, err
	}
	for i, name := range names {
		if err := os.Remove(filepath.Join(b.dir, name)); err != nil {
			return i, fmt.Errorf("failed to delete backup %s: %w", name, err)
		}
	}
	return len(names), nil
}

func (b *backupService) prune() error {
	names, err := b.backupNames()
	if err != nil {
		return err
	}
	if len(names) <= b.retention {
		return nil
	}

	for _, name := range names[:len(names)-b.retention] {
		if err := os.Remove(filepath.Join(b.dir, name)); err != nil {
			return fmt.Errorf("failed to delete backup %s: %w", name, err)
		}
		b.log.Debug("old backup removed", "file", name)
	}
	return nil
}

// backupNames lists backup files sorted oldest first.
func (b *backupService) backupNames() ([]string, error) {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, backupPrefix) || !strings.HasSuffix(name, backupSuffix) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// nextStamp never repeats or goes backwards, so names stay unique and
// ordered even when the clock has not advanced between two backups.
func (b *backupService) nextStamp() time.Time {
	stamp := b.now().UTC().Truncate(time.Millisecond)
	if !stamp.After(b.last) {
		stamp = b.last.Add(time.Millisecond)
	}
	b.last = stamp
	return stamp
}

func parseBackupStamp(name string) (time.Time, error) {
	raw := strings.TrimSuffix(strings.TrimPrefix(name, backupPrefix), backupSuffix)
	return time.Parse(backupStampLayout, raw)
}
