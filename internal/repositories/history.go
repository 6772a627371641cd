package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alfredoptarigan/nps-analyzer/internal/models"
)

type HistoryRepository interface {
	WithTx(tx *gorm.DB) HistoryRepository
	Upsert(ctx context.Context, entry *models.HistoryEntry) error
	FindByDate(ctx context.Context, date string) (*models.HistoryEntry, error)
	FindSince(ctx context.Context, since string) ([]models.HistoryEntry, error)
	Count(ctx context.Context) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type historyRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) WithTx(tx *gorm.DB) HistoryRepository {
	return &historyRepository{db: tx}
}

// Upsert inserts the entry or, when its date already exists, replaces the
// computed columns.
func (r *historyRepository) Upsert(ctx context.Context, entry *models.HistoryEntry) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"timestamp", "nps_by_plan", "total_records", "updated_at"}),
		}).
		Create(entry).Error
	if err != nil {
		return fmt.Errorf("failed to upsert history for %s: %w", entry.Date, err)
	}
	return nil
}

// FindByDate returns nil without error when no entry exists.
func (r *historyRepository) FindByDate(ctx context.Context, date string) (*models.HistoryEntry, error) {
	var entry models.HistoryEntry
	if err := r.db.WithContext(ctx).Where("date = ?", date).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find history entry: %w", err)
	}
	return &entry, nil
}

// FindSince returns entries dated on or after since, ascending. An empty
// since returns everything.
func (r *historyRepository) FindSince(ctx context.Context, since string) ([]models.HistoryEntry, error) {
	query := r.db.WithContext(ctx)
	if since != "" {
		query = query.Where("date >= ?", since)
	}

	var entries []models.HistoryEntry
	if err := query.Order("date ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to find history entries: %w", err)
	}
	return entries, nil
}

func (r *historyRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.HistoryEntry{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count history entries: %w", err)
	}
	return count, nil
}

func (r *historyRepository) DeleteAll(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.HistoryEntry{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete history entries: %w", result.Error)
	}
	return result.RowsAffected, nil
}
