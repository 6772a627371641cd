package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"alfredoptarigan/nps-analyzer/internal/models"
)

type UploadRepository interface {
	WithTx(tx *gorm.DB) UploadRepository
	Create(ctx context.Context, upload *models.UploadRecord) error
	FindRecent(ctx context.Context, limit int) ([]models.UploadRecord, error)
	FindAll(ctx context.Context) ([]models.UploadRecord, error)
	Count(ctx context.Context) (int64, error)
}

type uploadRepository struct {
	db *gorm.DB
}

func NewUploadRepository(db *gorm.DB) UploadRepository {
	return &uploadRepository{db: db}
}

func (r *uploadRepository) WithTx(tx *gorm.DB) UploadRepository {
	return &uploadRepository{db: tx}
}

func (r *uploadRepository) Create(ctx context.Context, upload *models.UploadRecord) error {
	if err := r.db.WithContext(ctx).Create(upload).Error; err != nil {
		return fmt.Errorf("failed to create upload record: %w", err)
	}
	return nil
}

func (r *uploadRepository) FindRecent(ctx context.Context, limit int) ([]models.UploadRecord, error) {
	var uploads []models.UploadRecord
	err := r.db.WithContext(ctx).
		Order("upload_date DESC").
		Limit(limit).
		Find(&uploads).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find recent uploads: %w", err)
	}
	return uploads, nil
}

func (r *uploadRepository) FindAll(ctx context.Context) ([]models.UploadRecord, error) {
	var uploads []models.UploadRecord
	if err := r.db.WithContext(ctx).Order("upload_date ASC").Find(&uploads).Error; err != nil {
		return nil, fmt.Errorf("failed to find uploads: %w", err)
	}
	return uploads, nil
}

func (r *uploadRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.UploadRecord{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count uploads: %w", err)
	}
	return count, nil
}
