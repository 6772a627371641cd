package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"alfredoptarigan/nps-analyzer/internal/models"
)

type EvaluationRepository interface {
	WithTx(tx *gorm.DB) EvaluationRepository
	CreateBatch(ctx context.Context, evals []models.Evaluation) error
	FindByDate(ctx context.Context, date string) ([]models.Evaluation, error)
	FindAll(ctx context.Context) ([]models.Evaluation, error)
	FindCommented(ctx context.Context, since string, category models.Category, limit int) ([]models.Evaluation, error)
	Count(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (*models.EvaluationStats, error)
	DeleteAll(ctx context.Context) (int64, error)
}

const createBatchSize = 500

type evaluationRepository struct {
	db *gorm.DB
}

func NewEvaluationRepository(db *gorm.DB) EvaluationRepository {
	return &evaluationRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *evaluationRepository) WithTx(tx *gorm.DB) EvaluationRepository {
	return &evaluationRepository{db: tx}
}

func (r *evaluationRepository) CreateBatch(ctx context.Context, evals []models.Evaluation) error {
	if len(evals) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).CreateInBatches(&evals, createBatchSize).Error; err != nil {
		return fmt.Errorf("failed to create evaluations: %w", err)
	}
	return nil
}

func (r *evaluationRepository) FindByDate(ctx context.Context, date string) ([]models.Evaluation, error) {
	var evals []models.Evaluation
	err := r.db.WithContext(ctx).
		Where("date = ?", date).
		Order("id ASC").
		Find(&evals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find evaluations for %s: %w", date, err)
	}
	return evals, nil
}

func (r *evaluationRepository) FindAll(ctx context.Context) ([]models.Evaluation, error) {
	var evals []models.Evaluation
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&evals).Error; err != nil {
		return nil, fmt.Errorf("failed to find evaluations: %w", err)
	}
	return evals, nil
}

// FindCommented returns the newest evaluations with a non-empty comment.
// An empty since or category disables that filter.
func (r *evaluationRepository) FindCommented(ctx context.Context, since string, category models.Category, limit int) ([]models.Evaluation, error) {
	query := r.db.WithContext(ctx).
		Where("comment IS NOT NULL AND comment <> ''")

	if since != "" {
		query = query.Where("date >= ?", since)
	}
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var evals []models.Evaluation
	if err := query.Order("date DESC, id DESC").Find(&evals).Error; err != nil {
		return nil, fmt.Errorf("failed to find commented evaluations: %w", err)
	}
	return evals, nil
}

func (r *evaluationRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Evaluation{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count evaluations: %w", err)
	}
	return count, nil
}

func (r *evaluationRepository) Stats(ctx context.Context) (*models.EvaluationStats, error) {
	var stats models.EvaluationStats
	err := r.db.WithContext(ctx).
		Model(&models.Evaluation{}).
		Select(`COUNT(*) AS total_evaluations,
			COUNT(DISTINCT date) AS unique_dates,
			COUNT(DISTINCT client_id) AS unique_clients,
			AVG(score) AS average_score,
			MIN(date) AS first_date,
			MAX(date) AS last_date`).
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute evaluation stats: %w", err)
	}
	return &stats, nil
}

func (r *evaluationRepository) DeleteAll(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.Evaluation{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete evaluations: %w", result.Error)
	}
	return result.RowsAffected, nil
}
