package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"alfredoptarigan/nps-analyzer/internal/logger"
	"alfredoptarigan/nps-analyzer/internal/models"
	"alfredoptarigan/nps-analyzer/internal/repositories"
)

const recentUploadsLimit = 5

var ErrInvalidEvaluation = errors.New("evaluation out of domain")

type HistoryStore interface {
	RecordBatch(ctx context.Context, filename string, evals []models.Evaluation) (*models.UploadRecord, error)
	Query(ctx context.Context, period models.Period) ([]models.HistoryEntry, error)
	History(ctx context.Context, period models.Period, quarterly bool) (*models.HistoryResponse, error)
	Clear(ctx context.Context) (*models.ClearResult, error)
	Stats(ctx context.Context) (*models.StatsResponse, error)
	Counts(ctx context.Context) (*models.StoreCounts, error)
}

type historyStore struct {
	db          *gorm.DB
	historyRepo repositories.HistoryRepository
	evalRepo    repositories.EvaluationRepository
	uploadRepo  repositories.UploadRepository
	backups     BackupService
	now         func() time.Time
	log         *logger.Logger

	// Single writer on top of the per-batch transaction.
	mu sync.Mutex
}

func NewHistoryStore(
	db *gorm.DB,
	historyRepo repositories.HistoryRepository,
	evalRepo repositories.EvaluationRepository,
	uploadRepo repositories.UploadRepository,
	backups BackupService,
	now func() time.Time,
	log *logger.Logger,
) HistoryStore {
	return &historyStore{
		db:          db,
		historyRepo: historyRepo,
		evalRepo:    evalRepo,
		uploadRepo:  uploadRepo,
		backups:     backups,
		now:         now,
		log:         log.With("component", "history"),
	}
}

// RecordBatch stores an upload and its evaluations, then recomputes the
// history entry of every date the batch touches over all evaluations stored
// for that date. Either everything is written or nothing is.
func (s *historyStore) RecordBatch(ctx context.Context, filename string, evals []models.Evaluation) (*models.UploadRecord, error) {
	for i, e := range evals {
		if !e.Valid() {
			return nil, fmt.Errorf("%w: row %d (score %d, plan %q)", ErrInvalidEvaluation, i, e.Score, e.Plan)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	upload := &models.UploadRecord{
		ID:           uuid.New(),
		Filename:     filename,
		TotalRecords: len(evals),
		UniqueDates:  UniqueDates(evals),
		UploadDate:   s.now().UTC(),
	}

	batch := make([]models.Evaluation, len(evals))
	copy(batch, evals)
	for i := range batch {
		uploadID := upload.ID
		batch[i].ID = 0
		batch[i].UploadID = &uploadID
	}
	_, dates := GroupByDate(batch)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		uploadRepo := s.uploadRepo.WithTx(tx)
		evalRepo := s.evalRepo.WithTx(tx)
		historyRepo := s.historyRepo.WithTx(tx)

		if err := uploadRepo.Create(ctx, upload); err != nil {
			return err
		}
		if err := evalRepo.CreateBatch(ctx, batch); err != nil {
			return err
		}

		for _, date := range dates {
			stored, err := evalRepo.FindByDate(ctx, date)
			if err != nil {
				return err
			}

			timestamp, err := ParseCalendarDate(date)
			if err != nil {
				return fmt.Errorf("failed to parse history date %q: %w", date, err)
			}

			entry := &models.HistoryEntry{
				Date:         date,
				Timestamp:    timestamp,
				NPSByPlan:    datatypes.NewJSONType(NPSScoresByPlan(stored)),
				TotalRecords: len(stored),
			}
			if err := historyRepo.Upsert(ctx, entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record upload batch: %w", err)
	}

	s.log.Info("upload batch recorded",
		"upload_id", upload.ID,
		"filename", filename,
		"records", upload.TotalRecords,
		"dates", len(dates),
	)

	return upload, nil
}

// Query returns history entries inside the period, oldest first.
func (s *historyStore) Query(ctx context.Context, period models.Period) ([]models.HistoryEntry, error) {
	since := ""
	if days := period.Days(); days > 0 {
		since = s.now().AddDate(0, 0, -days).Format(DateLayout)
	}
	return s.historyRepo.FindSince(ctx, since)
}

func (s *historyStore) History(ctx context.Context, period models.Period, quarterly bool) (*models.HistoryResponse, error) {
	entries, err := s.Query(ctx, period)
	if err != nil {
		return nil, err
	}

	var points []models.HistoryPoint
	if quarterly {
		points = AggregateByQuarter(entries)
	} else {
		points = HistoryPoints(entries)
	}

	return &models.HistoryResponse{
		Entries:      points,
		TotalEntries: len(points),
		Period:       period,
		Aggregated:   quarterly,
	}, nil
}

// Clear takes a backup and then removes every history entry and stored
// evaluation. Nothing is deleted when the backup fails. The upload log is
// kept.
func (s *historyStore) Clear(ctx context.Context) (*models.ClearResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	backup, err := s.backups.Backup(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to back up before clearing history: %w", err)
	}

	result := &models.ClearResult{Backup: backup}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if result.HistoryDeleted, err = s.historyRepo.WithTx(tx).DeleteAll(ctx); err != nil {
			return err
		}
		if result.EvaluationsDeleted, err = s.evalRepo.WithTx(tx).DeleteAll(ctx); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to clear history: %w", err)
	}

	s.log.Info("history cleared",
		"backup", backup.Name,
		"history_deleted", result.HistoryDeleted,
		"evaluations_deleted", result.EvaluationsDeleted,
	)

	return result, nil
}

func (s *historyStore) Stats(ctx context.Context) (*models.StatsResponse, error) {
	stats, err := s.evalRepo.Stats(ctx)
	if err != nil {
		return nil, err
	}
	if stats.AverageScore != nil {
		avg := round1(*stats.AverageScore)
		stats.AverageScore = &avg
	}

	recent, err := s.uploadRepo.FindRecent(ctx, recentUploadsLimit)
	if err != nil {
		return nil, err
	}

	return &models.StatsResponse{
		Stats:         *stats,
		RecentUploads: recent,
	}, nil
}

func (s *historyStore) Counts(ctx context.Context) (*models.StoreCounts, error) {
	var (
		counts models.StoreCounts
		err    error
	)
	if counts.HistoryEntries, err = s.historyRepo.Count(ctx); err != nil {
		return nil, err
	}
	if counts.Evaluations, err = s.evalRepo.Count(ctx); err != nil {
		return nil, err
	}
	if counts.Uploads, err = s.uploadRepo.Count(ctx); err != nil {
		return nil, err
	}
	return &counts, nil
}

// HistoryPoints converts stored entries to their API view.
func HistoryPoints(entries []models.HistoryEntry) []models.HistoryPoint {
	points := make([]models.HistoryPoint, 0, len(entries))
	for _, e := range entries {
		points = append(points, models.HistoryPoint{
			Date:         e.Date,
			DisplayDate:  FormatDisplayDate(e.Date),
			NPSByPlan:    e.Scores(),
			TotalRecords: e.TotalRecords,
			Timestamp:    e.Timestamp.UTC().Format(time.RFC3339),
		})
	}
	return points
}

type quarterBucket struct {
	year     int
	quarter  int
	earliest time.Time
	sums     map[models.Plan]int
	counts   map[models.Plan]int
	total    int
}

// AggregateByQuarter groups entries by calendar quarter. A plan's quarterly
// NPS is the rounded mean over the entries that report that plan; record
// counts are summed and the earliest date becomes the quarter's timestamp.
// Entries whose date cannot be read are skipped.
func AggregateByQuarter(entries []models.HistoryEntry) []models.HistoryPoint {
	buckets := make(map[[2]int]*quarterBucket)

	for _, e := range entries {
		date, err := ParseCalendarDate(e.Date)
		if err != nil {
			continue
		}
		quarter := (int(date.Month())-1)/3 + 1
		key := [2]int{date.Year(), quarter}

		bucket, ok := buckets[key]
		if !ok {
			bucket = &quarterBucket{
				year:     date.Year(),
				quarter:  quarter,
				earliest: date,
				sums:     make(map[models.Plan]int),
				counts:   make(map[models.Plan]int),
			}
			buckets[key] = bucket
		}
		if date.Before(bucket.earliest) {
			bucket.earliest = date
		}

		for plan, nps := range e.Scores() {
			bucket.sums[plan] += nps
			bucket.counts[plan]++
		}
		bucket.total += e.TotalRecords
	}

	ordered := make([]*quarterBucket, 0, len(buckets))
	for _, b := range buckets {
		ordered = append(ordered, b)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].year != ordered[j].year {
			return ordered[i].year < ordered[j].year
		}
		return ordered[i].quarter < ordered[j].quarter
	})

	points := make([]models.HistoryPoint, 0, len(ordered))
	for _, b := range ordered {
		scores := models.PlanScores{}
		for plan, count := range b.counts {
			scores[plan] = int(math.Round(float64(b.sums[plan]) / float64(count)))
		}

		label := fmt.Sprintf("Q%d %d", b.quarter, b.year)
		points = append(points, models.HistoryPoint{
			Date:         label,
			DisplayDate:  label,
			NPSByPlan:    scores,
			TotalRecords: b.total,
			Timestamp:    b.earliest.Format(time.RFC3339),
		})
	}
	return points
}
