package services

import (
	"context"
	"fmt"
	"io"
	"os"

	"alfredoptarigan/nps-analyzer/internal/logger"
	"alfredoptarigan/nps-analyzer/internal/models"
)

// IngestService runs an uploaded CSV through parsing, metrics, insights and
// persistence.
type IngestService interface {
	IngestFile(ctx context.Context, path, filename string) (*models.UploadResult, error)
	Ingest(ctx context.Context, r io.Reader, filename string) (*models.UploadResult, error)
}

type ingestService struct {
	parser  CSVParser
	history HistoryStore
	log     *logger.Logger
}

func NewIngestService(parser CSVParser, history HistoryStore, log *logger.Logger) IngestService {
	return &ingestService{
		parser:  parser,
		history: history,
		log:     log.With("component", "ingest"),
	}
}

func (s *ingestService) IngestFile(ctx context.Context, path, filename string) (*models.UploadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	return s.Ingest(ctx, f, filename)
}

func (s *ingestService) Ingest(ctx context.Context, r io.Reader, filename string) (*models.UploadResult, error) {
	s.log.Info("🔄 processing upload", "filename", filename)

	parsed, err := s.parser.Parse(r)
	if err != nil {
		return nil, err
	}
	if len(parsed.Evaluations) == 0 {
		return nil, fmt.Errorf("%w (%d rows rejected)", ErrNoValidRows, parsed.Rejected)
	}

	evals := parsed.Evaluations
	overall := ComputeNPS(evals)
	byPlan := ComputeNPSByPlan(evals)

	upload, err := s.history.RecordBatch(ctx, filename, evals)
	if err != nil {
		return nil, err
	}

	warnings := parsed.Warnings
	if warnings == nil {
		warnings = []models.RowWarning{}
	}

	result := &models.UploadResult{
		UploadID:          upload.ID.String(),
		FileName:          filename,
		UploadDate:        upload.UploadDate,
		TotalRecords:      len(evals),
		RejectedRows:      parsed.Rejected,
		UniqueDates:       upload.UniqueDates,
		NPSResults:        overall,
		NPSResultsByPlan:  byPlan,
		Insights:          GenerateInsights(overall, byPlan),
		ScoreDistribution: ScoreHistogram(evals),
		PlanPercentages:   PlanDistribution(evals),
		Warnings:          warnings,
		Evaluations:       evals,
	}

	s.log.Info("✅ upload processed",
		"upload_id", result.UploadID,
		"records", result.TotalRecords,
		"rejected", result.RejectedRows,
		"nps", overall.NPS,
	)

	return result, nil
}
