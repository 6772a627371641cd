package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"alfredoptarigan/nps-analyzer/internal/logger"
	"alfredoptarigan/nps-analyzer/internal/models"
	"alfredoptarigan/nps-analyzer/internal/repositories"
)

// ErrSummaryUnavailable is returned when no LLM client is configured.
var ErrSummaryUnavailable = errors.New("comment summaries are not configured")

const summaryTemperature = 0.3

type CommentInsightService interface {
	SummarizeDetractorComments(ctx context.Context, period models.Period) (*models.CommentSummary, error)
}

type commentInsightService struct {
	evalRepo      repositories.EvaluationRepository
	geminiService GeminiService
	promptBuilder *PromptBuilder
	maxRetries    int
	now           func() time.Time
	log           *logger.Logger
}

// NewCommentInsightService accepts a nil geminiService; every call then
// fails with ErrSummaryUnavailable.
func NewCommentInsightService(
	evalRepo repositories.EvaluationRepository,
	geminiService GeminiService,
	maxRetries int,
	now func() time.Time,
	log *logger.Logger,
) CommentInsightService {
	return &commentInsightService{
		evalRepo:      evalRepo,
		geminiService: geminiService,
		promptBuilder: NewPromptBuilder(),
		maxRetries:    maxRetries,
		now:           now,
		log:           log.With("component", "comment_insights"),
	}
}

type commentSummaryResponse struct {
	Summary string   `json:"summary"`
	Themes  []string `json:"themes"`
}

func (c *commentInsightService) SummarizeDetractorComments(ctx context.Context, period models.Period) (*models.CommentSummary, error) {
	if c.geminiService == nil {
		return nil, ErrSummaryUnavailable
	}

	since := ""
	if days := period.Days(); days > 0 {
		since = c.now().AddDate(0, 0, -days).Format(DateLayout)
	}

	evals, err := c.evalRepo.FindCommented(ctx, since, models.CategoryDetractor, maxPromptComments)
	if err != nil {
		return nil, err
	}

	result := &models.CommentSummary{
		Period:       period,
		CommentsUsed: len(evals),
		Themes:       []string{},
	}
	if len(evals) == 0 {
		return result, nil
	}

	comments := make([]string, 0, len(evals))
	for _, e := range evals {
		comments = append(comments, *e.Comment)
	}

	prompt := c.promptBuilder.BuildCommentSummaryPrompt(comments, periodLabel(period, since))
	c.log.Info("📝 summarizing detractor comments", "comments", len(comments), "prompt_chars", len(prompt))

	response, err := c.geminiService.GenerateTextWithRetry(ctx, prompt, summaryTemperature, c.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to generate comment summary: %w", err)
	}

	var parsed commentSummaryResponse
	if err := sonic.UnmarshalString(extractJSON(response), &parsed); err != nil {
		// Plain prose is still a usable summary.
		c.log.Warn("⚠️ comment summary was not JSON, using raw text", "error", err)
		result.Summary = strings.TrimSpace(response)
		return result, nil
	}

	result.Summary = strings.TrimSpace(parsed.Summary)
	if parsed.Themes != nil {
		result.Themes = parsed.Themes
	}
	return result, nil
}

func periodLabel(period models.Period, since string) string {
	if since == "" {
		return "all time"
	}
	return fmt.Sprintf("last %d days (since %s)", period.Days(), FormatDisplayDate(since))
}
