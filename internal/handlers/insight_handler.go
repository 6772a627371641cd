package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/nps-analyzer/internal/logger"
	"alfredoptarigan/nps-analyzer/internal/services"
)

type InsightHandler struct {
	commentService services.CommentInsightService
	validate       *validator.Validate
	log            *logger.Logger
}

func NewInsightHandler(commentService services.CommentInsightService, validate *validator.Validate, log *logger.Logger) *InsightHandler {
	return &InsightHandler{
		commentService: commentService,
		validate:       validate,
		log:            log.With("handler", "insight"),
	}
}

// SummarizeComments handles GET /insights/comments?period=...
func (h *InsightHandler) SummarizeComments(c *fiber.Ctx) error {
	var q HistoryQuery
	if err := c.QueryParser(&q); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "invalid query parameters")
	}
	if err := h.validate.Struct(q); err != nil {
		return validationError(c, err)
	}

	summary, err := h.commentService.SummarizeDetractorComments(c.UserContext(), q.period())
	if err != nil {
		if errors.Is(err, services.ErrSummaryUnavailable) {
			return errorResponse(c, fiber.StatusServiceUnavailable, "comment summaries are disabled, set GEMINI_API_KEY to enable them")
		}
		h.log.Error("failed to summarize comments", "error", err)
		return errorResponse(c, fiber.StatusInternalServerError, "failed to summarize comments")
	}

	return success(c, summary)
}
