package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/nps-analyzer/internal/logger"
	"alfredoptarigan/nps-analyzer/internal/models"
	"alfredoptarigan/nps-analyzer/internal/services"
)

type HistoryQuery struct {
	Period    string `query:"period" validate:"omitempty,oneof=all 7d 30d 90d"`
	Aggregate string `query:"aggregate" validate:"omitempty,oneof=quarterly"`
}

func (q HistoryQuery) period() models.Period {
	if q.Period == "" {
		return models.PeriodAll
	}
	return models.Period(q.Period)
}

type HistoryHandler struct {
	historyStore services.HistoryStore
	validate     *validator.Validate
	log          *logger.Logger
}

func NewHistoryHandler(historyStore services.HistoryStore, validate *validator.Validate, log *logger.Logger) *HistoryHandler {
	return &HistoryHandler{
		historyStore: historyStore,
		validate:     validate,
		log:          log.With("handler", "history"),
	}
}

// GetHistory handles GET /history?period=all|7d|30d|90d&aggregate=quarterly
func (h *HistoryHandler) GetHistory(c *fiber.Ctx) error {
	var q HistoryQuery
	if err := c.QueryParser(&q); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "invalid query parameters")
	}
	if err := h.validate.Struct(q); err != nil {
		return validationError(c, err)
	}

	resp, err := h.historyStore.History(c.UserContext(), q.period(), q.Aggregate == "quarterly")
	if err != nil {
		h.log.Error("failed to load history", "error", err)
		return errorResponse(c, fiber.StatusInternalServerError, "failed to load history")
	}

	return success(c, resp)
}

// ClearHistory handles DELETE /history. A backup is written before anything
// is removed.
func (h *HistoryHandler) ClearHistory(c *fiber.Ctx) error {
	result, err := h.historyStore.Clear(c.UserContext())
	if err != nil {
		h.log.Error("failed to clear history", "error", err)
		return errorResponse(c, fiber.StatusInternalServerError, "failed to clear history")
	}

	return successWithCode(c, fiber.StatusOK, "history cleared, backup created", result)
}

// GetStats handles GET /stats.
func (h *HistoryHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.historyStore.Stats(c.UserContext())
	if err != nil {
		h.log.Error("failed to load stats", "error", err)
		return errorResponse(c, fiber.StatusInternalServerError, "failed to load statistics")
	}

	return success(c, stats)
}
