package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/nps-analyzer/internal/logger"
	"alfredoptarigan/nps-analyzer/internal/services"
)

type HealthHandler struct {
	historyStore services.HistoryStore
	env          string
	driver       string
	startedAt    time.Time
	log          *logger.Logger
}

func NewHealthHandler(historyStore services.HistoryStore, env, driver string, startedAt time.Time, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		historyStore: historyStore,
		env:          env,
		driver:       driver,
		startedAt:    startedAt,
		log:          log.With("handler", "health"),
	}
}

// Check handles GET /health. The service reports itself degraded, with a
// 503, when the database cannot be queried.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	body := fiber.Map{
		"status":      "ok",
		"environment": h.env,
		"database":    h.driver,
		"uptime":      time.Since(h.startedAt).Round(time.Second).String(),
		"timestamp":   time.Now().UTC(),
	}

	counts, err := h.historyStore.Counts(c.UserContext())
	if err != nil {
		h.log.Error("health check failed", "error", err)
		body["status"] = "degraded"
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"error":   "database unavailable",
			"data":    body,
		})
	}

	body["counts"] = counts
	return success(c, body)
}
