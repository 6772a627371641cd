package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/nps-analyzer/internal/services"
)

type Handlers struct {
	Upload  *UploadHandler
	History *HistoryHandler
	Health  *HealthHandler
	Backup  *BackupHandler
	Insight *InsightHandler
}

// Endpoints lists the public routes, relative to the /api prefix.
var Endpoints = []string{
	"POST /api/upload",
	"GET /api/history",
	"DELETE /api/history",
	"GET /api/stats",
	"GET /api/health",
	"POST /api/backups",
	"GET /api/backups",
	"GET /api/insights/comments",
}

func RegisterRoutes(api fiber.Router, h Handlers) {
	api.Get("/health", h.Health.Check)

	api.Post("/upload", h.Upload.HandleUpload)

	api.Get("/history", h.History.GetHistory)
	api.Delete("/history", h.History.ClearHistory)
	api.Get("/stats", h.History.GetStats)

	api.Post("/backups", h.Backup.CreateBackup)
	api.Get("/backups", h.Backup.ListBackups)

	api.Get("/insights/comments", h.Insight.SummarizeComments)
}

// UploadBodyLimit is the request body limit for a given maximum file size,
// leaving room for the multipart framing around the file.
func UploadBodyLimit(maxFileSize int64) int {
	return int(maxFileSize) + 1024*1024
}

// ErrorHandler renders errors that escape handlers, including body-limit
// and routing errors raised by fiber itself.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	message := err.Error()
	switch code {
	case fiber.StatusInternalServerError:
		message = "internal server error"
	case fiber.StatusRequestEntityTooLarge:
		// Bodies past the limit never reach the upload handler.
		code = fiber.StatusBadRequest
		message = services.ErrFileTooLarge.Error()
	}

	return errorResponse(c, code, message)
}
