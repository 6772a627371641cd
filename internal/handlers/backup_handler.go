package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/nps-analyzer/internal/logger"
	"alfredoptarigan/nps-analyzer/internal/services"
)

type BackupHandler struct {
	backupService services.BackupService
	log           *logger.Logger
}

func NewBackupHandler(backupService services.BackupService, log *logger.Logger) *BackupHandler {
	return &BackupHandler{
		backupService: backupService,
		log:           log.With("handler", "backup"),
	}
}

func (h *BackupHandler) CreateBackup(c *fiber.Ctx) error {
	info, err := h.backupService.Backup(c.UserContext())
	if err != nil {
		h.log.Error("on-demand backup failed", "error", err)
		return errorResponse(c, fiber.StatusInternalServerError, "failed to create backup")
	}
	return successWithCode(c, fiber.StatusCreated, "backup created", info)
}

func (h *BackupHandler) ListBackups(c *fiber.Ctx) error {
	backups, err := h.backupService.List()
	if err != nil {
		h.log.Error("failed to list backups", "error", err)
		return errorResponse(c, fiber.StatusInternalServerError, "failed to list backups")
	}
	return success(c, backups)
}
