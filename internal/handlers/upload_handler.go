package handlers

import (
	"errors"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/nps-analyzer/internal/logger"
	"alfredoptarigan/nps-analyzer/internal/services"
)

// Accepted multipart field names for the CSV file.
var uploadFields = []string{"file", "csvFile"}

type UploadHandler struct {
	storageService services.StorageService
	ingestService  services.IngestService
	log            *logger.Logger
}

func NewUploadHandler(
	storageService services.StorageService,
	ingestService services.IngestService,
	log *logger.Logger,
) *UploadHandler {
	return &UploadHandler{
		storageService: storageService,
		ingestService:  ingestService,
		log:            log.With("handler", "upload"),
	}
}

func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "failed to parse multipart form")
	}

	file := firstFile(form, uploadFields...)
	if file == nil {
		return errorResponse(c, fiber.StatusBadRequest, "no file uploaded, send the CSV in the 'file' field")
	}

	if err := h.storageService.ValidateCSV(file); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	filename, filePath, err := h.storageService.SaveFile(file)
	if err != nil {
		h.log.Error("failed to save upload", "error", err)
		return errorResponse(c, fiber.StatusInternalServerError, "failed to save uploaded file")
	}
	defer func() {
		if err := h.storageService.DeleteFile(filename); err != nil {
			h.log.Warn("failed to remove temporary upload", "file", filename, "error", err)
		}
	}()

	result, err := h.ingestService.IngestFile(c.UserContext(), filePath, file.Filename)
	if err != nil {
		if isInputError(err) {
			return errorResponse(c, fiber.StatusBadRequest, err.Error())
		}
		h.log.Error("failed to process upload", "file", file.Filename, "error", err)
		return errorResponse(c, fiber.StatusInternalServerError, "failed to process file")
	}

	return successWithCode(c, fiber.StatusOK, "file processed successfully", result)
}

func firstFile(form *multipart.Form, fields ...string) *multipart.FileHeader {
	for _, field := range fields {
		if files, ok := form.File[field]; ok && len(files) > 0 {
			return files[0]
		}
	}
	return nil
}

func isInputError(err error) bool {
	return errors.Is(err, services.ErrEmptyFile) ||
		errors.Is(err, services.ErrNoValidRows) ||
		errors.Is(err, services.ErrInvalidCSV) ||
		errors.Is(err, services.ErrFileTooLarge) ||
		errors.Is(err, services.ErrUnsupportedFileType)
}
