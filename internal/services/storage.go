package services

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrFileTooLarge        = errors.New("file exceeds the maximum allowed size")
	ErrUnsupportedFileType = errors.New("only CSV files are accepted")
)

var allowedCSVTypes = map[string]bool{
	"text/csv":        true,
	"application/csv": true,
	"text/plain":      true,
}

type StorageService interface {
	ValidateCSV(file *multipart.FileHeader) error
	SaveFile(file *multipart.FileHeader) (string, string, error)
	GetFilePath(filename string) string
	DeleteFile(filename string) error
	EnsureUploadDir() error
}

type storageService struct {
	uploadPath  string
	maxFileSize int64
}

func NewStorageService(uploadPath string, maxFileSize int64) StorageService {
	return &storageService{
		uploadPath:  uploadPath,
		maxFileSize: maxFileSize,
	}
}

func (s *storageService) EnsureUploadDir() error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	return nil
}

// ValidateCSV accepts a file when either its extension is .csv or its
// declared content type is one of the CSV-compatible types.
func (s *storageService) ValidateCSV(file *multipart.FileHeader) error {
	if file.Size == 0 {
		return ErrEmptyFile
	}
	if s.maxFileSize > 0 && file.Size > s.maxFileSize {
		return fmt.Errorf("%w: %d bytes (limit %d)", ErrFileTooLarge, file.Size, s.maxFileSize)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext == ".csv" {
		return nil
	}

	mediaType, _, err := mime.ParseMediaType(file.Header.Get("Content-Type"))
	if err == nil && allowedCSVTypes[strings.ToLower(mediaType)] {
		return nil
	}

	return fmt.Errorf("%w: %q", ErrUnsupportedFileType, file.Filename)
}

// SaveFile stores the upload under a unique name and returns that name and
// the full path.
func (s *storageService) SaveFile(file *multipart.FileHeader) (string, string, error) {
	src, err := file.Open()
	if err != nil {
		return "", "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	return s.writeUpload(src)
}

// writeUpload copies src into a fresh upload file. A partially written file
// is removed before returning an error.
func (s *storageService) writeUpload(src io.Reader) (string, string, error) {
	uniqueFilename := fmt.Sprintf("upload_%s.csv", uuid.New().String())
	filePath := filepath.Join(s.uploadPath, uniqueFilename)

	dst, err := os.Create(filePath)
	if err != nil {
		return "", "", fmt.Errorf("failed to create destination file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(filePath)
		return "", "", fmt.Errorf("failed to save file: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(filePath)
		return "", "", fmt.Errorf("failed to save file: %w", err)
	}

	return uniqueFilename, filePath, nil
}

func (s *storageService) GetFilePath(filename string) string {
	return filepath.Join(s.uploadPath, filename)
}

func (s *storageService) DeleteFile(filename string) error {
	filePath := s.GetFilePath(filename)
	if err := os.Remove(filePath); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
