package services

import (
	"errors"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"strings"
	"testing"
	"testing/iotest"
)

func fileHeader(name, contentType string, size int64) *multipart.FileHeader {
	h := textproto.MIMEHeader{}
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	return &multipart.FileHeader{Filename: name, Header: h, Size: size}
}

func TestStorageService_ValidateCSV(t *testing.T) {
	s := NewStorageService(t.TempDir(), 5*1024*1024)

	cases := []struct {
		name string
		file *multipart.FileHeader
		want error
	}{
		{"csv extension", fileHeader("data.CSV", "application/octet-stream", 10), nil},
		{"text/csv without extension", fileHeader("export", "text/csv; charset=utf-8", 10), nil},
		{"text/plain", fileHeader("export.txt", "text/plain", 10), nil},
		{"empty", fileHeader("data.csv", "text/csv", 0), ErrEmptyFile},
		{"too large", fileHeader("data.csv", "text/csv", 5*1024*1024+1), ErrFileTooLarge},
		{"wrong type", fileHeader("report.pdf", "application/pdf", 10), ErrUnsupportedFileType},
	}

	for _, tc := range cases {
		err := s.ValidateCSV(tc.file)
		if tc.want == nil && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if tc.want != nil && !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestStorageService_DeleteFile(t *testing.T) {
	dir := t.TempDir()
	s := NewStorageService(dir, 0)

	if err := os.WriteFile(s.GetFilePath("tmp.csv"), []byte("nota,plano\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := s.DeleteFile("tmp.csv"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(s.GetFilePath("tmp.csv")); !os.IsNotExist(err) {
		t.Fatalf("file still exists")
	}
}

func TestStorageService_WriteUploadRemovesPartialFile(t *testing.T) {
	dir := t.TempDir()
	s := &storageService{uploadPath: dir, maxFileSize: 5 * 1024 * 1024}

	src := io.MultiReader(strings.NewReader("nota,plano\n9,PRO\n"), iotest.ErrReader(errors.New("connection reset")))
	if _, _, err := s.writeUpload(src); err == nil {
		t.Fatalf("expected copy error")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("partial upload left on disk: %v", entries[0].Name())
	}
}

func TestStorageService_WriteUpload(t *testing.T) {
	s := &storageService{uploadPath: t.TempDir(), maxFileSize: 5 * 1024 * 1024}

	name, path, err := s.writeUpload(strings.NewReader("nota,plano\n9,PRO\n"))
	if err != nil {
		t.Fatalf("write upload: %v", err)
	}
	if !strings.HasPrefix(name, "upload_") || !strings.HasSuffix(name, ".csv") {
		t.Fatalf("unexpected file name %q", name)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "nota,plano\n9,PRO\n" {
		t.Fatalf("unexpected file content %q (%v)", data, err)
	}
}
