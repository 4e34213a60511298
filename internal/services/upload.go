package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"alfredoptarigan/talent-screener/internal/models"
)

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".txt":  true,
	".md":   true,
}

// UploadService turns uploaded files into in-memory documents. Nothing is written to disk.
type UploadService interface {
	ReadFile(file *multipart.FileHeader) (*models.Document, error)
	ReadPath(path string) (*models.Document, error)
	ReadBytes(name string, data []byte) (*models.Document, error)
}

type uploadService struct {
	maxFileSize int64
}

func NewUploadService(maxFileSize int64) UploadService {
	return &uploadService{maxFileSize: maxFileSize}
}

// ReadFile implements UploadService.
func (s *uploadService) ReadFile(file *multipart.FileHeader) (*models.Document, error) {
	if err := s.checkName(file.Filename); err != nil {
		return nil, err
	}
	if s.maxFileSize > 0 && file.Size > s.maxFileSize {
		return nil, fmt.Errorf("file %s too large. Max size: %d bytes", file.Filename, s.maxFileSize)
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	data, err := s.readLimited(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file %s: %w", file.Filename, err)
	}

	return s.ReadBytes(file.Filename, data)
}

// ReadPath implements UploadService.
func (s *uploadService) ReadPath(path string) (*models.Document, error) {
	if err := s.checkName(path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	data, err := s.readLimited(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return s.ReadBytes(filepath.Base(path), data)
}

// ReadBytes implements UploadService.
func (s *uploadService) ReadBytes(name string, data []byte) (*models.Document, error) {
	if err := s.checkName(name); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("file %s is empty", name)
	}
	if s.maxFileSize > 0 && int64(len(data)) > s.maxFileSize {
		return nil, fmt.Errorf("file %s too large. Max size: %d bytes", name, s.maxFileSize)
	}

	return &models.Document{
		Name:     name,
		MimeType: detectMimeType(name, data),
		Data:     data,
	}, nil
}

func (s *uploadService) checkName(name string) error {
	ext := strings.ToLower(filepath.Ext(name))
	if !allowedExtensions[ext] {
		return fmt.Errorf("invalid file extension: %q", ext)
	}
	return nil
}

func (s *uploadService) readLimited(r io.Reader) ([]byte, error) {
	if s.maxFileSize <= 0 {
		return io.ReadAll(r)
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxFileSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > s.maxFileSize {
		return nil, fmt.Errorf("file too large. Max size: %d bytes", s.maxFileSize)
	}
	return data, nil
}

func detectMimeType(name string, data []byte) string {
	detected := mimetype.Detect(data)
	switch {
	case detected.Is(MimePDF):
		return MimePDF
	case detected.Is(MimeDOCX):
		return MimeDOCX
	case detected.Is(MimeText):
		if strings.EqualFold(filepath.Ext(name), ".md") {
			return MimeMarkdown
		}
		return MimeText
	default:
		return mimeTypeForExt(name)
	}
}
