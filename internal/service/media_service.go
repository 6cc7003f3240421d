package service

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/facultrack/attendance-backend/internal/config"
)

// Sentinel errors for media uploads.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
)

// Allowed image MIME types, detected from content rather than the client header.
var allowedMIMETypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

const uploadURLPrefix = "/uploads/"

// StoredImage is an uploaded image kept on local storage.
type StoredImage struct {
	Path     string `json:"path"`
	MIMEType string `json:"mime_type"`
	Size     int    `json:"size"`
	Data     []byte `json:"-"`
}

// MediaService handles timetable image uploads.
type MediaService struct {
	cfg *config.Config
}

// NewMediaService creates a new MediaService.
func NewMediaService(cfg *config.Config) *MediaService {
	return &MediaService{cfg: cfg}
}

// SaveImage validates an uploaded image and stores it under a UUID filename.
// Only JPEG and PNG up to the configured size are accepted.
func (s *MediaService) SaveImage(file multipart.File, header *multipart.FileHeader) (*StoredImage, error) {
	if header.Size > s.cfg.MaxUploadBytes {
		return nil, fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, header.Size, s.cfg.MaxUploadBytes)
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, s.cfg.MaxUploadBytes)
	}

	mtype := mimetype.Detect(data)
	ext, ok := allowedMIMETypes[mtype.String()]
	if !ok {
		return nil, fmt.Errorf("%w: %s (allowed: image/jpeg, image/png)", ErrUnsupportedFileType, mtype.String())
	}

	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	filename := uuid.New().String() + ext
	destPath := filepath.Join(s.cfg.UploadDir, filename)
	if err := os.WriteFile(destPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("write file: %w", err)
	}

	return &StoredImage{
		Path:     uploadURLPrefix + filename,
		MIMEType: mtype.String(),
		Size:     len(data),
		Data:     data,
	}, nil
}

// RemoveImage deletes a stored upload. Removing a file that is already gone
// is not an error.
func (s *MediaService) RemoveImage(img *StoredImage) error {
	name := filepath.Base(strings.TrimPrefix(img.Path, uploadURLPrefix))
	if name == "." || name == "/" {
		return fmt.Errorf("invalid upload path %q", img.Path)
	}
	if err := os.Remove(filepath.Join(s.cfg.UploadDir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}
