package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/rs/zerolog"

	"github.com/facultrack/attendance-backend/internal/ocr"
)

// ErrOCRFailed wraps failures of the text-detection collaborator.
var ErrOCRFailed = errors.New("text detection failed")

// OCRRecord is one recovered timetable row with its validation outcome.
type OCRRecord struct {
	Record ocr.Draft   `json:"record"`
	Valid  bool        `json:"valid"`
	Issues []ocr.Issue `json:"issues"`
}

// OCRResult is the response of a timetable image upload.
type OCRResult struct {
	Image   *StoredImage `json:"image"`
	Tokens  int          `json:"tokens"`
	Records []OCRRecord  `json:"records"`
}

// ImageSaver stores validated uploads.
type ImageSaver interface {
	SaveImage(file multipart.File, header *multipart.FileHeader) (*StoredImage, error)
	RemoveImage(img *StoredImage) error
}

// OCRService turns a timetable image into draft entries. Nothing is persisted
// besides the uploaded file, and that file is removed again when detection
// fails; the client reviews drafts before creating entries.
type OCRService struct {
	media    ImageSaver
	detector ocr.TextDetector
	log      zerolog.Logger
}

// NewOCRService creates a new OCRService.
func NewOCRService(media ImageSaver, detector ocr.TextDetector, log zerolog.Logger) *OCRService {
	return &OCRService{
		media:    media,
		detector: detector,
		log:      log.With().Str("component", "ocr_service").Logger(),
	}
}

// Process stores the image, detects its text and assembles drafts. Incomplete
// drafts are returned too, marked invalid with the issues found.
func (s *OCRService) Process(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*OCRResult, error) {
	img, err := s.media.SaveImage(file, header)
	if err != nil {
		return nil, err
	}

	tokens, err := s.detector.DetectText(ctx, img.Data)
	if err != nil {
		if rmErr := s.media.RemoveImage(img); rmErr != nil {
			s.log.Warn().Err(rmErr).Str("image", img.Path).Msg("Failed to remove upload after detection error")
		}
		if errors.Is(err, ocr.ErrDetectorUnavailable) {
			return nil, err
		}
		s.log.Error().Err(err).Str("image", img.Path).Msg("Text detection failed")
		return nil, fmt.Errorf("%w: %v", ErrOCRFailed, err)
	}

	result := &OCRResult{Image: img, Tokens: len(tokens), Records: BuildRecords(ocr.ExtractDrafts(tokens))}
	s.log.Info().
		Str("image", img.Path).
		Int("tokens", len(tokens)).
		Int("records", len(result.Records)).
		Msg("Timetable image processed")
	return result, nil
}

// BuildRecords validates each draft in order.
func BuildRecords(drafts []ocr.Draft) []OCRRecord {
	records := make([]OCRRecord, 0, len(drafts))
	for _, d := range drafts {
		_, issues := ocr.ValidateDraft(d)
		if issues == nil {
			issues = []ocr.Issue{}
		}
		records = append(records, OCRRecord{Record: d, Valid: len(issues) == 0, Issues: issues})
	}
	return records
}
