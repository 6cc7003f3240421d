package service

import (
	"context"
	"errors"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facultrack/attendance-backend/internal/ocr"
)

type fakeSaver struct {
	err     error
	removed []string
}

func (f *fakeSaver) SaveImage(multipart.File, *multipart.FileHeader) (*StoredImage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &StoredImage{Path: "/uploads/x.png", MIMEType: "image/png", Data: []byte("png")}, nil
}

func (f *fakeSaver) RemoveImage(img *StoredImage) error {
	f.removed = append(f.removed, img.Path)
	return nil
}

type fakeDetector struct {
	tokens []ocr.Token
	err    error
}

func (f *fakeDetector) DetectText(context.Context, []byte) ([]ocr.Token, error) {
	return f.tokens, f.err
}

func tokens(words ...string) []ocr.Token {
	out := make([]ocr.Token, len(words))
	for i, w := range words {
		out[i] = ocr.Token{Text: w, Position: i}
	}
	return out
}

func TestOCRProcess(t *testing.T) {
	detector := &fakeDetector{tokens: tokens(
		"CS101", "Monday", "09:00", "10:30", "Room 101",
		"MATH201", "Tuesday", "14:00",
	)}
	svc := NewOCRService(&fakeSaver{}, detector, testLog)

	res, err := svc.Process(context.Background(), nil, &multipart.FileHeader{})
	require.NoError(t, err)

	assert.Equal(t, 8, res.Tokens)
	require.Len(t, res.Records, 2)

	assert.True(t, res.Records[0].Valid)
	assert.Empty(t, res.Records[0].Issues)
	assert.Equal(t, "Room 101", res.Records[0].Record.Venue)

	assert.False(t, res.Records[1].Valid)
	assert.Equal(t, []ocr.Issue{{Field: "end_time", Message: "missing end time"}}, res.Records[1].Issues)
}

func TestOCRProcessErrors(t *testing.T) {
	t.Run("upload rejected", func(t *testing.T) {
		svc := NewOCRService(&fakeSaver{err: ErrUnsupportedFileType}, &fakeDetector{}, testLog)
		_, err := svc.Process(context.Background(), nil, &multipart.FileHeader{})
		assert.True(t, errors.Is(err, ErrUnsupportedFileType))
	})

	t.Run("upload rejected removes nothing", func(t *testing.T) {
		saver := &fakeSaver{err: ErrFileTooLarge}
		_, err := NewOCRService(saver, &fakeDetector{}, testLog).Process(context.Background(), nil, &multipart.FileHeader{})
		assert.True(t, errors.Is(err, ErrFileTooLarge))
		assert.Empty(t, saver.removed)
	})

	detectorErrors := []struct {
		name    string
		err     error
		wantErr error
	}{
		{"detector not configured", ocr.ErrDetectorUnavailable, ocr.ErrDetectorUnavailable},
		{"detector failure", errors.New("boom"), ErrOCRFailed},
	}

	for _, tt := range detectorErrors {
		t.Run(tt.name, func(t *testing.T) {
			saver := &fakeSaver{}
			svc := NewOCRService(saver, &fakeDetector{err: tt.err}, testLog)

			_, err := svc.Process(context.Background(), nil, &multipart.FileHeader{})
			assert.True(t, errors.Is(err, tt.wantErr))
			assert.Equal(t, []string{"/uploads/x.png"}, saver.removed, "stored upload must not be left behind")
		})
	}
}

func TestOCRProcessKeepsImageOnSuccess(t *testing.T) {
	saver := &fakeSaver{}
	svc := NewOCRService(saver, &fakeDetector{tokens: tokens("CS101")}, testLog)

	_, err := svc.Process(context.Background(), nil, &multipart.FileHeader{})
	require.NoError(t, err)
	assert.Empty(t, saver.removed)
}

func TestBuildRecordsEmpty(t *testing.T) {
	assert.Equal(t, []OCRRecord{}, BuildRecords(nil))
}
