package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/facultrack/attendance-backend/internal/response"
	"github.com/facultrack/attendance-backend/internal/service"
)

// OCRHandler handles timetable image uploads.
type OCRHandler struct {
	ocrService *service.OCRService
	log        zerolog.Logger
}

// NewOCRHandler creates a new OCRHandler.
func NewOCRHandler(ocrService *service.OCRService, log zerolog.Logger) *OCRHandler {
	return &OCRHandler{
		ocrService: ocrService,
		log:        log.With().Str("component", "ocr_handler").Logger(),
	}
}

// Upload godoc
// POST /api/v1/ocr/upload
// Reads a timetable photo (multipart field "image") and returns draft entries
// for review. Nothing is written to the schedule.
func (h *OCRHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	result, err := h.ocrService.Process(c.Request.Context(), file, header)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}
