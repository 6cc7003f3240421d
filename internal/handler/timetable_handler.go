package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/facultrack/attendance-backend/internal/model"
	"github.com/facultrack/attendance-backend/internal/response"
	"github.com/facultrack/attendance-backend/internal/service"
	"github.com/facultrack/attendance-backend/internal/validator"
)

// TimetableHandler exposes the faculty's weekly schedule.
type TimetableHandler struct {
	timetableService *service.TimetableService
	log              zerolog.Logger
}

// NewTimetableHandler creates a new TimetableHandler.
func NewTimetableHandler(timetableService *service.TimetableService, log zerolog.Logger) *TimetableHandler {
	return &TimetableHandler{
		timetableService: timetableService,
		log:              log.With().Str("component", "timetable_handler").Logger(),
	}
}

// MySchedule godoc
// GET /api/v1/timetable/my-schedule
// Lists every entry ordered by weekday, then start time.
func (h *TimetableHandler) MySchedule(c *gin.Context) {
	fid, ok := facultyID(c)
	if !ok {
		return
	}

	entries, err := h.timetableService.MySchedule(c.Request.Context(), fid)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if entries == nil {
		entries = []model.TimetableEntry{}
	}
	response.Success(c, http.StatusOK, gin.H{"timetable": entries})
}

// ByCourse godoc
// GET /api/v1/timetable/courses/:course_id
func (h *TimetableHandler) ByCourse(c *gin.Context) {
	fid, ok := facultyID(c)
	if !ok {
		return
	}
	courseID, ok := pathID(c, "course_id")
	if !ok {
		return
	}

	entries, err := h.timetableService.ListByCourse(c.Request.Context(), courseID, fid)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if entries == nil {
		entries = []model.TimetableEntry{}
	}
	response.Success(c, http.StatusOK, gin.H{"timetable": entries})
}

// Get godoc
// GET /api/v1/timetable/:id
func (h *TimetableHandler) Get(c *gin.Context) {
	fid, ok := facultyID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	entry, err := h.timetableService.GetByID(c.Request.Context(), id, fid)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"entry": entry})
}

// Create godoc
// POST /api/v1/timetable
// Rejects the entry with SCHEDULE_CONFLICT when it overlaps another of the faculty's sessions.
func (h *TimetableHandler) Create(c *gin.Context) {
	fid, ok := facultyID(c)
	if !ok {
		return
	}

	var req model.CreateTimetableRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	entry, err := h.timetableService.Create(c.Request.Context(), fid, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"entry": entry})
}

// Update godoc
// PUT /api/v1/timetable/:id
func (h *TimetableHandler) Update(c *gin.Context) {
	fid, ok := facultyID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateTimetableRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	entry, err := h.timetableService.Update(c.Request.Context(), id, fid, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"entry": entry})
}

// Delete godoc
// DELETE /api/v1/timetable/:id
func (h *TimetableHandler) Delete(c *gin.Context) {
	fid, ok := facultyID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.timetableService.Delete(c.Request.Context(), id, fid); err != nil {
		respondError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "timetable entry deleted successfully"})
}

// CheckAvailability godoc
// POST /api/v1/timetable/check-availability
// Dry run of the conflict check; nothing is written.
func (h *TimetableHandler) CheckAvailability(c *gin.Context) {
	fid, ok := facultyID(c)
	if !ok {
		return
	}

	var req model.CheckAvailabilityRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.timetableService.CheckAvailability(c.Request.Context(), fid, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}
