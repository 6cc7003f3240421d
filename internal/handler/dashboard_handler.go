package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/facultrack/attendance-backend/internal/model"
	"github.com/facultrack/attendance-backend/internal/response"
	"github.com/facultrack/attendance-backend/internal/service"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
	log              zerolog.Logger
}

func NewDashboardHandler(dashboardService *service.DashboardService, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		log:              log.With().Str("component", "dashboard_handler").Logger(),
	}
}

// TodaySchedule godoc
// GET /api/v1/dashboard/schedule/today
func (h *DashboardHandler) TodaySchedule(c *gin.Context) {
	fid, ok := facultyID(c)
	if !ok {
		return
	}

	entries, err := h.dashboardService.TodaySchedule(c.Request.Context(), fid)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if entries == nil {
		entries = []model.TodayEntry{}
	}
	response.Success(c, http.StatusOK, gin.H{"schedule": entries})
}

// Stats godoc
// GET /api/v1/dashboard/stats
func (h *DashboardHandler) Stats(c *gin.Context) {
	fid, ok := facultyID(c)
	if !ok {
		return
	}

	stats, err := h.dashboardService.Stats(c.Request.Context(), fid)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

// AttendanceOverview godoc
// GET /api/v1/dashboard/attendance/overview?month=&year=
// monthly_data is only filled when both month and year are given.
func (h *DashboardHandler) AttendanceOverview(c *gin.Context) {
	fid, ok := facultyID(c)
	if !ok {
		return
	}

	fields := map[string]string{}
	month := optionalIntQuery(c, "month", fields)
	year := optionalIntQuery(c, "year", fields)
	if len(fields) > 0 {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	overview, err := h.dashboardService.AttendanceOverview(c.Request.Context(), fid, month, year)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, overview)
}

func optionalIntQuery(c *gin.Context, key string, fields map[string]string) *int {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		fields[key] = key + " must be a number"
		return nil
	}
	return &n
}
