package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/facultrack/attendance-backend/internal/model"
	"github.com/facultrack/attendance-backend/internal/response"
	"github.com/facultrack/attendance-backend/internal/service"
	"github.com/facultrack/attendance-backend/internal/validator"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AttendanceHandler records and reports class attendance.
type AttendanceHandler struct {
	attendanceService *service.AttendanceService
	log               zerolog.Logger
}

// NewAttendanceHandler creates a new AttendanceHandler.
func NewAttendanceHandler(attendanceService *service.AttendanceService, log zerolog.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		attendanceService: attendanceService,
		log:               log.With().Str("component", "attendance_handler").Logger(),
	}
}

// MarkBulk godoc
// POST /api/v1/attendance/mark-bulk
// Upserts one mark per student for a session date, all or nothing.
func (h *AttendanceHandler) MarkBulk(c *gin.Context) {
	fid, ok := facultyID(c)
	if !ok {
		return
	}

	var req model.MarkBulkRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	records, err := h.attendanceService.MarkBulk(c.Request.Context(), fid, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if records == nil {
		records = []model.Attendance{}
	}
	response.Success(c, http.StatusOK, gin.H{"attendance": records})
}

// Class godoc
// GET /api/v1/attendance/class/:timetable_id/:date
func (h *AttendanceHandler) Class(c *gin.Context) {
	fid, ok := facultyID(c)
	if !ok {
		return
	}
	timetableID, ok := pathID(c, "timetable_id")
	if !ok {
		return
	}

	records, err := h.attendanceService.ClassAttendance(c.Request.Context(), fid, timetableID, c.Param("date"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if records == nil {
		records = []model.Attendance{}
	}
	response.Success(c, http.StatusOK, gin.H{"attendance": records})
}

// Student godoc
// GET /api/v1/attendance/student/:student_id/course/:course_id
func (h *AttendanceHandler) Student(c *gin.Context) {
	fid, ok := facultyID(c)
	if !ok {
		return
	}
	studentID, ok := pathID(c, "student_id")
	if !ok {
		return
	}
	courseID, ok := pathID(c, "course_id")
	if !ok {
		return
	}

	records, err := h.attendanceService.StudentAttendance(c.Request.Context(), fid, studentID, courseID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if records == nil {
		records = []model.Attendance{}
	}
	response.Success(c, http.StatusOK, gin.H{"attendance": records})
}

// CourseSummary godoc
// GET /api/v1/attendance/course/:course_id/summary
func (h *AttendanceHandler) CourseSummary(c *gin.Context) {
	fid, ok := facultyID(c)
	if !ok {
		return
	}
	courseID, ok := pathID(c, "course_id")
	if !ok {
		return
	}

	course, summary, err := h.attendanceService.CourseSummary(c.Request.Context(), fid, courseID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"course": course, "summary": summary})
}

// ExportCourseSummary godoc
// GET /api/v1/attendance/course/:course_id/summary/export
// Downloads the course summary as an XLSX workbook.
func (h *AttendanceHandler) ExportCourseSummary(c *gin.Context) {
	fid, ok := facultyID(c)
	if !ok {
		return
	}
	courseID, ok := pathID(c, "course_id")
	if !ok {
		return
	}

	data, filename, err := h.attendanceService.ExportCourseSummary(c.Request.Context(), fid, courseID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
