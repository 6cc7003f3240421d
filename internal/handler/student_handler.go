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

// StudentHandler manages course rosters.
type StudentHandler struct {
	studentService *service.StudentService
	log            zerolog.Logger
}

func NewStudentHandler(studentService *service.StudentService, log zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		studentService: studentService,
		log:            log.With().Str("component", "student_handler").Logger(),
	}
}

// ByCourse godoc
// GET /api/v1/students/by-course/:course_id
func (h *StudentHandler) ByCourse(c *gin.Context) {
	fid, ok := facultyID(c)
	if !ok {
		return
	}
	courseID, ok := pathID(c, "course_id")
	if !ok {
		return
	}

	students, err := h.studentService.ListByCourse(c.Request.Context(), courseID, fid)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if students == nil {
		students = []model.Student{}
	}
	response.Success(c, http.StatusOK, gin.H{"students": students})
}

// Create godoc
// POST /api/v1/students
func (h *StudentHandler) Create(c *gin.Context) {
	fid, ok := facultyID(c)
	if !ok {
		return
	}

	var req model.CreateStudentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	student, err := h.studentService.Create(c.Request.Context(), fid, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"student": student})
}

// Update godoc
// PUT /api/v1/students/:id
func (h *StudentHandler) Update(c *gin.Context) {
	fid, ok := facultyID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateStudentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	student, err := h.studentService.Update(c.Request.Context(), id, fid, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"student": student})
}

// Delete godoc
// DELETE /api/v1/students/:id
func (h *StudentHandler) Delete(c *gin.Context) {
	fid, ok := facultyID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.studentService.Delete(c.Request.Context(), id, fid); err != nil {
		respondError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "student deleted successfully"})
}
