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

type CourseHandler struct {
	courseService *service.CourseService
	log           zerolog.Logger
}

func NewCourseHandler(courseService *service.CourseService, log zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		courseService: courseService,
		log:           log.With().Str("component", "course_handler").Logger(),
	}
}

// List godoc
// GET /api/v1/courses
func (h *CourseHandler) List(c *gin.Context) {
	fid, ok := facultyID(c)
	if !ok {
		return
	}

	courses, err := h.courseService.List(c.Request.Context(), fid)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if courses == nil {
		courses = []model.Course{}
	}
	response.Success(c, http.StatusOK, gin.H{"courses": courses})
}

// Get godoc
// GET /api/v1/courses/:id
func (h *CourseHandler) Get(c *gin.Context) {
	fid, ok := facultyID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	course, err := h.courseService.GetByID(c.Request.Context(), id, fid)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"course": course})
}

// Create godoc
// POST /api/v1/courses
func (h *CourseHandler) Create(c *gin.Context) {
	fid, ok := facultyID(c)
	if !ok {
		return
	}

	var req model.CourseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	course, err := h.courseService.Create(c.Request.Context(), fid, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"course": course})
}

// Update godoc
// PUT /api/v1/courses/:id
func (h *CourseHandler) Update(c *gin.Context) {
	fid, ok := facultyID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req model.CourseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	course, err := h.courseService.Update(c.Request.Context(), id, fid, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"course": course})
}

// Delete godoc
// DELETE /api/v1/courses/:id
// Fails with DEPENDENCY_EXISTS while students or sessions still reference the course.
func (h *CourseHandler) Delete(c *gin.Context) {
	fid, ok := facultyID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.courseService.Delete(c.Request.Context(), id, fid); err != nil {
		respondError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "course deleted successfully"})
}

// Students godoc
// GET /api/v1/courses/:id/students
func (h *CourseHandler) Students(c *gin.Context) {
	fid, ok := facultyID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	students, err := h.courseService.ListStudents(c.Request.Context(), id, fid)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if students == nil {
		students = []model.Student{}
	}
	response.Success(c, http.StatusOK, gin.H{"students": students})
}
