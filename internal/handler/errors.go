package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/facultrack/attendance-backend/internal/middleware"
	"github.com/facultrack/attendance-backend/internal/ocr"
	"github.com/facultrack/attendance-backend/internal/repository"
	"github.com/facultrack/attendance-backend/internal/response"
	"github.com/facultrack/attendance-backend/internal/schedule"
	"github.com/facultrack/attendance-backend/internal/service"
)

// respondError maps service and repository errors onto the response envelope.
// Anything unrecognized is logged and reported as INTERNAL_ERROR.
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	var (
		validationErr *schedule.ValidationError
		conflictErr   *schedule.ConflictError
	)

	switch {
	case errors.As(err, &validationErr):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{
			validationErr.Field: validationErr.Reason,
		})
	case errors.As(err, &conflictErr):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrScheduleConflict, map[string]string{
			"conflicting_entry_id": strconv.Itoa(conflictErr.ConflictingID),
		})

	case errors.Is(err, repository.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, repository.ErrDuplicateEmail):
		response.Fail(c, http.StatusConflict, response.ErrEmailTaken)
	case errors.Is(err, repository.ErrDuplicateCourseCode):
		response.FailWithFields(c, http.StatusConflict, response.ErrConflict, map[string]string{"course_code": err.Error()})
	case errors.Is(err, repository.ErrDuplicateStudentID):
		response.FailWithFields(c, http.StatusConflict, response.ErrConflict, map[string]string{"student_id": err.Error()})
	case errors.Is(err, repository.ErrHasDependents):
		response.Fail(c, http.StatusConflict, response.ErrDependencyExists)

	case errors.Is(err, service.ErrInvalidCredentials):
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
	case errors.Is(err, service.ErrInvalidDate):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidDate)
	case errors.Is(err, service.ErrInvalidPeriod):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{"period": err.Error()})
	case errors.Is(err, service.ErrStudentNotInCourse):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{"attendance": err.Error()})

	case errors.Is(err, service.ErrUnsupportedFileType):
		response.Fail(c, http.StatusUnsupportedMediaType, response.ErrUnsupportedFile)
	case errors.Is(err, service.ErrFileTooLarge):
		response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
	case errors.Is(err, ocr.ErrDetectorUnavailable):
		response.Fail(c, http.StatusServiceUnavailable, response.ErrOCRUnavailable)
	case errors.Is(err, service.ErrOCRFailed):
		response.Fail(c, http.StatusBadGateway, response.ErrOCRFailed)

	default:
		log.Error().Err(err).Str("method", c.Request.Method).Str("path", c.FullPath()).Msg("Request failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// pathID parses a positive integer path parameter, answering INVALID_ID otherwise.
func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}

// facultyID returns the caller's faculty ID, answering 401 when claims are missing.
func facultyID(c *gin.Context) (int, bool) {
	id := middleware.FacultyID(c)
	if id == 0 {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return 0, false
	}
	return id, true
}
