package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facultrack/attendance-backend/internal/config"
	"github.com/facultrack/attendance-backend/internal/handler"
	"github.com/facultrack/attendance-backend/internal/middleware"
	"github.com/facultrack/attendance-backend/internal/model"
	"github.com/facultrack/attendance-backend/internal/repository"
	"github.com/facultrack/attendance-backend/internal/service"
	"github.com/facultrack/attendance-backend/internal/validator"
)

func init() {
	validator.Setup()
}

type fakeAuth struct{}

func (fakeAuth) ValidateToken(token string) (*service.Claims, error) {
	if token != "good" {
		return nil, errors.New("invalid token")
	}
	return &service.Claims{FacultyID: 1}, nil
}

func (fakeAuth) ValidateSession(context.Context, int, string) error { return nil }

type courseList []model.Course

func (l courseList) ListByFaculty(_ context.Context, facultyID int) ([]model.Course, error) {
	var out []model.Course
	for _, c := range l {
		if c.FacultyID == facultyID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (l courseList) GetByID(context.Context, int, int) (*model.Course, error) {
	return nil, repository.ErrNotFound
}
func (courseList) Create(context.Context, *model.Course) error { return nil }
func (courseList) Update(context.Context, *model.Course) error { return nil }
func (courseList) Delete(context.Context, int, int) error      { return nil }

type nopAudit struct{}

func (nopAudit) Record(context.Context, model.AuditLog) {}

func testRouter(t *testing.T, limit int) *gin.Engine {
	t.Helper()

	limiter := middleware.NewRateLimiter(limit, time.Minute)
	t.Cleanup(limiter.Stop)

	courses := courseList{
		{ID: 1, CourseCode: "CS101", CourseName: "Intro", FacultyID: 1, StudentCount: 3},
		{ID: 2, CourseCode: "MATH101", CourseName: "Calculus", FacultyID: 2},
	}
	log := zerolog.Nop()
	handlers := &Handlers{
		Auth:   handler.NewAuthHandler(nil, log),
		Course: handler.NewCourseHandler(service.NewCourseService(courses, nil, nopAudit{}, log), log),
	}
	cfg := &config.Config{GinMode: gin.TestMode, UploadDir: t.TempDir()}
	return SetupRouter(fakeAuth{}, limiter, handlers, cfg)
}

func serve(r *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRateLimitCoversCredentialEndpointsOnly(t *testing.T) {
	r := testRouter(t, 2)

	// Session endpoints never consume the login budget.
	for i := 0; i < 5; i++ {
		w := serve(r, http.MethodGet, "/api/v1/auth/me", "", "")
		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
	}

	for i := 0; i < 2; i++ {
		w := serve(r, http.MethodPost, "/api/v1/auth/login", "{}", "")
		require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := serve(r, http.MethodPost, "/api/v1/auth/register", "{}", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// Exhausting the budget leaves session endpoints alone.
	w = serve(r, http.MethodPost, "/api/v1/auth/logout", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMyCoursesAliasesCourseList(t *testing.T) {
	r := testRouter(t, 10)

	var bodies []string
	for _, path := range []string{"/api/v1/courses", "/api/v1/timetable/my-courses"} {
		w := serve(r, http.MethodGet, path, "", "good")
		require.Equal(t, http.StatusOK, w.Code, path)

		var env struct {
			Data json.RawMessage `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		bodies = append(bodies, string(env.Data))
	}

	assert.Equal(t, bodies[0], bodies[1])
	assert.Contains(t, bodies[1], `"course_code":"CS101"`)
	assert.NotContains(t, bodies[1], "MATH101")
}
