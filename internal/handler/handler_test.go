package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/facultrack/attendance-backend/internal/middleware"
	"github.com/facultrack/attendance-backend/internal/model"
	"github.com/facultrack/attendance-backend/internal/repository"
	"github.com/facultrack/attendance-backend/internal/service"
	"github.com/facultrack/attendance-backend/internal/validator"
	ws "github.com/facultrack/attendance-backend/internal/websocket"
)

var testLog = zerolog.Nop()

func init() {
	gin.SetMode(gin.TestMode)
	validator.Setup()
}

// asFaculty stands in for the JWT middleware.
func asFaculty(id int) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextKeyClaims, &service.Claims{FacultyID: id})
		c.Next()
	}
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

// ─── In-memory stores ───────────────────────────────────────────────

type memTimetables struct {
	mu      sync.Mutex
	entries map[int]model.TimetableEntry
	nextID  int
}

func newMemTimetables(entries ...model.TimetableEntry) *memTimetables {
	m := &memTimetables{entries: map[int]model.TimetableEntry{}, nextID: 50}
	for _, e := range entries {
		m.entries[e.ID] = e
	}
	return m
}

func (m *memTimetables) ListEntries(_ context.Context, facultyID int) ([]model.TimetableEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.TimetableEntry
	for _, e := range m.entries {
		if e.FacultyID == facultyID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memTimetables) ListByCourse(ctx context.Context, courseID, facultyID int) ([]model.TimetableEntry, error) {
	all, _ := m.ListEntries(ctx, facultyID)
	var out []model.TimetableEntry
	for _, e := range all {
		if e.CourseID == courseID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memTimetables) GetByID(_ context.Context, id, facultyID int) (*model.TimetableEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok || e.FacultyID != facultyID {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (m *memTimetables) Create(_ context.Context, e *model.TimetableEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	e.ID = m.nextID
	m.entries[e.ID] = *e
	return nil
}

func (m *memTimetables) Update(_ context.Context, e *model.TimetableEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[e.ID]; !ok {
		return repository.ErrNotFound
	}
	m.entries[e.ID] = *e
	return nil
}

func (m *memTimetables) Delete(_ context.Context, id, facultyID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[id]; !ok || e.FacultyID != facultyID {
		return repository.ErrNotFound
	}
	delete(m.entries, id)
	return nil
}

func (m *memTimetables) WithScheduleLock(ctx context.Context, _ int, fn func(ctx context.Context, store repository.TimetableStore) error) error {
	return fn(ctx, m)
}

type memCourses struct {
	courses map[int]model.Course
}

func (m *memCourses) ListByFaculty(_ context.Context, facultyID int) ([]model.Course, error) {
	var out []model.Course
	for _, c := range m.courses {
		if c.FacultyID == facultyID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memCourses) GetByID(_ context.Context, id, facultyID int) (*model.Course, error) {
	c, ok := m.courses[id]
	if !ok || c.FacultyID != facultyID {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (m *memCourses) Create(_ context.Context, c *model.Course) error {
	c.ID = len(m.courses) + 1
	m.courses[c.ID] = *c
	return nil
}

func (m *memCourses) Update(_ context.Context, c *model.Course) error {
	m.courses[c.ID] = *c
	return nil
}

func (m *memCourses) Delete(_ context.Context, id, _ int) error {
	delete(m.courses, id)
	return nil
}

type nopAudit struct{}

func (nopAudit) Record(context.Context, model.AuditLog) {}

type nopEvents struct{}

func (nopEvents) Publish(context.Context, int, ws.Event, interface{}) {}
