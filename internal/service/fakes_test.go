package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/facultrack/attendance-backend/internal/model"
	"github.com/facultrack/attendance-backend/internal/repository"
	ws "github.com/facultrack/attendance-backend/internal/websocket"
)

var testLog = zerolog.Nop()

// ─── Timetable ──────────────────────────────────────────────────────

type fakeTimetables struct {
	mu      sync.Mutex
	entries map[int]model.TimetableEntry
	nextID  int
}

func newFakeTimetables(entries ...model.TimetableEntry) *fakeTimetables {
	f := &fakeTimetables{entries: map[int]model.TimetableEntry{}, nextID: 100}
	for _, e := range entries {
		f.entries[e.ID] = e
	}
	return f
}

func (f *fakeTimetables) ListEntries(_ context.Context, facultyID int) ([]model.TimetableEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.TimetableEntry
	for _, e := range f.entries {
		if e.FacultyID == facultyID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeTimetables) ListByCourse(ctx context.Context, courseID, facultyID int) ([]model.TimetableEntry, error) {
	all, _ := f.ListEntries(ctx, facultyID)
	var out []model.TimetableEntry
	for _, e := range all {
		if e.CourseID == courseID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeTimetables) GetByID(_ context.Context, id, facultyID int) (*model.TimetableEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[id]
	if !ok || e.FacultyID != facultyID {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (f *fakeTimetables) Create(_ context.Context, e *model.TimetableEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	e.ID = f.nextID
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	f.entries[e.ID] = *e
	return nil
}

func (f *fakeTimetables) Update(_ context.Context, e *model.TimetableEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.entries[e.ID]
	if !ok || cur.FacultyID != e.FacultyID {
		return repository.ErrNotFound
	}
	f.entries[e.ID] = *e
	return nil
}

func (f *fakeTimetables) Delete(_ context.Context, id, facultyID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[id]
	if !ok || e.FacultyID != facultyID {
		return repository.ErrNotFound
	}
	delete(f.entries, id)
	return nil
}

func (f *fakeTimetables) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

type fakeLocker struct {
	store  repository.TimetableStore
	locked []int
}

func (l *fakeLocker) WithScheduleLock(ctx context.Context, facultyID int, fn func(ctx context.Context, store repository.TimetableStore) error) error {
	l.locked = append(l.locked, facultyID)
	return fn(ctx, l.store)
}

// ─── Courses ────────────────────────────────────────────────────────

type fakeCourses struct {
	courses map[int]model.Course
}

func newFakeCourses(courses ...model.Course) *fakeCourses {
	f := &fakeCourses{courses: map[int]model.Course{}}
	for _, c := range courses {
		f.courses[c.ID] = c
	}
	return f
}

func (f *fakeCourses) ListByFaculty(_ context.Context, facultyID int) ([]model.Course, error) {
	var out []model.Course
	for _, c := range f.courses {
		if c.FacultyID == facultyID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCourses) GetByID(_ context.Context, id, facultyID int) (*model.Course, error) {
	c, ok := f.courses[id]
	if !ok || c.FacultyID != facultyID {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (f *fakeCourses) Create(_ context.Context, c *model.Course) error {
	c.ID = len(f.courses) + 1
	f.courses[c.ID] = *c
	return nil
}

func (f *fakeCourses) Update(_ context.Context, c *model.Course) error {
	if cur, ok := f.courses[c.ID]; !ok || cur.FacultyID != c.FacultyID {
		return repository.ErrNotFound
	}
	f.courses[c.ID] = *c
	return nil
}

func (f *fakeCourses) Delete(_ context.Context, id, facultyID int) error {
	if c, ok := f.courses[id]; !ok || c.FacultyID != facultyID {
		return repository.ErrNotFound
	}
	delete(f.courses, id)
	return nil
}

// ─── Students ───────────────────────────────────────────────────────

// fakeStudents resolves ownership through the course fake, like the SQL join
// on courses.faculty_id.
type fakeStudents struct {
	courses  *fakeCourses
	students map[int]model.Student
	nextID   int
}

func newFakeStudents(courses *fakeCourses, students ...model.Student) *fakeStudents {
	f := &fakeStudents{courses: courses, students: map[int]model.Student{}}
	for _, st := range students {
		f.students[st.ID] = st
		if st.ID > f.nextID {
			f.nextID = st.ID
		}
	}
	return f
}

func (f *fakeStudents) owned(st model.Student, facultyID int) bool {
	c, ok := f.courses.courses[st.CourseID]
	return ok && c.FacultyID == facultyID
}

func (f *fakeStudents) duplicate(st *model.Student) bool {
	for _, other := range f.students {
		if other.ID != st.ID && other.StudentID == st.StudentID {
			return true
		}
	}
	return false
}

func (f *fakeStudents) GetByID(_ context.Context, id, facultyID int) (*model.Student, error) {
	st, ok := f.students[id]
	if !ok || !f.owned(st, facultyID) {
		return nil, repository.ErrNotFound
	}
	return &st, nil
}

func (f *fakeStudents) ListByCourse(_ context.Context, courseID, facultyID int) ([]model.Student, error) {
	out := []model.Student{}
	for _, st := range f.students {
		if st.CourseID == courseID && f.owned(st, facultyID) {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentID < out[j].StudentID })
	return out, nil
}

func (f *fakeStudents) Create(_ context.Context, st *model.Student) error {
	if f.duplicate(st) {
		return repository.ErrDuplicateStudentID
	}
	f.nextID++
	st.ID = f.nextID
	f.students[st.ID] = *st
	return nil
}

func (f *fakeStudents) Update(_ context.Context, st *model.Student) error {
	if _, ok := f.students[st.ID]; !ok {
		return repository.ErrNotFound
	}
	if f.duplicate(st) {
		return repository.ErrDuplicateStudentID
	}
	f.students[st.ID] = *st
	return nil
}

func (f *fakeStudents) Delete(_ context.Context, id int) error {
	if _, ok := f.students[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.students, id)
	return nil
}

// ─── Side effects ───────────────────────────────────────────────────

type fakeAudit struct {
	entries []model.AuditLog
}

func (a *fakeAudit) Record(_ context.Context, entry model.AuditLog) {
	a.entries = append(a.entries, entry)
}

type publishedEvent struct {
	FacultyID int
	Event     ws.Event
	Data      interface{}
}

type fakeEvents struct {
	published []publishedEvent
}

func (e *fakeEvents) Publish(_ context.Context, facultyID int, event ws.Event, data interface{}) {
	e.published = append(e.published, publishedEvent{FacultyID: facultyID, Event: event, Data: data})
}

type fakeStats struct {
	invalidated []int
}

func (s *fakeStats) InvalidateStats(_ context.Context, facultyID int) {
	s.invalidated = append(s.invalidated, facultyID)
}
