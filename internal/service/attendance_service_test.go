package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facultrack/attendance-backend/internal/model"
	"github.com/facultrack/attendance-backend/internal/repository"
	ws "github.com/facultrack/attendance-backend/internal/websocket"
)

type fakeAttendance struct {
	roster  map[int][]int
	marks   map[int]model.AttendanceStatus
	upserts int
}

func (f *fakeAttendance) WithAttendanceTx(ctx context.Context, fn func(ctx context.Context, store repository.AttendanceWriter) error) error {
	return fn(ctx, f)
}

func (f *fakeAttendance) CountRoster(_ context.Context, courseID int, studentIDs []int) (int, error) {
	enrolled := map[int]bool{}
	for _, id := range f.roster[courseID] {
		enrolled[id] = true
	}
	n := 0
	for _, id := range studentIDs {
		if enrolled[id] {
			n++
		}
	}
	return n, nil
}

func (f *fakeAttendance) UpsertBulk(_ context.Context, _ int, _ time.Time, marks []model.AttendanceMark) error {
	f.upserts++
	for _, m := range marks {
		f.marks[m.StudentID] = m.Status
	}
	return nil
}

func (f *fakeAttendance) ListByClass(_ context.Context, timetableID int, date time.Time) ([]model.Attendance, error) {
	out := []model.Attendance{}
	for id, status := range f.marks {
		out = append(out, model.Attendance{StudentID: id, TimetableID: timetableID, Date: date.Format(model.DateLayout), Status: status})
	}
	return out, nil
}

func (f *fakeAttendance) ListByStudentCourse(context.Context, int, int, int) ([]model.Attendance, error) {
	return []model.Attendance{}, nil
}

func (f *fakeAttendance) CourseSummary(context.Context, int) (*model.CourseAttendanceSummary, error) {
	return &model.CourseAttendanceSummary{TotalClasses: 2}, nil
}

type attendanceFixture struct {
	svc    *AttendanceService
	store  *fakeAttendance
	stats  *fakeStats
	events *fakeEvents
}

func newAttendanceFixture() *attendanceFixture {
	store := &fakeAttendance{roster: map[int][]int{courseA: {1, 2, 3}}, marks: map[int]model.AttendanceStatus{}}
	timetables := newFakeTimetables(entry(5, facultyA, "Monday", "09:00", "10:00"))
	courses := newFakeCourses(model.Course{ID: courseA, CourseCode: "CS101", FacultyID: facultyA})
	stats := &fakeStats{}
	events := &fakeEvents{}
	return &attendanceFixture{
		svc:    NewAttendanceService(store, store, timetables, courses, stats, &fakeAudit{}, events, testLog),
		store:  store,
		stats:  stats,
		events: events,
	}
}

func TestMarkBulk(t *testing.T) {
	ctx := context.Background()

	t.Run("marks the class and notifies", func(t *testing.T) {
		fx := newAttendanceFixture()

		records, err := fx.svc.MarkBulk(ctx, facultyA, &model.MarkBulkRequest{
			TimetableID: 5,
			Date:        "2024-03-04",
			Attendance: []model.AttendanceMark{
				{StudentID: 1, Status: model.AttendancePresent},
				{StudentID: 2, Status: model.AttendanceAbsent},
			},
		})
		require.NoError(t, err)
		assert.Len(t, records, 2)
		assert.Equal(t, []int{facultyA}, fx.stats.invalidated)

		require.Len(t, fx.events.published, 1)
		assert.Equal(t, ws.EventAttendanceMarked, fx.events.published[0].Event)
		assert.Equal(t, ws.AttendanceMarkedData{TimetableID: 5, Date: "2024-03-04", Present: 1, Absent: 1}, fx.events.published[0].Data)
	})

	t.Run("student outside the course rolls back", func(t *testing.T) {
		fx := newAttendanceFixture()

		_, err := fx.svc.MarkBulk(ctx, facultyA, &model.MarkBulkRequest{
			TimetableID: 5,
			Date:        "2024-03-04",
			Attendance:  []model.AttendanceMark{{StudentID: 1, Status: model.AttendancePresent}, {StudentID: 99, Status: model.AttendancePresent}},
		})
		assert.True(t, errors.Is(err, ErrStudentNotInCourse))
		assert.Zero(t, fx.store.upserts)
		assert.Empty(t, fx.stats.invalidated)
	})

	t.Run("bad date", func(t *testing.T) {
		fx := newAttendanceFixture()
		_, err := fx.svc.MarkBulk(ctx, facultyA, &model.MarkBulkRequest{TimetableID: 5, Date: "04/03/2024"})
		assert.True(t, errors.Is(err, ErrInvalidDate))
	})

	t.Run("session of another faculty", func(t *testing.T) {
		fx := newAttendanceFixture()
		_, err := fx.svc.MarkBulk(ctx, facultyB, &model.MarkBulkRequest{
			TimetableID: 5,
			Date:        "2024-03-04",
			Attendance:  []model.AttendanceMark{{StudentID: 1, Status: model.AttendancePresent}},
		})
		assert.True(t, errors.Is(err, repository.ErrNotFound))
	})
}

func TestDedupeMarksKeepsLast(t *testing.T) {
	got := dedupeMarks([]model.AttendanceMark{
		{StudentID: 1, Status: model.AttendancePresent},
		{StudentID: 2, Status: model.AttendancePresent},
		{StudentID: 1, Status: model.AttendanceAbsent},
	})
	assert.Equal(t, []model.AttendanceMark{
		{StudentID: 1, Status: model.AttendanceAbsent},
		{StudentID: 2, Status: model.AttendancePresent},
	}, got)
}

func TestCourseSummaryRequiresOwnership(t *testing.T) {
	fx := newAttendanceFixture()

	_, summary, err := fx.svc.CourseSummary(context.Background(), facultyA, courseA)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalClasses)

	_, _, err = fx.svc.CourseSummary(context.Background(), facultyB, courseA)
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}
