package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facultrack/attendance-backend/internal/model"
	"github.com/facultrack/attendance-backend/internal/repository"
	"github.com/facultrack/attendance-backend/internal/schedule"
	ws "github.com/facultrack/attendance-backend/internal/websocket"
)

const (
	facultyA = 1
	facultyB = 2
	courseA  = 10
	courseB  = 20
)

type timetableFixture struct {
	svc    *TimetableService
	store  *fakeTimetables
	locker *fakeLocker
	audit  *fakeAudit
	events *fakeEvents
}

func newTimetableFixture(entries ...model.TimetableEntry) *timetableFixture {
	store := newFakeTimetables(entries...)
	locker := &fakeLocker{store: store}
	courses := newFakeCourses(
		model.Course{ID: courseA, CourseCode: "CS101", FacultyID: facultyA},
		model.Course{ID: courseB, CourseCode: "MATH201", FacultyID: facultyB},
	)
	audit := &fakeAudit{}
	events := &fakeEvents{}
	return &timetableFixture{
		svc:    NewTimetableService(locker, store, courses, audit, events, testLog),
		store:  store,
		locker: locker,
		audit:  audit,
		events: events,
	}
}

func entry(id, facultyID int, day, start, end string) model.TimetableEntry {
	course := courseA
	if facultyID == facultyB {
		course = courseB
	}
	return model.TimetableEntry{ID: id, FacultyID: facultyID, CourseID: course, DayOfWeek: day, StartTime: start, EndTime: end}
}

func createReq(day, start, end string) *model.CreateTimetableRequest {
	return &model.CreateTimetableRequest{CourseID: courseA, DayOfWeek: day, StartTime: start, EndTime: end}
}

func strPtr(s string) *string { return &s }

func TestTimetableCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("stores canonical times and emits side effects", func(t *testing.T) {
		fx := newTimetableFixture()

		created, err := fx.svc.Create(ctx, facultyA, createReq("Monday", "9:00", "10:30"))
		require.NoError(t, err)

		assert.Equal(t, "Monday", created.DayOfWeek)
		assert.Equal(t, "09:00", created.StartTime)
		assert.Equal(t, "10:30", created.EndTime)
		assert.Equal(t, []int{facultyA}, fx.locker.locked)

		require.Len(t, fx.audit.entries, 1)
		assert.Equal(t, model.AuditCreate, fx.audit.entries[0].Action)
		require.Len(t, fx.events.published, 1)
		assert.Equal(t, ws.EventTimetableCreated, fx.events.published[0].Event)
	})

	t.Run("overlapping slot is rejected", func(t *testing.T) {
		fx := newTimetableFixture(entry(1, facultyA, "Monday", "09:00", "10:30"))

		_, err := fx.svc.Create(ctx, facultyA, createReq("Monday", "10:00", "11:00"))

		var conflict *schedule.ConflictError
		require.True(t, errors.As(err, &conflict))
		assert.Equal(t, 1, conflict.ConflictingID)
		assert.Equal(t, schedule.ConflictMessage+" (entry 1, Monday 09:00-10:30)", err.Error())
		assert.Equal(t, 1, fx.store.count())
		assert.Empty(t, fx.events.published)
		assert.Empty(t, fx.audit.entries)
	})

	t.Run("adjacent slot is accepted", func(t *testing.T) {
		fx := newTimetableFixture(entry(1, facultyA, "Monday", "09:00", "10:30"))

		_, err := fx.svc.Create(ctx, facultyA, createReq("Monday", "10:30", "11:30"))
		require.NoError(t, err)
		assert.Equal(t, 2, fx.store.count())
	})

	t.Run("same slot on another day is accepted", func(t *testing.T) {
		fx := newTimetableFixture(entry(1, facultyA, "Monday", "09:00", "10:30"))

		_, err := fx.svc.Create(ctx, facultyA, createReq("Tuesday", "09:00", "10:30"))
		require.NoError(t, err)
	})

	t.Run("other faculty's schedule is ignored", func(t *testing.T) {
		fx := newTimetableFixture(entry(1, facultyB, "Monday", "09:00", "10:30"))

		_, err := fx.svc.Create(ctx, facultyA, createReq("Monday", "09:00", "10:30"))
		require.NoError(t, err)
	})

	t.Run("empty range fails validation before locking", func(t *testing.T) {
		fx := newTimetableFixture()

		_, err := fx.svc.Create(ctx, facultyA, createReq("Monday", "10:00", "10:00"))

		var ve *schedule.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "end_time", ve.Field)
		assert.Empty(t, fx.locker.locked)
	})

	t.Run("course of another faculty is not found", func(t *testing.T) {
		fx := newTimetableFixture()
		req := createReq("Monday", "09:00", "10:00")
		req.CourseID = courseB

		_, err := fx.svc.Create(ctx, facultyA, req)
		assert.True(t, errors.Is(err, repository.ErrNotFound))
	})
}

func TestTimetableUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("shifting an entry over its own slot succeeds", func(t *testing.T) {
		fx := newTimetableFixture(entry(5, facultyA, "Monday", "09:00", "10:00"))

		updated, err := fx.svc.Update(ctx, 5, facultyA, &model.UpdateTimetableRequest{
			StartTime: strPtr("09:30"),
			EndTime:   strPtr("10:30"),
		})
		require.NoError(t, err)
		assert.Equal(t, "09:30", updated.StartTime)
		assert.Equal(t, "10:30", updated.EndTime)
		assert.Equal(t, ws.EventTimetableUpdated, fx.events.published[0].Event)
	})

	t.Run("moving onto another entry conflicts", func(t *testing.T) {
		fx := newTimetableFixture(
			entry(5, facultyA, "Monday", "09:00", "10:00"),
			entry(6, facultyA, "Monday", "11:00", "12:00"),
		)

		_, err := fx.svc.Update(ctx, 5, facultyA, &model.UpdateTimetableRequest{
			StartTime: strPtr("10:30"),
			EndTime:   strPtr("11:30"),
		})

		var conflict *schedule.ConflictError
		require.True(t, errors.As(err, &conflict))
		assert.Equal(t, 6, conflict.ConflictingID)

		stored, _ := fx.store.GetByID(ctx, 5, facultyA)
		assert.Equal(t, "09:00", stored.StartTime)
	})

	t.Run("omitted fields keep stored values", func(t *testing.T) {
		fx := newTimetableFixture(entry(5, facultyA, "Wednesday", "13:00", "14:00"))

		updated, err := fx.svc.Update(ctx, 5, facultyA, &model.UpdateTimetableRequest{Venue: strPtr("Lab 3")})
		require.NoError(t, err)
		assert.Equal(t, "Wednesday", updated.DayOfWeek)
		assert.Equal(t, "13:00", updated.StartTime)
		assert.Equal(t, "14:00", updated.EndTime)
		require.NotNil(t, updated.Venue)
		assert.Equal(t, "Lab 3", *updated.Venue)
	})

	t.Run("merged range is validated", func(t *testing.T) {
		fx := newTimetableFixture(entry(5, facultyA, "Monday", "09:00", "10:00"))

		_, err := fx.svc.Update(ctx, 5, facultyA, &model.UpdateTimetableRequest{StartTime: strPtr("10:15")})

		var ve *schedule.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "end_time", ve.Field)
	})

	t.Run("unknown entry", func(t *testing.T) {
		fx := newTimetableFixture(entry(5, facultyB, "Monday", "09:00", "10:00"))

		_, err := fx.svc.Update(ctx, 5, facultyA, &model.UpdateTimetableRequest{Venue: strPtr("Room 1")})
		assert.True(t, errors.Is(err, repository.ErrNotFound))
	})
}

func TestTimetableDelete(t *testing.T) {
	fx := newTimetableFixture(entry(5, facultyA, "Monday", "09:00", "10:00"))

	require.NoError(t, fx.svc.Delete(context.Background(), 5, facultyA))
	assert.Equal(t, 0, fx.store.count())
	require.Len(t, fx.events.published, 1)
	assert.Equal(t, ws.TimetableDeletedData{ID: 5}, fx.events.published[0].Data)

	err := fx.svc.Delete(context.Background(), 5, facultyA)
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestTimetableCheckAvailability(t *testing.T) {
	ctx := context.Background()
	fx := newTimetableFixture(
		entry(1, facultyA, "Friday", "08:00", "09:00"),
		entry(2, facultyB, "Friday", "09:00", "10:00"),
	)

	tests := []struct {
		name      string
		req       model.CheckAvailabilityRequest
		available bool
		conflict  int
	}{
		{"free slot", model.CheckAvailabilityRequest{DayOfWeek: "Friday", StartTime: "09:00", EndTime: "10:00"}, true, 0},
		{"overlap", model.CheckAvailabilityRequest{DayOfWeek: "Friday", StartTime: "08:30", EndTime: "09:30"}, false, 1},
		{"excluded self", model.CheckAvailabilityRequest{DayOfWeek: "Friday", StartTime: "08:30", EndTime: "09:30", ExcludeTimetableID: intPtr(1)}, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fx.svc.CheckAvailability(ctx, facultyA, &tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.available, got.Available)
			if tt.available {
				assert.Nil(t, got.ConflictingEntryID)
			} else {
				require.NotNil(t, got.ConflictingEntryID)
				assert.Equal(t, tt.conflict, *got.ConflictingEntryID)
			}
		})
	}

	_, err := fx.svc.CheckAvailability(ctx, facultyA, &model.CheckAvailabilityRequest{DayOfWeek: "Funday", StartTime: "08:00", EndTime: "09:00"})
	var ve *schedule.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "day_of_week", ve.Field)
}

func intPtr(i int) *int { return &i }
