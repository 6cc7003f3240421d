package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/facultrack/attendance-backend/internal/model"
	"github.com/facultrack/attendance-backend/internal/repository"
	"github.com/facultrack/attendance-backend/internal/schedule"
	ws "github.com/facultrack/attendance-backend/internal/websocket"
)

// ScheduleLocker serializes schedule writes per faculty.
type ScheduleLocker interface {
	WithScheduleLock(ctx context.Context, facultyID int, fn func(ctx context.Context, store repository.TimetableStore) error) error
}

// TimetableReader is the lock-free timetable access used by TimetableService.
type TimetableReader interface {
	ListEntries(ctx context.Context, facultyID int) ([]model.TimetableEntry, error)
	ListByCourse(ctx context.Context, courseID, facultyID int) ([]model.TimetableEntry, error)
	GetByID(ctx context.Context, id, facultyID int) (*model.TimetableEntry, error)
	Delete(ctx context.Context, id, facultyID int) error
}

// Availability is the result of a dry-run conflict check.
type Availability struct {
	Available          bool `json:"available"`
	ConflictingEntryID *int `json:"conflicting_entry_id,omitempty"`
}

// TimetableService owns the weekly schedule of each faculty and guarantees
// that no two of a faculty's entries overlap.
type TimetableService struct {
	locker  ScheduleLocker
	repo    TimetableReader
	courses CourseStore
	audit   AuditRecorder
	events  EventPublisher
	log     zerolog.Logger
}

// NewTimetableService creates a new TimetableService.
func NewTimetableService(
	locker ScheduleLocker,
	repo TimetableReader,
	courses CourseStore,
	audit AuditRecorder,
	events EventPublisher,
	log zerolog.Logger,
) *TimetableService {
	return &TimetableService{
		locker:  locker,
		repo:    repo,
		courses: courses,
		audit:   audit,
		events:  events,
		log:     log.With().Str("component", "timetable_service").Logger(),
	}
}

// MySchedule retrieves the faculty's weekly schedule, Monday first.
func (s *TimetableService) MySchedule(ctx context.Context, facultyID int) ([]model.TimetableEntry, error) {
	return s.repo.ListEntries(ctx, facultyID)
}

// ListByCourse retrieves the sessions of a course owned by the faculty.
func (s *TimetableService) ListByCourse(ctx context.Context, courseID, facultyID int) ([]model.TimetableEntry, error) {
	if _, err := s.courses.GetByID(ctx, courseID, facultyID); err != nil {
		return nil, err
	}
	return s.repo.ListByCourse(ctx, courseID, facultyID)
}

// GetByID retrieves one of the faculty's entries.
func (s *TimetableService) GetByID(ctx context.Context, id, facultyID int) (*model.TimetableEntry, error) {
	return s.repo.GetByID(ctx, id, facultyID)
}

// Create validates the requested slot, checks it against the faculty's
// schedule and stores it. It returns *schedule.ValidationError for a
// malformed slot and *schedule.ConflictError when the slot overlaps an
// existing entry.
func (s *TimetableService) Create(ctx context.Context, facultyID int, req *model.CreateTimetableRequest) (*model.TimetableEntry, error) {
	iv, err := schedule.NewTimeInterval(req.DayOfWeek, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	if _, err := s.courses.GetByID(ctx, req.CourseID, facultyID); err != nil {
		return nil, err
	}

	var created *model.TimetableEntry
	err = s.locker.WithScheduleLock(ctx, facultyID, func(ctx context.Context, store repository.TimetableStore) error {
		existing, err := loadSchedule(ctx, store, facultyID)
		if err != nil {
			return err
		}
		if err := schedule.CheckConflict(facultyID, iv, existing, nil); err != nil {
			return err
		}

		e := &model.TimetableEntry{
			FacultyID: facultyID,
			CourseID:  req.CourseID,
			DayOfWeek: string(iv.Day()),
			StartTime: iv.Start(),
			EndTime:   iv.End(),
			Venue:     req.Venue,
		}
		if err := store.Create(ctx, e); err != nil {
			return err
		}
		created, err = store.GetByID(ctx, e.ID, facultyID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Int("faculty_id", facultyID).Int("timetable_id", created.ID).Str("slot", iv.String()).Msg("Timetable entry created")
	s.audit.Record(ctx, model.AuditLog{
		EntityType: "timetable", EntityID: created.ID, Action: model.AuditCreate, PerformedBy: facultyID,
		Changes: entryChanges(created),
	})
	s.events.Publish(ctx, facultyID, ws.EventTimetableCreated, created)
	return created, nil
}

// Update applies a partial update. Omitted fields keep their stored values;
// the merged slot is validated and checked against every other entry of the
// faculty, so an entry never conflicts with itself.
func (s *TimetableService) Update(ctx context.Context, id, facultyID int, req *model.UpdateTimetableRequest) (*model.TimetableEntry, error) {
	var updated *model.TimetableEntry
	var slot schedule.TimeInterval

	err := s.locker.WithScheduleLock(ctx, facultyID, func(ctx context.Context, store repository.TimetableStore) error {
		current, err := store.GetByID(ctx, id, facultyID)
		if err != nil {
			return err
		}

		merged := *current
		if req.DayOfWeek != nil {
			merged.DayOfWeek = *req.DayOfWeek
		}
		if req.StartTime != nil {
			merged.StartTime = *req.StartTime
		}
		if req.EndTime != nil {
			merged.EndTime = *req.EndTime
		}
		if req.Venue != nil {
			merged.Venue = req.Venue
		}
		if req.CourseID != nil && *req.CourseID != current.CourseID {
			if _, err := s.courses.GetByID(ctx, *req.CourseID, facultyID); err != nil {
				return err
			}
			merged.CourseID = *req.CourseID
		}

		slot, err = merged.Interval()
		if err != nil {
			return err
		}

		existing, err := loadSchedule(ctx, store, facultyID)
		if err != nil {
			return err
		}
		if err := schedule.CheckConflict(facultyID, slot, existing, &id); err != nil {
			return err
		}

		merged.StartTime = slot.Start()
		merged.EndTime = slot.End()
		if err := store.Update(ctx, &merged); err != nil {
			return err
		}
		updated, err = store.GetByID(ctx, id, facultyID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Int("faculty_id", facultyID).Int("timetable_id", id).Str("slot", slot.String()).Msg("Timetable entry updated")
	s.audit.Record(ctx, model.AuditLog{
		EntityType: "timetable", EntityID: id, Action: model.AuditUpdate, PerformedBy: facultyID,
		Changes: entryChanges(updated),
	})
	s.events.Publish(ctx, facultyID, ws.EventTimetableUpdated, updated)
	return updated, nil
}

// Delete removes one of the faculty's entries.
func (s *TimetableService) Delete(ctx context.Context, id, facultyID int) error {
	if err := s.repo.Delete(ctx, id, facultyID); err != nil {
		return err
	}

	s.audit.Record(ctx, model.AuditLog{
		EntityType: "timetable", EntityID: id, Action: model.AuditDelete, PerformedBy: facultyID,
	})
	s.events.Publish(ctx, facultyID, ws.EventTimetableDeleted, ws.TimetableDeletedData{ID: id})
	return nil
}

// CheckAvailability reports whether a slot is free without writing anything.
func (s *TimetableService) CheckAvailability(ctx context.Context, facultyID int, req *model.CheckAvailabilityRequest) (*Availability, error) {
	iv, err := schedule.NewTimeInterval(req.DayOfWeek, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	existing, err := loadSchedule(ctx, s.repo, facultyID)
	if err != nil {
		return nil, err
	}

	hit, found := schedule.FindConflict(facultyID, iv, existing, req.ExcludeTimetableID)
	if !found {
		return &Availability{Available: true}, nil
	}
	return &Availability{Available: false, ConflictingEntryID: &hit.ID}, nil
}

type scheduleLister interface {
	ListEntries(ctx context.Context, facultyID int) ([]model.TimetableEntry, error)
}

// loadSchedule reads the faculty's entries as conflict-detector input.
func loadSchedule(ctx context.Context, store scheduleLister, facultyID int) ([]schedule.Entry, error) {
	entries, err := store.ListEntries(ctx, facultyID)
	if err != nil {
		return nil, err
	}

	out := make([]schedule.Entry, 0, len(entries))
	for i := range entries {
		iv, err := entries[i].Interval()
		if err != nil {
			return nil, fmt.Errorf("stored timetable entry %d: %w", entries[i].ID, err)
		}
		out = append(out, schedule.Entry{ID: entries[i].ID, FacultyID: entries[i].FacultyID, Interval: iv})
	}
	return out, nil
}

func entryChanges(e *model.TimetableEntry) map[string]interface{} {
	changes := map[string]interface{}{
		"course_id":   e.CourseID,
		"day_of_week": e.DayOfWeek,
		"start_time":  e.StartTime,
		"end_time":    e.EndTime,
	}
	if e.Venue != nil {
		changes["venue"] = *e.Venue
	}
	return changes
}
