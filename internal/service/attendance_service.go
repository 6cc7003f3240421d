package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/facultrack/attendance-backend/internal/model"
	"github.com/facultrack/attendance-backend/internal/repository"
	ws "github.com/facultrack/attendance-backend/internal/websocket"
)

// Attendance errors.
var (
	ErrInvalidDate        = errors.New("invalid date, expected YYYY-MM-DD")
	ErrStudentNotInCourse = errors.New("student is not enrolled in the course of this session")
)

// AttendanceTxRunner runs a bulk marking inside one transaction.
type AttendanceTxRunner interface {
	WithAttendanceTx(ctx context.Context, fn func(ctx context.Context, store repository.AttendanceWriter) error) error
}

// AttendanceReader is the read side of attendance data access.
type AttendanceReader interface {
	ListByClass(ctx context.Context, timetableID int, date time.Time) ([]model.Attendance, error)
	ListByStudentCourse(ctx context.Context, studentID, courseID, facultyID int) ([]model.Attendance, error)
	CourseSummary(ctx context.Context, courseID int) (*model.CourseAttendanceSummary, error)
}

// StatsInvalidator drops cached dashboard stats after attendance changes.
type StatsInvalidator interface {
	InvalidateStats(ctx context.Context, facultyID int)
}

// AttendanceService handles attendance marking and reporting.
type AttendanceService struct {
	tx         AttendanceTxRunner
	repo       AttendanceReader
	timetables TimetableReader
	courses    CourseStore
	stats      StatsInvalidator
	audit      AuditRecorder
	events     EventPublisher
	log        zerolog.Logger
}

// NewAttendanceService creates a new AttendanceService.
func NewAttendanceService(
	tx AttendanceTxRunner,
	repo AttendanceReader,
	timetables TimetableReader,
	courses CourseStore,
	stats StatsInvalidator,
	audit AuditRecorder,
	events EventPublisher,
	log zerolog.Logger,
) *AttendanceService {
	return &AttendanceService{
		tx:         tx,
		repo:       repo,
		timetables: timetables,
		courses:    courses,
		stats:      stats,
		audit:      audit,
		events:     events,
		log:        log.With().Str("component", "attendance_service").Logger(),
	}
}

// ParseDate parses a YYYY-MM-DD attendance date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(model.DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// dedupeMarks keeps the last mark given for each student, preserving first-seen order.
func dedupeMarks(marks []model.AttendanceMark) []model.AttendanceMark {
	index := make(map[int]int, len(marks))
	out := make([]model.AttendanceMark, 0, len(marks))
	for _, m := range marks {
		if i, ok := index[m.StudentID]; ok {
			out[i] = m
			continue
		}
		index[m.StudentID] = len(out)
		out = append(out, m)
	}
	return out
}

// MarkBulk records attendance for a whole session on one date. Every student
// must belong to the session's course. Re-marking overwrites earlier marks.
func (s *AttendanceService) MarkBulk(ctx context.Context, facultyID int, req *model.MarkBulkRequest) ([]model.Attendance, error) {
	date, err := ParseDate(req.Date)
	if err != nil {
		return nil, err
	}

	entry, err := s.timetables.GetByID(ctx, req.TimetableID, facultyID)
	if err != nil {
		return nil, err
	}

	marks := dedupeMarks(req.Attendance)
	ids := make([]int, len(marks))
	present := 0
	for i, m := range marks {
		ids[i] = m.StudentID
		if m.Status == model.AttendancePresent {
			present++
		}
	}

	err = s.tx.WithAttendanceTx(ctx, func(ctx context.Context, store repository.AttendanceWriter) error {
		enrolled, err := store.CountRoster(ctx, entry.CourseID, ids)
		if err != nil {
			return err
		}
		if enrolled != len(ids) {
			return ErrStudentNotInCourse
		}
		return store.UpsertBulk(ctx, entry.ID, date, marks)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int("faculty_id", facultyID).
		Int("timetable_id", entry.ID).
		Str("date", req.Date).
		Int("count", len(marks)).
		Msg("Attendance marked")

	s.stats.InvalidateStats(ctx, facultyID)
	s.audit.Record(ctx, model.AuditLog{
		EntityType: "attendance", EntityID: entry.ID, Action: model.AuditUpdate, PerformedBy: facultyID,
		Changes: map[string]interface{}{"date": req.Date, "present": present, "absent": len(marks) - present},
	})
	s.events.Publish(ctx, facultyID, ws.EventAttendanceMarked, ws.AttendanceMarkedData{
		TimetableID: entry.ID,
		Date:        req.Date,
		Present:     present,
		Absent:      len(marks) - present,
	})

	return s.repo.ListByClass(ctx, entry.ID, date)
}

// ClassAttendance retrieves the marks of one session on one date.
func (s *AttendanceService) ClassAttendance(ctx context.Context, facultyID, timetableID int, dateStr string) ([]model.Attendance, error) {
	date, err := ParseDate(dateStr)
	if err != nil {
		return nil, err
	}
	if _, err := s.timetables.GetByID(ctx, timetableID, facultyID); err != nil {
		return nil, err
	}
	return s.repo.ListByClass(ctx, timetableID, date)
}

// StudentAttendance retrieves a student's history within a course, newest first.
func (s *AttendanceService) StudentAttendance(ctx context.Context, facultyID, studentID, courseID int) ([]model.Attendance, error) {
	if _, err := s.courses.GetByID(ctx, courseID, facultyID); err != nil {
		return nil, err
	}
	return s.repo.ListByStudentCourse(ctx, studentID, courseID, facultyID)
}

// CourseSummary aggregates attendance per student for a course.
func (s *AttendanceService) CourseSummary(ctx context.Context, facultyID, courseID int) (*model.Course, *model.CourseAttendanceSummary, error) {
	course, err := s.courses.GetByID(ctx, courseID, facultyID)
	if err != nil {
		return nil, nil, err
	}
	summary, err := s.repo.CourseSummary(ctx, courseID)
	if err != nil {
		return nil, nil, err
	}
	return course, summary, nil
}
