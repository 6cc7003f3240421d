package repository

import (
	"context"

	"github.com/facultrack/attendance-backend/internal/model"
)

// TimetableRepository handles timetable entry data access. It runs against
// the pool or a transaction.
type TimetableRepository struct {
	db DBTX
}

// NewTimetableRepository creates a new TimetableRepository.
func NewTimetableRepository(db DBTX) *TimetableRepository {
	return &TimetableRepository{db: db}
}

const timetableSelect = `SELECT t.id, t.faculty_id, t.course_id, t.day_of_week, t.start_time, t.end_time, t.venue,
	c.course_code, c.course_name, t.created_at, t.updated_at
	FROM timetable_entries t JOIN courses c ON c.id = t.course_id`

func scanTimetable(row interface{ Scan(...any) error }, extra ...any) (model.TimetableEntry, error) {
	var e model.TimetableEntry
	ref := &model.CourseRef{}
	dest := []any{&e.ID, &e.FacultyID, &e.CourseID, &e.DayOfWeek, &e.StartTime, &e.EndTime, &e.Venue,
		&ref.CourseCode, &ref.CourseName, &e.CreatedAt, &e.UpdatedAt}
	err := row.Scan(append(dest, extra...)...)
	e.Course = ref
	return e, err
}

func (r *TimetableRepository) list(ctx context.Context, query string, args ...any) ([]model.TimetableEntry, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []model.TimetableEntry{}
	for rows.Next() {
		e, err := scanTimetable(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListEntries retrieves a faculty's whole weekly schedule ordered Monday
// first, then by start time.
func (r *TimetableRepository) ListEntries(ctx context.Context, facultyID int) ([]model.TimetableEntry, error) {
	return r.list(ctx,
		timetableSelect+` WHERE t.faculty_id = $1 ORDER BY `+weekdayOrder+`, t.start_time`, facultyID)
}

// ListByCourse retrieves the sessions of one course.
func (r *TimetableRepository) ListByCourse(ctx context.Context, courseID, facultyID int) ([]model.TimetableEntry, error) {
	return r.list(ctx,
		timetableSelect+` WHERE t.course_id = $1 AND t.faculty_id = $2 ORDER BY `+weekdayOrder+`, t.start_time`,
		courseID, facultyID)
}

// ListByDay retrieves a faculty's sessions on one weekday with roster sizes.
func (r *TimetableRepository) ListByDay(ctx context.Context, facultyID int, day string) ([]model.TodayEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT t.id, t.faculty_id, t.course_id, t.day_of_week, t.start_time, t.end_time, t.venue,
			c.course_code, c.course_name, t.created_at, t.updated_at,
			(SELECT COUNT(*) FROM students s WHERE s.course_id = c.id)
		 FROM timetable_entries t JOIN courses c ON c.id = t.course_id
		 WHERE t.faculty_id = $1 AND t.day_of_week = $2
		 ORDER BY t.start_time`, facultyID, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []model.TodayEntry{}
	for rows.Next() {
		var count int
		e, err := scanTimetable(rows, &count)
		if err != nil {
			return nil, err
		}
		entries = append(entries, model.TodayEntry{TimetableEntry: e, StudentCount: count})
	}
	return entries, rows.Err()
}

// GetByID retrieves one entry owned by the faculty.
func (r *TimetableRepository) GetByID(ctx context.Context, id, facultyID int) (*model.TimetableEntry, error) {
	e, err := scanTimetable(r.db.QueryRow(ctx,
		timetableSelect+` WHERE t.id = $1 AND t.faculty_id = $2`, id, facultyID))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return &e, nil
}

// Create inserts a new entry.
func (r *TimetableRepository) Create(ctx context.Context, e *model.TimetableEntry) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO timetable_entries (faculty_id, course_id, day_of_week, start_time, end_time, venue)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		e.FacultyID, e.CourseID, e.DayOfWeek, e.StartTime, e.EndTime, e.Venue,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// Update overwrites an entry's schedule fields.
func (r *TimetableRepository) Update(ctx context.Context, e *model.TimetableEntry) error {
	err := r.db.QueryRow(ctx,
		`UPDATE timetable_entries
		 SET course_id = $1, day_of_week = $2, start_time = $3, end_time = $4, venue = $5, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $6 AND faculty_id = $7
		 RETURNING updated_at`,
		e.CourseID, e.DayOfWeek, e.StartTime, e.EndTime, e.Venue, e.ID, e.FacultyID,
	).Scan(&e.UpdatedAt)
	return mapNoRows(err)
}

// Delete removes an entry. Entries with recorded attendance are kept.
func (r *TimetableRepository) Delete(ctx context.Context, id, facultyID int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM timetable_entries WHERE id = $1 AND faculty_id = $2`, id, facultyID)
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return ErrHasDependents
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
