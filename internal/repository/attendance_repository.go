package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/facultrack/attendance-backend/internal/model"
)

// AttendanceRepository handles attendance data access.
type AttendanceRepository struct {
	db DBTX
}

// NewAttendanceRepository creates a new AttendanceRepository.
func NewAttendanceRepository(db DBTX) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// CountRoster returns how many of the given students are enrolled in the course.
func (r *AttendanceRepository) CountRoster(ctx context.Context, courseID int, studentIDs []int) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM students WHERE course_id = $1 AND id = ANY($2)`,
		courseID, studentIDs,
	).Scan(&n)
	return n, err
}

// UpsertBulk records one mark per student for a session on a date. Existing
// marks for the same (student, session, date) are overwritten.
func (r *AttendanceRepository) UpsertBulk(ctx context.Context, timetableID int, date time.Time, marks []model.AttendanceMark) error {
	batch := &pgx.Batch{}
	for _, m := range marks {
		batch.Queue(
			`INSERT INTO attendance (student_id, timetable_id, date, status)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (student_id, timetable_id, date)
			 DO UPDATE SET status = EXCLUDED.status, marked_at = CURRENT_TIMESTAMP`,
			m.StudentID, timetableID, date, string(m.Status),
		)
	}

	br := r.db.SendBatch(ctx, batch)
	for range marks {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return err
		}
	}
	return br.Close()
}

// ListByClass retrieves the marks of one session on one date.
func (r *AttendanceRepository) ListByClass(ctx context.Context, timetableID int, date time.Time) ([]model.Attendance, error) {
	rows, err := r.db.Query(ctx,
		`SELECT a.id, a.student_id, a.timetable_id, a.date, a.status, a.marked_at,
			s.name, s.student_id
		 FROM attendance a JOIN students s ON s.id = a.student_id
		 WHERE a.timetable_id = $1 AND a.date = $2
		 ORDER BY s.name`, timetableID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []model.Attendance{}
	for rows.Next() {
		var a model.Attendance
		var d time.Time
		ref := &model.StudentRef{}
		if err := rows.Scan(&a.ID, &a.StudentID, &a.TimetableID, &d, &a.Status, &a.MarkedAt, &ref.Name, &ref.StudentID); err != nil {
			return nil, err
		}
		ref.ID = a.StudentID
		a.Date = d.Format(model.DateLayout)
		a.Student = ref
		records = append(records, a)
	}
	return records, rows.Err()
}

// ListByStudentCourse retrieves a student's history in one course, newest first.
func (r *AttendanceRepository) ListByStudentCourse(ctx context.Context, studentID, courseID, facultyID int) ([]model.Attendance, error) {
	rows, err := r.db.Query(ctx,
		`SELECT a.id, a.student_id, a.timetable_id, a.date, a.status, a.marked_at,
			c.course_code, c.course_name
		 FROM attendance a
		 JOIN timetable_entries t ON t.id = a.timetable_id
		 JOIN courses c ON c.id = t.course_id
		 WHERE a.student_id = $1 AND t.course_id = $2 AND c.faculty_id = $3
		 ORDER BY a.date DESC`, studentID, courseID, facultyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []model.Attendance{}
	for rows.Next() {
		var a model.Attendance
		var d time.Time
		ref := &model.CourseRef{}
		if err := rows.Scan(&a.ID, &a.StudentID, &a.TimetableID, &d, &a.Status, &a.MarkedAt, &ref.CourseCode, &ref.CourseName); err != nil {
			return nil, err
		}
		a.Date = d.Format(model.DateLayout)
		a.Course = ref
		records = append(records, a)
	}
	return records, rows.Err()
}

// CourseSummary tallies attendance per student for a course. TotalClasses is
// the number of weekly sessions scheduled for the course.
func (r *AttendanceRepository) CourseSummary(ctx context.Context, courseID int) (*model.CourseAttendanceSummary, error) {
	summary := &model.CourseAttendanceSummary{StudentAttendance: []model.StudentAttendanceSummary{}}

	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM timetable_entries WHERE course_id = $1`, courseID,
	).Scan(&summary.TotalClasses); err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT s.id, s.name, COUNT(*), COUNT(*) FILTER (WHERE a.status = 'present')
		 FROM attendance a
		 JOIN timetable_entries t ON t.id = a.timetable_id
		 JOIN students s ON s.id = a.student_id
		 WHERE t.course_id = $1
		 GROUP BY s.id, s.name
		 ORDER BY s.name`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var st model.StudentAttendanceSummary
		if err := rows.Scan(&st.StudentID, &st.Name, &st.Total, &st.Present); err != nil {
			return nil, err
		}
		summary.StudentAttendance = append(summary.StudentAttendance, st)
	}
	return summary, rows.Err()
}
