package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/facultrack/attendance-backend/internal/model"
)

// DashboardRepository handles faculty dashboard data access.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// GetSummaryCounts retrieves the headline counts for a faculty.
func (r *DashboardRepository) GetSummaryCounts(ctx context.Context, facultyID int) (courses, students, present, marked int, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM courses WHERE faculty_id = $1),
			(SELECT COUNT(*) FROM students s JOIN courses c ON c.id = s.course_id WHERE c.faculty_id = $1),
			(SELECT COUNT(*) FILTER (WHERE a.status = 'present') FROM attendance a
				JOIN timetable_entries t ON t.id = a.timetable_id WHERE t.faculty_id = $1),
			(SELECT COUNT(*) FROM attendance a
				JOIN timetable_entries t ON t.id = a.timetable_id WHERE t.faculty_id = $1)`,
		facultyID,
	).Scan(&courses, &students, &present, &marked)
	return
}

// GetRecentMarks retrieves the latest attendance marks across a faculty's sessions.
func (r *DashboardRepository) GetRecentMarks(ctx context.Context, facultyID, limit int) ([]model.RecentMark, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT s.name, c.course_code, a.date, a.status, a.marked_at
		 FROM attendance a
		 JOIN timetable_entries t ON t.id = a.timetable_id
		 JOIN courses c ON c.id = t.course_id
		 JOIN students s ON s.id = a.student_id
		 WHERE t.faculty_id = $1
		 ORDER BY a.marked_at DESC LIMIT $2`, facultyID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	marks := []model.RecentMark{}
	for rows.Next() {
		var m model.RecentMark
		var date, markedAt time.Time
		if err := rows.Scan(&m.StudentName, &m.CourseCode, &date, &m.Status, &markedAt); err != nil {
			return nil, err
		}
		m.Date = date.Format(model.DateLayout)
		m.MarkedAt = markedAt.UTC().Format(time.RFC3339)
		marks = append(marks, m)
	}
	return marks, rows.Err()
}

// CourseTally is the raw present/total count of one course.
type CourseTally struct {
	CourseCode string
	CourseName string
	Present    int
	Total      int
}

// GetCourseTallies retrieves present/total counts for each of a faculty's courses.
func (r *DashboardRepository) GetCourseTallies(ctx context.Context, facultyID int) ([]CourseTally, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT c.course_code, c.course_name,
			COUNT(a.id) FILTER (WHERE a.status = 'present'), COUNT(a.id)
		 FROM courses c
		 LEFT JOIN timetable_entries t ON t.course_id = c.id
		 LEFT JOIN attendance a ON a.timetable_id = t.id
		 WHERE c.faculty_id = $1
		 GROUP BY c.id, c.course_code, c.course_name
		 ORDER BY c.course_code`, facultyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tallies []CourseTally
	for rows.Next() {
		var t CourseTally
		if err := rows.Scan(&t.CourseCode, &t.CourseName, &t.Present, &t.Total); err != nil {
			return nil, err
		}
		tallies = append(tallies, t)
	}
	return tallies, rows.Err()
}

// GetDailyTallies retrieves per-day counts between from and to, inclusive.
func (r *DashboardRepository) GetDailyTallies(ctx context.Context, facultyID int, from, to time.Time) (map[string]model.DailyAttendance, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.date, COUNT(*), COUNT(*) FILTER (WHERE a.status = 'present')
		 FROM attendance a JOIN timetable_entries t ON t.id = a.timetable_id
		 WHERE t.faculty_id = $1 AND a.date BETWEEN $2 AND $3
		 GROUP BY a.date`, facultyID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	daily := make(map[string]model.DailyAttendance)
	for rows.Next() {
		var d time.Time
		var tally model.DailyAttendance
		if err := rows.Scan(&d, &tally.Total, &tally.Present); err != nil {
			return nil, err
		}
		daily[d.Format(model.DateLayout)] = tally
	}
	return daily, rows.Err()
}
