package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/facultrack/attendance-backend/internal/model"
)

// CourseRepository handles course data access. Every query is scoped to the
// owning faculty.
type CourseRepository struct {
	pool *pgxpool.Pool
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

const courseColumns = `c.id, c.course_code, c.course_name, c.faculty_id,
	(SELECT COUNT(*) FROM students s WHERE s.course_id = c.id),
	c.created_at, c.updated_at`

func scanCourse(row interface{ Scan(...any) error }, c *model.Course) error {
	return row.Scan(&c.ID, &c.CourseCode, &c.CourseName, &c.FacultyID, &c.StudentCount, &c.CreatedAt, &c.UpdatedAt)
}

// ListByFaculty retrieves all courses owned by a faculty, with student counts.
func (r *CourseRepository) ListByFaculty(ctx context.Context, facultyID int) ([]model.Course, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+courseColumns+`
		 FROM courses c WHERE c.faculty_id = $1
		 ORDER BY c.course_code`, facultyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := []model.Course{}
	for rows.Next() {
		var c model.Course
		if err := scanCourse(rows, &c); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// GetByID retrieves a course owned by the given faculty.
func (r *CourseRepository) GetByID(ctx context.Context, id, facultyID int) (*model.Course, error) {
	c := &model.Course{}
	err := scanCourse(r.pool.QueryRow(ctx,
		`SELECT `+courseColumns+`
		 FROM courses c WHERE c.id = $1 AND c.faculty_id = $2`, id, facultyID,
	), c)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return c, nil
}

// Create inserts a new course.
func (r *CourseRepository) Create(ctx context.Context, c *model.Course) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO courses (course_code, course_name, faculty_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		c.CourseCode, c.CourseName, c.FacultyID,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return ErrDuplicateCourseCode
		}
		return err
	}
	return nil
}

// Update modifies a course's code and name.
func (r *CourseRepository) Update(ctx context.Context, c *model.Course) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE courses SET course_code = $1, course_name = $2, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $3 AND faculty_id = $4`,
		c.CourseCode, c.CourseName, c.ID, c.FacultyID,
	)
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return ErrDuplicateCourseCode
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a course. Courses with students or timetable entries are kept.
func (r *CourseRepository) Delete(ctx context.Context, id, facultyID int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1 AND faculty_id = $2`, id, facultyID)
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
