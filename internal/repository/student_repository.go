package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/facultrack/attendance-backend/internal/model"
)

// StudentRepository handles roster data access. Students are reachable only
// through a course owned by the requesting faculty.
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

const studentSelect = `SELECT s.id, s.student_id, s.name, s.email, s.course_id, c.course_code, c.course_name,
	s.created_at, s.updated_at
	FROM students s JOIN courses c ON c.id = s.course_id`

func scanStudent(row interface{ Scan(...any) error }) (model.Student, error) {
	var s model.Student
	ref := &model.CourseRef{}
	err := row.Scan(&s.ID, &s.StudentID, &s.Name, &s.Email, &s.CourseID, &ref.CourseCode, &ref.CourseName, &s.CreatedAt, &s.UpdatedAt)
	s.Course = ref
	return s, err
}

// GetByID retrieves a student whose course belongs to the faculty.
func (r *StudentRepository) GetByID(ctx context.Context, id, facultyID int) (*model.Student, error) {
	s, err := scanStudent(r.pool.QueryRow(ctx,
		studentSelect+` WHERE s.id = $1 AND c.faculty_id = $2`, id, facultyID))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return &s, nil
}

// ListByCourse retrieves the roster of a course owned by the faculty.
func (r *StudentRepository) ListByCourse(ctx context.Context, courseID, facultyID int) ([]model.Student, error) {
	rows, err := r.pool.Query(ctx,
		studentSelect+` WHERE s.course_id = $1 AND c.faculty_id = $2 ORDER BY s.name`, courseID, facultyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	students := []model.Student{}
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// Create inserts a new student.
func (r *StudentRepository) Create(ctx context.Context, s *model.Student) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO students (student_id, name, email, course_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		s.StudentID, s.Name, s.Email, s.CourseID,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return ErrDuplicateStudentID
		}
		return err
	}
	return nil
}

// Update modifies a student's details.
func (r *StudentRepository) Update(ctx context.Context, s *model.Student) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE students SET student_id = $1, name = $2, email = $3, course_id = $4, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $5`,
		s.StudentID, s.Name, s.Email, s.CourseID, s.ID,
	)
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return ErrDuplicateStudentID
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a student and their attendance history.
func (r *StudentRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
