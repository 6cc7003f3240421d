package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/facultrack/attendance-backend/internal/model"
)

// CourseStore is the course data access used by the services.
type CourseStore interface {
	ListByFaculty(ctx context.Context, facultyID int) ([]model.Course, error)
	GetByID(ctx context.Context, id, facultyID int) (*model.Course, error)
	Create(ctx context.Context, c *model.Course) error
	Update(ctx context.Context, c *model.Course) error
	Delete(ctx context.Context, id, facultyID int) error
}

// CourseService handles course business logic.
type CourseService struct {
	courseRepo  CourseStore
	studentRepo StudentStore
	audit       AuditRecorder
	log         zerolog.Logger
}

// NewCourseService creates a new CourseService.
func NewCourseService(courseRepo CourseStore, studentRepo StudentStore, audit AuditRecorder, log zerolog.Logger) *CourseService {
	return &CourseService{
		courseRepo:  courseRepo,
		studentRepo: studentRepo,
		audit:       audit,
		log:         log.With().Str("component", "course_service").Logger(),
	}
}

// List retrieves all courses of a faculty.
func (s *CourseService) List(ctx context.Context, facultyID int) ([]model.Course, error) {
	return s.courseRepo.ListByFaculty(ctx, facultyID)
}

// GetByID retrieves a course owned by the faculty.
func (s *CourseService) GetByID(ctx context.Context, id, facultyID int) (*model.Course, error) {
	return s.courseRepo.GetByID(ctx, id, facultyID)
}

// Create creates a new course for the faculty.
func (s *CourseService) Create(ctx context.Context, facultyID int, req *model.CourseRequest) (*model.Course, error) {
	c := &model.Course{
		CourseCode: strings.ToUpper(strings.TrimSpace(req.CourseCode)),
		CourseName: strings.TrimSpace(req.CourseName),
		FacultyID:  facultyID,
	}
	if err := s.courseRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, model.AuditLog{
		EntityType: "course", EntityID: c.ID, Action: model.AuditCreate, PerformedBy: facultyID,
		Changes: map[string]interface{}{"course_code": c.CourseCode, "course_name": c.CourseName},
	})
	return c, nil
}

// Update modifies a course owned by the faculty.
func (s *CourseService) Update(ctx context.Context, id, facultyID int, req *model.CourseRequest) (*model.Course, error) {
	c := &model.Course{
		ID:         id,
		CourseCode: strings.ToUpper(strings.TrimSpace(req.CourseCode)),
		CourseName: strings.TrimSpace(req.CourseName),
		FacultyID:  facultyID,
	}
	if err := s.courseRepo.Update(ctx, c); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, model.AuditLog{
		EntityType: "course", EntityID: id, Action: model.AuditUpdate, PerformedBy: facultyID,
		Changes: map[string]interface{}{"course_code": c.CourseCode, "course_name": c.CourseName},
	})
	return s.courseRepo.GetByID(ctx, id, facultyID)
}

// Delete removes a course. Foreign keys keep courses that still have
// students or sessions; the repository reports that as ErrHasDependents.
func (s *CourseService) Delete(ctx context.Context, id, facultyID int) error {
	if err := s.courseRepo.Delete(ctx, id, facultyID); err != nil {
		return err
	}
	s.audit.Record(ctx, model.AuditLog{
		EntityType: "course", EntityID: id, Action: model.AuditDelete, PerformedBy: facultyID,
	})
	return nil
}

// ListStudents retrieves the roster of a course owned by the faculty.
func (s *CourseService) ListStudents(ctx context.Context, id, facultyID int) ([]model.Student, error) {
	if _, err := s.courseRepo.GetByID(ctx, id, facultyID); err != nil {
		return nil, err
	}
	return s.studentRepo.ListByCourse(ctx, id, facultyID)
}
