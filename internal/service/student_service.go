package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/facultrack/attendance-backend/internal/model"
)

// StudentStore is the roster data access used by the services. Reads are
// scoped to the faculty owning the student's course.
type StudentStore interface {
	GetByID(ctx context.Context, id, facultyID int) (*model.Student, error)
	ListByCourse(ctx context.Context, courseID, facultyID int) ([]model.Student, error)
	Create(ctx context.Context, s *model.Student) error
	Update(ctx context.Context, s *model.Student) error
	Delete(ctx context.Context, id int) error
}

// StudentService handles roster business logic.
type StudentService struct {
	studentRepo StudentStore
	courseRepo  CourseStore
	audit       AuditRecorder
	log         zerolog.Logger
}

// NewStudentService creates a new StudentService.
func NewStudentService(studentRepo StudentStore, courseRepo CourseStore, audit AuditRecorder, log zerolog.Logger) *StudentService {
	return &StudentService{
		studentRepo: studentRepo,
		courseRepo:  courseRepo,
		audit:       audit,
		log:         log.With().Str("component", "student_service").Logger(),
	}
}

// ListByCourse retrieves the roster of a course owned by the faculty.
func (s *StudentService) ListByCourse(ctx context.Context, courseID, facultyID int) ([]model.Student, error) {
	if _, err := s.courseRepo.GetByID(ctx, courseID, facultyID); err != nil {
		return nil, err
	}
	return s.studentRepo.ListByCourse(ctx, courseID, facultyID)
}

// Create enrolls a student into one of the faculty's courses.
func (s *StudentService) Create(ctx context.Context, facultyID int, req *model.CreateStudentRequest) (*model.Student, error) {
	if _, err := s.courseRepo.GetByID(ctx, req.CourseID, facultyID); err != nil {
		return nil, err
	}

	st := &model.Student{
		StudentID: strings.TrimSpace(req.StudentID),
		Name:      strings.TrimSpace(req.Name),
		Email:     req.Email,
		CourseID:  req.CourseID,
	}
	if err := s.studentRepo.Create(ctx, st); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, model.AuditLog{
		EntityType: "student", EntityID: st.ID, Action: model.AuditCreate, PerformedBy: facultyID,
		Changes: map[string]interface{}{"student_id": st.StudentID, "course_id": st.CourseID},
	})
	return s.studentRepo.GetByID(ctx, st.ID, facultyID)
}

// Update applies a partial update. Moving a student requires owning the
// target course as well.
func (s *StudentService) Update(ctx context.Context, id, facultyID int, req *model.UpdateStudentRequest) (*model.Student, error) {
	st, err := s.studentRepo.GetByID(ctx, id, facultyID)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if req.StudentID != nil {
		st.StudentID = strings.TrimSpace(*req.StudentID)
		changes["student_id"] = st.StudentID
	}
	if req.Name != nil {
		st.Name = strings.TrimSpace(*req.Name)
		changes["name"] = st.Name
	}
	if req.Email != nil {
		st.Email = req.Email
		changes["email"] = *req.Email
	}
	if req.CourseID != nil && *req.CourseID != st.CourseID {
		if _, err := s.courseRepo.GetByID(ctx, *req.CourseID, facultyID); err != nil {
			return nil, err
		}
		st.CourseID = *req.CourseID
		changes["course_id"] = st.CourseID
	}

	if err := s.studentRepo.Update(ctx, st); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, model.AuditLog{
		EntityType: "student", EntityID: id, Action: model.AuditUpdate, PerformedBy: facultyID, Changes: changes,
	})
	return s.studentRepo.GetByID(ctx, id, facultyID)
}

// Delete removes a student from the faculty's roster.
func (s *StudentService) Delete(ctx context.Context, id, facultyID int) error {
	if _, err := s.studentRepo.GetByID(ctx, id, facultyID); err != nil {
		return err
	}
	if err := s.studentRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, model.AuditLog{
		EntityType: "student", EntityID: id, Action: model.AuditDelete, PerformedBy: facultyID,
	})
	return nil
}
