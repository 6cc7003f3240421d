package model

import "time"

// Student is a roster member of a single course.
type Student struct {
	ID        int        `json:"id"`
	StudentID string     `json:"student_id"`
	Name      string     `json:"name"`
	Email     *string    `json:"email"`
	CourseID  int        `json:"course_id"`
	Course    *CourseRef `json:"course,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CreateStudentRequest is the payload for adding a student to a course roster.
type CreateStudentRequest struct {
	StudentID string  `json:"student_id" binding:"required,min=2,max=50"`
	Name      string  `json:"name" binding:"required,min=2,max=255"`
	Email     *string `json:"email" binding:"omitempty,email,max=255"`
	CourseID  int     `json:"course_id" binding:"required,gt=0"`
}

// UpdateStudentRequest is the partial payload for editing a student.
// Omitted fields keep their stored values.
type UpdateStudentRequest struct {
	StudentID *string `json:"student_id" binding:"omitempty,min=2,max=50"`
	Name      *string `json:"name" binding:"omitempty,min=2,max=255"`
	Email     *string `json:"email" binding:"omitempty,email,max=255"`
	CourseID  *int    `json:"course_id" binding:"omitempty,gt=0"`
}
