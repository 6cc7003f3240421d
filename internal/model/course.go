package model

import "time"

// Course is a subject taught by one faculty member.
type Course struct {
	ID           int       `json:"id"`
	CourseCode   string    `json:"course_code"`
	CourseName   string    `json:"course_name"`
	FacultyID    int       `json:"faculty_id"`
	StudentCount int       `json:"student_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CourseRequest is the payload for creating or updating a course.
type CourseRequest struct {
	CourseCode string `json:"course_code" binding:"required,min=2,max=50"`
	CourseName string `json:"course_name" binding:"required,min=3,max=255"`
}

// CourseRef is the slim course view embedded in other resources.
type CourseRef struct {
	CourseCode string `json:"course_code"`
	CourseName string `json:"course_name"`
}
