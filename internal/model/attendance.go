package model

import "time"

// AttendanceStatus is the mark recorded for a student in one session.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
)

// DateLayout is the wire format of attendance dates.
const DateLayout = "2006-01-02"

// Attendance is one student's mark for a timetable entry on a date.
type Attendance struct {
	ID          int              `json:"id"`
	StudentID   int              `json:"student_id"`
	TimetableID int              `json:"timetable_id"`
	Date        string           `json:"date"`
	Status      AttendanceStatus `json:"status"`
	MarkedAt    time.Time        `json:"marked_at"`
	Student     *StudentRef      `json:"student,omitempty"`
	Course      *CourseRef       `json:"course,omitempty"`
}

// StudentRef is the slim student view embedded in attendance rows.
type StudentRef struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	StudentID string `json:"student_id"`
}

// AttendanceMark is a single row of a bulk marking request.
type AttendanceMark struct {
	StudentID int              `json:"student_id" binding:"required,gt=0"`
	Status    AttendanceStatus `json:"status" binding:"required,oneof=present absent"`
}

// MarkBulkRequest records attendance for a whole class session.
type MarkBulkRequest struct {
	TimetableID int              `json:"timetable_id" binding:"required,gt=0"`
	Date        string           `json:"date" binding:"required,datetime=2006-01-02"`
	Attendance  []AttendanceMark `json:"attendance" binding:"required,min=1,dive"`
}

// StudentAttendanceSummary is a per-student tally within a course.
type StudentAttendanceSummary struct {
	StudentID int    `json:"student_id"`
	Name      string `json:"name"`
	Total     int    `json:"total"`
	Present   int    `json:"present"`
}

// CourseAttendanceSummary aggregates attendance for a course.
type CourseAttendanceSummary struct {
	TotalClasses      int                        `json:"total_classes"`
	StudentAttendance []StudentAttendanceSummary `json:"student_attendance"`
}
