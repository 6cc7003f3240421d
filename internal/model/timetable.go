package model

import (
	"time"

	"github.com/facultrack/attendance-backend/internal/schedule"
)

// TimetableEntry is one recurring weekly class session.
// Times are stored as canonical zero-padded HH:MM.
type TimetableEntry struct {
	ID        int        `json:"id"`
	FacultyID int        `json:"faculty_id"`
	CourseID  int        `json:"course_id"`
	DayOfWeek string     `json:"day_of_week"`
	StartTime string     `json:"start_time"`
	EndTime   string     `json:"end_time"`
	Venue     *string    `json:"venue"`
	Course    *CourseRef `json:"course,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Interval rebuilds the validated time interval of a stored entry.
func (e *TimetableEntry) Interval() (schedule.TimeInterval, error) {
	return schedule.NewTimeInterval(e.DayOfWeek, e.StartTime, e.EndTime)
}

// CreateTimetableRequest is the payload for scheduling a class session.
type CreateTimetableRequest struct {
	CourseID  int     `json:"course_id" binding:"required,gt=0"`
	DayOfWeek string  `json:"day_of_week" binding:"required,weekday"`
	StartTime string  `json:"start_time" binding:"required,clock"`
	EndTime   string  `json:"end_time" binding:"required,clock"`
	Venue     *string `json:"venue" binding:"omitempty,min=2,max=255"`
}

// UpdateTimetableRequest is the partial payload for rescheduling.
// Omitted fields keep their stored values.
type UpdateTimetableRequest struct {
	CourseID  *int    `json:"course_id" binding:"omitempty,gt=0"`
	DayOfWeek *string `json:"day_of_week" binding:"omitempty,weekday"`
	StartTime *string `json:"start_time" binding:"omitempty,clock"`
	EndTime   *string `json:"end_time" binding:"omitempty,clock"`
	Venue     *string `json:"venue" binding:"omitempty,min=2,max=255"`
}

// CheckAvailabilityRequest asks whether a slot is free without writing anything.
type CheckAvailabilityRequest struct {
	DayOfWeek          string `json:"day_of_week" binding:"required,weekday"`
	StartTime          string `json:"start_time" binding:"required,clock"`
	EndTime            string `json:"end_time" binding:"required,clock"`
	ExcludeTimetableID *int   `json:"exclude_timetable_id" binding:"omitempty,gt=0"`
}

// TodayEntry is a timetable entry enriched for the dashboard.
type TodayEntry struct {
	TimetableEntry
	StudentCount int  `json:"student_count"`
	IsCurrent    bool `json:"is_current"`
	IsUpcoming   bool `json:"is_upcoming"`
}
