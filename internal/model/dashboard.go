package model

// RecentMark is one of the latest attendance marks shown on the dashboard.
type RecentMark struct {
	StudentName string           `json:"student_name"`
	CourseCode  string           `json:"course_code"`
	Date        string           `json:"date"`
	Status      AttendanceStatus `json:"status"`
	MarkedAt    string           `json:"marked_at"`
}

// DashboardStats holds the headline numbers for a faculty.
type DashboardStats struct {
	CoursesCount      int          `json:"courses_count"`
	TotalStudents     int          `json:"total_students"`
	AverageAttendance int          `json:"average_attendance"`
	RecentActivity    []RecentMark `json:"recent_activity"`
}

// CourseAttendanceRate compares attendance across a faculty's courses.
type CourseAttendanceRate struct {
	CourseCode     string `json:"course_code"`
	CourseName     string `json:"course_name"`
	AttendanceRate int    `json:"attendance_rate"`
}

// DailyAttendance is a per-day tally within a month.
type DailyAttendance struct {
	Total   int `json:"total"`
	Present int `json:"present"`
}

// AttendanceOverview is the response of the attendance overview endpoint.
type AttendanceOverview struct {
	CourseComparison []CourseAttendanceRate     `json:"course_comparison"`
	MonthlyData      map[string]DailyAttendance `json:"monthly_data"`
}
