package websocket

import "time"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action of a client message.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError Event = "error"
	EventPong  Event = "pong"
	EventReady Event = "ready"

	EventTimetableCreated Event = "timetable.created"
	EventTimetableUpdated Event = "timetable.updated"
	EventTimetableDeleted Event = "timetable.deleted"
	EventAttendanceMarked Event = "attendance.marked"
)

// LiveEvent is published on a faculty's channel and forwarded verbatim to
// every connected client of that faculty.
type LiveEvent struct {
	Event     Event       `json:"event"`
	FacultyID int         `json:"faculty_id"`
	Data      interface{} `json:"data,omitempty"`
	At        time.Time   `json:"at"`
}

// TimetableDeletedData identifies a removed entry.
type TimetableDeletedData struct {
	ID int `json:"id"`
}

// AttendanceMarkedData summarizes a bulk marking.
type AttendanceMarkedData struct {
	TimetableID int    `json:"timetable_id"`
	Date        string `json:"date"`
	Present     int    `json:"present"`
	Absent      int    `json:"absent"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}

type ReadyResponse struct {
	Event     Event `json:"event"`
	FacultyID int   `json:"faculty_id"`
}
