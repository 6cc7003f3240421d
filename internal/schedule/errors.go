package schedule

import "fmt"

// ConflictMessage is the user-facing text for a rejected time slot.
const ConflictMessage = "Time slot conflicts with existing schedule"

// ValidationError reports a malformed day, time, or an empty range.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ConflictError reports that a candidate interval collides with a stored entry.
type ConflictError struct {
	ConflictingID int
	Interval      TimeInterval
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s (entry %d, %s)", ConflictMessage, e.ConflictingID, e.Interval)
}
