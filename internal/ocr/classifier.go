package ocr

import (
	"regexp"
	"strings"

	"github.com/facultrack/attendance-backend/internal/schedule"
)

// TokenKind is the category a piece of OCR text falls into.
type TokenKind int

const (
	Unrecognized TokenKind = iota
	CourseCode
	DayName
	Time
	Venue
)

func (k TokenKind) String() string {
	switch k {
	case CourseCode:
		return "course_code"
	case DayName:
		return "day"
	case Time:
		return "time"
	case Venue:
		return "venue"
	default:
		return "unrecognized"
	}
}

var courseCodePattern = regexp.MustCompile(`^[A-Z]{2,4}[0-9]{3,4}$`)

// venueMarkers are matched case-sensitively anywhere in the token.
var venueMarkers = []string{"Room", "Lab", "Hall"}

// IsCourseCode reports whether s looks like "CS101" or "MATH2010".
func IsCourseCode(s string) bool {
	return courseCodePattern.MatchString(s)
}

// Classify assigns a kind to a single, already trimmed token.
// Checks run in a fixed order and the first match wins.
func Classify(token string) TokenKind {
	switch {
	case IsCourseCode(token):
		return CourseCode
	case schedule.IsDay(token):
		return DayName
	case schedule.IsClock(token):
		return Time
	case isVenue(token):
		return Venue
	default:
		return Unrecognized
	}
}

func isVenue(token string) bool {
	for _, m := range venueMarkers {
		if strings.Contains(token, m) {
			return true
		}
	}
	return false
}
