package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Day is a canonical English weekday name.
type Day string

const (
	Monday    Day = "Monday"
	Tuesday   Day = "Tuesday"
	Wednesday Day = "Wednesday"
	Thursday  Day = "Thursday"
	Friday    Day = "Friday"
	Saturday  Day = "Saturday"
	Sunday    Day = "Sunday"
)

// Days lists the canonical day names in week order.
var Days = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ClockPattern matches 24h clock times; the hour may omit its leading zero.
var ClockPattern = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

// ParseDay returns the Day for an exact, case-sensitive day name.
func ParseDay(s string) (Day, error) {
	for _, d := range Days {
		if string(d) == s {
			return d, nil
		}
	}
	return "", &ValidationError{Field: "day_of_week", Reason: "Invalid day of week"}
}

// IsDay reports whether s is a canonical day name.
func IsDay(s string) bool {
	_, err := ParseDay(s)
	return err == nil
}

// IsClock reports whether s is a valid HH:MM time.
func IsClock(s string) bool {
	return ClockPattern.MatchString(s)
}

// ParseClock converts an HH:MM string into minutes since midnight.
func ParseClock(s string) (int, error) {
	if !IsClock(s) {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	h, m, _ := strings.Cut(s, ":")
	hours, _ := strconv.Atoi(h)
	minutes, _ := strconv.Atoi(m)
	return hours*60 + minutes, nil
}

// FormatClock renders minutes since midnight as zero-padded HH:MM.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// TimeInterval is a weekly [start, end) range on one day.
// The zero value is not valid; build one with NewTimeInterval.
type TimeInterval struct {
	day   Day
	start int
	end   int
}

// NewTimeInterval validates the day and both times and requires start < end.
func NewTimeInterval(day, start, end string) (TimeInterval, error) {
	d, err := ParseDay(day)
	if err != nil {
		return TimeInterval{}, err
	}

	s, err := ParseClock(start)
	if err != nil {
		return TimeInterval{}, &ValidationError{Field: "start_time", Reason: "Invalid start time format (HH:mm)"}
	}

	e, err := ParseClock(end)
	if err != nil {
		return TimeInterval{}, &ValidationError{Field: "end_time", Reason: "Invalid end time format (HH:mm)"}
	}

	if s >= e {
		return TimeInterval{}, &ValidationError{Field: "end_time", Reason: "End time must be after start time"}
	}

	return TimeInterval{day: d, start: s, end: e}, nil
}

// Day returns the interval's weekday.
func (t TimeInterval) Day() Day { return t.day }

// Start returns the canonical start time.
func (t TimeInterval) Start() string { return FormatClock(t.start) }

// End returns the canonical end time.
func (t TimeInterval) End() string { return FormatClock(t.end) }

// StartMinute returns the start as minutes since midnight.
func (t TimeInterval) StartMinute() int { return t.start }

// EndMinute returns the end as minutes since midnight.
func (t TimeInterval) EndMinute() int { return t.end }

// Contains reports whether minute falls inside [start, end).
func (t TimeInterval) Contains(minute int) bool {
	return t.start <= minute && minute < t.end
}

func (t TimeInterval) String() string {
	return fmt.Sprintf("%s %s-%s", t.day, t.Start(), t.End())
}

// Overlaps reports whether a and b share any instant on the same day.
// Ends are exclusive: 09:00-10:00 and 10:00-11:00 do not overlap.
func Overlaps(a, b TimeInterval) bool {
	return a.day == b.day && a.start < b.end && b.start < a.end
}
