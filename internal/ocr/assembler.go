package ocr

import (
	"errors"
	"sort"
	"strings"

	"github.com/facultrack/attendance-backend/internal/schedule"
)

// Token is one piece of detected text and its place in scan order.
type Token struct {
	Text     string `json:"text"`
	Position int    `json:"position"`
}

// Draft is a partially filled timetable row recovered from OCR text.
// Empty fields were not found in the image.
type Draft struct {
	CourseCode string `json:"course_code,omitempty"`
	DayOfWeek  string `json:"day_of_week,omitempty"`
	StartTime  string `json:"start_time,omitempty"`
	EndTime    string `json:"end_time,omitempty"`
	Venue      string `json:"venue,omitempty"`
}

// IsEmpty reports whether no field has been set.
func (d Draft) IsEmpty() bool {
	return d == Draft{}
}

// Assemble groups classified tokens into drafts. A course code closes the
// current draft and opens a new one; days and venues overwrite, the first
// two times fill start then end and any further time is dropped.
// Token order matters: shuffling the input changes the output.
func Assemble(tokens []string) []Draft {
	drafts := []Draft{}
	var current Draft

	for _, tok := range tokens {
		switch Classify(tok) {
		case CourseCode:
			if !current.IsEmpty() {
				drafts = append(drafts, current)
				current = Draft{}
			}
			current.CourseCode = tok
		case DayName:
			current.DayOfWeek = tok
		case Time:
			if current.StartTime == "" {
				current.StartTime = tok
			} else if current.EndTime == "" {
				current.EndTime = tok
			}
		case Venue:
			current.Venue = tok
		}
	}

	if !current.IsEmpty() {
		drafts = append(drafts, current)
	}
	return drafts
}

// ExtractDrafts orders tokens by position, trims them, drops blanks and
// assembles the rest.
func ExtractDrafts(tokens []Token) []Draft {
	ordered := make([]Token, len(tokens))
	copy(ordered, tokens)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})

	texts := make([]string, 0, len(ordered))
	for _, t := range ordered {
		if s := strings.TrimSpace(t.Text); s != "" {
			texts = append(texts, s)
		}
	}
	return Assemble(texts)
}

// Issue describes one problem that keeps a draft from becoming an entry.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateDraft checks a draft against the rules a stored entry must meet.
// It returns the interval when the draft is usable, otherwise every issue found.
func ValidateDraft(d Draft) (schedule.TimeInterval, []Issue) {
	var issues []Issue

	if d.CourseCode == "" {
		issues = append(issues, Issue{Field: "course_code", Message: "missing course code"})
	}
	if d.DayOfWeek == "" {
		issues = append(issues, Issue{Field: "day_of_week", Message: "missing day of week"})
	}
	if d.StartTime == "" {
		issues = append(issues, Issue{Field: "start_time", Message: "missing start time"})
	}
	if d.EndTime == "" {
		issues = append(issues, Issue{Field: "end_time", Message: "missing end time"})
	}
	if len(issues) > 0 {
		return schedule.TimeInterval{}, issues
	}

	iv, err := schedule.NewTimeInterval(d.DayOfWeek, d.StartTime, d.EndTime)
	if err != nil {
		var ve *schedule.ValidationError
		if errors.As(err, &ve) {
			return schedule.TimeInterval{}, []Issue{{Field: ve.Field, Message: ve.Reason}}
		}
		return schedule.TimeInterval{}, []Issue{{Field: "interval", Message: err.Error()}}
	}
	return iv, nil
}
