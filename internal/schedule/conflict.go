package schedule

// Entry is the view of a stored timetable entry the detector needs.
type Entry struct {
	ID        int
	FacultyID int
	Interval  TimeInterval
}

// FindConflict returns the first entry of facultyID whose interval overlaps
// candidate. The entry whose ID equals excludeID is skipped so an update is
// never compared against its own previous slot.
func FindConflict(facultyID int, candidate TimeInterval, existing []Entry, excludeID *int) (Entry, bool) {
	for _, e := range existing {
		if e.FacultyID != facultyID {
			continue
		}
		if excludeID != nil && e.ID == *excludeID {
			continue
		}
		if Overlaps(candidate, e.Interval) {
			return e, true
		}
	}
	return Entry{}, false
}

// HasConflict reports whether candidate overlaps any of the faculty's entries.
func HasConflict(facultyID int, candidate TimeInterval, existing []Entry, excludeID *int) bool {
	_, found := FindConflict(facultyID, candidate, existing, excludeID)
	return found
}

// CheckConflict is FindConflict expressed as an error.
func CheckConflict(facultyID int, candidate TimeInterval, existing []Entry, excludeID *int) error {
	if e, found := FindConflict(facultyID, candidate, existing, excludeID); found {
		return &ConflictError{ConflictingID: e.ID, Interval: e.Interval}
	}
	return nil
}
