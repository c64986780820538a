package utils

import (
	"fmt"

	"github.com/evia-dev/comedor-access/backend/internal/domain"
)

const MinutesPerDay = 1440

// ParseClock converts an "HH:MM" string into minutes since midnight.
func ParseClock(s string) (int, error) {
	var hh, mm int
	var trailing string
	// n == 3 means there was input left over after the minutes
	if n, _ := fmt.Sscanf(s, "%d:%d%s", &hh, &mm, &trailing); n != 2 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	if hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	return hh*60 + mm, nil
}

// FormatMinute renders minutes since midnight as "HH:MM".
func FormatMinute(m int) string {
	m = ((m % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// Overlaps reports whether the half-open intervals [s1,e1) and [s2,e2)
// intersect.
func Overlaps(s1, e1, s2, e2 int) bool {
	return s1 < e2 && s2 < e1
}

// ValidateShiftWindow checks the interval bounds of a single definition.
// Overnight windows are rejected; an overnight shift has to be split into
// two definitions.
func ValidateShiftWindow(d *domain.ShiftDraft) error {
	if d.StartMinute < 0 || d.StartMinute > MinutesPerDay-1 {
		return &domain.ValidationError{Field: "startMinute", Message: "minutes must fall in 0-1439"}
	}
	if d.EndMinute < 0 || d.EndMinute > MinutesPerDay-1 {
		return &domain.ValidationError{Field: "endMinute", Message: "minutes must fall in 0-1439"}
	}
	if d.StartMinute >= d.EndMinute {
		return &domain.ValidationError{
			Field:   "endMinute",
			Message: "end must be after start; split a shift spanning midnight into two definitions",
		}
	}
	return nil
}
