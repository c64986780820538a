package domain

import (
	"time"
)

// TargetAnyShift marks an exception that grants access in whatever shift is
// active at scan time.
const TargetAnyShift = "*"

type AccessException struct {
	ID          int64      `json:"id"`
	SubjectCode string     `json:"subjectCode"`
	SourceShift string     `json:"sourceShift"`
	TargetShift string     `json:"targetShift"`
	ValidFrom   time.Time  `json:"validFrom"`
	ValidTo     *time.Time `json:"validTo"` // nil = open-ended
	Reason      string     `json:"reason"`
	Active      bool       `json:"active"`
	CreatedBy   string     `json:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt"`
	Version     int32      `json:"-"`
}

// AppliesTo reports whether the exception covers a scan for requiredShift on
// the given date. Dates are compared at day granularity.
func (e *AccessException) AppliesTo(subjectCode, requiredShift string, date time.Time) bool {
	if !e.Active || e.SubjectCode != subjectCode {
		return false
	}
	if e.TargetShift != TargetAnyShift && e.TargetShift != requiredShift {
		return false
	}

	day := calendarDay(date)
	if day.Before(calendarDay(e.ValidFrom)) {
		return false
	}
	if e.ValidTo != nil && day.After(calendarDay(*e.ValidTo)) {
		return false
	}

	return true
}

// calendarDay normalizes t to its own location's calendar day, the same day
// the scan ledger keys on. Truncate would bucket by the UTC day and shift
// the validity window on servers away from UTC.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ExceptionPolicy is a singleton row; administrators edit it, the gate and
// the exception manager only read it.
type ExceptionPolicy struct {
	AllowOutOfShiftAccess bool  `json:"allowOutOfShiftAccess"`
	LogExceptions         bool  `json:"logExceptions"`
	RequireAdminApproval  bool  `json:"requireAdminApproval"`
	NewHireGraceDays      int   `json:"newHireGraceDays"`
	GraceMinutes          int   `json:"graceMinutes"`
	Version               int32 `json:"-"`
}
