package domain

import (
	"time"
)

// ScanRecord is the scan ledger entry. At most one record may exist per
// (subjectID, shiftName, date); the database enforces this with the
// scan_records_subject_shift_date_key unique constraint.
type ScanRecord struct {
	ID        int64     `json:"id"`
	SubjectID int64     `json:"subjectId"`
	ShiftName string    `json:"shiftName"`
	Date      time.Time `json:"date"` // day granularity
	Timestamp time.Time `json:"timestamp"`
}

// AccessAttempt is one kiosk scan. SubjectID is optional; when supplied it
// must match the roster entry the code resolves to.
type AccessAttempt struct {
	SubjectID   int64     `json:"subjectId"`
	SubjectCode string    `json:"subjectCode"`
	ShiftHint   string    `json:"shiftHint,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

type Outcome string

const (
	OutcomeAllow Outcome = "ALLOW"
	OutcomeDeny  Outcome = "DENY"
)

// DecisionReason is the stable machine-readable code attached to every
// decision; Message carries the operator-facing text.
type DecisionReason string

const (
	ReasonOK             DecisionReason = "OK"
	ReasonWithinGrace    DecisionReason = "WITHIN_GRACE"
	ReasonNoActiveShift  DecisionReason = "NO_ACTIVE_SHIFT"
	ReasonDuplicateScan  DecisionReason = "DUPLICATE_SCAN"
	ReasonUnknownSubject DecisionReason = "UNKNOWN_SUBJECT"
	ReasonSystemError    DecisionReason = "SYSTEM_ERROR"
)

type AccessDecision struct {
	Outcome   Outcome        `json:"outcome"`
	Reason    DecisionReason `json:"reason"`
	Message   string         `json:"message"`
	ShiftName string         `json:"shift,omitempty"`
	Exception bool           `json:"exceptionApplied,omitempty"`
}

func Allow(reason DecisionReason, shiftName, message string) AccessDecision {
	return AccessDecision{Outcome: OutcomeAllow, Reason: reason, ShiftName: shiftName, Message: message}
}

func Deny(reason DecisionReason, message string) AccessDecision {
	return AccessDecision{Outcome: OutcomeDeny, Reason: reason, Message: message}
}
