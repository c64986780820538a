package domain

import (
	"errors"
	"fmt"
)

// Sentinels for the expected, non-exceptional outcomes of RecordAttempt.
var (
	ErrDuplicateScan = errors.New("duplicate scan for this shift and date")
	ErrNoActiveShift = errors.New("no active shift permits this subject")
)

// ValidationError reports a client-correctable problem with a shift or
// exception payload. OverlapsWith names the conflicting shift when the
// no-overlap invariant would be violated.
type ValidationError struct {
	Field        string
	Message      string
	OverlapsWith string
}

func (e *ValidationError) Error() string {
	if e.OverlapsWith != "" {
		return fmt.Sprintf("OVERLAPS_WITH:%s", e.OverlapsWith)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// SystemError wraps a storage or transport failure. The gate fails closed
// on it; callers may retry.
type SystemError struct {
	Op  string
	Err error
}

func (e *SystemError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *SystemError) Unwrap() error {
	return e.Err
}
