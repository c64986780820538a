package gate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/evia-dev/comedor-access/backend/internal/domain"
	"github.com/evia-dev/comedor-access/backend/internal/shiftclock"
)

type ShiftSource interface {
	ListActive() ([]*domain.Shift, error)
}

type SubjectSource interface {
	GetSubjectByCode(code string) (*domain.Subject, error)
}

// ScanLedger is the durable record of admitted scans. InsertScanRecord must
// check uniqueness and insert in one atomic operation, returning
// domain.ErrDuplicateScan on a second scan for the same triple.
type ScanLedger interface {
	InsertScanRecord(ctx context.Context, record *domain.ScanRecord) error
}

type ExceptionSource interface {
	FindApplicable(subjectCode, requiredShift string, date time.Time) (*domain.AccessException, error)
	IsWithinGrace(policy *domain.ExceptionPolicy, registeredAt, now time.Time) bool
	IsWithinArrivalGrace(policy *domain.ExceptionPolicy, shift *domain.Shift, nowMinute int) bool
	Policy() (*domain.ExceptionPolicy, error)
}

// Gate decides one access attempt. Every outcome is terminal; retrying is
// the caller's business and only makes sense after SYSTEM_ERROR.
type Gate struct {
	clock      *shiftclock.Clock
	shifts     ShiftSource
	subjects   SubjectSource
	exceptions ExceptionSource
	ledger     ScanLedger

	scanTimeout time.Duration
}

func New(clock *shiftclock.Clock, shifts ShiftSource, subjects SubjectSource, exceptions ExceptionSource, ledger ScanLedger, scanTimeout time.Duration) *Gate {
	if scanTimeout <= 0 {
		scanTimeout = 5 * time.Second
	}
	return &Gate{
		clock:       clock,
		shifts:      shifts,
		subjects:    subjects,
		exceptions:  exceptions,
		ledger:      ledger,
		scanTimeout: scanTimeout,
	}
}

// RecordAttempt runs the full decision: resolve the clock, evaluate
// membership, exceptions and grace, then atomically append to the scan
// ledger. Exactly one ScanRecord is written on ALLOW, none on DENY. Any
// storage failure fails closed to DENY.
func (g *Gate) RecordAttempt(ctx context.Context, attempt domain.AccessAttempt) domain.AccessDecision {
	now := attempt.Timestamp
	if now.IsZero() {
		now = time.Now()
	}

	subject, err := g.subjects.GetSubjectByCode(attempt.SubjectCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Deny(domain.ReasonUnknownSubject, "unknown subject code")
		}
		return g.systemError("lookup subject", err)
	}
	if !subject.Active {
		return domain.Deny(domain.ReasonUnknownSubject, "subject is deactivated")
	}
	if attempt.SubjectID != 0 && attempt.SubjectID != subject.ID {
		return domain.Deny(domain.ReasonUnknownSubject, "subject id does not match code")
	}

	definitions, err := g.shifts.ListActive()
	if err != nil {
		return g.systemError("list shifts", err)
	}

	policy, err := g.exceptions.Policy()
	if err != nil {
		return g.systemError("load policy", err)
	}

	nowMinute := shiftclock.MinuteOf(now)
	state := g.clock.Resolve(nowMinute, definitions)

	var targetShift string
	reason := domain.ReasonOK
	exceptionApplied := false

	if state.Status == domain.StatusActive {
		required := state.Shift.Name

		exc, err := g.exceptions.FindApplicable(attempt.SubjectCode, required, now)
		if err != nil {
			return g.systemError("find exception", err)
		}

		permitted := subject.ShiftName == required ||
			exc != nil ||
			g.exceptions.IsWithinGrace(policy, subject.RegisteredAt, now) ||
			policy.AllowOutOfShiftAccess
		if !permitted {
			return domain.Deny(domain.ReasonNoActiveShift, fmt.Sprintf("shift %s does not admit this subject", required))
		}

		targetShift = required
		exceptionApplied = exc != nil
	} else if ended := g.justEnded(policy, definitions, nowMinute); ended != nil {
		// late arrival: the shift is over but still inside its grace window
		exc, err := g.exceptions.FindApplicable(attempt.SubjectCode, ended.Name, now)
		if err != nil {
			return g.systemError("find exception", err)
		}

		permitted := subject.ShiftName == ended.Name ||
			exc != nil ||
			g.exceptions.IsWithinGrace(policy, subject.RegisteredAt, now) ||
			policy.AllowOutOfShiftAccess
		if !permitted {
			return domain.Deny(domain.ReasonNoActiveShift, "no active shift at this time")
		}

		targetShift = ended.Name
		reason = domain.ReasonWithinGrace
		exceptionApplied = exc != nil
	} else if g.exceptions.IsWithinGrace(policy, subject.RegisteredAt, now) || policy.AllowOutOfShiftAccess {
		// out-of-shift admission: record against the kiosk's hint or the
		// nearest definition the clock reported
		switch {
		case attempt.ShiftHint != "":
			hinted := findDefinition(definitions, attempt.ShiftHint)
			if hinted == nil {
				return domain.Deny(domain.ReasonNoActiveShift, fmt.Sprintf("shift hint %s names no active shift", attempt.ShiftHint))
			}
			targetShift = hinted.Name
		case state.Shift != nil:
			targetShift = state.Shift.Name
		default:
			return domain.Deny(domain.ReasonNoActiveShift, "no shift definitions available")
		}
	} else {
		return domain.Deny(domain.ReasonNoActiveShift, "no active shift at this time")
	}

	if exceptionApplied && policy.LogExceptions {
		slog.Info("access exception applied", "subject", attempt.SubjectCode, "shift", targetShift)
	}

	record := &domain.ScanRecord{
		SubjectID: subject.ID,
		ShiftName: targetShift,
		Date:      dayOf(now),
		Timestamp: now,
	}

	insertCtx, cancel := context.WithTimeout(ctx, g.scanTimeout)
	defer cancel()

	if err := g.ledger.InsertScanRecord(insertCtx, record); err != nil {
		if errors.Is(err, domain.ErrDuplicateScan) {
			return domain.AccessDecision{
				Outcome:   domain.OutcomeDeny,
				Reason:    domain.ReasonDuplicateScan,
				Message:   "subject already scanned in this shift today",
				ShiftName: targetShift,
			}
		}
		return g.systemError("insert scan record", err)
	}

	decision := domain.Allow(reason, targetShift, "access granted")
	decision.Exception = exceptionApplied
	return decision
}

func findDefinition(definitions []*domain.Shift, name string) *domain.Shift {
	for _, d := range definitions {
		if d.Active && d.Name == name {
			return d
		}
	}
	return nil
}

// justEnded returns the definition whose grace window still covers
// nowMinute, or nil.
func (g *Gate) justEnded(policy *domain.ExceptionPolicy, definitions []*domain.Shift, nowMinute int) *domain.Shift {
	for _, d := range definitions {
		if d.Active && g.exceptions.IsWithinArrivalGrace(policy, d, nowMinute) {
			return d
		}
	}
	return nil
}

func (g *Gate) systemError(op string, err error) domain.AccessDecision {
	sysErr := &domain.SystemError{Op: op, Err: err}
	slog.Error("access attempt failed closed", "error", sysErr)
	return domain.Deny(domain.ReasonSystemError, "access check unavailable, denied")
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
