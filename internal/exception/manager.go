package exception

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/evia-dev/comedor-access/backend/internal/domain"
)

const policyKey = "cache:exception:policy"

type Store interface {
	ListExceptions() ([]*domain.AccessException, error)
	ListExceptionsForSubject(subjectCode string) ([]*domain.AccessException, error)
	GetExceptionByID(id int64) (*domain.AccessException, error)
	CreateException(exc *domain.AccessException) error
	UpdateException(exc *domain.AccessException) error
	DeleteException(id int64) error
	GetExceptionPolicy() (*domain.ExceptionPolicy, error)
	UpdateExceptionPolicy(policy *domain.ExceptionPolicy) error
}

type Cache interface {
	Get(ctx context.Context, key string, v any) error
	Set(ctx context.Context, key string, v any) error
	Invalidate(ctx context.Context, keys ...string) error
}

// Manager owns access exception records and the grace-period policy. It
// answers the three independent permission questions; composing them into
// an ALLOW/DENY decision is the gate's job, never the manager's.
type Manager struct {
	store Store
	cache Cache
}

func New(store Store, cache Cache) *Manager {
	return &Manager{
		store: store,
		cache: cache,
	}
}

// FindApplicable returns the oldest active exception covering the subject,
// shift and date, or nil when none applies.
func (m *Manager) FindApplicable(subjectCode, requiredShift string, date time.Time) (*domain.AccessException, error) {
	exceptions, err := m.store.ListExceptionsForSubject(subjectCode)
	if err != nil {
		return nil, err
	}

	for _, exc := range exceptions {
		if exc.AppliesTo(subjectCode, requiredShift, date) {
			return exc, nil
		}
	}

	return nil, nil
}

// IsWithinGrace reports whether a subject registered recently enough to be
// exempt from shift restrictions.
func (m *Manager) IsWithinGrace(policy *domain.ExceptionPolicy, registeredAt, now time.Time) bool {
	if policy.NewHireGraceDays <= 0 {
		return false
	}
	return now.Sub(registeredAt) <= time.Duration(policy.NewHireGraceDays)*24*time.Hour
}

// IsWithinArrivalGrace reports whether nowMinute still falls inside the
// shift's late-arrival window.
func (m *Manager) IsWithinArrivalGrace(policy *domain.ExceptionPolicy, shift *domain.Shift, nowMinute int) bool {
	if policy.GraceMinutes <= 0 {
		return false
	}
	return nowMinute > shift.EndMinute && nowMinute <= shift.EndMinute+policy.GraceMinutes
}

// Policy returns the singleton policy, served from the cache when possible.
func (m *Manager) Policy() (*domain.ExceptionPolicy, error) {
	if m.cache != nil {
		policy := &domain.ExceptionPolicy{}
		if err := m.cache.Get(context.Background(), policyKey, policy); err == nil {
			return policy, nil
		}
	}

	policy, err := m.store.GetExceptionPolicy()
	if err != nil {
		return nil, err
	}

	if m.cache != nil {
		if err := m.cache.Set(context.Background(), policyKey, policy); err != nil {
			slog.Warn("failed to cache exception policy", "error", err)
		}
	}

	return policy, nil
}

func (m *Manager) UpdatePolicy(policy *domain.ExceptionPolicy) error {
	if policy.NewHireGraceDays < 0 || policy.GraceMinutes < 0 {
		return &domain.ValidationError{Field: "policy", Message: "grace values must not be negative"}
	}

	if err := m.store.UpdateExceptionPolicy(policy); err != nil {
		return err
	}
	m.invalidatePolicy()

	return nil
}

func (m *Manager) List() ([]*domain.AccessException, error) {
	return m.store.ListExceptions()
}

func (m *Manager) Create(exc *domain.AccessException) error {
	if err := validateRange(exc); err != nil {
		return err
	}
	return m.store.CreateException(exc)
}

func (m *Manager) Update(exc *domain.AccessException) error {
	if err := validateRange(exc); err != nil {
		return err
	}
	return m.store.UpdateException(exc)
}

func (m *Manager) Get(id int64) (*domain.AccessException, error) {
	exc, err := m.store.GetExceptionByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Resource: "exception", ID: id}
		}
		return nil, err
	}
	return exc, nil
}

func (m *Manager) Delete(id int64) error {
	return m.store.DeleteException(id)
}

func validateRange(exc *domain.AccessException) error {
	if exc.ValidTo != nil && exc.ValidFrom.After(*exc.ValidTo) {
		return &domain.ValidationError{Field: "validFrom", Message: "validFrom must not be after validTo"}
	}
	return nil
}

func (m *Manager) invalidatePolicy() {
	if m.cache == nil {
		return
	}
	if err := m.cache.Invalidate(context.Background(), policyKey); err != nil {
		slog.Warn("failed to invalidate policy cache", "error", err)
	}
}
