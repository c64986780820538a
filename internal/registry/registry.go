package registry

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sync"

	"github.com/evia-dev/comedor-access/backend/internal/domain"
	"github.com/evia-dev/comedor-access/backend/internal/utils"
)

const activeShiftsKey = "cache:shifts:active"

// Store is the persistence surface the registry needs. *repository.Repository
// satisfies it.
type Store interface {
	ListShifts() ([]*domain.Shift, error)
	GetShiftByID(id int64) (*domain.Shift, error)
	CreateShift(shift *domain.Shift) error
	UpdateShift(shift *domain.Shift) error
	DeleteShift(id int64) error
}

// Cache is the short-TTL read cache for the active definition set. May be
// nil, in which case every read goes to the store.
type Cache interface {
	Get(ctx context.Context, key string, v any) error
	Set(ctx context.Context, key string, v any) error
	Invalidate(ctx context.Context, keys ...string) error
}

// Registry owns the shift definition set and its no-overlap invariant.
// Mutations are serialized behind mu so that two concurrent writes cannot
// both pass the overlap check and commit conflicting intervals.
type Registry struct {
	store Store
	cache Cache

	mu sync.Mutex
}

func New(store Store, cache Cache) *Registry {
	return &Registry{
		store: store,
		cache: cache,
	}
}

// Create persists a draft as a new shift definition.
func (r *Registry) Create(draft domain.ShiftDraft) (*domain.Shift, error) {
	if err := utils.ValidateShiftWindow(&draft); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkOverlap(&draft, 0); err != nil {
		return nil, err
	}

	shift := &domain.Shift{ShiftDraft: draft}
	if err := r.store.CreateShift(shift); err != nil {
		return nil, err
	}
	r.invalidate()

	return shift, nil
}

// Update edits an existing definition in place.
func (r *Registry) Update(id int64, draft domain.ShiftDraft) (*domain.Shift, error) {
	if err := utils.ValidateShiftWindow(&draft); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	shift, err := r.store.GetShiftByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Resource: "shift", ID: id}
		}
		return nil, err
	}

	if err := r.checkOverlap(&draft, id); err != nil {
		return nil, err
	}

	shift.ShiftDraft = draft
	if err := r.store.UpdateShift(shift); err != nil {
		return nil, err
	}
	r.invalidate()

	return shift, nil
}

func (r *Registry) Delete(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.DeleteShift(id); err != nil {
		return err
	}
	r.invalidate()

	return nil
}

func (r *Registry) Get(id int64) (*domain.Shift, error) {
	shift, err := r.store.GetShiftByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Resource: "shift", ID: id}
		}
		return nil, err
	}
	return shift, nil
}

// List returns every definition, active or not, ordered by start minute.
func (r *Registry) List() ([]*domain.Shift, error) {
	return r.store.ListShifts()
}

// ListActive returns the active definition set ordered by start minute,
// served from the cache when possible. The cache TTL is short enough that
// callers may treat the result as current; the gate still re-checks scan
// uniqueness against the store.
func (r *Registry) ListActive() ([]*domain.Shift, error) {
	if r.cache != nil {
		cached := make([]*domain.Shift, 0)
		if err := r.cache.Get(context.Background(), activeShiftsKey, &cached); err == nil {
			return cached, nil
		}
	}

	all, err := r.store.ListShifts()
	if err != nil {
		return nil, err
	}

	active := make([]*domain.Shift, 0, len(all))
	for _, shift := range all {
		if shift.Active {
			active = append(active, shift)
		}
	}

	if r.cache != nil {
		if err := r.cache.Set(context.Background(), activeShiftsKey, active); err != nil {
			slog.Warn("failed to cache active shifts", "error", err)
		}
	}

	return active, nil
}

// checkOverlap enforces the no-overlap invariant among active definitions.
// Inactive drafts never conflict. Must be called with mu held.
func (r *Registry) checkOverlap(draft *domain.ShiftDraft, excludeID int64) error {
	if !draft.Active {
		return nil
	}

	all, err := r.store.ListShifts()
	if err != nil {
		return err
	}

	for _, other := range all {
		if other.ID == excludeID || !other.Active {
			continue
		}
		if utils.Overlaps(draft.StartMinute, draft.EndMinute, other.StartMinute, other.EndMinute) {
			return &domain.ValidationError{OverlapsWith: other.Name}
		}
	}

	return nil
}

func (r *Registry) invalidate() {
	if r.cache == nil {
		return
	}
	if err := r.cache.Invalidate(context.Background(), activeShiftsKey); err != nil {
		slog.Warn("failed to invalidate shift cache", "error", err)
	}
}
