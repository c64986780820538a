package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evia-dev/comedor-access/backend/internal/domain"
	"github.com/evia-dev/comedor-access/backend/internal/utils"
)

type fakeStore struct {
	nextID int64
	shifts map[int64]*domain.Shift
}

func newFakeStore() *fakeStore {
	return &fakeStore{shifts: make(map[int64]*domain.Shift)}
}

func (s *fakeStore) ListShifts() ([]*domain.Shift, error) {
	out := make([]*domain.Shift, 0, len(s.shifts))
	for _, shift := range s.shifts {
		copied := *shift
		out = append(out, &copied)
	}
	return out, nil
}

func (s *fakeStore) GetShiftByID(id int64) (*domain.Shift, error) {
	shift, ok := s.shifts[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "shift", ID: id}
	}
	copied := *shift
	return &copied, nil
}

func (s *fakeStore) CreateShift(shift *domain.Shift) error {
	s.nextID++
	shift.ID = s.nextID
	shift.CreatedAt = time.Now()
	shift.Version = 1
	copied := *shift
	s.shifts[shift.ID] = &copied
	return nil
}

func (s *fakeStore) UpdateShift(shift *domain.Shift) error {
	shift.Version++
	copied := *shift
	s.shifts[shift.ID] = &copied
	return nil
}

func (s *fakeStore) DeleteShift(id int64) error {
	if _, ok := s.shifts[id]; !ok {
		return &domain.NotFoundError{Resource: "shift", ID: id}
	}
	delete(s.shifts, id)
	return nil
}

func breakfast() domain.ShiftDraft {
	return domain.ShiftDraft{Name: "DESAYUNO", StartMinute: 360, EndMinute: 540, Active: true}
}

func TestCreateAssignsID(t *testing.T) {
	reg := New(newFakeStore(), nil)

	shift, err := reg.Create(breakfast())
	require.NoError(t, err)
	assert.NotZero(t, shift.ID)
	assert.Equal(t, "DESAYUNO", shift.Name)
}

func TestCreateRejectsOverlap(t *testing.T) {
	reg := New(newFakeStore(), nil)

	_, err := reg.Create(breakfast())
	require.NoError(t, err)

	_, err = reg.Create(domain.ShiftDraft{Name: "BRUNCH", StartMinute: 500, EndMinute: 700, Active: true})
	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "DESAYUNO", validationErr.OverlapsWith)
}

func TestCreateAllowsAdjacentWindows(t *testing.T) {
	reg := New(newFakeStore(), nil)

	_, err := reg.Create(breakfast())
	require.NoError(t, err)

	// starts exactly when breakfast ends
	_, err = reg.Create(domain.ShiftDraft{Name: "ALMUERZO", StartMinute: 540, EndMinute: 700, Active: true})
	assert.NoError(t, err)
}

func TestCreateAllowsInactiveOverlap(t *testing.T) {
	reg := New(newFakeStore(), nil)

	_, err := reg.Create(breakfast())
	require.NoError(t, err)

	_, err = reg.Create(domain.ShiftDraft{Name: "DESAYUNO_VIEJO", StartMinute: 360, EndMinute: 540, Active: false})
	assert.NoError(t, err)
}

func TestCreateRejectsMidnightWraparound(t *testing.T) {
	reg := New(newFakeStore(), nil)

	_, err := reg.Create(domain.ShiftDraft{Name: "NOCTURNO", StartMinute: 1320, EndMinute: 120, Active: true})
	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Empty(t, validationErr.OverlapsWith)
}

func TestUpdateExcludesSelfFromOverlapCheck(t *testing.T) {
	reg := New(newFakeStore(), nil)

	shift, err := reg.Create(breakfast())
	require.NoError(t, err)

	draft := breakfast()
	draft.EndMinute = 570
	updated, err := reg.Update(shift.ID, draft)
	require.NoError(t, err)
	assert.Equal(t, 570, updated.EndMinute)
}

func TestUpdateUnknownShift(t *testing.T) {
	reg := New(newFakeStore(), nil)

	_, err := reg.Update(42, breakfast())
	var notFound *domain.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestDeleteUnknownShift(t *testing.T) {
	reg := New(newFakeStore(), nil)

	err := reg.Delete(42)
	var notFound *domain.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestNoOverlapInvariantHolds(t *testing.T) {
	reg := New(newFakeStore(), nil)

	drafts := []domain.ShiftDraft{
		{Name: "DESAYUNO", StartMinute: 360, EndMinute: 540, Active: true},
		{Name: "COMIDA", StartMinute: 720, EndMinute: 960, Active: true},
		{Name: "COLACION", StartMinute: 500, EndMinute: 800, Active: true}, // conflicts with both
		{Name: "CENA", StartMinute: 1140, EndMinute: 1320, Active: true},
	}
	for _, draft := range drafts {
		_, _ = reg.Create(draft)
	}

	active, err := reg.ListActive()
	require.NoError(t, err)
	for i := 0; i < len(active); i++ {
		for j := i + 1; j < len(active); j++ {
			a, b := active[i], active[j]
			assert.False(t, utils.Overlaps(a.StartMinute, a.EndMinute, b.StartMinute, b.EndMinute),
				"%s overlaps %s", a.Name, b.Name)
		}
	}
}

func TestListActiveFiltersInactive(t *testing.T) {
	reg := New(newFakeStore(), nil)

	_, err := reg.Create(breakfast())
	require.NoError(t, err)
	_, err = reg.Create(domain.ShiftDraft{Name: "CERRADO", StartMinute: 1140, EndMinute: 1320, Active: false})
	require.NoError(t, err)

	active, err := reg.ListActive()
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "DESAYUNO", active[0].Name)
}
