package exception

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evia-dev/comedor-access/backend/internal/domain"
)

type fakeStore struct {
	nextID     int64
	exceptions map[int64]*domain.AccessException
	policy     domain.ExceptionPolicy
}

func newFakeStore() *fakeStore {
	return &fakeStore{exceptions: make(map[int64]*domain.AccessException)}
}

func (s *fakeStore) ListExceptions() ([]*domain.AccessException, error) {
	out := make([]*domain.AccessException, 0, len(s.exceptions))
	for id := int64(1); id <= s.nextID; id++ {
		if exc, ok := s.exceptions[id]; ok {
			copied := *exc
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *fakeStore) ListExceptionsForSubject(subjectCode string) ([]*domain.AccessException, error) {
	all, _ := s.ListExceptions()
	out := make([]*domain.AccessException, 0)
	for _, exc := range all {
		if exc.SubjectCode == subjectCode && exc.Active {
			out = append(out, exc)
		}
	}
	return out, nil
}

func (s *fakeStore) GetExceptionByID(id int64) (*domain.AccessException, error) {
	exc, ok := s.exceptions[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "exception", ID: id}
	}
	copied := *exc
	return &copied, nil
}

func (s *fakeStore) CreateException(exc *domain.AccessException) error {
	s.nextID++
	exc.ID = s.nextID
	exc.CreatedAt = time.Now()
	copied := *exc
	s.exceptions[exc.ID] = &copied
	return nil
}

func (s *fakeStore) UpdateException(exc *domain.AccessException) error {
	copied := *exc
	s.exceptions[exc.ID] = &copied
	return nil
}

func (s *fakeStore) DeleteException(id int64) error {
	delete(s.exceptions, id)
	return nil
}

func (s *fakeStore) GetExceptionPolicy() (*domain.ExceptionPolicy, error) {
	copied := s.policy
	return &copied, nil
}

func (s *fakeStore) UpdateExceptionPolicy(policy *domain.ExceptionPolicy) error {
	s.policy = *policy
	return nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func janException() *domain.AccessException {
	validTo := date(2024, 1, 31)
	return &domain.AccessException{
		SubjectCode: "EMP000123",
		SourceShift: "DESAYUNO",
		TargetShift: "COMIDA",
		ValidFrom:   date(2024, 1, 1),
		ValidTo:     &validTo,
		Active:      true,
		CreatedBy:   "admin",
	}
}

func TestFindApplicableWithinWindow(t *testing.T) {
	store := newFakeStore()
	mgr := New(store, nil)
	require.NoError(t, mgr.Create(janException()))

	exc, err := mgr.FindApplicable("EMP000123", "COMIDA", date(2024, 1, 15))
	require.NoError(t, err)
	require.NotNil(t, exc)
	assert.Equal(t, "COMIDA", exc.TargetShift)
}

func TestFindApplicableExpired(t *testing.T) {
	store := newFakeStore()
	mgr := New(store, nil)
	require.NoError(t, mgr.Create(janException()))

	exc, err := mgr.FindApplicable("EMP000123", "COMIDA", date(2024, 2, 1))
	require.NoError(t, err)
	assert.Nil(t, exc)
}

func TestFindApplicableExpiredInEasternZone(t *testing.T) {
	store := newFakeStore()
	mgr := New(store, nil)
	require.NoError(t, mgr.Create(janException()))

	// local Feb 1 morning is still Jan 31 in UTC; the local calendar day
	// decides, so the exception no longer applies
	brisbane := time.FixedZone("AEST", 10*60*60)
	scan := time.Date(2024, 2, 1, 8, 0, 0, 0, brisbane)

	exc, err := mgr.FindApplicable("EMP000123", "COMIDA", scan)
	require.NoError(t, err)
	assert.Nil(t, exc)
}

func TestFindApplicableNotYetValidInWesternZone(t *testing.T) {
	store := newFakeStore()
	mgr := New(store, nil)

	exc := janException()
	exc.ValidFrom = date(2024, 2, 1)
	exc.ValidTo = nil
	require.NoError(t, mgr.Create(exc))

	// local Jan 31 evening is already Feb 1 in UTC
	pacific := time.FixedZone("PST", -8*60*60)
	scan := time.Date(2024, 1, 31, 20, 0, 0, 0, pacific)

	found, err := mgr.FindApplicable("EMP000123", "COMIDA", scan)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestFindApplicableWrongShift(t *testing.T) {
	store := newFakeStore()
	mgr := New(store, nil)
	require.NoError(t, mgr.Create(janException()))

	exc, err := mgr.FindApplicable("EMP000123", "CENA", date(2024, 1, 15))
	require.NoError(t, err)
	assert.Nil(t, exc)
}

func TestFindApplicableAnyShiftSentinel(t *testing.T) {
	store := newFakeStore()
	mgr := New(store, nil)

	exc := janException()
	exc.TargetShift = domain.TargetAnyShift
	require.NoError(t, mgr.Create(exc))

	found, err := mgr.FindApplicable("EMP000123", "CENA", date(2024, 1, 15))
	require.NoError(t, err)
	require.NotNil(t, found)
}

func TestFindApplicableOpenEnded(t *testing.T) {
	store := newFakeStore()
	mgr := New(store, nil)

	exc := janException()
	exc.ValidTo = nil
	require.NoError(t, mgr.Create(exc))

	found, err := mgr.FindApplicable("EMP000123", "COMIDA", date(2030, 6, 1))
	require.NoError(t, err)
	require.NotNil(t, found)
}

func TestFindApplicableSkipsInactive(t *testing.T) {
	store := newFakeStore()
	mgr := New(store, nil)

	exc := janException()
	require.NoError(t, mgr.Create(exc))
	exc.Active = false
	require.NoError(t, mgr.Update(exc))

	found, err := mgr.FindApplicable("EMP000123", "COMIDA", date(2024, 1, 15))
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestCreateRejectsInvertedRange(t *testing.T) {
	mgr := New(newFakeStore(), nil)

	exc := janException()
	validTo := date(2023, 12, 1)
	exc.ValidTo = &validTo

	err := mgr.Create(exc)
	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestIsWithinGrace(t *testing.T) {
	mgr := New(newFakeStore(), nil)
	policy := &domain.ExceptionPolicy{NewHireGraceDays: 30}
	now := date(2024, 3, 1)

	assert.True(t, mgr.IsWithinGrace(policy, date(2024, 2, 15), now))
	assert.False(t, mgr.IsWithinGrace(policy, date(2023, 12, 1), now))
	assert.False(t, mgr.IsWithinGrace(&domain.ExceptionPolicy{}, date(2024, 2, 28), now))
}

func TestIsWithinArrivalGrace(t *testing.T) {
	mgr := New(newFakeStore(), nil)
	policy := &domain.ExceptionPolicy{GraceMinutes: 15}
	shift := &domain.Shift{ShiftDraft: domain.ShiftDraft{Name: "COMIDA", StartMinute: 720, EndMinute: 960, Active: true}}

	assert.True(t, mgr.IsWithinArrivalGrace(policy, shift, 970))
	assert.False(t, mgr.IsWithinArrivalGrace(policy, shift, 976))
	assert.False(t, mgr.IsWithinArrivalGrace(policy, shift, 900)) // still inside the shift
	assert.False(t, mgr.IsWithinArrivalGrace(&domain.ExceptionPolicy{}, shift, 965))
}

func TestPolicyRoundTrip(t *testing.T) {
	store := newFakeStore()
	mgr := New(store, nil)

	policy, err := mgr.Policy()
	require.NoError(t, err)

	policy.NewHireGraceDays = 14
	require.NoError(t, mgr.UpdatePolicy(policy))

	reloaded, err := mgr.Policy()
	require.NoError(t, err)
	assert.Equal(t, 14, reloaded.NewHireGraceDays)
}

func TestUpdatePolicyRejectsNegativeGrace(t *testing.T) {
	mgr := New(newFakeStore(), nil)

	err := mgr.UpdatePolicy(&domain.ExceptionPolicy{NewHireGraceDays: -1})
	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}
