package shiftclock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evia-dev/comedor-access/backend/internal/domain"
)

func cafeteriaShifts() []*domain.Shift {
	return []*domain.Shift{
		{ID: 1, ShiftDraft: domain.ShiftDraft{Name: "DESAYUNO", StartMinute: 360, EndMinute: 540, Active: true}},
		{ID: 2, ShiftDraft: domain.ShiftDraft{Name: "COMIDA", StartMinute: 720, EndMinute: 960, Active: true}},
		{ID: 3, ShiftDraft: domain.ShiftDraft{Name: "CENA", StartMinute: 1140, EndMinute: 1320, Active: true}},
	}
}

func TestResolveActiveShift(t *testing.T) {
	clock := New(120)

	// halfway through breakfast
	state := clock.Resolve(450, cafeteriaShifts())
	require.Equal(t, domain.StatusActive, state.Status)
	require.NotNil(t, state.Shift)
	assert.Equal(t, "DESAYUNO", state.Shift.Name)
	assert.Equal(t, 50, state.ProgressPercent)
	assert.Equal(t, 90, state.MinutesRemaining)
}

func TestResolveBoundariesAreInclusive(t *testing.T) {
	clock := New(120)

	state := clock.Resolve(360, cafeteriaShifts())
	require.Equal(t, domain.StatusActive, state.Status)
	assert.Equal(t, 0, state.ProgressPercent)

	state = clock.Resolve(540, cafeteriaShifts())
	require.Equal(t, domain.StatusActive, state.Status)
	assert.Equal(t, 100, state.ProgressPercent)
	assert.Equal(t, 0, state.MinutesRemaining)
}

func TestResolveAfterShiftEnds(t *testing.T) {
	clock := New(120)
	shifts := []*domain.Shift{
		{ID: 1, ShiftDraft: domain.ShiftDraft{Name: "DESAYUNO", StartMinute: 360, EndMinute: 540, Active: true}},
	}

	state := clock.Resolve(545, shifts)
	require.Equal(t, domain.StatusFinished, state.Status)
	assert.Zero(t, state.ProgressPercent)
	assert.Zero(t, state.MinutesRemaining)
}

func TestResolveUpcomingWithinLookahead(t *testing.T) {
	clock := New(120)

	state := clock.Resolve(660, cafeteriaShifts())
	require.Equal(t, domain.StatusUpcoming, state.Status)
	require.NotNil(t, state.Shift)
	assert.Equal(t, "COMIDA", state.Shift.Name)
	assert.Equal(t, 60, state.MinutesUntilStart)
}

func TestResolveGapBeyondLookahead(t *testing.T) {
	clock := New(60)

	// 10:00, two hours before lunch with a one hour lookahead
	state := clock.Resolve(600, cafeteriaShifts())
	require.Equal(t, domain.StatusInactive, state.Status)
	require.NotNil(t, state.Shift)
	assert.Equal(t, "COMIDA", state.Shift.Name)
	assert.Equal(t, 120, state.MinutesUntilStart)
}

func TestResolveWrapsToNextDay(t *testing.T) {
	clock := New(120)

	// 23:20, dinner is over; next is tomorrow's breakfast
	state := clock.Resolve(1400, cafeteriaShifts())
	require.Equal(t, domain.StatusFinished, state.Status)
	require.NotNil(t, state.Shift)
	assert.Equal(t, "DESAYUNO", state.Shift.Name)
	assert.Equal(t, 400, state.MinutesUntilStart)
}

func TestResolveIgnoresInactiveDefinitions(t *testing.T) {
	clock := New(120)
	shifts := []*domain.Shift{
		{ID: 1, ShiftDraft: domain.ShiftDraft{Name: "COMIDA", StartMinute: 720, EndMinute: 960, Active: false}},
	}

	state := clock.Resolve(800, shifts)
	assert.Equal(t, domain.StatusInactive, state.Status)
	assert.Nil(t, state.Shift)
}

func TestResolveEmptyRegistry(t *testing.T) {
	clock := New(120)

	state := clock.Resolve(450, nil)
	assert.Equal(t, domain.StatusInactive, state.Status)
	assert.Nil(t, state.Shift)
}

func TestProgressStaysInBounds(t *testing.T) {
	clock := New(120)
	shifts := cafeteriaShifts()

	for minute := 0; minute < 1440; minute++ {
		state := clock.Resolve(minute, shifts)
		if state.Status != domain.StatusActive {
			continue
		}
		require.GreaterOrEqual(t, state.ProgressPercent, 0, "minute %d", minute)
		require.LessOrEqual(t, state.ProgressPercent, 100, "minute %d", minute)
	}
}

func TestMinuteOf(t *testing.T) {
	at := time.Date(2024, 3, 1, 7, 30, 45, 0, time.UTC)
	assert.Equal(t, 450, MinuteOf(at))
}
