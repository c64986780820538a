package dispatcher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evia-dev/comedor-access/backend/internal/domain"
	"github.com/evia-dev/comedor-access/backend/internal/shiftclock"
)

type staticShifts struct {
	shifts []*domain.Shift
}

func (s *staticShifts) ListActive() ([]*domain.Shift, error) {
	return s.shifts, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.ShiftEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, event domain.ShiftEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) all() []domain.ShiftEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.ShiftEvent, len(p.events))
	copy(out, p.events)
	return out
}

func (p *recordingPublisher) ofType(t domain.ShiftEventType) []domain.ShiftEvent {
	out := make([]domain.ShiftEvent, 0)
	for _, e := range p.all() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func breakfastOnly() *staticShifts {
	return &staticShifts{shifts: []*domain.Shift{
		{ID: 1, ShiftDraft: domain.ShiftDraft{Name: "DESAYUNO", StartMinute: 360, EndMinute: 540, Active: true}},
	}}
}

func newDispatcher(shifts ShiftSource, pub Publisher) *Dispatcher {
	return New(shiftclock.New(120), shifts, pub, time.Second, 4)
}

func clockAt(hh, mm int) time.Time {
	return time.Date(2024, 3, 1, hh, mm, 0, 0, time.UTC)
}

func TestStartedFiresOnceAcrossTicks(t *testing.T) {
	pub := &recordingPublisher{}
	d := newDispatcher(breakfastOnly(), pub)

	d.tick(clockAt(6, 0))
	d.tick(clockAt(6, 1))
	d.tick(clockAt(6, 2))

	started := pub.ofType(domain.EventShiftStarted)
	require.Len(t, started, 1)
	assert.Equal(t, "DESAYUNO", started[0].ShiftName)
	assert.Equal(t, 360, started[0].StartMinute)
}

func TestEndingSoonThresholdsFireOncePerCrossing(t *testing.T) {
	pub := &recordingPublisher{}
	d := newDispatcher(breakfastOnly(), pub)

	// one tick per minute through the final half hour
	for mm := 0; mm < 60; mm++ {
		d.tick(clockAt(8, mm))
	}

	endingSoon := pub.ofType(domain.EventShiftEndingSoon)
	require.Len(t, endingSoon, 2)
	assert.Equal(t, 30, endingSoon[0].ThresholdMinutes)
	assert.Equal(t, 10, endingSoon[1].ThresholdMinutes)
}

func TestSlowCadenceCollapsesMissedThresholds(t *testing.T) {
	pub := &recordingPublisher{}
	d := newDispatcher(breakfastOnly(), pub)

	// the ticker jumps straight from well before the warnings to 8 minutes
	// left, then past the end
	d.tick(clockAt(7, 0))
	d.tick(clockAt(8, 52))
	d.tick(clockAt(8, 53))
	d.tick(clockAt(9, 5))

	endingSoon := pub.ofType(domain.EventShiftEndingSoon)
	require.Len(t, endingSoon, 2)
	assert.Equal(t, 30, endingSoon[0].ThresholdMinutes)
	assert.Equal(t, 10, endingSoon[1].ThresholdMinutes)
}

func TestEndedFiresWhenShiftElapses(t *testing.T) {
	pub := &recordingPublisher{}
	d := newDispatcher(breakfastOnly(), pub)

	d.tick(clockAt(8, 59))
	d.tick(clockAt(9, 1))
	d.tick(clockAt(9, 2))

	ended := pub.ofType(domain.EventShiftEnded)
	require.Len(t, ended, 1)
	assert.Equal(t, "DESAYUNO", ended[0].ShiftName)
}

func TestBackToBackShiftsEmitEndedThenStarted(t *testing.T) {
	shifts := &staticShifts{shifts: []*domain.Shift{
		{ID: 1, ShiftDraft: domain.ShiftDraft{Name: "DESAYUNO", StartMinute: 360, EndMinute: 540, Active: true}},
		{ID: 2, ShiftDraft: domain.ShiftDraft{Name: "COMIDA", StartMinute: 541, EndMinute: 960, Active: true}},
	}}
	pub := &recordingPublisher{}
	d := newDispatcher(shifts, pub)

	d.tick(clockAt(7, 0))
	d.tick(clockAt(9, 1))

	events := pub.all()
	require.Len(t, events, 3)
	assert.Equal(t, domain.EventShiftStarted, events[0].Type)
	assert.Equal(t, "DESAYUNO", events[0].ShiftName)
	assert.Equal(t, domain.EventShiftEnded, events[1].Type)
	assert.Equal(t, "DESAYUNO", events[1].ShiftName)
	assert.Equal(t, domain.EventShiftStarted, events[2].Type)
	assert.Equal(t, "COMIDA", events[2].ShiftName)
}

func TestThresholdsResetOnNewDay(t *testing.T) {
	pub := &recordingPublisher{}
	d := newDispatcher(breakfastOnly(), pub)

	d.tick(clockAt(8, 55))
	d.tick(clockAt(9, 5))
	d.tick(time.Date(2024, 3, 2, 8, 55, 0, 0, time.UTC))

	endingSoon := pub.ofType(domain.EventShiftEndingSoon)
	require.Len(t, endingSoon, 4)
}

func TestSubscriberReceivesEvents(t *testing.T) {
	d := newDispatcher(breakfastOnly(), nil)
	ch, unsubscribe := d.Subscribe()
	defer unsubscribe()

	d.tick(clockAt(6, 0))

	select {
	case event := <-ch:
		assert.Equal(t, domain.EventShiftStarted, event.Type)
		assert.Equal(t, "DESAYUNO", event.ShiftName)
	default:
		t.Fatal("expected a buffered event")
	}
}

func TestFullSubscriberDoesNotBlockTick(t *testing.T) {
	d := New(shiftclock.New(120), breakfastOnly(), nil, time.Second, 1)
	ch, unsubscribe := d.Subscribe()
	defer unsubscribe()

	d.tick(clockAt(6, 0))    // started fills the one-slot buffer
	d.tick(clockAt(8, 35))   // ending soon is dropped, must not block

	select {
	case event := <-ch:
		assert.Equal(t, domain.EventShiftStarted, event.Type)
	default:
		t.Fatal("expected the first event to be buffered")
	}
	select {
	case event := <-ch:
		t.Fatalf("expected the second event to be dropped, got %s", event.Type)
	default:
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	d := newDispatcher(breakfastOnly(), nil)
	ch, unsubscribe := d.Subscribe()

	unsubscribe()
	unsubscribe() // second call is a no-op

	_, open := <-ch
	assert.False(t, open)
}
