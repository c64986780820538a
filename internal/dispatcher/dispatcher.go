package dispatcher

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/evia-dev/comedor-access/backend/internal/domain"
	"github.com/evia-dev/comedor-access/backend/internal/shiftclock"
)

// EndingSoonThresholds are the minutes-remaining marks at which a
// ShiftEndingSoon event fires, checked in descending order.
var EndingSoonThresholds = []int{30, 10}

type ShiftSource interface {
	ListActive() ([]*domain.Shift, error)
}

type Publisher interface {
	Publish(ctx context.Context, event domain.ShiftEvent) error
}

// Dispatcher polls the clock on a fixed interval, diffs the result against
// the previous tick and emits each transition exactly once. Events go to
// the publisher (message queue) and to every subscriber channel;
// subscribers that fall behind lose events rather than block the ticker.
type Dispatcher struct {
	clock     *shiftclock.Clock
	shifts    ShiftSource
	publisher Publisher // may be nil
	interval  time.Duration
	backlog   int
	now       func() time.Time

	mu             sync.Mutex
	subscribers    map[chan domain.ShiftEvent]struct{}
	lastShiftName  string
	lastShift      *domain.Shift
	firedDay       string
	firedThreshold map[string]struct{} // "<shift>|<threshold>" within firedDay
}

func New(clock *shiftclock.Clock, shifts ShiftSource, publisher Publisher, interval time.Duration, backlog int) *Dispatcher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if backlog <= 0 {
		backlog = 16
	}
	return &Dispatcher{
		clock:          clock,
		shifts:         shifts,
		publisher:      publisher,
		interval:       interval,
		backlog:        backlog,
		now:            time.Now,
		subscribers:    make(map[chan domain.ShiftEvent]struct{}),
		firedThreshold: make(map[string]struct{}),
	}
}

// Run ticks until the context is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.tick(d.now())
		}
	}
}

// Subscribe registers a bounded event channel. The returned function
// removes the subscription and closes the channel.
func (d *Dispatcher) Subscribe() (<-chan domain.ShiftEvent, func()) {
	ch := make(chan domain.ShiftEvent, d.backlog)

	d.mu.Lock()
	d.subscribers[ch] = struct{}{}
	d.mu.Unlock()

	unsubscribe := func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if _, ok := d.subscribers[ch]; ok {
			delete(d.subscribers, ch)
			close(ch)
		}
	}

	return ch, unsubscribe
}

func (d *Dispatcher) tick(now time.Time) {
	definitions, err := d.shifts.ListActive()
	if err != nil {
		slog.Error("dispatcher failed to list shifts", "error", err)
		return
	}

	state := d.clock.Resolve(shiftclock.MinuteOf(now), definitions)

	d.mu.Lock()
	events := d.diff(state, now)
	d.mu.Unlock()

	for _, event := range events {
		d.emit(event)
	}
}

// diff computes the transitions between the previous tick and state.
// Must be called with mu held.
func (d *Dispatcher) diff(state domain.ShiftState, now time.Time) []domain.ShiftEvent {
	day := now.Format("2006-01-02")
	if day != d.firedDay {
		d.firedDay = day
		d.firedThreshold = make(map[string]struct{})
	}

	events := make([]domain.ShiftEvent, 0, 3)

	active := state.Status == domain.StatusActive

	// the previous shift elapsed, either into a gap or straight into the
	// next shift
	if d.lastShiftName != "" && (!active || state.Shift.Name != d.lastShiftName) {
		events = append(events, newEvent(domain.EventShiftEnded, d.lastShift, 0, now))
		d.lastShiftName = ""
		d.lastShift = nil
	}

	if !active {
		return events
	}

	if state.Shift.Name != d.lastShiftName {
		events = append(events, newEvent(domain.EventShiftStarted, state.Shift, 0, now))
	}

	for _, threshold := range EndingSoonThresholds {
		if state.MinutesRemaining > threshold {
			continue
		}
		key := fmt.Sprintf("%s|%d", state.Shift.Name, threshold)
		if _, done := d.firedThreshold[key]; done {
			continue
		}
		d.firedThreshold[key] = struct{}{}
		events = append(events, newEvent(domain.EventShiftEndingSoon, state.Shift, threshold, now))
	}

	d.lastShiftName = state.Shift.Name
	d.lastShift = state.Shift

	return events
}

// emit fans the event out without ever blocking the tick loop.
func (d *Dispatcher) emit(event domain.ShiftEvent) {
	if d.publisher != nil {
		if err := d.publisher.Publish(context.Background(), event); err != nil {
			slog.Error("failed to publish shift event", "type", event.Type, "shift", event.ShiftName, "error", err)
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for ch := range d.subscribers {
		select {
		case ch <- event:
		default:
			// slow consumer, drop the event
		}
	}
}

func newEvent(eventType domain.ShiftEventType, shift *domain.Shift, threshold int, now time.Time) domain.ShiftEvent {
	event := domain.ShiftEvent{
		Type:             eventType,
		ThresholdMinutes: threshold,
		At:               now,
	}
	if shift != nil {
		event.ShiftName = shift.Name
		event.StartMinute = shift.StartMinute
		event.EndMinute = shift.EndMinute
	}
	return event
}
