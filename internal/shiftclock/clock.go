package shiftclock

import (
	"sort"
	"time"

	"github.com/evia-dev/comedor-access/backend/internal/domain"
	"github.com/evia-dev/comedor-access/backend/internal/utils"
)

// DefaultLookaheadMinutes is how far ahead of a shift's start the clock
// still reports it as upcoming.
const DefaultLookaheadMinutes = 120

// Clock resolves a minute-of-day reading against a set of shift
// definitions. It performs no I/O and holds no mutable state, so a single
// instance may be shared freely.
type Clock struct {
	lookaheadMinutes int
}

func New(lookaheadMinutes int) *Clock {
	if lookaheadMinutes <= 0 {
		lookaheadMinutes = DefaultLookaheadMinutes
	}
	return &Clock{lookaheadMinutes: lookaheadMinutes}
}

// MinuteOf returns t's minute of the local day.
func MinuteOf(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// Resolve computes the shift state for nowMinute. Definitions with
// Active=false are ignored. Both interval ends are inclusive here: a scan
// at the exact end minute still belongs to the shift.
func (c *Clock) Resolve(nowMinute int, definitions []*domain.Shift) domain.ShiftState {
	active := make([]*domain.Shift, 0, len(definitions))
	for _, d := range definitions {
		if d.Active {
			active = append(active, d)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].StartMinute < active[j].StartMinute
	})

	if len(active) == 0 {
		return domain.ShiftState{Status: domain.StatusInactive}
	}

	// 1. inside a window -> active
	for _, d := range active {
		if nowMinute >= d.StartMinute && nowMinute <= d.EndMinute {
			return domain.ShiftState{
				Status:           domain.StatusActive,
				Shift:            d,
				ProgressPercent:  progress(nowMinute, d),
				MinutesRemaining: d.EndMinute - nowMinute,
			}
		}
	}

	// 2. a window starts within the lookahead -> upcoming
	for _, d := range active {
		if d.StartMinute > nowMinute {
			gap := d.StartMinute - nowMinute
			if gap <= c.lookaheadMinutes {
				return domain.ShiftState{
					Status:            domain.StatusUpcoming,
					Shift:             d,
					MinutesUntilStart: gap,
				}
			}
			// the day still has shifts, just not soon enough
			return domain.ShiftState{
				Status:            domain.StatusInactive,
				Shift:             d,
				MinutesUntilStart: gap,
			}
		}
	}

	// 3. all windows for the day are over; report the first of the next
	// day with a wraparound gap
	first := active[0]
	return domain.ShiftState{
		Status:            domain.StatusFinished,
		Shift:             first,
		MinutesUntilStart: (utils.MinutesPerDay - nowMinute) + first.StartMinute,
	}
}

func progress(nowMinute int, d *domain.Shift) int {
	duration := d.Duration()
	if duration <= 0 {
		return 100
	}
	p := (nowMinute - d.StartMinute) * 100 / duration
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
