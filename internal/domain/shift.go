package domain

import (
	"time"
)

// ShiftDraft is a shift definition that has not been persisted yet. The
// registry turns a draft into a Shift on create; updates always operate on
// a Shift that already carries an id.
type ShiftDraft struct {
	Name        string `json:"name"`
	StartMinute int    `json:"startMinute"` // minutes since local midnight, 0-1439
	EndMinute   int    `json:"endMinute"`
	Active      bool   `json:"active"`
	Description string `json:"description"`
}

type Shift struct {
	ID int64 `json:"id"`
	ShiftDraft
	CreatedAt time.Time `json:"createdAt"`
	Version   int32     `json:"-"`
}

// Duration returns the shift length in minutes.
func (s *ShiftDraft) Duration() int {
	return s.EndMinute - s.StartMinute
}

type ShiftStatus string

const (
	StatusInactive ShiftStatus = "inactive"
	StatusUpcoming ShiftStatus = "upcoming"
	StatusActive   ShiftStatus = "active"
	StatusFinished ShiftStatus = "finished"
)

// ShiftState is recomputed from the clock on every query and never stored.
type ShiftState struct {
	Status            ShiftStatus `json:"status"`
	Shift             *Shift      `json:"shift,omitempty"`
	ProgressPercent   int         `json:"progressPercent,omitempty"`   // only meaningful when active
	MinutesRemaining  int         `json:"minutesRemaining,omitempty"`  // active
	MinutesUntilStart int         `json:"minutesUntilStart,omitempty"` // upcoming / inactive with wraparound
}
