package domain

import (
	"time"
)

type ShiftEventType string

const (
	EventShiftStarted    ShiftEventType = "ShiftStarted"
	EventShiftEndingSoon ShiftEventType = "ShiftEndingSoon"
	EventShiftEnded      ShiftEventType = "ShiftEnded"
)

// ShiftEvent is an immutable transition notice published by the dispatcher.
type ShiftEvent struct {
	Type             ShiftEventType `json:"type"`
	ShiftName        string         `json:"shift"`
	StartMinute      int            `json:"startMinute"`
	EndMinute        int            `json:"endMinute"`
	ThresholdMinutes int            `json:"thresholdMinutes,omitempty"` // only for ShiftEndingSoon
	At               time.Time      `json:"at"`
}
