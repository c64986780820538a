package domain

import (
	"time"
)

// Subject is the cafeteria-facing view of an employee or visitor badge. The
// roster itself is maintained by an external system; the engine only reads
// it to evaluate shift membership and new-hire grace.
type Subject struct {
	ID           int64     `json:"id"`
	Code         string    `json:"code"` // barcode / badge value
	FullName     string    `json:"fullName"`
	ShiftName    string    `json:"shiftName"` // assigned default shift
	Email        string    `json:"email"`
	Active       bool      `json:"active"`
	RegisteredAt time.Time `json:"registeredAt"`
}
