package deal

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the collection state of a scheduled payment.
type Status string

const (
	StatusPending  Status = "pending"
	StatusPaid     Status = "paid"
	StatusMissed   Status = "missed"
	StatusAdjusted Status = "adjusted"
)

// Valid reports whether s is one of the known payment statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusMissed, StatusAdjusted:
		return true
	}

	return false
}

// Deal represents a merchant cash advance funding agreement.
type Deal struct {
	ID           uuid.UUID
	BusinessName string
	Principal    float64
	FactorRate   float64
	// TermDays grows only through extensions; OriginalTermDays never changes.
	TermDays         int
	OriginalTermDays int
	StartDate        time.Time
	PaybackTotal     float64
	Defaulted        bool
	CreatedAt        time.Time
	UpdatedAt        *time.Time
}

// Payment is one scheduled installment of a deal. Index is the position of the
// entry in the schedule and is the handle used to amend it.
type Payment struct {
	DealID uuid.UUID
	Index  int
	Date   time.Time
	Amount float64
	Status Status
}

// DateOnly truncates t to midnight UTC of its calendar date.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
