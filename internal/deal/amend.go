package deal

import (
	"fmt"
	"slices"
)

// Amendment describes a single admin edit to one schedule entry.
// Amount and ExtendDays only apply when Status is StatusAdjusted; a nil
// Amount keeps the entry's current amount.
type Amendment struct {
	Index      int
	Status     Status
	Amount     *float64
	ExtendDays int
}

// Amended is the outcome of a successful amendment. Changed lists the edited
// entry followed by any entries appended by an extension.
type Amended struct {
	Deal     Deal
	Schedule []Payment
	Changed  []Payment
}

// Amend applies a to the schedule of d. Neither input is modified: on error
// the caller's deal and schedule are exactly as before.
func Amend(d Deal, schedule []Payment, a Amendment) (*Amended, error) {
	if err := validateAmendment(schedule, a); err != nil {
		return nil, err
	}

	next := slices.Clone(schedule)
	target := next[a.Index]
	target.Status = a.Status

	if a.Status == StatusAdjusted && a.Amount != nil {
		target.Amount = *a.Amount
	}

	next[a.Index] = target
	changed := []Payment{target}

	if a.ExtendDays > 0 {
		for j := 1; j <= a.ExtendDays; j++ {
			p := Payment{
				DealID: d.ID,
				Index:  len(next),
				Date:   target.Date.AddDate(0, 0, j),
				Amount: target.Amount,
				Status: StatusPending,
			}
			next = append(next, p)
			changed = append(changed, p)
		}

		d.TermDays += a.ExtendDays
		d.PaybackTotal += target.Amount * float64(a.ExtendDays)
	}

	return &Amended{Deal: d, Schedule: next, Changed: changed}, nil
}

func validateAmendment(schedule []Payment, a Amendment) error {
	if a.Index < 0 || a.Index >= len(schedule) {
		return fmt.Errorf("%w: payment index %d out of range [0, %d)", ErrInvalidAmendment, a.Index, len(schedule))
	}

	switch a.Status {
	case StatusPaid, StatusMissed:
		if a.Amount != nil || a.ExtendDays != 0 {
			return fmt.Errorf("%w: amount and extension only apply to adjusted payments", ErrInvalidAmendment)
		}
	case StatusAdjusted:
		if a.Amount != nil && (!finite(*a.Amount) || *a.Amount < 0) {
			return fmt.Errorf("%w: amount must be a non-negative number", ErrInvalidAmendment)
		}

		if a.ExtendDays < 0 {
			return fmt.Errorf("%w: extend days must not be negative", ErrInvalidAmendment)
		}
	case StatusPending:
		return fmt.Errorf("%w: a payment cannot be reset to pending", ErrInvalidAmendment)
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidAmendment, a.Status)
	}

	return nil
}
