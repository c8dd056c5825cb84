package deal

import "errors"

var (
	// ErrInvalidSchedule is returned when a deal's terms cannot produce a schedule.
	ErrInvalidSchedule = errors.New("invalid schedule")
	// ErrInvalidAmendment is returned for bad edit parameters or an out-of-range payment index.
	ErrInvalidAmendment = errors.New("invalid amendment")
	// ErrUnknownDeal is returned when a referenced deal does not exist.
	ErrUnknownDeal = errors.New("unknown deal")
)
