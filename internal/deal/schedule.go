package deal

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NewParams holds the terms an admin enters when booking a deal.
type NewParams struct {
	BusinessName string
	Principal    float64
	FactorRate   float64
	TermDays     int
	StartDate    time.Time
}

// New validates the terms and returns a deal with its payback computed.
// The returned deal has a fresh ID and no timestamps.
func New(params NewParams) (*Deal, error) {
	name := strings.TrimSpace(params.BusinessName)
	if name == "" {
		return nil, fmt.Errorf("%w: business name is required", ErrInvalidSchedule)
	}

	if !finite(params.Principal) || params.Principal <= 0 {
		return nil, fmt.Errorf("%w: principal must be a positive number", ErrInvalidSchedule)
	}

	if !finite(params.FactorRate) || params.FactorRate <= 1 {
		return nil, fmt.Errorf("%w: factor rate must be a number greater than 1", ErrInvalidSchedule)
	}

	if params.TermDays < 1 {
		return nil, fmt.Errorf("%w: term must be at least 1 day", ErrInvalidSchedule)
	}

	if params.StartDate.IsZero() {
		return nil, fmt.Errorf("%w: start date is required", ErrInvalidSchedule)
	}

	return &Deal{
		ID:               uuid.New(),
		BusinessName:     name,
		Principal:        params.Principal,
		FactorRate:       params.FactorRate,
		TermDays:         params.TermDays,
		OriginalTermDays: params.TermDays,
		StartDate:        DateOnly(params.StartDate),
		PaybackTotal:     params.Principal * params.FactorRate,
	}, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// GenerateSchedule returns one pending payment per day of the deal's term,
// starting at the deal's start date. Each installment is the payback divided
// by the term, rounded half-up to cents; the rounding drift is not reconciled.
func GenerateSchedule(d Deal) ([]Payment, error) {
	if d.TermDays < 1 {
		return nil, fmt.Errorf("%w: term must be at least 1 day, got %d", ErrInvalidSchedule, d.TermDays)
	}

	if !finite(d.PaybackTotal) || d.PaybackTotal < 0 {
		return nil, fmt.Errorf("%w: payback must not be negative, got %.2f", ErrInvalidSchedule, d.PaybackTotal)
	}

	installment := Installment(d.PaybackTotal, d.TermDays)
	start := DateOnly(d.StartDate)

	schedule := make([]Payment, d.TermDays)
	for i := range schedule {
		schedule[i] = Payment{
			DealID: d.ID,
			Index:  i,
			Date:   start.AddDate(0, 0, i),
			Amount: installment,
			Status: StatusPending,
		}
	}

	return schedule, nil
}

// Installment returns payback/term rounded half-up to two decimals.
func Installment(payback float64, term int) float64 {
	return decimal.NewFromFloat(payback).
		DivRound(decimal.NewFromInt(int64(term)), 2).
		InexactFloat64()
}

// FindByDate returns the index of the schedule entry due on date. When an
// extension left several entries on the same day, the first pending one wins.
func FindByDate(schedule []Payment, date time.Time) (int, bool) {
	day := DateOnly(date)
	found := -1

	for _, p := range schedule {
		if !p.Date.Equal(day) {
			continue
		}

		if p.Status == StatusPending {
			return p.Index, true
		}

		if found < 0 {
			found = p.Index
		}
	}

	return found, found >= 0
}
