package ledger

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/syndic/internal/deal"
)

var (
	ErrUnknownInvestor = errors.New("unknown investor")
	ErrInvestorExists  = errors.New("investor already exists")
)

var hundred = decimal.NewFromInt(100)

// Investor is a syndicator identified by handle.
type Investor struct {
	Name      string
	CreatedAt time.Time
}

// Assignment links an investor to a fractional share of a deal.
// Repeated assignments for the same pair add up; they are never merged.
type Assignment struct {
	DealID   uuid.UUID
	Investor string
	Percent  float64
}

// Fraction returns the share as a fraction of one.
func (a Assignment) Fraction() float64 {
	return a.Percent / 100
}

// NormalizeName trims an investor handle.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}

// BuildAssignments validates a batch of shares for one deal and returns the
// assignment rows, ordered by investor. Zero shares are dropped. Only the batch
// itself is checked against 100%; earlier assignments on the deal are not.
func BuildAssignments(dealID uuid.UUID, shares map[string]float64) ([]Assignment, error) {
	names := make([]string, 0, len(shares))
	for name := range shares {
		names = append(names, name)
	}

	slices.Sort(names)

	total := decimal.Zero
	rows := make([]Assignment, 0, len(shares))

	for _, name := range names {
		percent := shares[name]
		investor := NormalizeName(name)

		if investor == "" {
			return nil, fmt.Errorf("%w: investor name is required", deal.ErrInvalidAmendment)
		}

		// Also rejects NaN, which decimal cannot represent.
		if !(percent >= 0 && percent <= 100) {
			return nil, fmt.Errorf("%w: share for %s must be between 0 and 100, got %v",
				deal.ErrInvalidAmendment, investor, percent)
		}

		total = total.Add(decimal.NewFromFloat(percent))

		if percent == 0 {
			continue
		}

		rows = append(rows, Assignment{DealID: dealID, Investor: investor, Percent: percent})
	}

	if total.GreaterThan(hundred) {
		return nil, fmt.Errorf("%w: shares total %s%%, more than 100%%", deal.ErrInvalidAmendment, total.String())
	}

	return rows, nil
}

// Ledger is the ordered set of assignments across all deals.
type Ledger []Assignment

// ForDeal returns the assignments on dealID in insertion order.
func (l Ledger) ForDeal(dealID uuid.UUID) []Assignment {
	var out []Assignment

	for _, a := range l {
		if a.DealID == dealID {
			out = append(out, a)
		}
	}

	return out
}

// ForInvestor returns the assignments held by investor in insertion order.
func (l Ledger) ForInvestor(investor string) []Assignment {
	var out []Assignment

	for _, a := range l {
		if a.Investor == investor {
			out = append(out, a)
		}
	}

	return out
}

// Allocated returns the cumulative percent assigned on dealID.
func (l Ledger) Allocated(dealID uuid.UUID) float64 {
	total := decimal.Zero

	for _, a := range l.ForDeal(dealID) {
		total = total.Add(decimal.NewFromFloat(a.Percent))
	}

	return total.InexactFloat64()
}

// WithoutDeal returns a copy of the ledger with every entry on dealID removed.
func (l Ledger) WithoutDeal(dealID uuid.UUID) Ledger {
	return slices.DeleteFunc(slices.Clone(l), func(a Assignment) bool { return a.DealID == dealID })
}

// WithoutInvestor returns a copy of the ledger with every entry held by investor removed.
func (l Ledger) WithoutInvestor(investor string) Ledger {
	return slices.DeleteFunc(slices.Clone(l), func(a Assignment) bool { return a.Investor == investor })
}
