package balance

import (
	"cmp"
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/syndic/internal/deal"
	"github.com/MrJamesThe3rd/syndic/internal/ledger"
)

// DealSummary is the collection rollup of one deal.
type DealSummary struct {
	DealID         uuid.UUID
	BusinessName   string
	PaymentsMade   int
	TermDays       int
	Progress       float64
	TotalCollected float64
	PaybackTotal   float64
	Outstanding    float64
	Defaulted      bool
}

// Position is an investor's stake in a single deal.
type Position struct {
	DealID         uuid.UUID
	BusinessName   string
	Percent        float64
	Funded         float64
	ExpectedReturn float64
	Drawn          float64
	Available      float64
	Progress       float64
	Defaulted      bool
}

// InvestorSummary totals an investor's positions across every deal they hold.
type InvestorSummary struct {
	Investor       string
	Funded         float64
	ExpectedReturn float64
	Drawn          float64
	Available      float64
	Positions      []Position
}

// Book is the read-only state the investor rollup needs for each deal.
type Book struct {
	Deal     deal.Deal
	Schedule []deal.Payment
}

// SummarizeDeal counts paid entries against the current, possibly extended, term.
func SummarizeDeal(d deal.Deal, schedule []deal.Payment) DealSummary {
	s := DealSummary{
		DealID:       d.ID,
		BusinessName: d.BusinessName,
		TermDays:     d.TermDays,
		PaybackTotal: d.PaybackTotal,
		Defaulted:    d.Defaulted,
	}

	for _, p := range schedule {
		if p.Status != deal.StatusPaid {
			continue
		}

		s.PaymentsMade++
		s.TotalCollected += p.Amount
	}

	if d.TermDays > 0 {
		s.Progress = float64(s.PaymentsMade) / float64(d.TermDays)
	}

	s.Outstanding = s.PaybackTotal - s.TotalCollected

	return s
}

// SummarizeInvestor computes the investor's funded, expected, drawn and
// available amounts. Assignments on deals missing from books are skipped.
// Repeated assignments on one deal are combined into a single position;
// positions follow the order in which the investor first joined each deal.
func SummarizeInvestor(investor string, assignments []ledger.Assignment, books map[uuid.UUID]Book) InvestorSummary {
	s := InvestorSummary{Investor: investor, Positions: []Position{}}

	var order []uuid.UUID

	byDeal := make(map[uuid.UUID]*Position)

	for _, a := range assignments {
		if a.Investor != investor {
			continue
		}

		book, ok := books[a.DealID]
		if !ok {
			continue
		}

		ds := SummarizeDeal(book.Deal, book.Schedule)
		frac := a.Fraction()

		pos, seen := byDeal[a.DealID]
		if !seen {
			pos = &Position{
				DealID:       a.DealID,
				BusinessName: book.Deal.BusinessName,
				Progress:     ds.Progress,
				Defaulted:    book.Deal.Defaulted,
			}
			byDeal[a.DealID] = pos
			order = append(order, a.DealID)
		}

		funded := frac * book.Deal.Principal
		expected := frac * book.Deal.PaybackTotal
		drawn := frac * ds.TotalCollected

		pos.Percent += a.Percent
		pos.Funded += funded
		pos.ExpectedReturn += expected
		pos.Drawn += drawn
		pos.Available += expected - drawn

		s.Funded += funded
		s.ExpectedReturn += expected
		s.Drawn += drawn
		s.Available += expected - drawn
	}

	for _, id := range order {
		s.Positions = append(s.Positions, *byDeal[id])
	}

	return s
}

// SortByName orders summaries by investor handle.
func SortByName(summaries []InvestorSummary) {
	slices.SortFunc(summaries, func(a, b InvestorSummary) int {
		return cmp.Compare(a.Investor, b.Investor)
	})
}

// Round2 rounds a monetary value half away from zero to cents. It is meant for
// presentation only; accumulate in full precision.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
