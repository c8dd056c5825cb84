package deal

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/syndic/internal/balance"
	"github.com/MrJamesThe3rd/syndic/internal/deal"
	"github.com/MrJamesThe3rd/syndic/internal/ledger"
	"github.com/MrJamesThe3rd/syndic/internal/present"
)

type summaryResponse struct {
	PaymentsMade   int     `json:"payments_made"`
	Progress       float64 `json:"progress"`
	TotalCollected float64 `json:"total_collected"`
	Outstanding    float64 `json:"outstanding"`
}

type dealResponse struct {
	ID               uuid.UUID       `json:"id"`
	BusinessName     string          `json:"business_name"`
	Principal        float64         `json:"principal"`
	FactorRate       float64         `json:"factor_rate"`
	TermDays         int             `json:"term_days"`
	OriginalTermDays int             `json:"original_term_days"`
	StartDate        string          `json:"start_date"`
	PaybackTotal     float64         `json:"payback_total"`
	Defaulted        bool            `json:"defaulted"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        *time.Time      `json:"updated_at,omitempty"`
	Summary          summaryResponse `json:"summary"`
}

type paymentResponse struct {
	Index  int     `json:"index"`
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
	Status string  `json:"status"`
	// Display is the status shown to users after the default policy.
	Display string `json:"display_status"`
}

type shareResponse struct {
	Investor string  `json:"investor"`
	Percent  float64 `json:"percent"`
}

type sharesResponse struct {
	Allocated float64         `json:"allocated"`
	Shares    []shareResponse `json:"shares"`
}

type amendResponse struct {
	Deal    dealResponse      `json:"deal"`
	Changed []paymentResponse `json:"changed"`
}

func toDealResponse(b balance.Book) dealResponse {
	d := b.Deal
	sum := balance.SummarizeDeal(d, b.Schedule)

	return dealResponse{
		ID:               d.ID,
		BusinessName:     d.BusinessName,
		Principal:        balance.Round2(d.Principal),
		FactorRate:       d.FactorRate,
		TermDays:         d.TermDays,
		OriginalTermDays: d.OriginalTermDays,
		StartDate:        present.Date(d.StartDate),
		PaybackTotal:     balance.Round2(d.PaybackTotal),
		Defaulted:        d.Defaulted,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
		Summary: summaryResponse{
			PaymentsMade:   sum.PaymentsMade,
			Progress:       sum.Progress,
			TotalCollected: balance.Round2(sum.TotalCollected),
			Outstanding:    balance.Round2(sum.Outstanding),
		},
	}
}

func toPaymentResponses(payments []deal.Payment, policy present.Policy) []paymentResponse {
	resp := make([]paymentResponse, len(payments))
	for i, p := range payments {
		resp[i] = paymentResponse{
			Index:   p.Index,
			Date:    present.Date(p.Date),
			Amount:  balance.Round2(p.Amount),
			Status:  string(p.Status),
			Display: string(policy.Status(p.Status)),
		}
	}

	return resp
}

func toSharesResponse(dealID uuid.UUID, l ledger.Ledger) sharesResponse {
	resp := sharesResponse{
		Allocated: balance.Round2(l.Allocated(dealID)),
		Shares:    make([]shareResponse, 0, len(l)),
	}

	for _, a := range l {
		resp.Shares = append(resp.Shares, shareResponse{Investor: a.Investor, Percent: a.Percent})
	}

	return resp
}
