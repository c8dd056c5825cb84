package importer

import (
	"strings"

	"github.com/MrJamesThe3rd/syndic/internal/deal"
)

// Profile describes the column layout of one remittance report style.
// Adding a new style is just adding a new Profile to the profiles slice.
type Profile struct {
	Name        string
	DateCol     string
	DealCol     string
	StatusCol   string
	AmountCol   string // optional
	DateLayouts []string
}

func (p Profile) requiredCols() []string {
	return []string{p.DateCol, p.DealCol, p.StatusCol}
}

// profiles is tried in order; more specific layouts come first.
var profiles = []Profile{
	{
		Name:        "processor",
		DateCol:     "settlement date",
		DealCol:     "merchant",
		StatusCol:   "result",
		AmountCol:   "net amount",
		DateLayouts: []string{"01/02/2006", "2006-01-02"},
	},
	{
		Name:        "standard",
		DateCol:     "date",
		DealCol:     "deal",
		StatusCol:   "status",
		AmountCol:   "amount",
		DateLayouts: []string{"2006-01-02", "02-01-2006", "02/01/2006"},
	},
}

var statusWords = map[string]deal.Status{
	"paid":     deal.StatusPaid,
	"cleared":  deal.StatusPaid,
	"settled":  deal.StatusPaid,
	"yes":      deal.StatusPaid,
	"missed":   deal.StatusMissed,
	"returned": deal.StatusMissed,
	"nsf":      deal.StatusMissed,
	"failed":   deal.StatusMissed,
	"no":       deal.StatusMissed,
	"adjusted": deal.StatusAdjusted,
	"partial":  deal.StatusAdjusted,
}

func parseStatus(s string) (deal.Status, bool) {
	st, ok := statusWords[strings.ToLower(strings.TrimSpace(s))]
	return st, ok
}
