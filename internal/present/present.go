// Package present formats book values for the HTTP and terminal front-ends.
package present

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/MrJamesThe3rd/syndic/internal/balance"
	"github.com/MrJamesThe3rd/syndic/internal/deal"
)

var printer = message.NewPrinter(language.English)

// Policy decides how pending entries are displayed. It never changes the
// stored status; amendments and summaries always see the real one.
type Policy struct {
	Default deal.Status
}

// ParsePolicy accepts an empty string (pending stays pending) or one of the
// statuses an admin can set.
func ParsePolicy(s string) (Policy, error) {
	status := deal.Status(strings.ToLower(strings.TrimSpace(s)))

	switch status {
	case "", deal.StatusPending:
		return Policy{}, nil
	case deal.StatusPaid, deal.StatusMissed, deal.StatusAdjusted:
		return Policy{Default: status}, nil
	}

	return Policy{}, fmt.Errorf("unknown default status %q", s)
}

// Status returns the status to display for an entry stored as s.
func (p Policy) Status(s deal.Status) deal.Status {
	if s == deal.StatusPending && p.Default != "" {
		return p.Default
	}

	return s
}

// Label renders a status as a title-cased word.
func Label(s deal.Status) string {
	return cases.Title(language.English).String(string(s))
}

// Money rounds to cents and groups thousands, e.g. 26,820.00.
func Money(v float64) string {
	return printer.Sprintf("%.2f", balance.Round2(v))
}

func Percent(v float64) string {
	return fmt.Sprintf("%.2f%%", balance.Round2(v))
}

// Progress renders a 0..1 ratio as a percentage with one decimal.
func Progress(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*100)
}

func Date(t time.Time) string {
	return t.Format(time.DateOnly)
}

// Bar draws a fixed-width text progress bar.
func Bar(ratio float64, width int) string {
	if width <= 0 {
		return ""
	}

	ratio = min(max(ratio, 0), 1)
	filled := int(ratio*float64(width) + 0.5)

	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
