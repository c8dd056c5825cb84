package present_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/syndic/internal/deal"
	"github.com/MrJamesThe3rd/syndic/internal/present"
)

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    deal.Status
		wantErr bool
	}{
		{in: "", want: ""},
		{in: "pending", want: ""},
		{in: " Paid ", want: deal.StatusPaid},
		{in: "missed", want: deal.StatusMissed},
		{in: "yes", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			p, err := present.ParsePolicy(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Default)
		})
	}
}

func TestPolicy_Status(t *testing.T) {
	verifier := present.Policy{Default: deal.StatusPaid}

	assert.Equal(t, deal.StatusPaid, verifier.Status(deal.StatusPending))
	assert.Equal(t, deal.StatusMissed, verifier.Status(deal.StatusMissed))
	assert.Equal(t, deal.StatusPending, present.Policy{}.Status(deal.StatusPending))
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "26,820.00", present.Money(26820))
	assert.Equal(t, "1,490.00", present.Money(1489.999999))
	assert.Equal(t, "0.13", present.Money(0.125))
	assert.Equal(t, "40.00%", present.Percent(40))
	assert.Equal(t, "60.0%", present.Progress(0.6))
	assert.Equal(t, "2025-01-30", present.Date(time.Date(2025, 1, 30, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Adjusted", present.Label(deal.StatusAdjusted))
}

func TestBar(t *testing.T) {
	assert.Equal(t, "██████░░░░", present.Bar(0.6, 10))
	assert.Equal(t, "░░░░", present.Bar(-1, 4))
	assert.Equal(t, "████", present.Bar(2, 4))
	assert.Empty(t, present.Bar(0.5, 0))
}
