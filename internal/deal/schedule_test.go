package deal_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/syndic/internal/deal"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func greenCafe(t *testing.T) *deal.Deal {
	t.Helper()

	d, err := deal.New(deal.NewParams{
		BusinessName: "Green Cafe",
		Principal:    30000,
		FactorRate:   1.49,
		TermDays:     30,
		StartDate:    date(2025, 1, 1),
	})
	require.NoError(t, err)

	return d
}

func TestNew(t *testing.T) {
	type testCase struct {
		name    string
		params  deal.NewParams
		wantErr bool
	}

	valid := deal.NewParams{
		BusinessName: "FastFit Gym",
		Principal:    50000,
		FactorRate:   1.45,
		TermDays:     60,
		StartDate:    date(2025, 3, 1),
	}

	with := func(mut func(p *deal.NewParams)) deal.NewParams {
		p := valid
		mut(&p)

		return p
	}

	tests := []testCase{
		{name: "Valid", params: valid},
		{name: "BlankName", params: with(func(p *deal.NewParams) { p.BusinessName = "  " }), wantErr: true},
		{name: "ZeroPrincipal", params: with(func(p *deal.NewParams) { p.Principal = 0 }), wantErr: true},
		{name: "NaNPrincipal", params: with(func(p *deal.NewParams) { p.Principal = math.NaN() }), wantErr: true},
		{name: "InfinitePrincipal", params: with(func(p *deal.NewParams) { p.Principal = math.Inf(1) }), wantErr: true},
		{name: "FactorRateOne", params: with(func(p *deal.NewParams) { p.FactorRate = 1 }), wantErr: true},
		{name: "NaNFactorRate", params: with(func(p *deal.NewParams) { p.FactorRate = math.NaN() }), wantErr: true},
		{name: "InfiniteFactorRate", params: with(func(p *deal.NewParams) { p.FactorRate = math.Inf(1) }), wantErr: true},
		{name: "ZeroTerm", params: with(func(p *deal.NewParams) { p.TermDays = 0 }), wantErr: true},
		{name: "NoStartDate", params: with(func(p *deal.NewParams) { p.StartDate = time.Time{} }), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := deal.New(tt.params)

			if tt.wantErr {
				assert.ErrorIs(t, err, deal.ErrInvalidSchedule)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, got.ID)
			assert.InDelta(t, 72500.0, got.PaybackTotal, 1e-9)
			assert.Equal(t, 60, got.OriginalTermDays)
		})
	}
}

func TestGenerateSchedule_GreenCafe(t *testing.T) {
	d := greenCafe(t)
	assert.Equal(t, 44700.0, d.PaybackTotal)

	schedule, err := deal.GenerateSchedule(*d)
	require.NoError(t, err)
	require.Len(t, schedule, 30)

	for i, p := range schedule {
		assert.Equal(t, i, p.Index)
		assert.Equal(t, d.ID, p.DealID)
		assert.Equal(t, 1490.0, p.Amount)
		assert.Equal(t, deal.StatusPending, p.Status)
		assert.True(t, date(2025, 1, 1).AddDate(0, 0, i).Equal(p.Date))
	}

	assert.True(t, date(2025, 1, 30).Equal(schedule[29].Date))
}

func TestGenerateSchedule_CardinalityAndDrift(t *testing.T) {
	for _, term := range []int{1, 2, 3, 7, 29, 30, 61, 90, 120, 365} {
		for _, payback := range []float64{0, 0.01, 100, 1000.01, 44700, 72500, 149999.99} {
			d := deal.Deal{TermDays: term, PaybackTotal: payback, StartDate: date(2024, 2, 27)}

			schedule, err := deal.GenerateSchedule(d)
			require.NoError(t, err)
			require.Len(t, schedule, term)

			var sum float64
			for i, p := range schedule {
				sum += p.Amount
				assert.True(t, date(2024, 2, 27).AddDate(0, 0, i).Equal(p.Date))
			}

			assert.LessOrEqual(t, math.Abs(sum-payback), float64(term)*0.005+1e-6,
				"term=%d payback=%.2f", term, payback)
		}
	}
}

func TestGenerateSchedule_Invalid(t *testing.T) {
	_, err := deal.GenerateSchedule(deal.Deal{TermDays: 0, PaybackTotal: 100})
	assert.ErrorIs(t, err, deal.ErrInvalidSchedule)

	_, err = deal.GenerateSchedule(deal.Deal{TermDays: 10, PaybackTotal: -1})
	assert.ErrorIs(t, err, deal.ErrInvalidSchedule)

	_, err = deal.GenerateSchedule(deal.Deal{TermDays: 10, PaybackTotal: math.NaN()})
	assert.ErrorIs(t, err, deal.ErrInvalidSchedule)

	_, err = deal.GenerateSchedule(deal.Deal{TermDays: 10, PaybackTotal: math.Inf(1)})
	assert.ErrorIs(t, err, deal.ErrInvalidSchedule)
}

func TestInstallment_RoundsHalfUp(t *testing.T) {
	assert.Equal(t, 0.01, deal.Installment(0.005, 1))
	assert.Equal(t, 33.34, deal.Installment(100.02, 3))
	assert.Equal(t, 33.33, deal.Installment(100, 3))
	assert.Equal(t, 1666.67, deal.Installment(150000, 90))
}

func TestFindByDate(t *testing.T) {
	schedule := []deal.Payment{
		{Index: 0, Date: date(2025, 1, 1), Status: deal.StatusPaid},
		{Index: 1, Date: date(2025, 1, 2), Status: deal.StatusAdjusted},
		{Index: 2, Date: date(2025, 1, 3), Status: deal.StatusPending},
		{Index: 3, Date: date(2025, 1, 3), Status: deal.StatusPending},
		{Index: 4, Date: date(2025, 1, 2), Status: deal.StatusPending},
	}

	idx, ok := deal.FindByDate(schedule, date(2025, 1, 2))
	assert.True(t, ok)
	assert.Equal(t, 4, idx)

	idx, ok = deal.FindByDate(schedule, time.Date(2025, 1, 1, 15, 30, 0, 0, time.UTC))
	assert.True(t, ok)
	assert.Equal(t, 0, idx)

	idx, ok = deal.FindByDate(schedule, date(2025, 1, 3))
	assert.True(t, ok)
	assert.Equal(t, 2, idx)

	_, ok = deal.FindByDate(schedule, date(2025, 2, 1))
	assert.False(t, ok)
}
