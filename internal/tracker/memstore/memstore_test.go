package memstore_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/syndic/internal/deal"
	"github.com/MrJamesThe3rd/syndic/internal/ledger"
	"github.com/MrJamesThe3rd/syndic/internal/tracker"
	"github.com/MrJamesThe3rd/syndic/internal/tracker/memstore"
)

func newGreenCafe(t *testing.T, svc *tracker.Service) *deal.Deal {
	t.Helper()

	d, err := svc.CreateDeal(context.Background(), tracker.CreateDealParams{
		BusinessName: "Green Cafe",
		Principal:    30000,
		FactorRate:   1.49,
		TermDays:     30,
		StartDate:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	return d
}

func addInvestors(t *testing.T, svc *tracker.Service, names ...string) {
	t.Helper()

	for _, n := range names {
		_, err := svc.AddInvestor(context.Background(), n)
		require.NoError(t, err)
	}
}

func TestStore_Scenario(t *testing.T) {
	ctx := context.Background()
	svc := tracker.NewService(memstore.New())

	d := newGreenCafe(t, svc)
	assert.InDelta(t, 44700.0, d.PaybackTotal, 1e-9)

	addInvestors(t, svc, "albert", "jacobo")

	shares, err := svc.AssignShares(ctx, d.ID, map[string]float64{"albert": 40, "jacobo": 60})
	require.NoError(t, err)
	assert.Len(t, shares, 2)

	for i := range 18 {
		_, err := svc.AmendPayment(ctx, d.ID, deal.Amendment{Index: i, Status: deal.StatusPaid})
		require.NoError(t, err)
	}

	sum, err := svc.DealSummary(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 18, sum.PaymentsMade)
	assert.Equal(t, 30, sum.TermDays)
	assert.InDelta(t, 0.6, sum.Progress, 1e-12)
	assert.InDelta(t, 26820.0, sum.TotalCollected, 1e-9)

	inv, err := svc.InvestorSummary(ctx, "albert")
	require.NoError(t, err)
	assert.InDelta(t, 12000.0, inv.Funded, 1e-9)
	assert.InDelta(t, 17880.0, inv.ExpectedReturn, 1e-9)
	assert.InDelta(t, 10728.0, inv.Drawn, 1e-9)
	assert.InDelta(t, 7152.0, inv.Available, 1e-9)
}

func TestStore_ExtensionPersists(t *testing.T) {
	ctx := context.Background()
	svc := tracker.NewService(memstore.New())
	d := newGreenCafe(t, svc)

	res, err := svc.AmendPayment(ctx, d.ID, deal.Amendment{
		Index:      29,
		Status:     deal.StatusAdjusted,
		Amount:     new(745.0),
		ExtendDays: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 32, res.Deal.TermDays)

	got, err := svc.GetDeal(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 32, got.TermDays)
	assert.Equal(t, 30, got.OriginalTermDays)
	assert.InDelta(t, 44700.0+745*2, got.PaybackTotal, 1e-9)
	assert.NotNil(t, got.UpdatedAt)

	schedule, err := svc.Schedule(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, schedule, 32)
	assert.Equal(t, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), schedule[30].Date)
	assert.Equal(t, deal.StatusPending, schedule[31].Status)
	assert.InDelta(t, 745.0, schedule[31].Amount, 1e-9)
}

func TestStore_FailedAmendmentLeavesStateIntact(t *testing.T) {
	ctx := context.Background()
	svc := tracker.NewService(memstore.New())
	d := newGreenCafe(t, svc)

	_, err := svc.AmendPayment(ctx, d.ID, deal.Amendment{
		Index:      3,
		Status:     deal.StatusAdjusted,
		Amount:     new(-1.0),
		ExtendDays: 5,
	})
	require.ErrorIs(t, err, deal.ErrInvalidAmendment)

	schedule, err := svc.Schedule(ctx, d.ID)
	require.NoError(t, err)
	assert.Len(t, schedule, 30)
	assert.Equal(t, deal.StatusPending, schedule[3].Status)

	// The lock must have been released by the failed amendment.
	_, err = svc.AmendPayment(ctx, d.ID, deal.Amendment{Index: 3, Status: deal.StatusPaid})
	require.NoError(t, err)
}

func TestStore_ConcurrentExtensions(t *testing.T) {
	ctx := context.Background()
	svc := tracker.NewService(memstore.New())
	d := newGreenCafe(t, svc)

	var wg sync.WaitGroup

	for i := range 10 {
		wg.Go(func() {
			_, err := svc.AmendPayment(ctx, d.ID, deal.Amendment{
				Index:      i,
				Status:     deal.StatusAdjusted,
				Amount:     new(1490.0),
				ExtendDays: 1,
			})
			assert.NoError(t, err)
		})
	}

	wg.Wait()

	got, err := svc.GetDeal(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 40, got.TermDays)

	schedule, err := svc.Schedule(ctx, d.ID)
	require.NoError(t, err)
	assert.Len(t, schedule, 40)

	for i, p := range schedule {
		assert.Equal(t, i, p.Index)
	}
}

func TestStore_CascadeDeleteDeal(t *testing.T) {
	ctx := context.Background()
	svc := tracker.NewService(memstore.New())

	d := newGreenCafe(t, svc)
	other := newGreenCafe(t, svc)

	addInvestors(t, svc, "albert")

	_, err := svc.AssignShares(ctx, d.ID, map[string]float64{"albert": 40})
	require.NoError(t, err)
	_, err = svc.AssignShares(ctx, other.ID, map[string]float64{"albert": 10})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteDeal(ctx, d.ID))

	_, err = svc.DealSummary(ctx, d.ID)
	assert.ErrorIs(t, err, deal.ErrUnknownDeal)

	_, err = svc.Schedule(ctx, d.ID)
	assert.ErrorIs(t, err, deal.ErrUnknownDeal)

	inv, err := svc.InvestorSummary(ctx, "albert")
	require.NoError(t, err)
	require.Len(t, inv.Positions, 1)
	assert.Equal(t, other.ID, inv.Positions[0].DealID)

	deals, err := svc.ListDeals(ctx)
	require.NoError(t, err)
	assert.Len(t, deals, 1)

	assert.ErrorIs(t, svc.DeleteDeal(ctx, d.ID), deal.ErrUnknownDeal)
}

func TestStore_DeleteInvestorKeepsDeals(t *testing.T) {
	ctx := context.Background()
	svc := tracker.NewService(memstore.New())
	d := newGreenCafe(t, svc)

	addInvestors(t, svc, "albert", "jacobo")

	_, err := svc.AssignShares(ctx, d.ID, map[string]float64{"albert": 40, "jacobo": 60})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteInvestor(ctx, "albert"))

	shares, err := svc.DealShares(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, shares, 1)
	assert.Equal(t, "jacobo", shares[0].Investor)

	_, err = svc.InvestorSummary(ctx, "albert")
	assert.ErrorIs(t, err, ledger.ErrUnknownInvestor)

	schedule, err := svc.Schedule(ctx, d.ID)
	require.NoError(t, err)
	assert.Len(t, schedule, 30)
}

// Repeated batches are additive and the cumulative total is not checked.
func TestStore_AssignSharesIsAdditive(t *testing.T) {
	ctx := context.Background()
	svc := tracker.NewService(memstore.New())
	d := newGreenCafe(t, svc)

	addInvestors(t, svc, "albert", "jacobo")

	_, err := svc.AssignShares(ctx, d.ID, map[string]float64{"albert": 40, "jacobo": 60})
	require.NoError(t, err)

	shares, err := svc.AssignShares(ctx, d.ID, map[string]float64{"albert": 10})
	require.NoError(t, err)
	assert.Len(t, shares, 3)
	assert.InDelta(t, 110.0, shares.Allocated(d.ID), 1e-9)

	inv, err := svc.InvestorSummary(ctx, "albert")
	require.NoError(t, err)
	require.Len(t, inv.Positions, 1)
	assert.InDelta(t, 50.0, inv.Positions[0].Percent, 1e-9)
}

func TestStore_AssignSharesRejectsUnknown(t *testing.T) {
	ctx := context.Background()
	svc := tracker.NewService(memstore.New())
	d := newGreenCafe(t, svc)

	addInvestors(t, svc, "albert")

	_, err := svc.AssignShares(ctx, d.ID, map[string]float64{"albert": 40, "ghost": 10})
	require.ErrorIs(t, err, ledger.ErrUnknownInvestor)

	shares, err := svc.DealShares(ctx, d.ID)
	require.NoError(t, err)
	assert.Empty(t, shares, "a rejected batch must not be partially recorded")
}

func TestStore_Investors(t *testing.T) {
	ctx := context.Background()
	svc := tracker.NewService(memstore.New())

	addInvestors(t, svc, "zack", "albert")

	_, err := svc.AddInvestor(ctx, "albert")
	assert.ErrorIs(t, err, ledger.ErrInvestorExists)

	list, err := svc.ListInvestors(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "albert", list[0].Name)
	assert.False(t, list[0].CreatedAt.IsZero())

	portfolio, err := svc.Portfolio(ctx)
	require.NoError(t, err)
	require.Len(t, portfolio, 2)
	assert.Empty(t, portfolio[1].Positions)

	assert.ErrorIs(t, svc.DeleteInvestor(ctx, "nobody"), ledger.ErrUnknownInvestor)
}

func TestStore_SetDefaulted(t *testing.T) {
	ctx := context.Background()
	svc := tracker.NewService(memstore.New())
	d := newGreenCafe(t, svc)

	got, err := svc.SetDefaulted(ctx, d.ID, true)
	require.NoError(t, err)
	assert.True(t, got.Defaulted)

	sum, err := svc.DealSummary(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, sum.Defaulted)
}
