package tracker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/syndic/internal/deal"
	"github.com/MrJamesThe3rd/syndic/internal/ledger"
	"github.com/MrJamesThe3rd/syndic/internal/tracker"
)

func greenCafe(t *testing.T) (*deal.Deal, []deal.Payment) {
	t.Helper()

	d, err := deal.New(deal.NewParams{
		BusinessName: "Green Cafe",
		Principal:    30000,
		FactorRate:   1.49,
		TermDays:     30,
		StartDate:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	schedule, err := deal.GenerateSchedule(*d)
	require.NoError(t, err)

	return d, schedule
}

func TestService_CreateDeal(t *testing.T) {
	type testCase struct {
		name      string
		params    tracker.CreateDealParams
		setupMock func(m *tracker.MockRepository)
		wantErr   error
		wantFail  bool
	}

	valid := tracker.CreateDealParams{
		BusinessName: "Green Cafe",
		Principal:    30000,
		FactorRate:   1.49,
		TermDays:     30,
		StartDate:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	tests := []testCase{
		{
			name:   "Success",
			params: valid,
			setupMock: func(m *tracker.MockRepository) {
				m.EXPECT().
					CreateDeal(gomock.Any(), gomock.Any(), gomock.Len(30)).
					DoAndReturn(func(_ context.Context, d *deal.Deal, schedule []deal.Payment) error {
						assert.InDelta(t, 44700.0, d.PaybackTotal, 1e-9)
						assert.Equal(t, d.ID, schedule[0].DealID)

						return nil
					})
			},
		},
		{
			name: "InvalidTerm",
			params: tracker.CreateDealParams{
				BusinessName: "Green Cafe",
				Principal:    30000,
				FactorRate:   1.49,
				StartDate:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			},
			wantErr: deal.ErrInvalidSchedule,
		},
		{
			name:   "RepoError",
			params: valid,
			setupMock: func(m *tracker.MockRepository) {
				m.EXPECT().CreateDeal(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("db error"))
			},
			wantFail: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := tracker.NewMockRepository(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := tracker.NewService(repo)
			got, err := svc.CreateDeal(context.Background(), tt.params)

			if tt.wantErr != nil || tt.wantFail {
				assert.Error(t, err)
				assert.Nil(t, got)

				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}

				return
			}

			require.NoError(t, err)
			assert.Equal(t, 30, got.TermDays)
		})
	}
}

func TestService_AmendPayment(t *testing.T) {
	d, schedule := greenCafe(t)

	type testCase struct {
		name      string
		amendment deal.Amendment
		setupMock func(m *tracker.MockRepository, tx *tracker.MockAmendTx)
		wantErr   error
		wantLen   int
	}

	tests := []testCase{
		{
			name:      "ExtensionSavesEditedAndAppended",
			amendment: deal.Amendment{Index: 4, Status: deal.StatusAdjusted, Amount: new(500.0), ExtendDays: 2},
			setupMock: func(m *tracker.MockRepository, tx *tracker.MockAmendTx) {
				m.EXPECT().BeginAmend(gomock.Any(), d.ID).Return(tx, nil)
				tx.EXPECT().Load(gomock.Any()).Return(d, schedule, nil)
				tx.EXPECT().
					Save(gomock.Any(), gomock.Any(), gomock.Len(3)).
					DoAndReturn(func(_ context.Context, nd *deal.Deal, changed []deal.Payment) error {
						assert.Equal(t, 32, nd.TermDays)
						assert.Equal(t, 4, changed[0].Index)
						assert.Equal(t, 30, changed[1].Index)
						assert.Equal(t, 31, changed[2].Index)

						return nil
					})
				tx.EXPECT().Commit().Return(nil)
				tx.EXPECT().Rollback().Return(nil)
			},
			wantLen: 32,
		},
		{
			name:      "InvalidIndexNothingSaved",
			amendment: deal.Amendment{Index: 30, Status: deal.StatusPaid},
			setupMock: func(m *tracker.MockRepository, tx *tracker.MockAmendTx) {
				m.EXPECT().BeginAmend(gomock.Any(), d.ID).Return(tx, nil)
				tx.EXPECT().Load(gomock.Any()).Return(d, schedule, nil)
				tx.EXPECT().Rollback().Return(nil)
			},
			wantErr: deal.ErrInvalidAmendment,
		},
		{
			name:      "UnknownDeal",
			amendment: deal.Amendment{Index: 0, Status: deal.StatusPaid},
			setupMock: func(m *tracker.MockRepository, _ *tracker.MockAmendTx) {
				m.EXPECT().BeginAmend(gomock.Any(), d.ID).Return(nil, deal.ErrUnknownDeal)
			},
			wantErr: deal.ErrUnknownDeal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := tracker.NewMockRepository(ctrl)
			tx := tracker.NewMockAmendTx(ctrl)
			tt.setupMock(repo, tx)

			svc := tracker.NewService(repo)
			got, err := svc.AmendPayment(context.Background(), d.ID, tt.amendment)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Len(t, got.Schedule, tt.wantLen)
			assert.Len(t, schedule, 30, "caller's schedule must not change")
		})
	}
}

func TestService_AmendByDate(t *testing.T) {
	d, schedule := greenCafe(t)

	ctrl := gomock.NewController(t)
	repo := tracker.NewMockRepository(ctrl)
	tx := tracker.NewMockAmendTx(ctrl)

	repo.EXPECT().BeginAmend(gomock.Any(), d.ID).Return(tx, nil).Times(2)
	tx.EXPECT().Load(gomock.Any()).Return(d, schedule, nil).Times(2)
	tx.EXPECT().
		Save(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *deal.Deal, changed []deal.Payment) error {
			assert.Equal(t, 9, changed[0].Index)
			assert.Equal(t, deal.StatusMissed, changed[0].Status)

			return nil
		})
	tx.EXPECT().Commit().Return(nil)
	tx.EXPECT().Rollback().Return(nil).Times(2)

	svc := tracker.NewService(repo)

	_, err := svc.AmendByDate(context.Background(), d.ID, tracker.AmendByDateParams{
		Date:   time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		Status: deal.StatusMissed,
	})
	require.NoError(t, err)

	_, err = svc.AmendByDate(context.Background(), d.ID, tracker.AmendByDateParams{
		Date:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Status: deal.StatusPaid,
	})
	assert.ErrorIs(t, err, deal.ErrInvalidAmendment)
}

func TestService_AssignShares(t *testing.T) {
	dealID := uuid.New()

	type testCase struct {
		name      string
		shares    map[string]float64
		setupMock func(m *tracker.MockRepository)
		wantErr   error
		wantLen   int
	}

	tests := []testCase{
		{
			name:   "Success",
			shares: map[string]float64{"albert": 40, "jacobo": 60},
			setupMock: func(m *tracker.MockRepository) {
				m.EXPECT().AddAssignments(gomock.Any(), dealID, gomock.Len(2)).Return(nil)
				m.EXPECT().AssignmentsForDeal(gomock.Any(), dealID).Return([]ledger.Assignment{
					{DealID: dealID, Investor: "albert", Percent: 40},
					{DealID: dealID, Investor: "jacobo", Percent: 60},
				}, nil)
			},
			wantLen: 2,
		},
		{
			name:    "BatchOverHundred",
			shares:  map[string]float64{"albert": 60, "jacobo": 60},
			wantErr: deal.ErrInvalidAmendment,
		},
		{
			name:   "UnknownInvestor",
			shares: map[string]float64{"nobody": 10},
			setupMock: func(m *tracker.MockRepository) {
				m.EXPECT().AddAssignments(gomock.Any(), dealID, gomock.Any()).Return(ledger.ErrUnknownInvestor)
			},
			wantErr: ledger.ErrUnknownInvestor,
		},
		{
			name:   "AllZeroStillChecksDeal",
			shares: map[string]float64{"albert": 0},
			setupMock: func(m *tracker.MockRepository) {
				m.EXPECT().GetDeal(gomock.Any(), dealID).Return(nil, deal.ErrUnknownDeal)
			},
			wantErr: deal.ErrUnknownDeal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := tracker.NewMockRepository(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := tracker.NewService(repo)
			got, err := svc.AssignShares(context.Background(), dealID, tt.shares)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Len(t, got, tt.wantLen)
			assert.InDelta(t, 100.0, got.Allocated(dealID), 1e-9)
		})
	}
}

func TestService_AddInvestor(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := tracker.NewMockRepository(ctrl)

	repo.EXPECT().
		CreateInvestor(gomock.Any(), &ledger.Investor{Name: "albert"}).
		Return(nil)
	repo.EXPECT().
		CreateInvestor(gomock.Any(), &ledger.Investor{Name: "jacobo"}).
		Return(ledger.ErrInvestorExists)

	svc := tracker.NewService(repo)

	inv, err := svc.AddInvestor(context.Background(), "  albert ")
	require.NoError(t, err)
	assert.Equal(t, "albert", inv.Name)

	_, err = svc.AddInvestor(context.Background(), "jacobo")
	assert.ErrorIs(t, err, ledger.ErrInvestorExists)

	_, err = svc.AddInvestor(context.Background(), "   ")
	assert.ErrorIs(t, err, deal.ErrInvalidAmendment)
}

func TestService_InvestorSummary(t *testing.T) {
	d, schedule := greenCafe(t)
	for i := range 18 {
		schedule[i].Status = deal.StatusPaid
	}

	ctrl := gomock.NewController(t)
	repo := tracker.NewMockRepository(ctrl)

	repo.EXPECT().GetInvestor(gomock.Any(), "albert").Return(&ledger.Investor{Name: "albert"}, nil)
	repo.EXPECT().AssignmentsForInvestor(gomock.Any(), "albert").Return([]ledger.Assignment{
		{DealID: d.ID, Investor: "albert", Percent: 40},
	}, nil)
	repo.EXPECT().GetDeal(gomock.Any(), d.ID).Return(d, nil)
	repo.EXPECT().Schedule(gomock.Any(), d.ID).Return(schedule, nil)

	svc := tracker.NewService(repo)

	got, err := svc.InvestorSummary(context.Background(), "albert")
	require.NoError(t, err)
	assert.InDelta(t, 12000.0, got.Funded, 1e-9)
	assert.InDelta(t, 17880.0, got.ExpectedReturn, 1e-9)
	assert.InDelta(t, 10728.0, got.Drawn, 1e-9)
	assert.InDelta(t, 7152.0, got.Available, 1e-9)
	require.Len(t, got.Positions, 1)
}

func TestService_InvestorSummary_Unknown(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := tracker.NewMockRepository(ctrl)

	repo.EXPECT().GetInvestor(gomock.Any(), "ghost").Return(nil, ledger.ErrUnknownInvestor)

	svc := tracker.NewService(repo)

	_, err := svc.InvestorSummary(context.Background(), "ghost")
	assert.ErrorIs(t, err, ledger.ErrUnknownInvestor)
}

func TestService_Portfolio_LoadsEachDealOnce(t *testing.T) {
	d, schedule := greenCafe(t)

	ctrl := gomock.NewController(t)
	repo := tracker.NewMockRepository(ctrl)

	repo.EXPECT().ListInvestors(gomock.Any()).Return([]*ledger.Investor{{Name: "jacobo"}, {Name: "albert"}}, nil)
	repo.EXPECT().AssignmentsForInvestor(gomock.Any(), "jacobo").Return([]ledger.Assignment{
		{DealID: d.ID, Investor: "jacobo", Percent: 60},
	}, nil)
	repo.EXPECT().AssignmentsForInvestor(gomock.Any(), "albert").Return([]ledger.Assignment{
		{DealID: d.ID, Investor: "albert", Percent: 40},
	}, nil)
	repo.EXPECT().GetDeal(gomock.Any(), d.ID).Return(d, nil).Times(1)
	repo.EXPECT().Schedule(gomock.Any(), d.ID).Return(schedule, nil).Times(1)

	svc := tracker.NewService(repo)

	got, err := svc.Portfolio(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "albert", got[0].Investor)
	assert.Equal(t, "jacobo", got[1].Investor)
	assert.InDelta(t, 18000.0, got[1].Funded, 1e-9)
}

func TestService_Schedule_UnknownDeal(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := tracker.NewMockRepository(ctrl)

	id := uuid.New()
	repo.EXPECT().GetDeal(gomock.Any(), id).Return(nil, deal.ErrUnknownDeal)

	svc := tracker.NewService(repo)

	_, err := svc.Schedule(context.Background(), id)
	assert.ErrorIs(t, err, deal.ErrUnknownDeal)

	repo.EXPECT().GetDeal(gomock.Any(), id).Return(nil, deal.ErrUnknownDeal)

	_, err = svc.DealSummary(context.Background(), id)
	assert.ErrorIs(t, err, deal.ErrUnknownDeal)
}

func TestService_DeleteDeal_RunsHooks(t *testing.T) {
	id := uuid.New()
	hookErr := errors.New("alias store down")

	tests := []struct {
		name      string
		deleteErr error
		hookErr   error
		wantCalls int
		wantErr   error
	}{
		{name: "Success", wantCalls: 1},
		{name: "DeleteFails", deleteErr: deal.ErrUnknownDeal, wantErr: deal.ErrUnknownDeal},
		{name: "HookFails", hookErr: hookErr, wantCalls: 1, wantErr: hookErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := tracker.NewMockRepository(ctrl)
			repo.EXPECT().DeleteDeal(gomock.Any(), id).Return(tt.deleteErr)

			svc := tracker.NewService(repo)

			var calls int
			svc.OnDealDeleted(func(_ context.Context, got uuid.UUID) error {
				calls++
				assert.Equal(t, id, got)

				return tt.hookErr
			})

			err := svc.DeleteDeal(context.Background(), id)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, tt.wantCalls, calls)
		})
	}
}
