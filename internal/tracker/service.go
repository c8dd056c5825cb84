package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/syndic/internal/balance"
	"github.com/MrJamesThe3rd/syndic/internal/deal"
	"github.com/MrJamesThe3rd/syndic/internal/ledger"
)

// Repository persists deals, schedules, investors and the ledger. Lookups of
// missing rows return deal.ErrUnknownDeal or ledger.ErrUnknownInvestor.
//
//go:generate mockgen -source=service.go -destination=repository_mock.go -package=tracker
type Repository interface {
	CreateDeal(ctx context.Context, d *deal.Deal, schedule []deal.Payment) error
	GetDeal(ctx context.Context, id uuid.UUID) (*deal.Deal, error)
	ListDeals(ctx context.Context) ([]*deal.Deal, error)
	Schedule(ctx context.Context, dealID uuid.UUID) ([]deal.Payment, error)
	SetDefaulted(ctx context.Context, id uuid.UUID, defaulted bool) error
	// DeleteDeal removes the deal with its schedule and ledger rows in one step.
	DeleteDeal(ctx context.Context, id uuid.UUID) error

	CreateInvestor(ctx context.Context, inv *ledger.Investor) error
	GetInvestor(ctx context.Context, name string) (*ledger.Investor, error)
	ListInvestors(ctx context.Context) ([]*ledger.Investor, error)
	// DeleteInvestor removes the investor and its ledger rows. Deals are untouched.
	DeleteInvestor(ctx context.Context, name string) error

	// AddAssignments appends rows for dealID atomically, after checking that the
	// deal and every investor exist.
	AddAssignments(ctx context.Context, dealID uuid.UUID, rows []ledger.Assignment) error
	AssignmentsForDeal(ctx context.Context, dealID uuid.UUID) ([]ledger.Assignment, error)
	AssignmentsForInvestor(ctx context.Context, name string) ([]ledger.Assignment, error)

	// BeginAmend locks the deal for a single amendment.
	BeginAmend(ctx context.Context, dealID uuid.UUID) (AmendTx, error)
}

// AmendTx is an exclusive, all-or-nothing view of one deal's schedule.
// Rollback after Commit is a no-op.
type AmendTx interface {
	Load(ctx context.Context) (*deal.Deal, []deal.Payment, error)
	Save(ctx context.Context, d *deal.Deal, changed []deal.Payment) error
	Commit() error
	Rollback() error
}

// DealHook runs after a deal is deleted, for state kept outside the
// repository such as merchant aliases.
type DealHook func(ctx context.Context, dealID uuid.UUID) error

type Service struct {
	repo      Repository
	onDeleted []DealHook
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// OnDealDeleted registers h to run after every successful DeleteDeal.
func (s *Service) OnDealDeleted(h DealHook) {
	s.onDeleted = append(s.onDeleted, h)
}

type CreateDealParams = deal.NewParams

// AmendByDateParams identifies a schedule entry by due date instead of index.
type AmendByDateParams struct {
	Date   time.Time
	Status deal.Status
	Amount *float64
}

func (s *Service) CreateDeal(ctx context.Context, params CreateDealParams) (*deal.Deal, error) {
	d, err := deal.New(params)
	if err != nil {
		return nil, err
	}

	schedule, err := deal.GenerateSchedule(*d)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateDeal(ctx, d, schedule); err != nil {
		return nil, err
	}

	return d, nil
}

func (s *Service) GetDeal(ctx context.Context, id uuid.UUID) (*deal.Deal, error) {
	return s.repo.GetDeal(ctx, id)
}

func (s *Service) ListDeals(ctx context.Context) ([]*deal.Deal, error) {
	return s.repo.ListDeals(ctx)
}

func (s *Service) Schedule(ctx context.Context, dealID uuid.UUID) ([]deal.Payment, error) {
	if _, err := s.repo.GetDeal(ctx, dealID); err != nil {
		return nil, err
	}

	return s.repo.Schedule(ctx, dealID)
}

// AmendPayment applies one admin edit to a schedule entry. Nothing is written
// unless the whole amendment succeeds.
func (s *Service) AmendPayment(ctx context.Context, dealID uuid.UUID, a deal.Amendment) (*deal.Amended, error) {
	return s.amend(ctx, dealID, func([]deal.Payment) (deal.Amendment, error) {
		return a, nil
	})
}

// AmendByDate amends the entry due on params.Date, preferring a pending one
// when an extension put several entries on that day.
func (s *Service) AmendByDate(ctx context.Context, dealID uuid.UUID, params AmendByDateParams) (*deal.Amended, error) {
	return s.amend(ctx, dealID, func(schedule []deal.Payment) (deal.Amendment, error) {
		idx, ok := deal.FindByDate(schedule, params.Date)
		if !ok {
			return deal.Amendment{}, fmt.Errorf("%w: no payment due on %s",
				deal.ErrInvalidAmendment, params.Date.Format(time.DateOnly))
		}

		return deal.Amendment{Index: idx, Status: params.Status, Amount: params.Amount}, nil
	})
}

func (s *Service) amend(
	ctx context.Context,
	dealID uuid.UUID,
	resolve func([]deal.Payment) (deal.Amendment, error),
) (*deal.Amended, error) {
	atx, err := s.repo.BeginAmend(ctx, dealID)
	if err != nil {
		return nil, err
	}
	defer atx.Rollback()

	d, schedule, err := atx.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load deal: %w", err)
	}

	a, err := resolve(schedule)
	if err != nil {
		return nil, err
	}

	res, err := deal.Amend(*d, schedule, a)
	if err != nil {
		return nil, err
	}

	if err := atx.Save(ctx, &res.Deal, res.Changed); err != nil {
		return nil, fmt.Errorf("save amendment: %w", err)
	}

	if err := atx.Commit(); err != nil {
		return nil, fmt.Errorf("commit amendment: %w", err)
	}

	return res, nil
}

func (s *Service) SetDefaulted(ctx context.Context, id uuid.UUID, defaulted bool) (*deal.Deal, error) {
	if err := s.repo.SetDefaulted(ctx, id, defaulted); err != nil {
		return nil, err
	}

	return s.repo.GetDeal(ctx, id)
}

func (s *Service) DeleteDeal(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteDeal(ctx, id); err != nil {
		return err
	}

	for _, h := range s.onDeleted {
		if err := h(ctx, id); err != nil {
			return fmt.Errorf("cleaning up deal %s: %w", id, err)
		}
	}

	return nil
}

func (s *Service) AddInvestor(ctx context.Context, name string) (*ledger.Investor, error) {
	name = ledger.NormalizeName(name)
	if name == "" {
		return nil, fmt.Errorf("%w: investor name is required", deal.ErrInvalidAmendment)
	}

	inv := &ledger.Investor{Name: name}
	if err := s.repo.CreateInvestor(ctx, inv); err != nil {
		return nil, err
	}

	return inv, nil
}

func (s *Service) ListInvestors(ctx context.Context) ([]*ledger.Investor, error) {
	return s.repo.ListInvestors(ctx)
}

func (s *Service) DeleteInvestor(ctx context.Context, name string) error {
	return s.repo.DeleteInvestor(ctx, ledger.NormalizeName(name))
}

// AssignShares records one batch of shares on a deal and returns every
// assignment the deal now carries. Earlier batches are kept as separate rows.
func (s *Service) AssignShares(ctx context.Context, dealID uuid.UUID, shares map[string]float64) (ledger.Ledger, error) {
	rows, err := ledger.BuildAssignments(dealID, shares)
	if err != nil {
		return nil, err
	}

	if len(rows) > 0 {
		if err := s.repo.AddAssignments(ctx, dealID, rows); err != nil {
			return nil, err
		}
	} else if _, err := s.repo.GetDeal(ctx, dealID); err != nil {
		return nil, err
	}

	return s.DealShares(ctx, dealID)
}

// DealShares lists the ledger rows of one deal in the order they were recorded.
func (s *Service) DealShares(ctx context.Context, dealID uuid.UUID) (ledger.Ledger, error) {
	rows, err := s.repo.AssignmentsForDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}

	return ledger.Ledger(rows), nil
}

func (s *Service) Book(ctx context.Context, dealID uuid.UUID) (*balance.Book, error) {
	d, err := s.repo.GetDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}

	schedule, err := s.repo.Schedule(ctx, dealID)
	if err != nil {
		return nil, err
	}

	return &balance.Book{Deal: *d, Schedule: schedule}, nil
}

// Books returns every deal with its schedule, in listing order.
func (s *Service) Books(ctx context.Context) ([]balance.Book, error) {
	deals, err := s.repo.ListDeals(ctx)
	if err != nil {
		return nil, err
	}

	books := make([]balance.Book, 0, len(deals))

	for _, d := range deals {
		schedule, err := s.repo.Schedule(ctx, d.ID)
		if err != nil {
			return nil, err
		}

		books = append(books, balance.Book{Deal: *d, Schedule: schedule})
	}

	return books, nil
}

func (s *Service) DealSummary(ctx context.Context, dealID uuid.UUID) (balance.DealSummary, error) {
	b, err := s.Book(ctx, dealID)
	if err != nil {
		return balance.DealSummary{}, err
	}

	return balance.SummarizeDeal(b.Deal, b.Schedule), nil
}

func (s *Service) InvestorSummary(ctx context.Context, name string) (balance.InvestorSummary, error) {
	name = ledger.NormalizeName(name)

	if _, err := s.repo.GetInvestor(ctx, name); err != nil {
		return balance.InvestorSummary{}, err
	}

	return s.summarize(ctx, name, make(map[uuid.UUID]balance.Book))
}

// Portfolio summarizes every registered investor, ordered by name.
func (s *Service) Portfolio(ctx context.Context) ([]balance.InvestorSummary, error) {
	investors, err := s.repo.ListInvestors(ctx)
	if err != nil {
		return nil, err
	}

	books := make(map[uuid.UUID]balance.Book)
	out := make([]balance.InvestorSummary, 0, len(investors))

	for _, inv := range investors {
		sum, err := s.summarize(ctx, inv.Name, books)
		if err != nil {
			return nil, err
		}

		out = append(out, sum)
	}

	balance.SortByName(out)

	return out, nil
}

// summarize loads the books the investor's assignments reference into cache
// and aggregates them.
func (s *Service) summarize(ctx context.Context, name string, cache map[uuid.UUID]balance.Book) (balance.InvestorSummary, error) {
	rows, err := s.repo.AssignmentsForInvestor(ctx, name)
	if err != nil {
		return balance.InvestorSummary{}, err
	}

	for _, a := range rows {
		if _, ok := cache[a.DealID]; ok {
			continue
		}

		b, err := s.Book(ctx, a.DealID)
		if err != nil {
			return balance.InvestorSummary{}, err
		}

		cache[a.DealID] = *b
	}

	return balance.SummarizeInvestor(name, rows, cache), nil
}
