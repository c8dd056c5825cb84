// Package memstore keeps the whole book in process memory. State lives as long
// as the Store value; nothing is written to disk.
package memstore

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/syndic/internal/deal"
	"github.com/MrJamesThe3rd/syndic/internal/ledger"
	"github.com/MrJamesThe3rd/syndic/internal/tracker"
)

type Store struct {
	mu sync.RWMutex

	deals     map[uuid.UUID]*deal.Deal
	order     []uuid.UUID
	schedules map[uuid.UUID][]deal.Payment
	investors map[string]*ledger.Investor
	ledger    ledger.Ledger

	now func() time.Time
}

var _ tracker.Repository = (*Store)(nil)

func New() *Store {
	return &Store{
		deals:     make(map[uuid.UUID]*deal.Deal),
		schedules: make(map[uuid.UUID][]deal.Payment),
		investors: make(map[string]*ledger.Investor),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) CreateDeal(_ context.Context, d *deal.Deal, schedule []deal.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.deals[d.ID]; ok {
		return fmt.Errorf("creating deal: id %s already in use", d.ID)
	}

	d.CreatedAt = s.now()

	stored := *d
	s.deals[d.ID] = &stored
	s.order = append(s.order, d.ID)
	s.schedules[d.ID] = slices.Clone(schedule)

	return nil
}

func (s *Store) GetDeal(_ context.Context, id uuid.UUID) (*deal.Deal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.deals[id]
	if !ok {
		return nil, deal.ErrUnknownDeal
	}

	out := *d

	return &out, nil
}

func (s *Store) ListDeals(_ context.Context) ([]*deal.Deal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*deal.Deal, 0, len(s.order))

	for _, id := range s.order {
		d := *s.deals[id]
		out = append(out, &d)
	}

	return out, nil
}

func (s *Store) Schedule(_ context.Context, dealID uuid.UUID) ([]deal.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.deals[dealID]; !ok {
		return nil, deal.ErrUnknownDeal
	}

	return slices.Clone(s.schedules[dealID]), nil
}

func (s *Store) SetDefaulted(_ context.Context, id uuid.UUID, defaulted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.deals[id]
	if !ok {
		return deal.ErrUnknownDeal
	}

	d.Defaulted = defaulted
	d.UpdatedAt = new(s.now())

	return nil
}

func (s *Store) DeleteDeal(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.deals[id]; !ok {
		return deal.ErrUnknownDeal
	}

	delete(s.deals, id)
	delete(s.schedules, id)
	s.order = slices.DeleteFunc(s.order, func(o uuid.UUID) bool { return o == id })
	s.ledger = s.ledger.WithoutDeal(id)

	return nil
}

func (s *Store) CreateInvestor(_ context.Context, inv *ledger.Investor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.investors[inv.Name]; ok {
		return fmt.Errorf("%w: %s", ledger.ErrInvestorExists, inv.Name)
	}

	inv.CreatedAt = s.now()

	stored := *inv
	s.investors[inv.Name] = &stored

	return nil
}

func (s *Store) GetInvestor(_ context.Context, name string) (*ledger.Investor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, ok := s.investors[name]
	if !ok {
		return nil, ledger.ErrUnknownInvestor
	}

	out := *inv

	return &out, nil
}

func (s *Store) ListInvestors(_ context.Context) ([]*ledger.Investor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*ledger.Investor, 0, len(s.investors))
	for _, inv := range s.investors {
		i := *inv
		out = append(out, &i)
	}

	slices.SortFunc(out, func(a, b *ledger.Investor) int {
		return cmp.Compare(a.Name, b.Name)
	})

	return out, nil
}

func (s *Store) DeleteInvestor(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.investors[name]; !ok {
		return ledger.ErrUnknownInvestor
	}

	delete(s.investors, name)
	s.ledger = s.ledger.WithoutInvestor(name)

	return nil
}

func (s *Store) AddAssignments(_ context.Context, dealID uuid.UUID, rows []ledger.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.deals[dealID]; !ok {
		return deal.ErrUnknownDeal
	}

	for _, a := range rows {
		if _, ok := s.investors[a.Investor]; !ok {
			return fmt.Errorf("%w: %s", ledger.ErrUnknownInvestor, a.Investor)
		}
	}

	s.ledger = append(s.ledger, rows...)

	return nil
}

func (s *Store) AssignmentsForDeal(_ context.Context, dealID uuid.UUID) ([]ledger.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.deals[dealID]; !ok {
		return nil, deal.ErrUnknownDeal
	}

	return s.ledger.ForDeal(dealID), nil
}

func (s *Store) AssignmentsForInvestor(_ context.Context, name string) ([]ledger.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.ledger.ForInvestor(name), nil
}

// BeginAmend takes the write lock and holds it until Commit or Rollback.
func (s *Store) BeginAmend(_ context.Context, dealID uuid.UUID) (tracker.AmendTx, error) {
	s.mu.Lock()

	if _, ok := s.deals[dealID]; !ok {
		s.mu.Unlock()
		return nil, deal.ErrUnknownDeal
	}

	return &amendTx{s: s, dealID: dealID}, nil
}

type amendTx struct {
	s      *Store
	dealID uuid.UUID
	done   bool

	staged   *deal.Deal
	schedule []deal.Payment
}

func (tx *amendTx) Load(_ context.Context) (*deal.Deal, []deal.Payment, error) {
	if tx.done {
		return nil, nil, fmt.Errorf("amend tx already finished")
	}

	d := *tx.s.deals[tx.dealID]

	return &d, slices.Clone(tx.s.schedules[tx.dealID]), nil
}

// Save stages the change; it is applied to the store on Commit.
func (tx *amendTx) Save(_ context.Context, d *deal.Deal, changed []deal.Payment) error {
	if tx.done {
		return fmt.Errorf("amend tx already finished")
	}

	schedule := slices.Clone(tx.s.schedules[tx.dealID])
	if tx.schedule != nil {
		schedule = tx.schedule
	}

	for _, p := range changed {
		switch {
		case p.Index >= 0 && p.Index < len(schedule):
			schedule[p.Index] = p
		case p.Index == len(schedule):
			schedule = append(schedule, p)
		default:
			return fmt.Errorf("saving payment: index %d leaves a gap after %d entries", p.Index, len(schedule))
		}
	}

	staged := *d
	tx.staged = &staged
	tx.schedule = schedule

	return nil
}

func (tx *amendTx) Commit() error {
	if tx.done {
		return fmt.Errorf("amend tx already finished")
	}

	if tx.staged != nil {
		tx.staged.UpdatedAt = new(tx.s.now())
		tx.s.deals[tx.dealID] = tx.staged
		tx.s.schedules[tx.dealID] = tx.schedule
	}

	tx.done = true
	tx.s.mu.Unlock()

	return nil
}

func (tx *amendTx) Rollback() error {
	if tx.done {
		return nil
	}

	tx.done = true
	tx.s.mu.Unlock()

	return nil
}
