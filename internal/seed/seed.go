// Package seed loads a book of deals, investors and shares from YAML.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/MrJamesThe3rd/syndic/internal/deal"
	"github.com/MrJamesThe3rd/syndic/internal/ledger"
	"github.com/MrJamesThe3rd/syndic/internal/tracker"
)

//go:embed demo.yaml
var demo []byte

type Fixture struct {
	Investors []string `yaml:"investors"`
	Deals     []Deal   `yaml:"deals"`
}

// Deal is one fixture deal. StartDate (YYYY-MM-DD) wins over StartDaysAgo.
// Paid marks that many leading entries as paid.
type Deal struct {
	Ref          string             `yaml:"ref"`
	BusinessName string             `yaml:"business_name"`
	Principal    float64            `yaml:"principal"`
	FactorRate   float64            `yaml:"factor_rate"`
	TermDays     int                `yaml:"term_days"`
	StartDate    string             `yaml:"start_date"`
	StartDaysAgo int                `yaml:"start_days_ago"`
	Paid         int                `yaml:"paid"`
	Shares       map[string]float64 `yaml:"shares"`
}

// Tracker is the slice of tracker.Service the seeder drives.
type Tracker interface {
	ListDeals(ctx context.Context) ([]*deal.Deal, error)
	CreateDeal(ctx context.Context, params tracker.CreateDealParams) (*deal.Deal, error)
	AddInvestor(ctx context.Context, name string) (*ledger.Investor, error)
	AssignShares(ctx context.Context, dealID uuid.UUID, shares map[string]float64) (ledger.Ledger, error)
	AmendPayment(ctx context.Context, dealID uuid.UUID, a deal.Amendment) (*deal.Amended, error)
}

func Load(r io.Reader) (*Fixture, error) {
	var f Fixture

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decoding fixture: %w", err)
	}

	if err := f.validate(); err != nil {
		return nil, err
	}

	return &f, nil
}

func LoadFile(path string) (*Fixture, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening fixture: %w", err)
	}
	defer file.Close()

	return Load(file)
}

// Demo returns the built-in demo book.
func Demo() (*Fixture, error) {
	return Load(bytes.NewReader(demo))
}

func (f *Fixture) validate() error {
	seen := make(map[string]struct{}, len(f.Deals))

	for i, d := range f.Deals {
		if d.Ref == "" {
			return fmt.Errorf("deal %d: ref is required", i)
		}

		if _, dup := seen[d.Ref]; dup {
			return fmt.Errorf("deal %s: duplicate ref", d.Ref)
		}

		seen[d.Ref] = struct{}{}

		if d.StartDate != "" {
			if _, err := time.Parse(time.DateOnly, d.StartDate); err != nil {
				return fmt.Errorf("deal %s: start_date: %w", d.Ref, err)
			}
		}

		if d.Paid < 0 || d.Paid > d.TermDays {
			return fmt.Errorf("deal %s: paid must be between 0 and term_days", d.Ref)
		}
	}

	return nil
}

func (d Deal) start(today time.Time) time.Time {
	if d.StartDate != "" {
		t, _ := time.Parse(time.DateOnly, d.StartDate)
		return t
	}

	return deal.DateOnly(today).AddDate(0, 0, -d.StartDaysAgo)
}

// Apply writes the fixture through svc and returns the created deal IDs by
// ref. A book that already holds deals is left alone and nil is returned.
func Apply(ctx context.Context, svc Tracker, f *Fixture, today time.Time) (map[string]uuid.UUID, error) {
	existing, err := svc.ListDeals(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing deals: %w", err)
	}

	if len(existing) > 0 {
		slog.Info("book already has deals, skipping seed", "deals", len(existing))
		return nil, nil
	}

	for _, name := range f.Investors {
		if _, err := svc.AddInvestor(ctx, name); err != nil && !errors.Is(err, ledger.ErrInvestorExists) {
			return nil, fmt.Errorf("adding investor %s: %w", name, err)
		}
	}

	ids := make(map[string]uuid.UUID, len(f.Deals))

	for _, fd := range f.Deals {
		d, err := svc.CreateDeal(ctx, tracker.CreateDealParams{
			BusinessName: fd.BusinessName,
			Principal:    fd.Principal,
			FactorRate:   fd.FactorRate,
			TermDays:     fd.TermDays,
			StartDate:    fd.start(today),
		})
		if err != nil {
			return nil, fmt.Errorf("creating deal %s: %w", fd.Ref, err)
		}

		ids[fd.Ref] = d.ID

		if len(fd.Shares) > 0 {
			if _, err := svc.AssignShares(ctx, d.ID, fd.Shares); err != nil {
				return nil, fmt.Errorf("assigning shares on %s: %w", fd.Ref, err)
			}
		}

		for i := range fd.Paid {
			if _, err := svc.AmendPayment(ctx, d.ID, deal.Amendment{Index: i, Status: deal.StatusPaid}); err != nil {
				return nil, fmt.Errorf("marking %s payment %d paid: %w", fd.Ref, i, err)
			}
		}
	}

	slog.Info("seeded book", "deals", len(f.Deals), "investors", len(f.Investors))

	return ids, nil
}
