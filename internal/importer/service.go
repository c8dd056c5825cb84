package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/syndic/internal/deal"
	"github.com/MrJamesThe3rd/syndic/internal/tracker"
)

// Tracker is the part of the tracker service remittance imports need.
type Tracker interface {
	ListDeals(ctx context.Context) ([]*deal.Deal, error)
	AmendByDate(ctx context.Context, dealID uuid.UUID, params tracker.AmendByDateParams) (*deal.Amended, error)
}

// Aliases resolves processor descriptors that do not name a deal directly.
type Aliases interface {
	Suggest(ctx context.Context, descriptor string) (uuid.UUID, error)
}

type Service struct {
	tracker Tracker
	aliases Aliases
	parser  *Parser
}

// NewService builds an importer. aliases may be nil, in which case only deal
// IDs and exact business names are matched.
func NewService(t Tracker, aliases Aliases) *Service {
	return &Service{
		tracker: t,
		aliases: aliases,
		parser:  NewParser(),
	}
}

// Applied is a remittance line that amended a schedule entry.
type Applied struct {
	Row    int
	DealID uuid.UUID
	Index  int
	Status deal.Status
}

type Result struct {
	Profile   string
	Applied   []Applied
	Unmatched []Skipped
}

// Import parses a remittance report and applies each line as a dated
// amendment. Lines that cannot be parsed, matched to a deal, or applied are
// reported in Unmatched; a storage failure aborts the import.
func (s *Service) Import(ctx context.Context, format Format, r io.Reader) (*Result, error) {
	batch, err := s.parser.Parse(format, r)
	if err != nil {
		return nil, err
	}

	deals, err := s.tracker.ListDeals(ctx)
	if err != nil {
		return nil, fmt.Errorf("list deals: %w", err)
	}

	res := &Result{
		Profile:   batch.Profile,
		Unmatched: batch.Skipped,
	}

	resolve := newResolver(deals, s.aliases)

	for _, rem := range batch.Remittances {
		id, reason, err := resolve.resolve(ctx, rem.Deal)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rem.Row, err)
		}

		if reason != "" {
			res.Unmatched = append(res.Unmatched, Skipped{Row: rem.Row, Reason: reason, Deal: rem.Deal})
			continue
		}

		amended, err := s.tracker.AmendByDate(ctx, id, tracker.AmendByDateParams{
			Date:   rem.Date,
			Status: rem.Status,
			Amount: rem.Amount,
		})
		if errors.Is(err, deal.ErrInvalidAmendment) || errors.Is(err, deal.ErrUnknownDeal) {
			res.Unmatched = append(res.Unmatched, Skipped{Row: rem.Row, Reason: err.Error(), Deal: rem.Deal})
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rem.Row, err)
		}

		res.Applied = append(res.Applied, Applied{
			Row:    rem.Row,
			DealID: id,
			Index:  amended.Changed[0].Index,
			Status: rem.Status,
		})
	}

	slog.Info("remittance import finished",
		"profile", res.Profile,
		"applied", len(res.Applied),
		"unmatched", len(res.Unmatched),
	)

	return res, nil
}

type resolver struct {
	ids     map[uuid.UUID]bool
	names   map[string][]uuid.UUID
	aliases Aliases
}

// newResolver matches a reference against deal IDs first, then against
// business names ignoring case, then against learned aliases. A name shared
// by several deals is ambiguous and is not looked up as an alias.
func newResolver(deals []*deal.Deal, aliases Aliases) *resolver {
	r := &resolver{
		ids:     make(map[uuid.UUID]bool, len(deals)),
		names:   make(map[string][]uuid.UUID, len(deals)),
		aliases: aliases,
	}

	for _, d := range deals {
		r.ids[d.ID] = true
		key := strings.ToLower(strings.TrimSpace(d.BusinessName))
		r.names[key] = append(r.names[key], d.ID)
	}

	return r
}

// resolve normalises ref the way newResolver normalises business names.
func (r *resolver) resolve(ctx context.Context, ref string) (uuid.UUID, string, error) {
	ref = strings.TrimSpace(ref)

	if id, err := uuid.Parse(ref); err == nil {
		if r.ids[id] {
			return id, "", nil
		}

		return uuid.Nil, fmt.Sprintf("unknown deal %s", ref), nil
	}

	switch matches := r.names[strings.ToLower(ref)]; len(matches) {
	case 0:
	case 1:
		return matches[0], "", nil
	default:
		return uuid.Nil, fmt.Sprintf("deal name %q is ambiguous", ref), nil
	}

	if r.aliases != nil {
		id, err := r.aliases.Suggest(ctx, ref)
		if err != nil {
			return uuid.Nil, "", fmt.Errorf("matching alias: %w", err)
		}

		// Skip an alias whose deal is gone.
		if id != uuid.Nil && r.ids[id] {
			return id, "", nil
		}
	}

	return uuid.Nil, fmt.Sprintf("no deal named %q", ref), nil
}
