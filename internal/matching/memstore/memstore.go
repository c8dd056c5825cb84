package memstore

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/syndic/internal/matching"
)

type Store struct {
	mu      sync.RWMutex
	aliases []matching.Alias
	now     func() time.Time
}

var _ matching.Repository = (*Store)(nil)

func New() *Store {
	return &Store{now: func() time.Time { return time.Now().UTC() }}
}

func (s *Store) FindMatch(_ context.Context, descriptor string) (uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	descriptor = strings.ToLower(descriptor)

	best := -1

	// Later aliases win ties, matching the SQL ordering.
	for i, a := range s.aliases {
		if !strings.Contains(descriptor, strings.ToLower(a.Pattern)) {
			continue
		}

		// Rune counts, as SQL LENGTH counts characters.
		if best < 0 || utf8.RuneCountInString(a.Pattern) >= utf8.RuneCountInString(s.aliases[best].Pattern) {
			best = i
		}
	}

	if best < 0 {
		return uuid.Nil, nil
	}

	return s.aliases[best].DealID, nil
}

func (s *Store) CreateAlias(_ context.Context, alias *matching.Alias) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	alias.CreatedAt = s.now()
	s.aliases = append(s.aliases, *alias)

	return nil
}

func (s *Store) ListAliases(_ context.Context, dealID uuid.UUID) ([]matching.Alias, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []matching.Alias

	for _, a := range s.aliases {
		if a.DealID == dealID {
			out = append(out, a)
		}
	}

	return out, nil
}

func (s *Store) DeleteForDeal(_ context.Context, dealID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.aliases = slices.DeleteFunc(s.aliases, func(a matching.Alias) bool { return a.DealID == dealID })

	return nil
}
