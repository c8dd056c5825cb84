// Package matching maps processor descriptors such as "GREEN CAFE LLC #0412"
// onto the deal they settle, so remittance rows that do not carry the
// business name verbatim can still be applied.
package matching

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidAlias = errors.New("invalid alias")

// Alias says that any descriptor containing Pattern, case-insensitively,
// belongs to DealID.
type Alias struct {
	Pattern   string
	DealID    uuid.UUID
	CreatedAt time.Time
}

type Repository interface {
	// FindMatch returns the deal of the longest pattern contained in
	// descriptor, newest first on ties. uuid.Nil means no alias matched.
	FindMatch(ctx context.Context, descriptor string) (uuid.UUID, error)
	CreateAlias(ctx context.Context, alias *Alias) error
	ListAliases(ctx context.Context, dealID uuid.UUID) ([]Alias, error)
	DeleteForDeal(ctx context.Context, dealID uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest looks up the deal a descriptor belongs to. It returns uuid.Nil
// when nothing matches.
func (s *Service) Suggest(ctx context.Context, descriptor string) (uuid.UUID, error) {
	descriptor = strings.TrimSpace(descriptor)
	if descriptor == "" {
		return uuid.Nil, nil
	}

	return s.repo.FindMatch(ctx, descriptor)
}

// Learn remembers that descriptors containing pattern belong to dealID.
func (s *Service) Learn(ctx context.Context, pattern string, dealID uuid.UUID) (*Alias, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil, fmt.Errorf("%w: pattern is required", ErrInvalidAlias)
	}

	if dealID == uuid.Nil {
		return nil, fmt.Errorf("%w: deal is required", ErrInvalidAlias)
	}

	alias := &Alias{Pattern: pattern, DealID: dealID}
	if err := s.repo.CreateAlias(ctx, alias); err != nil {
		return nil, err
	}

	return alias, nil
}

func (s *Service) Aliases(ctx context.Context, dealID uuid.UUID) ([]Alias, error) {
	return s.repo.ListAliases(ctx, dealID)
}

// Forget drops every alias of dealID. It is registered as a deal deletion
// hook so descriptors never resolve to a deal that is gone.
func (s *Service) Forget(ctx context.Context, dealID uuid.UUID) error {
	return s.repo.DeleteForDeal(ctx, dealID)
}
