package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/syndic/internal/matching"
)

type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ matching.Repository = (*Store)(nil)

func New(db *sql.DB) *Store {
	return &Store{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// FindMatch lowercases both sides so the query behaves the same on SQLite and
// Postgres, which has no ILIKE counterpart in SQLite. Patterns are plain
// text, so LIKE wildcards in them are escaped.
func (s *Store) FindMatch(ctx context.Context, descriptor string) (uuid.UUID, error) {
	query := `
		SELECT deal_id
		FROM merchant_aliases
		WHERE LOWER($1) LIKE '%' || REPLACE(REPLACE(REPLACE(LOWER(pattern), '\', '\\'), '%', '\%'), '_', '\_') || '%' ESCAPE '\'
		ORDER BY LENGTH(pattern) DESC, created_at DESC, id DESC
		LIMIT 1
	`

	var dealID uuid.UUID

	err := s.db.QueryRowContext(ctx, query, descriptor).Scan(&dealID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, nil
		}

		return uuid.Nil, fmt.Errorf("finding match: %w", err)
	}

	return dealID, nil
}

func (s *Store) CreateAlias(ctx context.Context, alias *matching.Alias) error {
	createdAt := s.now()

	query := `
		INSERT INTO merchant_aliases (pattern, deal_id, created_at)
		VALUES ($1, $2, $3)
	`

	if _, err := s.db.ExecContext(ctx, query, alias.Pattern, alias.DealID, createdAt); err != nil {
		return fmt.Errorf("creating alias: %w", err)
	}

	alias.CreatedAt = createdAt

	return nil
}

func (s *Store) ListAliases(ctx context.Context, dealID uuid.UUID) ([]matching.Alias, error) {
	query := `
		SELECT pattern, deal_id, created_at
		FROM merchant_aliases
		WHERE deal_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, dealID)
	if err != nil {
		return nil, fmt.Errorf("listing aliases: %w", err)
	}
	defer rows.Close()

	var aliases []matching.Alias

	for rows.Next() {
		var a matching.Alias
		if err := rows.Scan(&a.Pattern, &a.DealID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning alias: %w", err)
		}

		aliases = append(aliases, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating alias rows: %w", err)
	}

	return aliases, nil
}

func (s *Store) DeleteForDeal(ctx context.Context, dealID uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM merchant_aliases WHERE deal_id = $1`, dealID); err != nil {
		return fmt.Errorf("deleting aliases: %w", err)
	}

	return nil
}
