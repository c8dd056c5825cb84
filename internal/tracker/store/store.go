package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/syndic/internal/database"
	"github.com/MrJamesThe3rd/syndic/internal/deal"
	"github.com/MrJamesThe3rd/syndic/internal/ledger"
	"github.com/MrJamesThe3rd/syndic/internal/tracker"
)

type Store struct {
	db      *sql.DB
	dialect database.Dialect
	now     func() time.Time
}

var _ tracker.Repository = (*Store)(nil)

func New(db *sql.DB, dialect database.Dialect) *Store {
	return &Store{
		db:      db,
		dialect: dialect,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectDealColumns = `
	id, business_name, principal, factor_rate, term_days, original_term_days,
	start_date, payback_total, defaulted, created_at, updated_at
`

// scanDeal expects the columns of selectDealColumns, in order.
func scanDeal(s scanner) (*deal.Deal, error) {
	var d deal.Deal

	if err := s.Scan(
		&d.ID, &d.BusinessName, &d.Principal, &d.FactorRate, &d.TermDays, &d.OriginalTermDays,
		&d.StartDate, &d.PaybackTotal, &d.Defaulted, &d.CreatedAt, &d.UpdatedAt,
	); err != nil {
		return nil, err
	}

	d.StartDate = deal.DateOnly(d.StartDate)

	return &d, nil
}

func scanPayment(s scanner) (deal.Payment, error) {
	var p deal.Payment

	var status string

	if err := s.Scan(&p.DealID, &p.Index, &p.Date, &p.Amount, &status); err != nil {
		return deal.Payment{}, err
	}

	p.Date = deal.DateOnly(p.Date)
	p.Status = deal.Status(status)

	return p, nil
}

func scanAssignment(s scanner) (ledger.Assignment, error) {
	var a ledger.Assignment
	if err := s.Scan(&a.DealID, &a.Investor, &a.Percent); err != nil {
		return ledger.Assignment{}, err
	}

	return a, nil
}

func getDeal(ctx context.Context, q querier, id uuid.UUID) (*deal.Deal, error) {
	query := `SELECT ` + selectDealColumns + ` FROM deals WHERE id = $1`

	d, err := scanDeal(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, deal.ErrUnknownDeal
		}

		return nil, fmt.Errorf("getting deal: %w", err)
	}

	return d, nil
}

func listPayments(ctx context.Context, q querier, dealID uuid.UUID) ([]deal.Payment, error) {
	query := `
		SELECT deal_id, idx, date, amount, status
		FROM payments
		WHERE deal_id = $1
		ORDER BY idx ASC`

	rows, err := q.QueryContext(ctx, query, dealID)
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}
	defer rows.Close()

	var schedule []deal.Payment

	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning payment: %w", err)
		}

		schedule = append(schedule, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating payment rows: %w", err)
	}

	return schedule, nil
}

func dealExists(ctx context.Context, q querier, id uuid.UUID) error {
	var one int

	err := q.QueryRowContext(ctx, `SELECT 1 FROM deals WHERE id = $1`, id).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return deal.ErrUnknownDeal
		}

		return fmt.Errorf("checking deal: %w", err)
	}

	return nil
}

func investorExists(ctx context.Context, q querier, name string) error {
	var one int

	err := q.QueryRowContext(ctx, `SELECT 1 FROM investors WHERE name = $1`, name).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", ledger.ErrUnknownInvestor, name)
		}

		return fmt.Errorf("checking investor: %w", err)
	}

	return nil
}

func (s *Store) CreateDeal(ctx context.Context, d *deal.Deal, schedule []deal.Payment) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	createdAt := s.now()

	query := `
		INSERT INTO deals (id, business_name, principal, factor_rate, term_days, original_term_days,
			start_date, payback_total, defaulted, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = dbTx.ExecContext(ctx, query,
		d.ID,
		d.BusinessName,
		d.Principal,
		d.FactorRate,
		d.TermDays,
		d.OriginalTermDays,
		d.StartDate,
		d.PaybackTotal,
		d.Defaulted,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("creating deal: %w", err)
	}

	if err := upsertPayments(ctx, dbTx, schedule); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	d.CreatedAt = createdAt

	return nil
}

func upsertPayments(ctx context.Context, q querier, payments []deal.Payment) error {
	query := `
		INSERT INTO payments (deal_id, idx, date, amount, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (deal_id, idx) DO UPDATE
		SET date = excluded.date, amount = excluded.amount, status = excluded.status
	`

	for _, p := range payments {
		if _, err := q.ExecContext(ctx, query, p.DealID, p.Index, p.Date, p.Amount, string(p.Status)); err != nil {
			return fmt.Errorf("saving payment %d: %w", p.Index, err)
		}
	}

	return nil
}

func (s *Store) GetDeal(ctx context.Context, id uuid.UUID) (*deal.Deal, error) {
	return getDeal(ctx, s.db, id)
}

func (s *Store) ListDeals(ctx context.Context) ([]*deal.Deal, error) {
	query := `SELECT ` + selectDealColumns + ` FROM deals ORDER BY created_at ASC, business_name ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing deals: %w", err)
	}
	defer rows.Close()

	var deals []*deal.Deal

	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning deal: %w", err)
		}

		deals = append(deals, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating deal rows: %w", err)
	}

	return deals, nil
}

func (s *Store) Schedule(ctx context.Context, dealID uuid.UUID) ([]deal.Payment, error) {
	if err := dealExists(ctx, s.db, dealID); err != nil {
		return nil, err
	}

	return listPayments(ctx, s.db, dealID)
}

func (s *Store) SetDefaulted(ctx context.Context, id uuid.UUID, defaulted bool) error {
	query := `UPDATE deals SET defaulted = $1, updated_at = $2 WHERE id = $3`

	res, err := s.db.ExecContext(ctx, query, defaulted, s.now(), id)
	if err != nil {
		return fmt.Errorf("updating defaulted flag: %w", err)
	}

	return affectedOrErr(res, deal.ErrUnknownDeal)
}

func affectedOrErr(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}

	if n == 0 {
		return notFound
	}

	return nil
}

// DeleteDeal removes ledger rows, payments and aliases explicitly so the cascade does
// not depend on the database enforcing foreign keys.
func (s *Store) DeleteDeal(ctx context.Context, id uuid.UUID) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	if err := s.lock(ctx, dbTx, "deal", id.String()); err != nil {
		return err
	}

	if _, err := dbTx.ExecContext(ctx, `DELETE FROM assignments WHERE deal_id = $1`, id); err != nil {
		return fmt.Errorf("deleting assignments: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, `DELETE FROM payments WHERE deal_id = $1`, id); err != nil {
		return fmt.Errorf("deleting payments: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, `DELETE FROM merchant_aliases WHERE deal_id = $1`, id); err != nil {
		return fmt.Errorf("deleting aliases: %w", err)
	}

	res, err := dbTx.ExecContext(ctx, `DELETE FROM deals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting deal: %w", err)
	}

	if err := affectedOrErr(res, deal.ErrUnknownDeal); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) CreateInvestor(ctx context.Context, inv *ledger.Investor) error {
	createdAt := s.now()

	query := `
		INSERT INTO investors (name, created_at)
		VALUES ($1, $2)
		ON CONFLICT (name) DO NOTHING
	`

	res, err := s.db.ExecContext(ctx, query, inv.Name, createdAt)
	if err != nil {
		return fmt.Errorf("creating investor: %w", err)
	}

	if err := affectedOrErr(res, fmt.Errorf("%w: %s", ledger.ErrInvestorExists, inv.Name)); err != nil {
		return err
	}

	inv.CreatedAt = createdAt

	return nil
}

func (s *Store) GetInvestor(ctx context.Context, name string) (*ledger.Investor, error) {
	var inv ledger.Investor

	err := s.db.QueryRowContext(ctx, `SELECT name, created_at FROM investors WHERE name = $1`, name).
		Scan(&inv.Name, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrUnknownInvestor
		}

		return nil, fmt.Errorf("getting investor: %w", err)
	}

	return &inv, nil
}

func (s *Store) ListInvestors(ctx context.Context) ([]*ledger.Investor, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, created_at FROM investors ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing investors: %w", err)
	}
	defer rows.Close()

	var investors []*ledger.Investor

	for rows.Next() {
		var inv ledger.Investor
		if err := rows.Scan(&inv.Name, &inv.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning investor: %w", err)
		}

		investors = append(investors, &inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating investor rows: %w", err)
	}

	return investors, nil
}

func (s *Store) DeleteInvestor(ctx context.Context, name string) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.ExecContext(ctx, `DELETE FROM assignments WHERE investor = $1`, name); err != nil {
		return fmt.Errorf("deleting assignments: %w", err)
	}

	res, err := dbTx.ExecContext(ctx, `DELETE FROM investors WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("deleting investor: %w", err)
	}

	if err := affectedOrErr(res, ledger.ErrUnknownInvestor); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) AddAssignments(ctx context.Context, dealID uuid.UUID, rows []ledger.Assignment) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	if err := s.lock(ctx, dbTx, "ledger", dealID.String()); err != nil {
		return err
	}

	if err := dealExists(ctx, dbTx, dealID); err != nil {
		return err
	}

	query := `INSERT INTO assignments (deal_id, investor, percent) VALUES ($1, $2, $3)`

	for _, a := range rows {
		if err := investorExists(ctx, dbTx, a.Investor); err != nil {
			return err
		}

		if _, err := dbTx.ExecContext(ctx, query, dealID, a.Investor, a.Percent); err != nil {
			return fmt.Errorf("creating assignment: %w", err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) AssignmentsForDeal(ctx context.Context, dealID uuid.UUID) ([]ledger.Assignment, error) {
	if err := dealExists(ctx, s.db, dealID); err != nil {
		return nil, err
	}

	return s.listAssignments(ctx, `WHERE deal_id = $1`, dealID)
}

func (s *Store) AssignmentsForInvestor(ctx context.Context, name string) ([]ledger.Assignment, error) {
	return s.listAssignments(ctx, `WHERE investor = $1`, name)
}

func (s *Store) listAssignments(ctx context.Context, where string, arg any) ([]ledger.Assignment, error) {
	query := `SELECT deal_id, investor, percent FROM assignments ` + where + ` ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("listing assignments: %w", err)
	}
	defer rows.Close()

	var out []ledger.Assignment

	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning assignment: %w", err)
		}

		out = append(out, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating assignment rows: %w", err)
	}

	return out, nil
}

func lockKey(scope, id string) int64 {
	h := fnv.New64a()
	h.Write([]byte(scope))
	h.Write([]byte{0})
	h.Write([]byte(id))

	return int64(h.Sum64())
}

// lock takes a transaction-scoped advisory lock on Postgres. SQLite runs on a
// single connection, so transactions are already serialized there.
func (s *Store) lock(ctx context.Context, dbTx *sql.Tx, scope, id string) error {
	if s.dialect != database.Postgres {
		return nil
	}

	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", lockKey(scope, id)); err != nil {
		return fmt.Errorf("acquiring %s lock: %w", scope, err)
	}

	return nil
}

type amendTx struct {
	tx     *sql.Tx
	dealID uuid.UUID
	now    func() time.Time
}

func (s *Store) BeginAmend(ctx context.Context, dealID uuid.UUID) (tracker.AmendTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning amend tx: %w", err)
	}

	if err := s.lock(ctx, dbTx, "deal", dealID.String()); err != nil {
		dbTx.Rollback()
		return nil, err
	}

	if err := dealExists(ctx, dbTx, dealID); err != nil {
		dbTx.Rollback()
		return nil, err
	}

	return &amendTx{tx: dbTx, dealID: dealID, now: s.now}, nil
}

func (atx *amendTx) Commit() error { return atx.tx.Commit() }

func (atx *amendTx) Rollback() error {
	if err := atx.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}

	return nil
}

func (atx *amendTx) Load(ctx context.Context) (*deal.Deal, []deal.Payment, error) {
	d, err := getDeal(ctx, atx.tx, atx.dealID)
	if err != nil {
		return nil, nil, err
	}

	schedule, err := listPayments(ctx, atx.tx, atx.dealID)
	if err != nil {
		return nil, nil, err
	}

	return d, schedule, nil
}

func (atx *amendTx) Save(ctx context.Context, d *deal.Deal, changed []deal.Payment) error {
	query := `
		UPDATE deals
		SET term_days = $1, payback_total = $2, updated_at = $3
		WHERE id = $4
	`

	if _, err := atx.tx.ExecContext(ctx, query, d.TermDays, d.PaybackTotal, atx.now(), atx.dealID); err != nil {
		return fmt.Errorf("updating deal: %w", err)
	}

	return upsertPayments(ctx, atx.tx, changed)
}
