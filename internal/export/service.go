package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/syndic/internal/balance"
	"github.com/MrJamesThe3rd/syndic/internal/present"
)

// Book is the read side of tracker.Service the exports need.
type Book interface {
	Book(ctx context.Context, dealID uuid.UUID) (*balance.Book, error)
	Books(ctx context.Context) ([]balance.Book, error)
	Portfolio(ctx context.Context) ([]balance.InvestorSummary, error)
	InvestorSummary(ctx context.Context, name string) (balance.InvestorSummary, error)
}

// Service renders the book as spreadsheets, CSV and plain text.
type Service struct {
	book Book
}

// NewService creates a new export Service.
func NewService(book Book) *Service {
	return &Service{book: book}
}

const (
	sheetDeals     = "Deals"
	sheetInvestors = "Investors"
	sheetPayments  = "Payments"
)

var (
	dealHeader = []any{
		"Deal ID", "Business", "Start", "Principal", "Factor Rate", "Payback", "Term (days)",
		"Original Term", "Payments Made", "Progress", "Collected", "Outstanding", "Defaulted",
	}
	investorHeader = []any{"Investor", "Deals", "Funded", "Expected Return", "Drawn", "Available"}
	paymentHeader  = []any{"Deal ID", "Business", "Index", "Date", "Amount", "Status"}
)

// Workbook writes the whole book as an XLSX file with one sheet each for
// deals, investors and payments.
func (s *Service) Workbook(ctx context.Context, w io.Writer) error {
	books, err := s.book.Books(ctx)
	if err != nil {
		return fmt.Errorf("loading deals: %w", err)
	}

	portfolio, err := s.book.Portfolio(ctx)
	if err != nil {
		return fmt.Errorf("loading portfolio: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetDeals); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	for _, name := range []string{sheetInvestors, sheetPayments} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("creating sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	sheets := map[string][][]any{
		sheetDeals:     {dealHeader},
		sheetInvestors: {investorHeader},
		sheetPayments:  {paymentHeader},
	}

	for _, b := range books {
		sum := balance.SummarizeDeal(b.Deal, b.Schedule)
		id := b.Deal.ID.String()

		sheets[sheetDeals] = append(sheets[sheetDeals], []any{
			id, b.Deal.BusinessName, present.Date(b.Deal.StartDate),
			balance.Round2(b.Deal.Principal), b.Deal.FactorRate, balance.Round2(b.Deal.PaybackTotal),
			b.Deal.TermDays, b.Deal.OriginalTermDays, sum.PaymentsMade, balance.Round2(sum.Progress),
			balance.Round2(sum.TotalCollected), balance.Round2(sum.Outstanding), b.Deal.Defaulted,
		})

		for _, p := range b.Schedule {
			sheets[sheetPayments] = append(sheets[sheetPayments], []any{
				id, b.Deal.BusinessName, p.Index, present.Date(p.Date), balance.Round2(p.Amount), string(p.Status),
			})
		}
	}

	for _, inv := range portfolio {
		sheets[sheetInvestors] = append(sheets[sheetInvestors], []any{
			inv.Investor, len(inv.Positions), balance.Round2(inv.Funded), balance.Round2(inv.ExpectedReturn),
			balance.Round2(inv.Drawn), balance.Round2(inv.Available),
		})
	}

	for _, name := range []string{sheetDeals, sheetInvestors, sheetPayments} {
		if err := writeRows(f, name, sheets[name]); err != nil {
			return err
		}

		if err := f.SetRowStyle(name, 1, 1, bold); err != nil {
			return fmt.Errorf("styling %s header: %w", name, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}

	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}

		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+1, err)
		}
	}

	return nil
}

// ScheduleCSV writes one deal's schedule with its stored statuses.
func (s *Service) ScheduleCSV(ctx context.Context, dealID uuid.UUID, w io.Writer) error {
	b, err := s.book.Book(ctx, dealID)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Index", "Date", "Amount", "Status"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, p := range b.Schedule {
		record := []string{
			strconv.Itoa(p.Index),
			present.Date(p.Date),
			strconv.FormatFloat(balance.Round2(p.Amount), 'f', 2, 64),
			string(p.Status),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing payment %d: %w", p.Index, err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// Statement renders an investor's positions and totals as plain text. The
// figures are always current; asOf only dates the heading.
func (s *Service) Statement(ctx context.Context, investor string, asOf time.Time) (string, error) {
	sum, err := s.book.InvestorSummary(ctx, investor)
	if err != nil {
		return "", err
	}

	return FormatStatement(sum, asOf), nil
}

// FormatStatement builds the statement text for an already computed summary.
func FormatStatement(sum balance.InvestorSummary, asOf time.Time) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Statement for %s as of %s\n\n", sum.Investor, present.Date(asOf))

	if len(sum.Positions) == 0 {
		sb.WriteString("No positions.\n")
	}

	for _, p := range sum.Positions {
		flag := ""
		if p.Defaulted {
			flag = " | DEFAULTED"
		}

		fmt.Fprintf(&sb, "* %s | %s | funded %s | expected %s | drawn %s | available %s | %s collected%s\n",
			p.BusinessName,
			present.Percent(p.Percent),
			present.Money(p.Funded),
			present.Money(p.ExpectedReturn),
			present.Money(p.Drawn),
			present.Money(p.Available),
			present.Progress(p.Progress),
			flag,
		)
	}

	fmt.Fprintf(&sb, "\nTotal funded %s | expected %s | drawn %s | available %s\n",
		present.Money(sum.Funded),
		present.Money(sum.ExpectedReturn),
		present.Money(sum.Drawn),
		present.Money(sum.Available),
	)

	return sb.String()
}

// Filename builds a download name such as 20250101_Green_Cafe.csv.
func Filename(date time.Time, desc, ext string) string {
	safe := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}

		return '_'
	}, desc)

	return fmt.Sprintf("%s_%s%s", date.Format("20060102"), safe, ext)
}
