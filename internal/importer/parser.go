package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	enc "github.com/MrJamesThe3rd/syndic/internal/encoding"
	"github.com/MrJamesThe3rd/syndic/internal/deal"
)

// Parser reads remittance reports and auto-detects their layout by matching
// column headers against known profiles.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(format Format, r io.Reader) (*Batch, error) {
	var (
		rows []record
		err  error
	)

	switch format {
	case FormatCSV:
		rows, err = readCSV(r)
	case FormatXLSX:
		rows, err = readXLSX(r)
	default:
		return nil, fmt.Errorf("%w: unknown format %s", ErrInvalidFile, format)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	profile, cols, headerIdx := detectProfile(rows)
	if profile == nil {
		return nil, fmt.Errorf("%w: expected Date, Deal and Status columns", ErrInvalidFile)
	}

	batch := parseRows(profile, cols, rows[headerIdx+1:])
	batch.Profile = profile.Name

	return batch, nil
}

// record is one row of the source file with the 1-based line it starts on.
// Line numbers come from the reader because blank CSV lines are dropped.
type record struct {
	line  int
	cells []string
}

func readCSV(r io.Reader) ([]record, error) {
	utf8r, _, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows []record

	for {
		cells, err := reader.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		line, _ := reader.FieldPos(0)
		rows = append(rows, record{line: line, cells: cells})
	}

	return rows, nil
}

// sniffDelimiter picks ';' when the first non-blank line has more semicolons
// than commas.
func sniffDelimiter(data []byte) rune {
	for line := range bytes.SplitSeq(data, []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
			return ';'
		}

		return ','
	}

	return ','
}

func readXLSX(r io.Reader) ([]record, error) {
	xl, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer xl.Close()

	cells, err := xl.GetRows(xl.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	// GetRows keeps empty rows in the middle of a sheet, so position is line.
	rows := make([]record, len(cells))
	for i, c := range cells {
		rows[i] = record{line: i + 1, cells: c}
	}

	return rows, nil
}

// colIndex maps lower-cased column names to their index in the row.
type colIndex map[string]int

func detectProfile(rows []record) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row.cells {
			name := strings.ToLower(strings.TrimSpace(cell))
			if name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// parseRows turns the records below the header into remittances.
func parseRows(p *Profile, cols colIndex, rows []record) *Batch {
	batch := &Batch{}

	amountIdx, hasAmount := cols[p.AmountCol]

	for _, rec := range rows {
		row, rowNum := rec.cells, rec.line

		if blank(row) {
			continue
		}

		skip := func(format string, args ...any) {
			batch.Skipped = append(batch.Skipped, Skipped{Row: rowNum, Reason: fmt.Sprintf(format, args...)})
		}

		date, ok := parseDate(cellValue(row, cols[p.DateCol]), p.DateLayouts)
		if !ok {
			skip("invalid date %q", cellValue(row, cols[p.DateCol]))
			continue
		}

		ref := cellValue(row, cols[p.DealCol])
		if ref == "" {
			skip("missing deal")
			continue
		}

		status, ok := parseStatus(cellValue(row, cols[p.StatusCol]))
		if !ok {
			skip("unknown status %q", cellValue(row, cols[p.StatusCol]))
			continue
		}

		rem := Remittance{Row: rowNum, Deal: ref, Date: date, Status: status}

		if s := cellValue(row, amountIdx); hasAmount && s != "" && status == deal.StatusAdjusted {
			amount, err := parseAmount(s)
			if err != nil {
				skip("invalid amount %q", s)
				continue
			}

			rem.Amount = &amount
		}

		batch.Remittances = append(batch.Remittances, rem)
	}

	return batch
}

func parseDate(s string, layouts []string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// cellValue safely gets a trimmed cell value from a row.
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}

	return true
}
