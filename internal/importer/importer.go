package importer

import (
	"errors"
	"time"

	"github.com/MrJamesThe3rd/syndic/internal/deal"
)

// ErrInvalidFile is returned when an upload cannot be read as a remittance report.
var ErrInvalidFile = errors.New("invalid remittance file")

// Format is the container of a remittance upload.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Remittance is one parsed line of a processor remittance report.
type Remittance struct {
	// Row is the 1-based line in the source file.
	Row int
	// Deal is either a deal ID or a business name.
	Deal   string
	Date   time.Time
	Status deal.Status
	// Amount is only set when the report carries one for an adjusted entry.
	Amount *float64
}

// Skipped is a line that could not be turned into an amendment.
type Skipped struct {
	Row    int
	Reason string
	// Deal is the reference the line carried, when it got far enough to be
	// matched. A descriptor here can be learned as an alias.
	Deal string
}

// Batch is the outcome of parsing a report.
type Batch struct {
	Profile     string
	Remittances []Remittance
	Skipped     []Skipped
}
