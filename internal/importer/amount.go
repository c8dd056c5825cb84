package importer

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parseAmount reads "1,490.00", "1.490,00", "745" or "$745.50". When both
// separators appear the last one is the decimal mark; a lone comma followed
// by one or two digits is a decimal comma.
func parseAmount(s string) (float64, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimLeft(clean, "$€£ ")
	clean = strings.ReplaceAll(clean, " ", "")

	dot := strings.LastIndex(clean, ".")
	comma := strings.LastIndex(clean, ",")

	switch {
	case dot >= 0 && comma >= 0 && comma > dot:
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	case dot >= 0 && comma >= 0:
		clean = strings.ReplaceAll(clean, ",", "")
	case comma >= 0 && len(clean)-comma-1 <= 2:
		clean = strings.ReplaceAll(clean, ",", ".")
	case comma >= 0:
		clean = strings.ReplaceAll(clean, ",", "")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, err
	}

	return d.Round(2).InexactFloat64(), nil
}
