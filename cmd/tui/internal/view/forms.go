package view

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// dealForm holds the new-deal inputs. It lives behind a pointer so the huh
// bindings survive bubbletea's value-copied models.
type dealForm struct {
	name      string
	principal string
	factor    string
	term      string
	start     string
}

type sharesForm struct {
	shares string
}

type adjustForm struct {
	amount string
	extend string
}

type investorForm struct {
	name string
}

type aliasForm struct {
	pattern string
	dealID  uuid.UUID
}

func validateNumber(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("enter a number")
	}

	return nil
}

func validateInt(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	if _, err := strconv.Atoi(strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("enter a whole number")
	}

	return nil
}

func validateDate(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	if _, err := time.Parse(time.DateOnly, strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("use YYYY-MM-DD")
	}

	return nil
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return v
}

func parseInt(s string) int {
	v, _ := strconv.Atoi(strings.TrimSpace(s))
	return v
}

// parseShares reads "albert=40, jacobo=60" into a share map.
func parseShares(s string) (map[string]float64, error) {
	shares := make(map[string]float64)

	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		name, pct, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("%q: use name=percent", part)
		}

		v, err := strconv.ParseFloat(strings.TrimSpace(pct), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%q: percent must be a number", part)
		}

		shares[strings.TrimSpace(name)] += v
	}

	if len(shares) == 0 {
		return nil, fmt.Errorf("enter at least one share")
	}

	return shares, nil
}
