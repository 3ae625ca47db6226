package normalize

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// amountSign records whether a cell carried an explicit sign marker.
type amountSign int

const (
	signNone amountSign = iota
	signNegative
	signPositive
)

// parseAmount coerces a statement cell to a non-negative value, reporting any
// explicit sign separately. Handles currency markers, thousands separators,
// parenthesized negatives and Cr/Dr suffixes.
func parseAmount(cell string) (float64, amountSign, error) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, signNone, fmt.Errorf("empty amount cell")
	}

	sign := signNone

	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		sign = signNegative
		s = s[1 : len(s)-1]
	}

	lower := strings.ToLower(s)
	switch {
	case strings.HasSuffix(lower, "dr"):
		sign = signNegative
		s = s[:len(s)-2]
	case strings.HasSuffix(lower, "cr"):
		sign = signPositive
		s = s[:len(s)-2]
	}

	for _, marker := range []string{"INR", "inr", "Rs.", "RS.", "Rs", "rs", "₹"} {
		s = strings.ReplaceAll(s, marker, "")
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "-") {
		sign = signNegative
		s = s[1:]
	} else if strings.HasPrefix(s, "+") {
		sign = signPositive
		s = s[1:]
	}
	s = strings.TrimSpace(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, signNone, fmt.Errorf("unparseable amount %q: %w", cell, err)
	}

	if d.IsNegative() {
		sign = signNegative
		d = d.Abs()
	}

	value, _ := d.Round(2).Float64()
	return value, sign, nil
}
