package postgres

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// parseNumeric reads a NUMERIC column selected as text.
func parseNumeric(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty numeric string")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse numeric %q: %w", s, err)
	}
	return d, nil
}

// formatNumeric renders d for a NUMERIC parameter without losing precision.
func formatNumeric(d decimal.Decimal) string {
	return d.String()
}
