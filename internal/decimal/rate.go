package decimal

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Zero is decimal zero
var Zero = decimal.Zero

var hundred = decimal.NewFromInt(100)

// FromString parses decimal from string
func FromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// ParseRate parses a rate column. Blank columns are zero.
func ParseRate(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, nil
	}
	return decimal.NewFromString(s)
}

// FromFloat creates decimal from a float rate as returned in JSON payloads
func FromFloat(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// ApplyRate computes tax on amount at a fractional rate, rounded to cents
func ApplyRate(amount, rate decimal.Decimal) decimal.Decimal {
	if rate.IsZero() {
		return Zero
	}
	return RoundCents(amount.Mul(rate))
}

// Percent renders a fractional rate as a percentage: 0.0725 -> 7.25
func Percent(rate decimal.Decimal) decimal.Decimal {
	return rate.Mul(hundred)
}

// Sum sums a slice of decimals
func Sum(values []decimal.Decimal) decimal.Decimal {
	result := Zero
	for _, v := range values {
		result = result.Add(v)
	}
	return result
}

// IsNonNegative returns true if decimal is >= zero
func IsNonNegative(d decimal.Decimal) bool {
	return d.GreaterThanOrEqual(Zero)
}

// RoundCents rounds to two decimal places
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
