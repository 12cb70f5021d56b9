package conversion

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Convert multiplies a foreign amount by the resolved rate. No rounding is
// applied. The second result is false when either input is not positive, in
// which case there is nothing to display.
func Convert(amount, rate decimal.Decimal) (decimal.Decimal, bool) {
	if !amount.IsPositive() || !rate.IsPositive() {
		return decimal.Zero, false
	}
	return amount.Mul(rate), true
}

// ParseAmount parses user input such as "100" or "83.50". Empty, non-numeric
// and non-positive input yields false.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

// AmountFromFloat converts a JSON number, rejecting NaN, infinities and
// non-positive values.
func AmountFromFloat(f float64) (decimal.Decimal, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(f), true
}

// ValidateManualRate checks a rate typed by the user.
func ValidateManualRate(s string) (decimal.Decimal, error) {
	rate, ok := ParseAmount(s)
	if !ok {
		return decimal.Zero, ErrInvalidManualRate
	}
	return rate, nil
}
