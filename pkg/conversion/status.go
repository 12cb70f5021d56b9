package conversion

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

const (
	fallbackPrefix = "Rate from "
	manualPrompt   = "Please enter manually."
)

// Status lines shown beside the exchange rate field.
const (
	StatusFetching      = "Fetching rate..."
	StatusFutureDate    = "Cannot fetch rates for future dates."
	StatusNoRate        = "No recent rate found. Please enter manually."
	StatusNotConfigured = "Currency API key not configured. Please enter manually."
)

// FallbackMessage reports that the rate was sourced from an earlier day.
func FallbackMessage(rateDate civil.Date) string {
	return fallbackPrefix + rateDate.String()
}

// TooOldMessage names the configured look-back limit.
func TooOldMessage(window Window) string {
	return fmt.Sprintf("Cannot fetch rates older than %d days. Please enter manually.", window.days())
}

// PreviewMessage is the approximate INR value shown once a conversion exists.
func PreviewMessage(converted decimal.Decimal) string {
	return "≈ " + FormatINR(converted)
}

// HoldsOverPreview reports whether a status line stays in place once a
// conversion exists. Fallback notices and prompts to enter a rate manually do;
// anything else gives way to the converted preview.
func HoldsOverPreview(status string) bool {
	return strings.HasPrefix(status, fallbackPrefix) || strings.HasSuffix(status, manualPrompt)
}

func failureMessage(kind FailureKind, window Window) string {
	switch kind {
	case KindFutureDate:
		return StatusFutureDate
	case KindDateTooOld:
		return TooOldMessage(window)
	case KindNotConfigured:
		return StatusNotConfigured
	default:
		return StatusNoRate
	}
}

// FormatINR renders an amount as rupees with Indian digit grouping and two
// decimal places, e.g. ₹12,34,567.89.
func FormatINR(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}
	whole, frac, _ := strings.Cut(fixed, ".")
	return sign + "₹" + groupIndian(whole) + "." + frac
}

// groupIndian groups the last three digits, then every two: 1234567 -> 12,34,567.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(append(parts, tail), ",")
}
