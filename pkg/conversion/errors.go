package conversion

import (
	"errors"
	"fmt"

	"cloud.google.com/go/civil"

	"github.com/amirasaad/tem/pkg/provider"
)

var (
	// ErrNotApplicable is returned for home currency requests; nothing is resolved.
	ErrNotApplicable = errors.New("conversion not applicable for base currency")
	// ErrInvalidDate is returned for dates that are not YYYY-MM-DD calendar dates.
	ErrInvalidDate = errors.New("invalid date")
	// ErrInvalidCurrency is returned when the currency is not a 3-letter code.
	ErrInvalidCurrency = errors.New("invalid currency code")
	// ErrFutureDateRejected is returned for transaction dates after today.
	ErrFutureDateRejected = errors.New("future date rejected")
	// ErrDateTooOld is returned for transaction dates outside the look-back window.
	ErrDateTooOld = errors.New("date too old")
	// ErrNoRateFound is returned when every day in the window lacked a usable rate.
	ErrNoRateFound = errors.New("no rate found")
	// ErrProviderNotConfigured is returned when the rate provider has no credentials.
	ErrProviderNotConfigured = provider.ErrProviderNotConfigured
	// ErrInvalidManualRate marks a typed rate that is not a positive number.
	ErrInvalidManualRate = errors.New("invalid manual rate")
)

// FailureKind classifies the window-level failures surfaced to the user.
type FailureKind int

const (
	KindFutureDate FailureKind = iota + 1
	KindDateTooOld
	KindNoRate
	KindNotConfigured
)

func (k FailureKind) String() string {
	switch k {
	case KindFutureDate:
		return "future_date_rejected"
	case KindDateTooOld:
		return "date_too_old"
	case KindNoRate:
		return "no_rate_found"
	case KindNotConfigured:
		return "provider_not_configured"
	default:
		return "unknown"
	}
}

// ResolveError is a terminal resolution failure. It unwraps to the matching
// sentinel so callers can use errors.Is.
type ResolveError struct {
	Kind     FailureKind
	Date     civil.Date
	Currency string
	Attempts int
	message  string
}

func newResolveError(kind FailureKind, date civil.Date, currency string, window Window) *ResolveError {
	return &ResolveError{
		Kind:     kind,
		Date:     date,
		Currency: currency,
		message:  failureMessage(kind, window),
	}
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolve %s rate for %s: %s", e.Currency, e.Date, e.Unwrap())
}

func (e *ResolveError) Unwrap() error {
	switch e.Kind {
	case KindFutureDate:
		return ErrFutureDateRejected
	case KindDateTooOld:
		return ErrDateTooOld
	case KindNotConfigured:
		return ErrProviderNotConfigured
	default:
		return ErrNoRateFound
	}
}

// Message is the status line shown next to the exchange rate field.
func (e *ResolveError) Message() string {
	return e.message
}

// LookupError is a single day's failed lookup. The resolver absorbs it and
// moves on to the previous day.
type LookupError struct {
	Date civil.Date
	Err  error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("lookup %s: %v", e.Date, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}
