package provider

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Common errors for provider operations
var (
	ErrProviderUnavailable   = errors.New("provider unavailable")
	ErrProviderNotConfigured = errors.New("provider not configured")
	ErrRateNotFound          = errors.New("rate not found")
	ErrInvalidRate           = errors.New("invalid exchange rate")
)

// RateInfo is a single historical rate: how many units of ToCurrency one unit
// of FromCurrency was worth on Date.
type RateInfo struct {
	FromCurrency string          `json:"from_currency"`
	ToCurrency   string          `json:"to_currency"`
	Rate         decimal.Decimal `json:"rate"`
	Date         civil.Date      `json:"date"`
	Provider     string          `json:"provider"`
	FetchedAt    time.Time       `json:"fetched_at"`
}

// HistoricalRateProvider looks up the rate for a currency pair on a given day.
type HistoricalRateProvider interface {
	// HistoricalRate returns the rate published for date. Implementations
	// return ErrRateNotFound when the day has no usable rate.
	HistoricalRate(ctx context.Context, date civil.Date, from, to string) (*RateInfo, error)

	// Name returns the provider's name for logging and identification.
	Name() string
}

// ConfigChecker is implemented by providers that need credentials before
// they can serve requests.
type ConfigChecker interface {
	IsConfigured() bool
}

// IsConfigured reports whether p is ready to serve lookups. Providers that do
// not implement ConfigChecker are assumed ready.
func IsConfigured(p HistoricalRateProvider) bool {
	if c, ok := p.(ConfigChecker); ok {
		return c.IsConfigured()
	}
	return true
}

// Validate checks that a rate is usable: present, positive and for the
// requested pair.
func (r *RateInfo) Validate(from, to string) error {
	if r == nil {
		return ErrRateNotFound
	}
	if !r.Rate.IsPositive() {
		return ErrInvalidRate
	}
	if r.FromCurrency != from || r.ToCurrency != to {
		return ErrInvalidRate
	}
	return nil
}
