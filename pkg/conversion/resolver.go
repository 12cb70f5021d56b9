package conversion

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/amirasaad/tem/pkg/provider"
)

// BaseCurrency is the home currency every expense is reported in.
const BaseCurrency = "INR"

var currencyCodePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Resolution is a successfully resolved rate.
type Resolution struct {
	Currency      string          `json:"currency"`
	Rate          decimal.Decimal `json:"rate"`
	RateDate      civil.Date      `json:"rateDate"`
	RequestedDate civil.Date      `json:"requestedDate"`
	Source        string          `json:"source"`
	Attempts      int             `json:"attempts"`
}

// IsFallback reports whether the rate came from a day before the transaction date.
func (r *Resolution) IsFallback() bool {
	return r.RateDate.Before(r.RequestedDate)
}

// Message is the status line for a successful resolution; empty for an exact match.
func (r *Resolution) Message() string {
	if r.IsFallback() {
		return FallbackMessage(r.RateDate)
	}
	return ""
}

// Resolver finds the authoritative base-currency rate for a transaction date.
type Resolver struct {
	provider provider.HistoricalRateProvider
	window   Window
	base     string
	now      func() time.Time
	loc      *time.Location
	logger   *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithWindow sets the look-back window.
func WithWindow(w Window) Option {
	return func(r *Resolver) { r.window = w }
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// WithLocation sets the time zone used to decide what "today" is.
func WithLocation(loc *time.Location) Option {
	return func(r *Resolver) { r.loc = loc }
}

// WithBaseCurrency overrides the home currency.
func WithBaseCurrency(code string) Option {
	return func(r *Resolver) { r.base = strings.ToUpper(code) }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// NewResolver creates a resolver backed by the given rate provider.
func NewResolver(p provider.HistoricalRateProvider, opts ...Option) *Resolver {
	r := &Resolver{
		provider: p,
		window:   DefaultWindow(),
		base:     BaseCurrency,
		now:      time.Now,
		loc:      time.Local,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// BaseCurrency returns the currency rates are resolved into.
func (r *Resolver) BaseCurrency() string { return r.base }

// Window returns the configured look-back window.
func (r *Resolver) Window() Window { return r.window }

// Today returns the current calendar date in the resolver's location.
func (r *Resolver) Today() civil.Date { return Today(r.now(), r.loc) }

// IsBaseCurrency reports whether code needs no conversion.
func (r *Resolver) IsBaseCurrency(code string) bool {
	return normalizeCurrency(code) == r.base
}

// ResolveRate finds the rate for currency on date, falling back one day at a
// time to the oldest date in the window. Lookups are issued sequentially and
// the search stops at the first usable rate. Per-day failures are absorbed;
// only the window-level outcomes are returned as *ResolveError.
func (r *Resolver) ResolveRate(ctx context.Context, date civil.Date, currency string) (*Resolution, error) {
	currency = normalizeCurrency(currency)
	if currency == r.base {
		return nil, ErrNotApplicable
	}
	if !ValidCurrencyCode(currency) {
		return nil, ErrInvalidCurrency
	}

	log := r.logger.With("currency", currency, "date", date.String(), "provider", r.provider.Name())

	if !provider.IsConfigured(r.provider) {
		log.Warn("Rate provider is not configured")
		return nil, newResolveError(KindNotConfigured, date, currency, r.window)
	}

	today := r.Today()
	if date.After(today) {
		log.Debug("Rejecting future transaction date", "today", today.String())
		return nil, newResolveError(KindFutureDate, date, currency, r.window)
	}
	oldest := r.window.Oldest(today)
	if date.Before(oldest) {
		log.Debug("Rejecting transaction date outside window", "oldest", oldest.String())
		return nil, newResolveError(KindDateTooOld, date, currency, r.window)
	}

	attempts := 0
	for i := 0; i < r.window.days(); i++ {
		day := date.AddDays(-i)
		if day.Before(oldest) {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		attempts++
		info, err := r.lookup(ctx, day, currency)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Debug("No usable rate, trying previous day", "error", err)
			continue
		}

		res := &Resolution{
			Currency:      currency,
			Rate:          info.Rate,
			RateDate:      day,
			RequestedDate: date,
			Source:        info.Provider,
			Attempts:      attempts,
		}
		log.Info("Resolved exchange rate",
			"rate", res.Rate.String(),
			"rate_date", day.String(),
			"fallback", res.IsFallback(),
			"attempts", attempts)
		return res, nil
	}

	log.Warn("No rate found in look-back window", "attempts", attempts, "oldest", oldest.String())
	e := newResolveError(KindNoRate, date, currency, r.window)
	e.Attempts = attempts
	return nil, e
}

func (r *Resolver) lookup(ctx context.Context, day civil.Date, currency string) (*provider.RateInfo, error) {
	info, err := r.provider.HistoricalRate(ctx, day, currency, r.base)
	if err != nil {
		return nil, &LookupError{Date: day, Err: err}
	}
	if err := info.Validate(currency, r.base); err != nil {
		return nil, &LookupError{Date: day, Err: err}
	}
	return info, nil
}

// ValidCurrencyCode reports whether code is a three-letter upper-case code.
func ValidCurrencyCode(code string) bool {
	return currencyCodePattern.MatchString(code)
}

func normalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
