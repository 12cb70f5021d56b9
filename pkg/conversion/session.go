package conversion

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
)

// RateResolver is the part of Resolver a Session depends on.
type RateResolver interface {
	ResolveRate(ctx context.Context, date civil.Date, currency string) (*Resolution, error)
	BaseCurrency() string
}

// Session holds the conversion state of a single expense form.
//
// Changing the date or currency restarts resolution in the background.
// Changing the amount only recomputes the conversion. A typed rate wins over
// any automatic result until the date or currency changes again. Results of
// superseded searches are dropped on arrival.
type Session struct {
	mu sync.Mutex

	id       uuid.UUID
	resolver RateResolver
	logger   *slog.Logger
	ctx      context.Context
	stop     context.CancelFunc

	dateText string
	date     civil.Date
	hasDate  bool
	currency string
	amount   string
	rate     string

	state      State
	status     string
	resolution *Resolution

	generation  uint64
	cancel      context.CancelFunc
	skipInitial bool
	mounted     bool
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithInitialRate seeds the rate field, as when editing a saved expense. The
// first resolution is skipped so the stored rate is kept.
func WithInitialRate(rate string) SessionOption {
	return func(s *Session) {
		if rate != "" {
			s.rate = rate
			s.skipInitial = true
		}
	}
}

// WithSessionLogger sets the logger.
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) { s.logger = logger }
}

// NewSession creates a form session. Cancelling ctx, or calling Close,
// abandons any search in flight.
func NewSession(ctx context.Context, resolver RateResolver, opts ...SessionOption) *Session {
	ctx, stop := context.WithCancel(ctx)
	s := &Session{
		id:       uuid.New(),
		resolver: resolver,
		ctx:      ctx,
		stop:     stop,
		currency: resolver.BaseCurrency(),
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("session_id", s.id.String())
	return s
}

// ID identifies the session in logs.
func (s *Session) ID() uuid.UUID { return s.id }

// Init sets all inputs at once, as when the form first opens, and starts the
// first resolution unless an initial rate was supplied.
func (s *Session) Init(date, currency, amount string) <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mounted = true
	s.setDateLocked(date)
	s.currency = normalizeCurrency(currency)
	s.amount = amount
	if s.skipInitial && !s.isBaseLocked() {
		s.skipInitial = false
		s.state = StateManualOverride
		return closedChan()
	}
	s.skipInitial = false
	return s.restartLocked()
}

// SetDate changes the transaction date. An unparsable or empty value means
// no date. Resolution restarts only if the value changed.
func (s *Session) SetDate(date string) <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mounted && date == s.dateText {
		return closedChan()
	}
	s.setDateLocked(date)
	return s.restartMountedLocked()
}

// SetCurrency changes the currency. Resolution restarts only if the value changed.
func (s *Session) SetCurrency(currency string) <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	currency = normalizeCurrency(currency)
	if s.mounted && currency == s.currency {
		return closedChan()
	}
	s.currency = currency
	return s.restartMountedLocked()
}

// SetAmount changes the foreign amount. It never triggers a lookup.
func (s *Session) SetAmount(amount string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.amount = amount
}

// SetManualRate records a rate typed by the user. Any search in flight is
// abandoned and its result will not overwrite this value. Ignored while the
// base currency is selected.
func (s *Session) SetManualRate(rate string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isBaseLocked() {
		return
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.state == StateResolving {
		s.status = ""
	}
	s.rate = rate
	s.state = StateManualOverride
	s.resolution = nil
	if _, err := ValidateManualRate(rate); err != nil {
		s.logger.Debug("Manual rate not usable, withholding conversion", "rate", rate, "error", err)
	}
}

// Snapshot returns the current form output.
func (s *Session) Snapshot() FormOutput {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isBaseLocked() {
		return FormOutput{State: s.state}
	}

	out := FormOutput{ExchangeRate: s.rate, State: s.state}
	if s.resolution != nil && s.state != StateManualOverride {
		d := s.resolution.RateDate
		out.RateDate = &d
	}

	status := s.status
	amount, okAmount := ParseAmount(s.amount)
	rate, okRate := ParseAmount(s.rate)
	if okAmount && okRate {
		if converted, ok := Convert(amount, rate); ok {
			out.ConversionData = &ConversionData{
				BaseCurrency:    s.resolver.BaseCurrency(),
				ExchangeRate:    rate,
				ConvertedAmount: converted,
			}
			if s.state != StateResolving && !HoldsOverPreview(status) {
				status = PreviewMessage(converted)
			}
		}
	}
	if status != "" {
		out.ConversionResult = &status
	}
	return out
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Close abandons any search in flight.
func (s *Session) Close() {
	s.stop()
}

func (s *Session) setDateLocked(date string) {
	s.dateText = date
	d, err := ParseDate(date)
	s.date, s.hasDate = d, err == nil
}

func (s *Session) isBaseLocked() bool {
	return s.currency == s.resolver.BaseCurrency()
}

func (s *Session) restartMountedLocked() <-chan struct{} {
	if !s.mounted {
		return closedChan()
	}
	if s.skipInitial {
		s.skipInitial = false
	}
	return s.restartLocked()
}

// restartLocked starts a new attempt for the current date and currency. The
// attempt carries the generation it was started under; only a result whose
// generation is still current is applied.
func (s *Session) restartLocked() <-chan struct{} {
	s.generation++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.resolution = nil

	if s.isBaseLocked() || !s.hasDate {
		s.state = StateIdle
		s.status = ""
		s.rate = ""
		return closedChan()
	}

	s.state = StateResolving
	s.status = StatusFetching
	s.rate = ""

	gen := s.generation
	date, currency := s.date, s.currency
	ctx, cancel := context.WithCancel(s.ctx)
	s.cancel = cancel

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()
		res, err := s.resolver.ResolveRate(ctx, date, currency)
		s.apply(gen, res, err)
	}()
	return done
}

func (s *Session) apply(gen uint64, res *Resolution, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation || s.state != StateResolving {
		s.logger.Debug("Discarding stale rate resolution",
			"generation", gen, "current", s.generation, "state", s.state.String())
		return
	}
	s.cancel = nil

	if err == nil {
		s.resolution = res
		s.rate = res.Rate.String()
		s.status = res.Message()
		if res.IsFallback() {
			s.state = StateResolvedFallback
		} else {
			s.state = StateResolvedExact
		}
		return
	}

	s.rate = ""
	var rerr *ResolveError
	switch {
	case errors.As(err, &rerr):
		s.state = stateForFailure(rerr.Kind)
		s.status = rerr.Message()
	case errors.Is(err, ErrNotApplicable), errors.Is(err, ErrInvalidCurrency):
		s.state = StateIdle
		s.status = ""
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.logger.Debug("Rate resolution abandoned", "error", err)
		s.state = StateFailedNoRate
		s.status = StatusNoRate
	default:
		s.logger.Warn("Rate resolution failed", "error", err)
		s.state = StateFailedNoRate
		s.status = StatusNoRate
	}
}

func closedChan() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
