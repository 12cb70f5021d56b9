package conversion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	conv "github.com/amirasaad/tem/pkg/conversion"
	"github.com/amirasaad/tem/pkg/expense"
	"github.com/amirasaad/tem/pkg/provider"
)

var (
	// ErrResolveTimeout is returned when a quote does not settle in time.
	ErrResolveTimeout = errors.New("rate resolution timed out")
	// ErrInvalidAmount is returned for an expense amount that is not a positive number.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrHistoryUnavailable is returned when no rate store is configured.
	ErrHistoryUnavailable = errors.New("rate history not available")
)

// RateHistory lists the stored rates of a currency pair, newest first.
type RateHistory interface {
	ListByCurrency(ctx context.Context, from, to string) ([]*provider.RateInfo, error)
}

// DefaultResolveTimeout bounds a full backward search.
const DefaultResolveTimeout = 2 * time.Minute

// QuoteRequest carries the raw form inputs, exactly as typed.
type QuoteRequest struct {
	Date       string `json:"date" validate:"required"`
	Currency   string `json:"currency" validate:"required,len=3,alpha"`
	Amount     string `json:"amount"`
	ManualRate string `json:"manualRate,omitempty"`
}

// Quote is the settled form output for a request.
type Quote struct {
	SessionID string `json:"sessionId"`
	conv.FormOutput
}

// ExpenseRequest is an expense form as submitted. Amount and rate are taken
// as typed.
type ExpenseRequest struct {
	EmployeeID    string `json:"employeeId" validate:"required"`
	ProjectID     string `json:"projectId" validate:"required"`
	Category      string `json:"category" validate:"required"`
	Date          string `json:"date" validate:"required"`
	Amount        string `json:"amount" validate:"required"`
	Currency      string `json:"currency" validate:"required,len=3,alpha"`
	ManualRate    string `json:"manualRate,omitempty"`
	InvoiceNumber string `json:"invoiceNumber,omitempty"`
	Remarks       string `json:"remarks,omitempty"`
	Submit        bool   `json:"submit"`
}

// Summary bundles every expense dashboard total.
type Summary struct {
	ByStatus   expense.StatusSummary   `json:"byStatus"`
	ByCategory expense.CategorySummary `json:"byCategory"`
	ByProject  []expense.ProjectTotal  `json:"byProject"`
}

// Service provides currency conversion operations to the transports.
type Service struct {
	resolver *conv.Resolver
	history  RateHistory
	timeout  time.Duration
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithRateHistory enables listing stored rates.
func WithRateHistory(h RateHistory) Option {
	return func(s *Service) { s.history = h }
}

// New creates a conversion service.
func New(resolver *conv.Resolver, timeout time.Duration, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = DefaultResolveTimeout
	}
	s := &Service{resolver: resolver, timeout: timeout, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BaseCurrency returns the currency every amount is converted into.
func (s *Service) BaseCurrency() string {
	return s.resolver.BaseCurrency()
}

// ResolveRate parses date and resolves the rate for currency on that day.
func (s *Service) ResolveRate(ctx context.Context, date, currency string) (*conv.Resolution, error) {
	d, err := conv.ParseDate(date)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.resolver.ResolveRate(ctx, d, currency)
}

// Quote runs a form session for req until it settles and returns its output.
// A manual rate is treated like the rate stored on an edited expense: no
// lookup is made and the typed value is used as is.
func (s *Service) Quote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	log := s.logger.With("currency", req.Currency, "date", req.Date)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	opts := []conv.SessionOption{conv.WithSessionLogger(s.logger)}
	if req.ManualRate != "" {
		opts = append(opts, conv.WithInitialRate(req.ManualRate))
	}
	session := conv.NewSession(ctx, s.resolver, opts...)
	defer session.Close()

	done := session.Init(req.Date, req.Currency, req.Amount)
	select {
	case <-done:
	case <-ctx.Done():
		log.Warn("Quote did not settle", "timeout", s.timeout, "error", ctx.Err())
		return nil, fmt.Errorf("%w: %w", ErrResolveTimeout, ctx.Err())
	}

	out := session.Snapshot()
	log.Info("Quote settled", "state", out.State.String(), "session_id", session.ID().String())
	return &Quote{SessionID: session.ID().String(), FormOutput: out}, nil
}

// PrepareExpense builds the record an expense form saves. Foreign expenses
// are quoted and carry the resulting conversion. A missing rate never blocks
// the expense: it is kept without conversion details, as is one whose quote
// did not settle in time.
func (s *Service) PrepareExpense(ctx context.Context, req ExpenseRequest) (*expense.Expense, *Quote, error) {
	date, err := conv.ParseDate(req.Date)
	if err != nil {
		return nil, nil, err
	}
	amount, ok := conv.ParseAmount(req.Amount)
	if !ok || !amount.IsPositive() {
		return nil, nil, fmt.Errorf("%w %q", ErrInvalidAmount, req.Amount)
	}

	e := expense.New(req.EmployeeID, req.ProjectID, req.Category, date, amount, req.Currency)
	e.InvoiceNumber = req.InvoiceNumber
	e.Remarks = req.Remarks
	if req.Submit {
		e.Status = expense.StatusPending
	}
	log := s.logger.With("expense_id", e.ID.String(), "currency", e.Currency)

	if s.resolver.IsBaseCurrency(e.Currency) {
		log.Debug("Expense needs no conversion")
		return e, nil, nil
	}

	q, err := s.Quote(ctx, QuoteRequest{
		Date:       req.Date,
		Currency:   e.Currency,
		Amount:     req.Amount,
		ManualRate: req.ManualRate,
	})
	if err != nil {
		if !errors.Is(err, ErrResolveTimeout) {
			return nil, nil, err
		}
		log.Warn("Keeping expense without conversion", "error", err)
		e.AttachConversion(conv.FormOutput{})
		return e, nil, nil
	}
	e.AttachConversion(q.FormOutput)
	if e.ConversionDetails == nil {
		log.Info("Expense kept without conversion", "state", q.State.String())
	}
	return e, q, nil
}

// RateHistory lists the stored rates of currency against the base currency.
func (s *Service) RateHistory(ctx context.Context, currency string) ([]*provider.RateInfo, error) {
	if s.history == nil {
		return nil, ErrHistoryUnavailable
	}
	code := strings.ToUpper(strings.TrimSpace(currency))
	if s.resolver.IsBaseCurrency(code) {
		return nil, conv.ErrNotApplicable
	}
	if !conv.ValidCurrencyCode(code) {
		return nil, conv.ErrInvalidCurrency
	}
	return s.history.ListByCurrency(ctx, code, s.resolver.BaseCurrency())
}

// Summarize computes the dashboard totals. Drafts are left out unless
// includeDrafts is set.
func (s *Service) Summarize(expenses []expense.Expense, includeDrafts bool) Summary {
	visible := expenses
	if !includeDrafts {
		visible = make([]expense.Expense, 0, len(expenses))
		for _, e := range expenses {
			if e.Status != expense.StatusDraft {
				visible = append(visible, e)
			}
		}
	}
	return Summary{
		ByStatus:   expense.SummarizeByStatus(expenses, includeDrafts),
		ByCategory: expense.SummarizeByCategory(visible),
		ByProject:  expense.SummarizeByProject(visible),
	}
}
