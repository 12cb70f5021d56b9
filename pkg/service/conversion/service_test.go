package conversion

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	conv "github.com/amirasaad/tem/pkg/conversion"
	"github.com/amirasaad/tem/pkg/expense"
	"github.com/amirasaad/tem/pkg/provider"
)

type stubProvider struct {
	rates map[string]string
	block bool
}

func (p *stubProvider) HistoricalRate(
	ctx context.Context,
	date civil.Date,
	from, to string,
) (*provider.RateInfo, error) {
	if p.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	v, ok := p.rates[date.String()]
	if !ok {
		return nil, provider.ErrRateNotFound
	}
	return &provider.RateInfo{FromCurrency: from, ToCurrency: to, Rate: decimal.RequireFromString(v), Date: date}, nil
}

func (p *stubProvider) Name() string { return "stub" }

func newService(p provider.HistoricalRateProvider, timeout time.Duration) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	now := func() time.Time { return time.Date(2026, time.October, 15, 10, 0, 0, 0, time.UTC) }
	resolver := conv.NewResolver(p,
		conv.WithClock(now),
		conv.WithLocation(time.UTC),
		conv.WithLogger(logger),
	)
	return New(resolver, timeout, logger)
}

func TestService_ResolveRate(t *testing.T) {
	svc := newService(&stubProvider{rates: map[string]string{"2026-10-13": "83.50"}}, time.Second)

	res, err := svc.ResolveRate(context.Background(), "2026-10-14", "usd")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-13", res.RateDate.String())
	assert.True(t, res.IsFallback())
	assert.Equal(t, "INR", svc.BaseCurrency())

	_, err = svc.ResolveRate(context.Background(), "14/10/2026", "USD")
	assert.Error(t, err)

	_, err = svc.ResolveRate(context.Background(), "2026-10-16", "USD")
	assert.ErrorIs(t, err, conv.ErrFutureDateRejected)
}

func TestService_Quote_Fallback(t *testing.T) {
	svc := newService(&stubProvider{rates: map[string]string{"2026-10-13": "83.50"}}, time.Second)

	q, err := svc.Quote(context.Background(), QuoteRequest{Date: "2026-10-14", Currency: "USD", Amount: "100"})
	require.NoError(t, err)

	assert.NotEmpty(t, q.SessionID)
	assert.Equal(t, conv.StateResolvedFallback, q.State)
	assert.Equal(t, "83.5", q.ExchangeRate)
	require.NotNil(t, q.ConversionResult)
	assert.Equal(t, "Rate from 2026-10-13", *q.ConversionResult)
	require.NotNil(t, q.ConversionData)
	assert.Equal(t, "8350.00", q.ConversionData.ConvertedAmount.StringFixed(2))
	assert.Equal(t, "INR", q.ConversionData.BaseCurrency)
}

func TestService_Quote_ManualRateSkipsLookup(t *testing.T) {
	svc := newService(&stubProvider{block: true}, time.Second)

	q, err := svc.Quote(context.Background(), QuoteRequest{
		Date:       "2026-10-14",
		Currency:   "USD",
		Amount:     "100",
		ManualRate: "84",
	})
	require.NoError(t, err)
	assert.Equal(t, conv.StateManualOverride, q.State)
	require.NotNil(t, q.ConversionData)
	assert.Equal(t, "8400", q.ConversionData.ConvertedAmount.String())
}

func TestService_Quote_FutureDate(t *testing.T) {
	svc := newService(&stubProvider{}, time.Second)

	q, err := svc.Quote(context.Background(), QuoteRequest{Date: "2026-10-20", Currency: "USD", Amount: "100"})
	require.NoError(t, err)
	assert.Equal(t, conv.StateFailedFuture, q.State)
	require.NotNil(t, q.ConversionResult)
	assert.Equal(t, conv.StatusFutureDate, *q.ConversionResult)
	assert.Nil(t, q.ConversionData)
	assert.Empty(t, q.ExchangeRate)
}

func TestService_Quote_Timeout(t *testing.T) {
	svc := newService(&stubProvider{block: true}, 20*time.Millisecond)

	// the abandoned search and the deadline race; either way no rate is quoted
	q, err := svc.Quote(context.Background(), QuoteRequest{Date: "2026-10-14", Currency: "USD", Amount: "100"})
	if err != nil {
		assert.ErrorIs(t, err, ErrResolveTimeout)
		return
	}
	assert.Equal(t, conv.StateFailedNoRate, q.State)
	assert.Nil(t, q.ConversionData)
}

func TestService_Summarize(t *testing.T) {
	svc := newService(&stubProvider{}, time.Second)
	day := civil.Date{Year: 2026, Month: time.October, Day: 13}
	expenses := []expense.Expense{
		*expense.New("emp-1", "PRJ-1", "Food", day, decimal.NewFromInt(500), "INR"),
		{EmployeeID: "emp-1", ProjectID: "PRJ-1", Category: "Hotel", Amount: decimal.NewFromInt(3000), Currency: "INR", Status: expense.StatusApproved},
	}

	employer := svc.Summarize(expenses, false)
	assert.Equal(t, "3000", employer.ByStatus.Total.Amount.String())
	require.Len(t, employer.ByCategory.Categories, 1)
	assert.Equal(t, "Hotel", employer.ByCategory.Categories[0].Category)
	require.Len(t, employer.ByProject, 1)
	assert.Equal(t, "3000", employer.ByProject[0].Amount.String())

	employee := svc.Summarize(expenses, true)
	assert.Equal(t, "3500", employee.ByStatus.Total.Amount.String())
	assert.Len(t, employee.ByCategory.Categories, 2)
}

func TestService_PrepareExpense(t *testing.T) {
	svc := newService(&stubProvider{rates: map[string]string{"2026-10-13": "83.50"}}, time.Second)
	base := ExpenseRequest{
		EmployeeID: "emp-1",
		ProjectID:  "PRJ-1",
		Category:   "Hotel",
		Date:       "2026-10-14",
		Amount:     "100",
		Currency:   "usd",
		Submit:     true,
	}

	t.Run("fallback rate is stored", func(t *testing.T) {
		e, q, err := svc.PrepareExpense(context.Background(), base)
		require.NoError(t, err)
		require.NotNil(t, q)
		assert.Equal(t, conv.StateResolvedFallback, q.State)
		assert.Equal(t, expense.StatusPending, e.Status)
		assert.Equal(t, "USD", e.Currency)
		require.NotNil(t, e.ConversionDetails)
		assert.Equal(t, "8350", e.AmountINR().String())
	})

	t.Run("no rate does not block", func(t *testing.T) {
		req := base
		req.Date = "2026-10-20"
		e, q, err := svc.PrepareExpense(context.Background(), req)
		require.NoError(t, err)
		require.NotNil(t, q)
		assert.Equal(t, conv.StateFailedFuture, q.State)
		assert.Nil(t, e.ConversionDetails)
		assert.Equal(t, "100", e.AmountINR().String())
	})

	t.Run("manual rate", func(t *testing.T) {
		req := base
		req.Date = "2026-10-20"
		req.ManualRate = "84"
		e, _, err := svc.PrepareExpense(context.Background(), req)
		require.NoError(t, err)
		require.NotNil(t, e.ConversionDetails)
		assert.Equal(t, "8400", e.AmountINR().String())
	})

	t.Run("base currency", func(t *testing.T) {
		req := base
		req.Currency = "INR"
		req.ManualRate = "84"
		req.Submit = false
		e, q, err := svc.PrepareExpense(context.Background(), req)
		require.NoError(t, err)
		assert.Nil(t, q)
		assert.Nil(t, e.ConversionDetails)
		assert.Equal(t, expense.StatusDraft, e.Status)
	})

	t.Run("invalid input", func(t *testing.T) {
		req := base
		req.Amount = "abc"
		_, _, err := svc.PrepareExpense(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidAmount)

		req = base
		req.Date = "14/10/2026"
		_, _, err = svc.PrepareExpense(context.Background(), req)
		assert.ErrorIs(t, err, conv.ErrInvalidDate)
	})
}

func TestService_PrepareExpense_Timeout(t *testing.T) {
	svc := newService(&stubProvider{block: true}, 20*time.Millisecond)

	e, _, err := svc.PrepareExpense(context.Background(), ExpenseRequest{
		EmployeeID: "emp-1", ProjectID: "PRJ-1", Category: "Hotel",
		Date: "2026-10-14", Amount: "100", Currency: "USD",
	})
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Nil(t, e.ConversionDetails)
}

type fakeHistory struct {
	from, to string
	rates    []*provider.RateInfo
}

func (h *fakeHistory) ListByCurrency(_ context.Context, from, to string) ([]*provider.RateInfo, error) {
	h.from, h.to = from, to
	return h.rates, nil
}

func TestService_RateHistory(t *testing.T) {
	day := civil.Date{Year: 2026, Month: time.October, Day: 13}
	history := &fakeHistory{rates: []*provider.RateInfo{
		{FromCurrency: "USD", ToCurrency: "INR", Rate: decimal.RequireFromString("83.5"), Date: day},
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	resolver := conv.NewResolver(&stubProvider{}, conv.WithLogger(logger))
	svc := New(resolver, time.Second, logger, WithRateHistory(history))

	rates, err := svc.RateHistory(context.Background(), " usd ")
	require.NoError(t, err)
	require.Len(t, rates, 1)
	assert.Equal(t, "USD", history.from)
	assert.Equal(t, "INR", history.to)

	_, err = svc.RateHistory(context.Background(), "INR")
	assert.ErrorIs(t, err, conv.ErrNotApplicable)
	_, err = svc.RateHistory(context.Background(), "US")
	assert.ErrorIs(t, err, conv.ErrInvalidCurrency)

	_, err = newService(&stubProvider{}, time.Second).RateHistory(context.Background(), "USD")
	assert.ErrorIs(t, err, ErrHistoryUnavailable)
}
