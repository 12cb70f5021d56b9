package conversion

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/amirasaad/tem/pkg/provider"
)

var kolkata = mustLoadLocation("Asia/Kolkata")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("IST", 5*60*60+30*60)
	}
	return loc
}

// fixedNow is 2026-10-15 10:00 IST.
func fixedNow() time.Time {
	return time.Date(2026, time.October, 15, 10, 0, 0, 0, kolkata)
}

var today = civil.Date{Year: 2026, Month: time.October, Day: 15}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeProvider serves rates from a per-day table and records every lookup.
type fakeProvider struct {
	mu         sync.Mutex
	rates      map[civil.Date]string
	fail       map[civil.Date]error
	calls      []civil.Date
	configured bool
	lookup     func(ctx context.Context, date civil.Date, from, to string) (*provider.RateInfo, error)
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		rates:      map[civil.Date]string{},
		fail:       map[civil.Date]error{},
		configured: true,
	}
}

func (f *fakeProvider) HistoricalRate(ctx context.Context, date civil.Date, from, to string) (*provider.RateInfo, error) {
	f.mu.Lock()
	f.calls = append(f.calls, date)
	lookup := f.lookup
	rate, ok := f.rates[date]
	failure := f.fail[date]
	f.mu.Unlock()

	if lookup != nil {
		return lookup(ctx, date, from, to)
	}
	if failure != nil {
		return nil, failure
	}
	if !ok {
		return nil, provider.ErrRateNotFound
	}
	return &provider.RateInfo{
		FromCurrency: from,
		ToCurrency:   to,
		Rate:         decimal.RequireFromString(rate),
		Date:         date,
		Provider:     "fake",
	}, nil
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) IsConfigured() bool { return f.configured }

func (f *fakeProvider) Calls() []civil.Date {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]civil.Date(nil), f.calls...)
}

func newTestResolver(p provider.HistoricalRateProvider, opts ...Option) *Resolver {
	base := []Option{
		WithClock(fixedNow),
		WithLocation(kolkata),
		WithLogger(discardLogger()),
	}
	return NewResolver(p, append(base, opts...)...)
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		require.FailNow(t, "timed out waiting for resolution")
	}
}
