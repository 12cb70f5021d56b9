package provider

import (
	"context"
	"log/slog"

	"cloud.google.com/go/civil"

	"github.com/amirasaad/tem/pkg/provider"
)

// RateStore persists resolved historical rates. Find returns nil, nil when
// the day has not been stored.
type RateStore interface {
	Find(ctx context.Context, date civil.Date, from, to string) (*provider.RateInfo, error)
	Save(ctx context.Context, rate *provider.RateInfo) error
}

// StoredHistoricalRate serves lookups from the rate history store and
// records every rate fetched from the wrapped provider. A published
// historical rate never changes, so stored rows do not expire.
type StoredHistoricalRate struct {
	next   provider.HistoricalRateProvider
	store  RateStore
	logger *slog.Logger
}

// NewStoredHistoricalRate creates a new StoredHistoricalRate.
func NewStoredHistoricalRate(
	next provider.HistoricalRateProvider,
	store RateStore,
	logger *slog.Logger,
) *StoredHistoricalRate {
	if logger == nil {
		logger = slog.Default()
	}
	return &StoredHistoricalRate{next: next, store: store, logger: logger}
}

func (s *StoredHistoricalRate) HistoricalRate(
	ctx context.Context,
	date civil.Date,
	from, to string,
) (*provider.RateInfo, error) {
	stored, err := s.store.Find(ctx, date, from, to)
	if err != nil {
		s.logger.Warn("Rate store lookup failed", "date", date.String(), "from", from, "to", to, "error", err)
	} else if stored != nil {
		return stored, nil
	}

	rate, err := s.next.HistoricalRate(ctx, date, from, to)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, rate); err != nil {
		s.logger.Warn("Failed to store historical rate", "date", date.String(), "from", from, "to", to, "error", err)
	}
	return rate, nil
}

func (s *StoredHistoricalRate) Name() string {
	return s.next.Name()
}

func (s *StoredHistoricalRate) IsConfigured() bool {
	return provider.IsConfigured(s.next)
}
