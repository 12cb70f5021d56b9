package provider

import (
	"context"
	"log/slog"
	"time"

	"cloud.google.com/go/civil"
	"golang.org/x/sync/singleflight"

	"github.com/amirasaad/tem/pkg/cache"
	"github.com/amirasaad/tem/pkg/provider"
)

// CachedHistoricalRate implements HistoricalRateProvider with caching capabilities.
// Only successful lookups are cached; a missing day is asked again next time.
type CachedHistoricalRate struct {
	next     provider.HistoricalRateProvider
	cache    cache.HistoricalRateCache
	ttl      time.Duration
	logger   *slog.Logger
	inflight singleflight.Group
}

// NewCachedHistoricalRate creates a new CachedHistoricalRate.
func NewCachedHistoricalRate(
	next provider.HistoricalRateProvider,
	cache cache.HistoricalRateCache,
	ttl time.Duration,
	logger *slog.Logger,
) *CachedHistoricalRate {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedHistoricalRate{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// HistoricalRate returns the cached rate for the day or fetches it from the
// wrapped provider. Concurrent lookups of the same key share one fetch. The
// shared fetch is detached from the caller's cancellation; a caller that gives
// up returns early without failing the others.
func (c *CachedHistoricalRate) HistoricalRate(
	ctx context.Context,
	date civil.Date,
	from, to string,
) (*provider.RateInfo, error) {
	key := cache.RateKey(date, from, to)

	rate, err := c.cache.Get(ctx, key)
	switch {
	case err != nil:
		c.logger.Warn("Cache get failed, falling back to provider", "key", key, "error", err)
	case rate != nil:
		verr := rate.Validate(from, to)
		if verr == nil {
			c.logger.Debug("Cache hit for HistoricalRate", "key", key)
			return rate, nil
		}
		c.logger.Warn("Evicting unusable cached rate", "key", key, "error", verr)
		if err := c.cache.Delete(ctx, key); err != nil {
			c.logger.Warn("Failed to evict cached rate", "key", key, "error", err)
		}
	}

	fetchCtx := context.WithoutCancel(ctx)
	ch := c.inflight.DoChan(key, func() (any, error) {
		rate, err := c.next.HistoricalRate(fetchCtx, date, from, to)
		if err != nil {
			return nil, err
		}
		if err := c.cache.Set(fetchCtx, key, rate, c.ttl); err != nil {
			c.logger.Warn("Failed to cache historical rate", "key", key, "error", err)
		}
		return rate, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			c.logger.Debug("Shared in-flight lookup", "key", key)
		}
		shared := *res.Val.(*provider.RateInfo)
		return &shared, nil
	}
}

// Name returns the wrapped provider's name
func (c *CachedHistoricalRate) Name() string {
	return c.next.Name()
}

// IsConfigured delegates to the wrapped provider.
func (c *CachedHistoricalRate) IsConfigured() bool {
	return provider.IsConfigured(c.next)
}
