package provider

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"
	"golang.org/x/time/rate"

	"github.com/amirasaad/tem/pkg/provider"
)

// RateLimitedProvider throttles outbound lookups so a long backward search
// stays inside the upstream quota.
type RateLimitedProvider struct {
	next    provider.HistoricalRateProvider
	limiter *rate.Limiter
}

// NewRateLimitedProvider wraps next with a token bucket of requestsPerMinute
// and burst. A non-positive requestsPerMinute disables the limit.
func NewRateLimitedProvider(
	next provider.HistoricalRateProvider,
	requestsPerMinute, burst int,
) *RateLimitedProvider {
	limit := rate.Inf
	if requestsPerMinute > 0 {
		limit = rate.Limit(float64(requestsPerMinute) / 60)
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedProvider{
		next:    next,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// HistoricalRate waits for a token and delegates to the wrapped provider.
func (p *RateLimitedProvider) HistoricalRate(
	ctx context.Context,
	date civil.Date,
	from, to string,
) (*provider.RateInfo, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	return p.next.HistoricalRate(ctx, date, from, to)
}

// Name returns the wrapped provider's name
func (p *RateLimitedProvider) Name() string {
	return p.next.Name()
}

// IsConfigured delegates to the wrapped provider.
func (p *RateLimitedProvider) IsConfigured() bool {
	return provider.IsConfigured(p.next)
}
