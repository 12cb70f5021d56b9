package cache

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"

	"github.com/amirasaad/tem/pkg/provider"
)

// HistoricalRateCache defines the interface for caching historical exchange rates.
// Get returns nil, nil on a miss.
type HistoricalRateCache interface {
	Get(ctx context.Context, key string) (*provider.RateInfo, error)
	Set(ctx context.Context, key string, rate *provider.RateInfo, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RateKey builds the cache key for one day of a currency pair.
func RateKey(date civil.Date, from, to string) string {
	return fmt.Sprintf("%s:%s-%s", date, from, to)
}
