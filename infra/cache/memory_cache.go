package cache

import (
	"context"
	"sync"
	"time"

	"github.com/amirasaad/tem/pkg/cache"
	"github.com/amirasaad/tem/pkg/provider"
)

// MemoryCache implements HistoricalRateCache using in-memory storage
type MemoryCache struct {
	cache map[string]*cacheEntry
	mu    sync.RWMutex
	now   func() time.Time
	stop  chan struct{}
	once  sync.Once
}

// NewMemoryCache creates a new in-memory cache that sweeps expired entries
// every cleanupInterval until Close is called.
func NewMemoryCache(cleanupInterval time.Duration) *MemoryCache {
	c := &MemoryCache{
		cache: make(map[string]*cacheEntry),
		now:   time.Now,
		stop:  make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go c.cleanup(cleanupInterval)
	}
	return c
}

// Get retrieves a rate from cache
func (c *MemoryCache) Get(_ context.Context, key string) (*provider.RateInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.cache[key]
	if !exists || entry.expired(c.now()) {
		return nil, nil
	}
	rate := *entry.rate
	return &rate, nil
}

// Set stores a rate in cache with TTL. A zero TTL keeps the entry until deleted.
func (c *MemoryCache) Set(_ context.Context, key string, rate *provider.RateInfo, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := *rate
	entry := &cacheEntry{rate: &stored}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}
	c.cache[key] = entry
	return nil
}

// Delete removes a rate from cache
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.cache, key)
	return nil
}

// Len returns the number of entries, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// Close stops the cleanup goroutine.
func (c *MemoryCache) Close() {
	c.once.Do(func() { close(c.stop) })
}

// cleanup removes expired entries from cache
func (c *MemoryCache) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *MemoryCache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for key, entry := range c.cache {
		if entry.expired(now) {
			delete(c.cache, key)
		}
	}
}

type cacheEntry struct {
	rate      *provider.RateInfo
	expiresAt time.Time
}

func (e *cacheEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

var _ cache.HistoricalRateCache = (*MemoryCache)(nil)
