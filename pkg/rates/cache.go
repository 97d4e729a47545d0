package rates

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Cache holds the latest quote for a short TTL so payment creation does not
// hit the quote API on every request. The cached value is advisory: it is
// safe to discard and recompute at any time.
type Cache struct {
	mu        sync.Mutex
	src       Source
	ttl       time.Duration
	retries   int
	rate      decimal.Decimal
	fetchedAt time.Time
}

func NewCache(src Source, ttl time.Duration, retries int) *Cache {
	if retries < 1 {
		retries = 1
	}
	return &Cache{src: src, ttl: ttl, retries: retries}
}

// Current returns the cached quote, refreshing it when older than the TTL.
// Fetching retries a bounded number of times; if every attempt fails the
// stale value is NOT served and the caller fails closed.
func (c *Cache) Current(ctx context.Context) (decimal.Decimal, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.fetchedAt.IsZero() && time.Since(c.fetchedAt) < c.ttl {
		return c.rate, nil
	}
	var lastErr error
	for attempt := 0; attempt < c.retries; attempt++ {
		rate, err := c.src.Quote(ctx)
		if err == nil {
			c.rate = rate
			c.fetchedAt = time.Now()
			return rate, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return decimal.Zero, fmt.Errorf("exchange rate unavailable: %w", lastErr)
}

// Invalidate drops the cached value so the next call refetches.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetchedAt = time.Time{}
}
