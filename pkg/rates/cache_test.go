package rates

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// countingSource records every upstream call and can be scripted to fail a
// fixed number of times before succeeding.
type countingSource struct {
	calls    int
	failures int
	rate     decimal.Decimal
}

func (s *countingSource) Quote(ctx context.Context) (decimal.Decimal, error) {
	s.calls++
	if s.failures > 0 {
		s.failures--
		return decimal.Zero, errors.New("quote api down")
	}
	return s.rate, nil
}

func TestCache_ServesCachedQuoteWithinTTL(t *testing.T) {
	src := &countingSource{rate: decimal.NewFromFloat(437.21)}
	c := NewCache(src, time.Minute, 1)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		rate, err := c.Current(ctx)
		if err != nil {
			t.Fatalf("Current: %v", err)
		}
		if !rate.Equal(src.rate) {
			t.Errorf("rate = %s, want %s", rate, src.rate)
		}
	}
	if src.calls != 1 {
		t.Errorf("upstream calls = %d, want 1", src.calls)
	}
}

func TestCache_RefetchesAfterInvalidate(t *testing.T) {
	src := &countingSource{rate: decimal.NewFromInt(500)}
	c := NewCache(src, time.Minute, 1)
	ctx := context.Background()

	if _, err := c.Current(ctx); err != nil {
		t.Fatalf("Current: %v", err)
	}
	src.rate = decimal.NewFromInt(520)
	c.Invalidate()

	rate, err := c.Current(ctx)
	if err != nil {
		t.Fatalf("Current after invalidate: %v", err)
	}
	if !rate.Equal(decimal.NewFromInt(520)) {
		t.Errorf("rate = %s, want 520", rate)
	}
	if src.calls != 2 {
		t.Errorf("upstream calls = %d, want 2", src.calls)
	}
}

func TestCache_RetriesBeforeFailing(t *testing.T) {
	src := &countingSource{rate: decimal.NewFromInt(500), failures: 2}
	c := NewCache(src, time.Minute, 3)

	rate, err := c.Current(context.Background())
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if !rate.Equal(decimal.NewFromInt(500)) {
		t.Errorf("rate = %s, want 500", rate)
	}
	if src.calls != 3 {
		t.Errorf("upstream calls = %d, want 3", src.calls)
	}
}

func TestCache_FailsClosedWhenRetriesExhausted(t *testing.T) {
	src := &countingSource{rate: decimal.NewFromInt(500), failures: 10}
	c := NewCache(src, time.Nanosecond, 2)
	ctx := context.Background()

	// Warm the cache, then let it go stale with a failing upstream.
	src.failures = 0
	if _, err := c.Current(ctx); err != nil {
		t.Fatalf("warm fetch: %v", err)
	}
	time.Sleep(time.Millisecond)
	src.failures = 10

	_, err := c.Current(ctx)
	if err == nil {
		t.Fatal("stale quote must not be served when every retry fails")
	}
}

func TestCache_StopsRetryingOnCancelledContext(t *testing.T) {
	src := &countingSource{failures: 10}
	c := NewCache(src, time.Minute, 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Current(ctx); err == nil {
		t.Fatal("want error on cancelled context")
	}
	if src.calls != 1 {
		t.Errorf("upstream calls = %d, want 1 (no retries after cancel)", src.calls)
	}
}
