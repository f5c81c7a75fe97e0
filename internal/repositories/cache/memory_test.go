package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func newFrozenCache(ttl time.Duration) (*MemoryBalanceCache, *time.Time) {
	c := NewMemoryBalanceCache(ttl)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestMemoryBalanceCache_MissOnEmpty(t *testing.T) {
	c, _ := newFrozenCache(time.Minute)

	_, ok := c.Get(context.Background(), 1)
	assert.False(t, ok)
}

func TestMemoryBalanceCache_ReadThroughWindow(t *testing.T) {
	c, now := newFrozenCache(time.Minute)
	ctx := context.Background()
	balance := decimal.RequireFromString("42.50")

	c.Put(ctx, 1, balance)

	// Repeated reads inside the TTL return identical values.
	first, ok := c.Get(ctx, 1)
	assert.True(t, ok)
	second, ok := c.Get(ctx, 1)
	assert.True(t, ok)
	assert.True(t, first.Equal(balance))
	assert.True(t, first.Equal(second))

	// Still fresh one tick before expiry.
	*now = now.Add(time.Minute - time.Nanosecond)
	_, ok = c.Get(ctx, 1)
	assert.True(t, ok)

	// Stale exactly at expiry.
	*now = now.Add(time.Nanosecond)
	_, ok = c.Get(ctx, 1)
	assert.False(t, ok)
}

func TestMemoryBalanceCache_PutResetsExpiry(t *testing.T) {
	c, now := newFrozenCache(time.Minute)
	ctx := context.Background()

	c.Put(ctx, 1, decimal.RequireFromString("10.00"))
	*now = now.Add(45 * time.Second)
	c.Put(ctx, 1, decimal.RequireFromString("20.00"))
	*now = now.Add(45 * time.Second)

	// 90s after the first write but only 45s after the second.
	got, ok := c.Get(ctx, 1)
	assert.True(t, ok)
	assert.True(t, got.Equal(decimal.RequireFromString("20.00")))
}

func TestMemoryBalanceCache_Invalidate(t *testing.T) {
	c, _ := newFrozenCache(time.Minute)
	ctx := context.Background()

	c.Put(ctx, 1, decimal.RequireFromString("10.00"))
	c.Invalidate(ctx, 1)

	_, ok := c.Get(ctx, 1)
	assert.False(t, ok)
}

func TestMemoryBalanceCache_ConcurrentAccess(t *testing.T) {
	c := NewMemoryBalanceCache(time.Minute)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(userID uint) {
			defer wg.Done()
			c.Put(ctx, userID, decimal.NewFromInt(int64(userID)))
			c.Get(ctx, userID)
			c.Invalidate(ctx, userID)
		}(uint(i % 5))
	}
	wg.Wait()
}
