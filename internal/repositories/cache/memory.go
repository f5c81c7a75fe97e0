package cache

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

type memoryEntry struct {
	balance decimal.Decimal
	expiry  time.Time
}

// MemoryBalanceCache is an in-process TTL cache. It is the default
// backend when no Redis address is configured.
type MemoryBalanceCache struct {
	mu      sync.RWMutex
	entries map[uint]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryBalanceCache(ttl time.Duration) *MemoryBalanceCache {
	return &MemoryBalanceCache{
		entries: make(map[uint]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *MemoryBalanceCache) Get(_ context.Context, userID uint) (decimal.Decimal, bool) {
	c.mu.RLock()
	entry, ok := c.entries[userID]
	c.mu.RUnlock()
	if !ok {
		return decimal.Zero, false
	}
	if !c.now().Before(entry.expiry) {
		c.mu.Lock()
		// Re-check under the write lock; a Put may have raced the delete.
		if current, ok := c.entries[userID]; ok && !c.now().Before(current.expiry) {
			delete(c.entries, userID)
		}
		c.mu.Unlock()
		return decimal.Zero, false
	}
	return entry.balance, true
}

func (c *MemoryBalanceCache) Put(_ context.Context, userID uint, balance decimal.Decimal) {
	c.mu.Lock()
	c.entries[userID] = memoryEntry{balance: balance, expiry: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *MemoryBalanceCache) Invalidate(_ context.Context, userID uint) {
	c.mu.Lock()
	delete(c.entries, userID)
	c.mu.Unlock()
}
