// Package cache holds the balance snapshot cache. The cache is
// advisory only: the account store stays the source of truth and a
// stale entry is bounded by the TTL, never trusted beyond it.
package cache

import (
	"context"

	"github.com/shopspring/decimal"
)

// BalanceCache maps a user id to a balance snapshot with an expiry.
type BalanceCache interface {
	// Get returns the cached balance and true while the entry is fresh.
	Get(ctx context.Context, userID uint) (decimal.Decimal, bool)
	// Put stores the balance with expiry = now + TTL.
	Put(ctx context.Context, userID uint, balance decimal.Decimal)
	// Invalidate drops the entry immediately.
	Invalidate(ctx context.Context, userID uint)
}
