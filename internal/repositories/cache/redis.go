package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const balanceKeyPrefix = "balance:"

// RedisBalanceCache stores balance snapshots in Redis so several
// instances share one cache. Expiry is delegated to the server TTL.
type RedisBalanceCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func NewRedisBalanceCache(client *redis.Client, ttl time.Duration) *RedisBalanceCache {
	return &RedisBalanceCache{client: client, ttl: ttl}
}

func (c *RedisBalanceCache) Get(ctx context.Context, userID uint) (decimal.Decimal, bool) {
	val, err := c.client.Get(ctx, balanceKey(userID)).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("balance cache read failed for user %d: %v", userID, err)
		}
		return decimal.Zero, false
	}
	balance, err := decimal.NewFromString(val)
	if err != nil {
		// Unparseable entry is treated as a miss and dropped.
		c.Invalidate(ctx, userID)
		return decimal.Zero, false
	}
	return balance, true
}

func (c *RedisBalanceCache) Put(ctx context.Context, userID uint, balance decimal.Decimal) {
	if err := c.client.Set(ctx, balanceKey(userID), balance.String(), c.ttl).Err(); err != nil {
		log.Printf("balance cache write failed for user %d: %v", userID, err)
	}
}

func (c *RedisBalanceCache) Invalidate(ctx context.Context, userID uint) {
	if err := c.client.Del(ctx, balanceKey(userID)).Err(); err != nil {
		log.Printf("balance cache invalidation failed for user %d: %v", userID, err)
	}
}

func balanceKey(userID uint) string {
	return fmt.Sprintf("%s%d", balanceKeyPrefix, userID)
}
