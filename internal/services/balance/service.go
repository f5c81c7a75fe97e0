// Package balance is the read side for account balances. Reads go
// through the snapshot cache; the account store is only hit on a miss
// and repopulates the cache for the TTL window.
package balance

import (
	"context"
	"errors"
	"fmt"

	"payvault/internal/repositories"
	"payvault/internal/repositories/cache"

	"github.com/shopspring/decimal"
)

var ErrAccountNotFound = errors.New("account not found")

type Service interface {
	GetBalance(ctx context.Context, userID uint) (decimal.Decimal, error)
}

type service struct {
	repo  repositories.LedgerRepository
	cache cache.BalanceCache
}

func NewService(repo repositories.LedgerRepository, balanceCache cache.BalanceCache) Service {
	if repo == nil {
		panic("repo is required")
	}
	if balanceCache == nil {
		panic("balance cache is required")
	}
	return &service{repo: repo, cache: balanceCache}
}

func (s *service) GetBalance(ctx context.Context, userID uint) (decimal.Decimal, error) {
	if balance, ok := s.cache.Get(ctx, userID); ok {
		return balance, nil
	}

	account, err := s.repo.GetAccountByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return decimal.Zero, ErrAccountNotFound
		}
		return decimal.Zero, fmt.Errorf("failed to get balance: %w", err)
	}

	s.cache.Put(ctx, userID, account.Balance)
	return account.Balance, nil
}
