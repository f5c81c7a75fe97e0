package ledger

import (
	"context"

	"payvault/internal/models"

	"github.com/shopspring/decimal"
)

// ReceiverRef identifies the receiving party of a transfer by user id
// or by username. Exactly one field should be set; the id wins when
// both are.
type ReceiverRef struct {
	UserID   uint
	Username string
}

// Directory resolves a receiver reference to the owner's account.
type Directory interface {
	ResolveByID(ctx context.Context, userID uint) (*models.Account, error)
	ResolveByUsername(ctx context.Context, username string) (*models.Account, error)
}

// Service is the ledger engine. It is the only component that mutates
// balances, and it never retries internally: classified errors go back
// to the caller, who decides whether to retry.
type Service interface {
	Transfer(ctx context.Context, senderUserID uint, receiver ReceiverRef, amount decimal.Decimal, description string) (*models.Transfer, error)
	Deposit(ctx context.Context, userID uint, amount decimal.Decimal, description string) (*models.Transfer, error)
}
