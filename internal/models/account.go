package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Account holds one user's balance. The balance is mutated only by the
// ledger engine, inside a transaction that also writes the matching
// Transfer row. Version increases on every committed balance mutation
// and backs the optimistic concurrency check in the repository.
type Account struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	UserID    uint            `gorm:"uniqueIndex;not null" json:"user_id"`
	Balance   decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"balance"`
	Version   int64           `gorm:"not null;default:0" json:"-"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	// Accounts always open empty, whatever the caller set.
	a.Balance = decimal.Zero
	a.Version = 0
	return nil
}
