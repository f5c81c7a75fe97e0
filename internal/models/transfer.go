package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transfer types
const (
	TransferTypeInternal = "transfer"
	TransferTypeDeposit  = "deposit"
)

// Transfer statuses
const (
	TransferStatusPending    = "pending"
	TransferStatusSuccessful = "successful"
	TransferStatusFailed     = "failed"
)

// Transfer is an immutable record of one completed money movement.
// Rows are created in their terminal status inside the same transaction
// as the balance mutation and are never updated or deleted afterwards.
// A deposit carries no receiver account.
type Transfer struct {
	ID                string          `gorm:"type:uuid;primarykey" json:"id"`
	Type              string          `gorm:"not null" json:"type"`
	SenderAccountID   uint            `gorm:"not null;index" json:"sender_account_id"`
	ReceiverAccountID *uint           `gorm:"index" json:"receiver_account_id,omitempty"`
	Amount            decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	Description       string          `gorm:"size:255" json:"description,omitempty"`
	Status            string          `gorm:"not null;default:'pending'" json:"status"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (t *Transfer) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// IsDeposit reports whether the record is a self-credit rather than a
// movement between two accounts.
func (t *Transfer) IsDeposit() bool {
	return t.Type == TransferTypeDeposit || t.ReceiverAccountID == nil
}

// Involves reports whether the given account took part in the movement.
func (t *Transfer) Involves(accountID uint) bool {
	if t.SenderAccountID == accountID {
		return true
	}
	return t.ReceiverAccountID != nil && *t.ReceiverAccountID == accountID
}
