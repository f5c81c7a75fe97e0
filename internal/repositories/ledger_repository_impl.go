package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"payvault/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) CreateAccount(ctx context.Context, account *models.Account) error {
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *ledgerRepository) GetAccountByUserID(ctx context.Context, userID uint) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

func (r *ledgerRepository) GetAccountsForUpdate(ctx context.Context, ids ...uint) ([]*models.Account, error) {
	var accounts []*models.Account
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&accounts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to lock accounts: %w", err)
	}
	if len(accounts) != len(ids) {
		return nil, ErrAccountNotFound
	}
	return accounts, nil
}

func (r *ledgerRepository) SaveAccountVersioned(ctx context.Context, account *models.Account, expectedVersion int64) error {
	result := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ? AND version = ?", account.ID, expectedVersion).
		Updates(map[string]interface{}{
			"balance":    account.Balance,
			"version":    expectedVersion + 1,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to save account: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}
	account.Version = expectedVersion + 1
	return nil
}

func (r *ledgerRepository) CreateTransfer(ctx context.Context, transfer *models.Transfer) error {
	if err := r.db.WithContext(ctx).Create(transfer).Error; err != nil {
		return fmt.Errorf("failed to create transfer: %w", err)
	}
	return nil
}

func (r *ledgerRepository) GetTransferByID(ctx context.Context, id string) (*models.Transfer, error) {
	var transfer models.Transfer
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&transfer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransferNotFound
		}
		return nil, fmt.Errorf("failed to get transfer: %w", err)
	}
	return &transfer, nil
}

func (r *ledgerRepository) ListTransfers(ctx context.Context, userID uint, filter TransferFilter, limit, offset int) ([]models.Transfer, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Transfer{}).
		Joins("JOIN accounts AS sender_acct ON sender_acct.id = transfers.sender_account_id").
		Joins("LEFT JOIN accounts AS receiver_acct ON receiver_acct.id = transfers.receiver_account_id").
		Joins("JOIN users AS sender ON sender.id = sender_acct.user_id").
		Joins("LEFT JOIN users AS receiver ON receiver.id = receiver_acct.user_id").
		Where("sender_acct.user_id = ? OR receiver_acct.user_id = ?", userID, userID)

	if filter.Status != "" {
		query = query.Where("transfers.status = ?", filter.Status)
	}
	if filter.Description != "" {
		query = query.Where("transfers.description ILIKE ?", "%"+filter.Description+"%")
	}
	if filter.Counterparty != "" {
		pattern := "%" + filter.Counterparty + "%"
		query = query.Where("sender.name ILIKE ? OR receiver.name ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transfers: %w", err)
	}

	var transfers []models.Transfer
	err := query.
		Select("transfers.*").
		Order("transfers.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&transfers).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transfers: %w", err)
	}
	return transfers, total, nil
}

func (r *ledgerRepository) ExecuteInTransaction(ctx context.Context, fn func(LedgerRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ledgerRepository{db: tx})
	})
}
