package repositories

import (
	"context"

	"payvault/internal/models"
)

// TransferFilter narrows a transfer history listing.
type TransferFilter struct {
	Status       string // exact match on transfer status
	Counterparty string // substring match on the other party's name
	Description  string // substring match on the description
}

// LedgerRepository is the durable store for accounts and transfer
// records. Account writes are versioned: SaveAccountVersioned only
// succeeds when the stored version still equals the version the caller
// loaded, so two racing mutations can never both commit.
type LedgerRepository interface {
	CreateAccount(ctx context.Context, account *models.Account) error
	GetAccountByUserID(ctx context.Context, userID uint) (*models.Account, error)

	// GetAccountsForUpdate loads the given accounts with row locks,
	// always in ascending id order so two overlapping transactions
	// cannot deadlock on swapped sender/receiver pairs. Must be called
	// inside ExecuteInTransaction.
	GetAccountsForUpdate(ctx context.Context, ids ...uint) ([]*models.Account, error)

	// SaveAccountVersioned writes balance and bumps the version as a
	// single compare-and-swap conditioned on expectedVersion. Returns
	// ErrVersionConflict when zero rows match.
	SaveAccountVersioned(ctx context.Context, account *models.Account, expectedVersion int64) error

	CreateTransfer(ctx context.Context, transfer *models.Transfer) error
	GetTransferByID(ctx context.Context, id string) (*models.Transfer, error)
	ListTransfers(ctx context.Context, userID uint, filter TransferFilter, limit, offset int) ([]models.Transfer, int64, error)

	// ExecuteInTransaction runs fn against a repository bound to a
	// database transaction. Any error from fn rolls everything back.
	ExecuteInTransaction(ctx context.Context, fn func(LedgerRepository) error) error
}
