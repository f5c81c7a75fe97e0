package ledger

import (
	"context"
	"errors"
	"fmt"

	"payvault/internal/models"
	"payvault/internal/repositories"
	"payvault/internal/repositories/cache"

	"github.com/shopspring/decimal"
)

type service struct {
	repo      repositories.LedgerRepository
	directory Directory
	cache     cache.BalanceCache
}

// NewService creates the ledger engine.
func NewService(repo repositories.LedgerRepository, directory Directory, balanceCache cache.BalanceCache) Service {
	if repo == nil {
		panic("repo is required")
	}
	if directory == nil {
		panic("directory is required")
	}
	if balanceCache == nil {
		panic("balance cache is required")
	}
	return &service{
		repo:      repo,
		directory: directory,
		cache:     balanceCache,
	}
}

// Transfer moves amount from the sender's account to the receiver's.
// Both balance writes and the transfer row commit as one transaction;
// the sufficiency check runs against the freshly locked balance, not
// any cached value. On success both parties' cache entries are
// refreshed with the post-commit balances.
func (s *service) Transfer(ctx context.Context, senderUserID uint, receiver ReceiverRef, amount decimal.Decimal, description string) (*models.Transfer, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	receiverAccount, err := s.resolveReceiver(ctx, receiver)
	if err != nil {
		return nil, err
	}
	senderAccount, err := s.repo.GetAccountByUserID(ctx, senderUserID)
	if err != nil {
		return nil, classify(err)
	}
	if senderAccount.ID == receiverAccount.ID {
		return nil, ErrInvalidAmount
	}

	var (
		transfer        *models.Transfer
		senderBalance   decimal.Decimal
		receiverBalance decimal.Decimal
	)
	err = s.repo.ExecuteInTransaction(ctx, func(tx repositories.LedgerRepository) error {
		accounts, err := tx.GetAccountsForUpdate(ctx, senderAccount.ID, receiverAccount.ID)
		if err != nil {
			return err
		}
		var sender, recv *models.Account
		for _, a := range accounts {
			switch a.ID {
			case senderAccount.ID:
				sender = a
			case receiverAccount.ID:
				recv = a
			}
		}
		if sender == nil || recv == nil {
			return repositories.ErrAccountNotFound
		}

		if sender.Balance.LessThan(amount) {
			return ErrInsufficientFunds
		}

		senderVersion := sender.Version
		receiverVersion := recv.Version
		sender.Balance = sender.Balance.Sub(amount)
		recv.Balance = recv.Balance.Add(amount)

		if err := tx.SaveAccountVersioned(ctx, sender, senderVersion); err != nil {
			return err
		}
		if err := tx.SaveAccountVersioned(ctx, recv, receiverVersion); err != nil {
			return err
		}

		receiverID := recv.ID
		transfer = &models.Transfer{
			Type:              models.TransferTypeInternal,
			SenderAccountID:   sender.ID,
			ReceiverAccountID: &receiverID,
			Amount:            amount,
			Description:       description,
			Status:            models.TransferStatusSuccessful,
		}
		if err := tx.CreateTransfer(ctx, transfer); err != nil {
			return err
		}

		senderBalance = sender.Balance
		receiverBalance = recv.Balance
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}

	s.cache.Put(ctx, senderUserID, senderBalance)
	s.cache.Put(ctx, receiverAccount.UserID, receiverBalance)
	return transfer, nil
}

// Deposit credits the user's own account. The record is kept
// receiver-less so history listings can tell it apart from a transfer.
func (s *service) Deposit(ctx context.Context, userID uint, amount decimal.Decimal, description string) (*models.Transfer, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	account, err := s.repo.GetAccountByUserID(ctx, userID)
	if err != nil {
		return nil, classify(err)
	}

	var (
		transfer *models.Transfer
		balance  decimal.Decimal
	)
	err = s.repo.ExecuteInTransaction(ctx, func(tx repositories.LedgerRepository) error {
		accounts, err := tx.GetAccountsForUpdate(ctx, account.ID)
		if err != nil {
			return err
		}
		acct := accounts[0]

		version := acct.Version
		acct.Balance = acct.Balance.Add(amount)
		if err := tx.SaveAccountVersioned(ctx, acct, version); err != nil {
			return err
		}

		transfer = &models.Transfer{
			Type:            models.TransferTypeDeposit,
			SenderAccountID: acct.ID,
			Amount:          amount,
			Description:     description,
			Status:          models.TransferStatusSuccessful,
		}
		if err := tx.CreateTransfer(ctx, transfer); err != nil {
			return err
		}

		balance = acct.Balance
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}

	s.cache.Put(ctx, userID, balance)
	return transfer, nil
}

func (s *service) resolveReceiver(ctx context.Context, ref ReceiverRef) (*models.Account, error) {
	var (
		account *models.Account
		err     error
	)
	switch {
	case ref.UserID != 0:
		account, err = s.directory.ResolveByID(ctx, ref.UserID)
	case ref.Username != "":
		account, err = s.directory.ResolveByUsername(ctx, ref.Username)
	default:
		return nil, ErrAccountNotFound
	}
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) || errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
	return account, nil
}

// classify maps storage errors onto the service taxonomy. Anything
// unrecognized becomes ErrTransactionFailed wrapping the cause.
func classify(err error) error {
	switch {
	case errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInsufficientFunds),
		errors.Is(err, ErrAccountNotFound),
		errors.Is(err, ErrConcurrentModification):
		return err
	case errors.Is(err, repositories.ErrVersionConflict):
		return ErrConcurrentModification
	case errors.Is(err, repositories.ErrAccountNotFound):
		return ErrAccountNotFound
	default:
		return fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
}
