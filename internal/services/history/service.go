// Package history is the read side for transfer records.
package history

import (
	"context"
	"errors"
	"fmt"

	"payvault/internal/models"
	"payvault/internal/repositories"
)

var ErrTransferNotFound = errors.New("transfer not found")

const (
	defaultLimit = 10
	maxLimit     = 100
)

// Query carries pagination and filtering for a history listing.
type Query struct {
	Page         int
	Limit        int
	Status       string
	Counterparty string
	Description  string
}

// Page is one page of transfer history plus the total match count.
type Page struct {
	Items []models.Transfer `json:"items"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
	Total int64             `json:"total"`
}

type Service interface {
	// GetTransfer returns a transfer only to its participants. A
	// non-participant gets the same ErrTransferNotFound as a miss, so
	// foreign transfer ids are not probeable.
	GetTransfer(ctx context.Context, transferID string, requestingUserID uint) (*models.Transfer, error)
	ListTransfers(ctx context.Context, userID uint, q Query) (*Page, error)
}

type service struct {
	repo repositories.LedgerRepository
}

func NewService(repo repositories.LedgerRepository) Service {
	if repo == nil {
		panic("repo is required")
	}
	return &service{repo: repo}
}

func (s *service) GetTransfer(ctx context.Context, transferID string, requestingUserID uint) (*models.Transfer, error) {
	transfer, err := s.repo.GetTransferByID(ctx, transferID)
	if err != nil {
		if errors.Is(err, repositories.ErrTransferNotFound) {
			return nil, ErrTransferNotFound
		}
		return nil, fmt.Errorf("failed to get transfer: %w", err)
	}

	account, err := s.repo.GetAccountByUserID(ctx, requestingUserID)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, ErrTransferNotFound
		}
		return nil, fmt.Errorf("failed to get transfer: %w", err)
	}
	if !transfer.Involves(account.ID) {
		return nil, ErrTransferNotFound
	}

	return transfer, nil
}

func (s *service) ListTransfers(ctx context.Context, userID uint, q Query) (*Page, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultLimit
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}

	filter := repositories.TransferFilter{
		Status:       q.Status,
		Counterparty: q.Counterparty,
		Description:  q.Description,
	}
	offset := (q.Page - 1) * q.Limit

	items, total, err := s.repo.ListTransfers(ctx, userID, filter, q.Limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}

	return &Page{
		Items: items,
		Page:  q.Page,
		Limit: q.Limit,
		Total: total,
	}, nil
}
