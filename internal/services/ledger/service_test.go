package ledger

import (
	"context"
	"errors"
	"testing"

	"payvault/internal/models"
	"payvault/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) CreateAccount(ctx context.Context, account *models.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *mockRepo) GetAccountByUserID(ctx context.Context, userID uint) (*models.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *mockRepo) GetAccountsForUpdate(ctx context.Context, ids ...uint) ([]*models.Account, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Account), args.Error(1)
}

func (m *mockRepo) SaveAccountVersioned(ctx context.Context, account *models.Account, expectedVersion int64) error {
	args := m.Called(ctx, account, expectedVersion)
	return args.Error(0)
}

func (m *mockRepo) CreateTransfer(ctx context.Context, transfer *models.Transfer) error {
	args := m.Called(ctx, transfer)
	return args.Error(0)
}

func (m *mockRepo) GetTransferByID(ctx context.Context, id string) (*models.Transfer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transfer), args.Error(1)
}

func (m *mockRepo) ListTransfers(ctx context.Context, userID uint, filter repositories.TransferFilter, limit, offset int) ([]models.Transfer, int64, error) {
	args := m.Called(ctx, userID, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Transfer), args.Get(1).(int64), args.Error(2)
}

func (m *mockRepo) ExecuteInTransaction(ctx context.Context, fn func(repositories.LedgerRepository) error) error {
	args := m.Called(ctx)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(m)
}

type mockDirectory struct {
	mock.Mock
}

func (m *mockDirectory) ResolveByID(ctx context.Context, userID uint) (*models.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *mockDirectory) ResolveByUsername(ctx context.Context, username string) (*models.Account, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, userID uint) (decimal.Decimal, bool) {
	args := m.Called(ctx, userID)
	return args.Get(0).(decimal.Decimal), args.Bool(1)
}

func (m *mockCache) Put(ctx context.Context, userID uint, balance decimal.Decimal) {
	m.Called(ctx, userID, balance)
}

func (m *mockCache) Invalidate(ctx context.Context, userID uint) {
	m.Called(ctx, userID)
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newTestService() (*mockRepo, *mockDirectory, *mockCache, Service) {
	repo := new(mockRepo)
	directory := new(mockDirectory)
	balanceCache := new(mockCache)
	return repo, directory, balanceCache, NewService(repo, directory, balanceCache)
}

func TestTransfer_Success(t *testing.T) {
	repo, directory, balanceCache, svc := newTestService()

	sender := &models.Account{ID: 1, UserID: 10, Balance: dec("200.00"), Version: 3}
	receiver := &models.Account{ID: 2, UserID: 20, Balance: dec("10.00"), Version: 7}

	directory.On("ResolveByID", mock.Anything, uint(20)).Return(receiver, nil)
	repo.On("GetAccountByUserID", mock.Anything, uint(10)).Return(sender, nil)
	repo.On("ExecuteInTransaction", mock.Anything).Return(nil)
	repo.On("GetAccountsForUpdate", mock.Anything, []uint{1, 2}).Return([]*models.Account{sender, receiver}, nil)
	repo.On("SaveAccountVersioned", mock.Anything, sender, int64(3)).Return(nil)
	repo.On("SaveAccountVersioned", mock.Anything, receiver, int64(7)).Return(nil)
	repo.On("CreateTransfer", mock.Anything, mock.AnythingOfType("*models.Transfer")).Return(nil)
	balanceCache.On("Put", mock.Anything, uint(10), dec("150.00")).Return()
	balanceCache.On("Put", mock.Anything, uint(20), dec("60.00")).Return()

	transfer, err := svc.Transfer(context.Background(), 10, ReceiverRef{UserID: 20}, dec("50.00"), "rent")

	require.NoError(t, err)
	require.NotNil(t, transfer)
	assert.Equal(t, models.TransferStatusSuccessful, transfer.Status)
	assert.Equal(t, models.TransferTypeInternal, transfer.Type)
	assert.Equal(t, uint(1), transfer.SenderAccountID)
	require.NotNil(t, transfer.ReceiverAccountID)
	assert.Equal(t, uint(2), *transfer.ReceiverAccountID)
	assert.True(t, transfer.Amount.Equal(dec("50.00")))
	assert.Equal(t, "rent", transfer.Description)

	// Debit equals credit: the pair's total is conserved.
	assert.True(t, sender.Balance.Equal(dec("150.00")))
	assert.True(t, receiver.Balance.Equal(dec("60.00")))
	assert.True(t, sender.Balance.Add(receiver.Balance).Equal(dec("210.00")))

	repo.AssertExpectations(t)
	directory.AssertExpectations(t)
	balanceCache.AssertExpectations(t)
}

func TestTransfer_Validation(t *testing.T) {
	tests := []struct {
		name     string
		amount   decimal.Decimal
		receiver ReceiverRef
		setup    func(*mockRepo, *mockDirectory)
		wantErr  error
	}{
		{
			name:     "zero amount",
			amount:   decimal.Zero,
			receiver: ReceiverRef{UserID: 20},
			wantErr:  ErrInvalidAmount,
		},
		{
			name:     "negative amount",
			amount:   dec("-5.00"),
			receiver: ReceiverRef{UserID: 20},
			wantErr:  ErrInvalidAmount,
		},
		{
			name:     "empty receiver reference",
			amount:   dec("10.00"),
			receiver: ReceiverRef{},
			wantErr:  ErrAccountNotFound,
		},
		{
			name:     "receiver does not resolve",
			amount:   dec("10.00"),
			receiver: ReceiverRef{Username: "ghost"},
			setup: func(repo *mockRepo, directory *mockDirectory) {
				directory.On("ResolveByUsername", mock.Anything, "ghost").Return(nil, repositories.ErrUserNotFound)
			},
			wantErr: ErrAccountNotFound,
		},
		{
			name:     "self transfer",
			amount:   dec("10.00"),
			receiver: ReceiverRef{UserID: 10},
			setup: func(repo *mockRepo, directory *mockDirectory) {
				account := &models.Account{ID: 1, UserID: 10, Balance: dec("100.00")}
				directory.On("ResolveByID", mock.Anything, uint(10)).Return(account, nil)
				repo.On("GetAccountByUserID", mock.Anything, uint(10)).Return(account, nil)
			},
			wantErr: ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, directory, balanceCache, svc := newTestService()
			if tt.setup != nil {
				tt.setup(repo, directory)
			}

			transfer, err := svc.Transfer(context.Background(), 10, tt.receiver, tt.amount, "x")

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, transfer)
			// Nothing was mutated and nothing was cached.
			repo.AssertNotCalled(t, "ExecuteInTransaction", mock.Anything)
			balanceCache.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestTransfer_InsufficientFunds(t *testing.T) {
	repo, directory, balanceCache, svc := newTestService()

	sender := &models.Account{ID: 1, UserID: 10, Balance: dec("10.00"), Version: 1}
	receiver := &models.Account{ID: 2, UserID: 20, Balance: dec("0.00"), Version: 1}

	directory.On("ResolveByID", mock.Anything, uint(20)).Return(receiver, nil)
	repo.On("GetAccountByUserID", mock.Anything, uint(10)).Return(sender, nil)
	repo.On("ExecuteInTransaction", mock.Anything).Return(nil)
	repo.On("GetAccountsForUpdate", mock.Anything, []uint{1, 2}).Return([]*models.Account{sender, receiver}, nil)

	transfer, err := svc.Transfer(context.Background(), 10, ReceiverRef{UserID: 20}, dec("50.00"), "x")

	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Nil(t, transfer)
	// The sufficiency check happens before any write: no account save,
	// no transfer row, no cache update.
	repo.AssertNotCalled(t, "SaveAccountVersioned", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "CreateTransfer", mock.Anything, mock.Anything)
	balanceCache.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
	assert.True(t, sender.Balance.Equal(dec("10.00")))
	assert.True(t, receiver.Balance.Equal(dec("0.00")))
}

func TestTransfer_VersionConflict(t *testing.T) {
	repo, directory, balanceCache, svc := newTestService()

	sender := &models.Account{ID: 1, UserID: 10, Balance: dec("100.00"), Version: 4}
	receiver := &models.Account{ID: 2, UserID: 20, Balance: dec("0.00"), Version: 2}

	directory.On("ResolveByID", mock.Anything, uint(20)).Return(receiver, nil)
	repo.On("GetAccountByUserID", mock.Anything, uint(10)).Return(sender, nil)
	repo.On("ExecuteInTransaction", mock.Anything).Return(nil)
	repo.On("GetAccountsForUpdate", mock.Anything, []uint{1, 2}).Return([]*models.Account{sender, receiver}, nil)
	repo.On("SaveAccountVersioned", mock.Anything, sender, int64(4)).Return(repositories.ErrVersionConflict)

	transfer, err := svc.Transfer(context.Background(), 10, ReceiverRef{UserID: 20}, dec("100.00"), "x")

	assert.ErrorIs(t, err, ErrConcurrentModification)
	assert.Nil(t, transfer)
	repo.AssertNotCalled(t, "CreateTransfer", mock.Anything, mock.Anything)
	balanceCache.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
}

func TestTransfer_StorageFailureWrapsTransactionFailed(t *testing.T) {
	repo, directory, balanceCache, svc := newTestService()

	sender := &models.Account{ID: 1, UserID: 10, Balance: dec("100.00"), Version: 1}
	receiver := &models.Account{ID: 2, UserID: 20, Balance: dec("0.00"), Version: 1}
	boom := errors.New("connection reset")

	directory.On("ResolveByID", mock.Anything, uint(20)).Return(receiver, nil)
	repo.On("GetAccountByUserID", mock.Anything, uint(10)).Return(sender, nil)
	repo.On("ExecuteInTransaction", mock.Anything).Return(nil)
	repo.On("GetAccountsForUpdate", mock.Anything, []uint{1, 2}).Return([]*models.Account{sender, receiver}, nil)
	repo.On("SaveAccountVersioned", mock.Anything, sender, int64(1)).Return(nil)
	repo.On("SaveAccountVersioned", mock.Anything, receiver, int64(1)).Return(nil)
	repo.On("CreateTransfer", mock.Anything, mock.Anything).Return(boom)

	transfer, err := svc.Transfer(context.Background(), 10, ReceiverRef{UserID: 20}, dec("10.00"), "x")

	assert.ErrorIs(t, err, ErrTransactionFailed)
	assert.Nil(t, transfer)
	balanceCache.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeposit_Success(t *testing.T) {
	repo, _, balanceCache, svc := newTestService()

	account := &models.Account{ID: 1, UserID: 10, Balance: dec("0.00"), Version: 0}

	repo.On("GetAccountByUserID", mock.Anything, uint(10)).Return(account, nil)
	repo.On("ExecuteInTransaction", mock.Anything).Return(nil)
	repo.On("GetAccountsForUpdate", mock.Anything, []uint{1}).Return([]*models.Account{account}, nil)
	repo.On("SaveAccountVersioned", mock.Anything, account, int64(0)).Return(nil)
	repo.On("CreateTransfer", mock.Anything, mock.AnythingOfType("*models.Transfer")).Return(nil)
	balanceCache.On("Put", mock.Anything, uint(10), dec("50.00")).Return()

	transfer, err := svc.Deposit(context.Background(), 10, dec("50.00"), "top up")

	require.NoError(t, err)
	require.NotNil(t, transfer)
	assert.Equal(t, models.TransferTypeDeposit, transfer.Type)
	assert.Equal(t, models.TransferStatusSuccessful, transfer.Status)
	assert.Nil(t, transfer.ReceiverAccountID)
	assert.True(t, transfer.IsDeposit())
	assert.True(t, account.Balance.Equal(dec("50.00")))

	repo.AssertExpectations(t)
	balanceCache.AssertExpectations(t)
}

func TestDeposit_InvalidAmount(t *testing.T) {
	repo, _, balanceCache, svc := newTestService()

	transfer, err := svc.Deposit(context.Background(), 10, dec("-5.00"), "x")

	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.Nil(t, transfer)
	repo.AssertNotCalled(t, "ExecuteInTransaction", mock.Anything)
	balanceCache.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeposit_AccountMissing(t *testing.T) {
	repo, _, _, svc := newTestService()

	repo.On("GetAccountByUserID", mock.Anything, uint(99)).Return(nil, repositories.ErrAccountNotFound)

	transfer, err := svc.Deposit(context.Background(), 99, dec("5.00"), "x")

	assert.ErrorIs(t, err, ErrAccountNotFound)
	assert.Nil(t, transfer)
}
