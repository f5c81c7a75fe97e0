package ledger

import "errors"

// Service errors. Each maps to a distinct HTTP status at the handler
// boundary so callers can tell a retryable conflict from a permanent
// rejection.
var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrAccountNotFound   = errors.New("account not found")
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrConcurrentModification means a conflicting mutation committed
	// first. The caller may retry with fresh state.
	ErrConcurrentModification = errors.New("concurrent modification")

	// ErrTransactionFailed wraps any other storage failure. The whole
	// transaction rolled back; no balance change is observable.
	ErrTransactionFailed = errors.New("transaction failed")
)
