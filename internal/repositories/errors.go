package repositories

import "errors"

var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrTransferNotFound = errors.New("transfer not found")

	// ErrDuplicateUser means the username or email is already taken.
	ErrDuplicateUser = errors.New("username or email already taken")

	// ErrVersionConflict means a versioned write matched zero rows: the
	// account changed underneath the caller since it was loaded.
	ErrVersionConflict = errors.New("account version conflict")
)
