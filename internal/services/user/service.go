// Package user is the directory of account owners: signup plus the
// receiver resolution the ledger engine relies on.
package user

import (
	"context"
	"errors"
	"fmt"

	"payvault/internal/models"
	"payvault/internal/repositories"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrMissingFields     = errors.New("username, email and password are required")
	ErrWeakPassword      = errors.New("password must be at least 8 characters")
	ErrAlreadyRegistered = errors.New("username or email already registered")
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*models.User, error)
	GetByID(ctx context.Context, userID uint) (*models.User, error)

	// Directory resolution used by the ledger engine.
	ResolveByID(ctx context.Context, userID uint) (*models.Account, error)
	ResolveByUsername(ctx context.Context, username string) (*models.Account, error)
}

type service struct {
	users repositories.UserRepository
}

func NewService(users repositories.UserRepository) Service {
	if users == nil {
		panic("user repository is required")
	}
	return &service{users: users}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, ErrMissingFields
	}
	if len(req.Password) < 8 {
		return nil, ErrWeakPassword
	}
	if req.Name == "" {
		req.Name = req.Username
	}

	if _, err := s.users.GetByUsername(ctx, req.Username); err == nil {
		return nil, ErrAlreadyRegistered
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, err
	}
	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrAlreadyRegistered
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashed),
		Name:     req.Name,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// The pre-checks race against concurrent signups; the unique
		// index has the final say.
		if errors.Is(err, repositories.ErrDuplicateUser) {
			return nil, ErrAlreadyRegistered
		}
		return nil, err
	}
	return user, nil
}

func (s *service) GetByID(ctx context.Context, userID uint) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *service) ResolveByID(ctx context.Context, userID uint) (*models.Account, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Account == nil {
		return nil, repositories.ErrAccountNotFound
	}
	return user.Account, nil
}

func (s *service) ResolveByUsername(ctx context.Context, username string) (*models.Account, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user.Account == nil {
		return nil, repositories.ErrAccountNotFound
	}
	return user.Account, nil
}
