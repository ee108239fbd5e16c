package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"papertrader/internal/repository"
	"papertrader/types"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrMissingField       = errors.New("username and password are required")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

type accountStore interface {
	CreateAccount(ctx context.Context, username, passwordHash string, cash decimal.Decimal) (*types.Account, error)
	GetAccountByUsername(ctx context.Context, username string) (*types.Account, error)
	DeleteAccount(ctx context.Context, id int64) error
}

// Service handles registration, login verification and account deletion.
type Service struct {
	store        accountStore
	startingCash decimal.Decimal
}

func NewService(store accountStore, startingCash decimal.Decimal) *Service {
	return &Service{store: store, startingCash: startingCash}
}

// Register creates an account with the configured starting cash. The
// password is stored as a bcrypt hash, never in the clear.
func (s *Service) Register(ctx context.Context, username, password, confirm string) (*types.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrMissingField
	}
	if password != confirm {
		return nil, ErrPasswordMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return s.store.CreateAccount(ctx, username, string(hash), s.startingCash)
}

// Authenticate verifies the username/password pair. A missing account and a
// wrong password are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*types.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrMissingField
	}

	account, err := s.store.GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return account, nil
}

// Unregister re-authenticates and then deletes the account; positions and
// history cascade with it.
func (s *Service) Unregister(ctx context.Context, username, password, confirm string) (int64, error) {
	if password != confirm {
		return 0, ErrPasswordMismatch
	}
	account, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return 0, err
	}
	if err := s.store.DeleteAccount(ctx, account.Id); err != nil {
		return 0, err
	}
	return account.Id, nil
}
