package repository

import (
	"context"
	"errors"
	"fmt"

	"papertrader/types"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

const uniqueViolation = "23505"

// CreateAccount registers a new account with the given starting cash.
func (db *Database) CreateAccount(ctx context.Context, username, passwordHash string, cash decimal.Decimal) (*types.Account, error) {
	row, err := db.accounts.InsertAccount(ctx, username, passwordHash, cash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("username %s: %w", username, ErrUsernameTaken)
		}
		return nil, err
	}
	return accountFromRow(row), nil
}

// GetAccount retrieves a types.Account by its id.
func (db *Database) GetAccount(ctx context.Context, id int64) (*types.Account, error) {
	row, err := db.accounts.AccountById(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("account %d: %w", id, ErrAccountNotFound)
		}
		return nil, err
	}
	return accountFromRow(row), nil
}

// GetAccountByUsername retrieves a types.Account by its username.
func (db *Database) GetAccountByUsername(ctx context.Context, username string) (*types.Account, error) {
	row, err := db.accounts.AccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("username %s: %w", username, ErrAccountNotFound)
		}
		return nil, err
	}
	return accountFromRow(row), nil
}

// DeleteAccount removes the account and everything under it: positions and
// history go with it.
func (db *Database) DeleteAccount(ctx context.Context, id int64) error {
	if err := db.accounts.DeleteAccountCascade(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("account %d: %w", id, ErrAccountNotFound)
		}
		return err
	}
	return nil
}

func accountFromRow(row accountRow) *types.Account {
	return &types.Account{
		Id:           row.Id,
		Username:     row.Username,
		PasswordHash: row.PasswordHash,
		Cash:         row.Cash,
		CreatedAt:    row.CreatedAt,
	}
}
