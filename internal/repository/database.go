package repository

import (
	"context"
	"errors"
	"fmt"

	"papertrader/types"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Global error declarations.
var (
	ErrAccountNotFound = errors.New("account not found in datasource")
	ErrUsernameTaken   = errors.New("username already registered")
)

type accountsRepository interface {
	InsertAccount(ctx context.Context, username, passwordHash string, cash decimal.Decimal) (accountRow, error)
	AccountById(ctx context.Context, id int64) (accountRow, error)
	AccountByUsername(ctx context.Context, username string) (accountRow, error)
	DeleteAccountCascade(ctx context.Context, id int64) error
}

type positionsRepository interface {
	PositionsByAccount(ctx context.Context, accountId int64) ([]positionRow, error)
	PositionsBySymbol(ctx context.Context, accountId int64, symbol string) ([]positionRow, error)
}

type historyRepository interface {
	HistoryByAccount(ctx context.Context, accountId int64) ([]historyRow, error)
}

type tradesRepository interface {
	ApplyTrade(ctx context.Context, trade types.Trade) error
}

// Database struct that holds the database connection and queries.
type Database struct {
	accounts  accountsRepository
	positions positionsRepository
	history   historyRepository
	trades    tradesRepository
	conn      *pgxpool.Pool
}

// NewDatabase creates a new Database instance, verifies connectivity and
// bootstraps the schema.
func NewDatabase(dbURL string) (Database, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return Database{}, fmt.Errorf("parse config: %w", err)
	}
	// Register shopspring decimal
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	conn, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return Database{}, err
	}
	// Ensure the connection is established.
	if err := conn.Ping(context.Background()); err != nil {
		return Database{}, err
	}
	if err := ensureSchema(context.Background(), conn); err != nil {
		return Database{}, fmt.Errorf("bootstrap schema: %w", err)
	}

	q := &queries{conn: conn}
	return Database{
		accounts:  q,
		positions: q,
		history:   q,
		trades:    q,
		conn:      conn}, nil
}

func (db *Database) Close() {
	if db.conn != nil {
		db.conn.Close()
	}
}
