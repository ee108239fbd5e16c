package repository

import (
	"context"
	"time"

	"papertrader/types"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type accountRow struct {
	Id           int64
	Username     string
	PasswordHash string
	Cash         decimal.Decimal
	CreatedAt    time.Time
}

type positionRow struct {
	Id        int64
	AccountId int64
	Symbol    string
	Name      string
	Quantity  int64
	AvgCost   decimal.Decimal
}

type historyRow struct {
	Id        int64
	AccountId int64
	Symbol    string
	Name      string
	Quantity  int64
	Price     decimal.Decimal
	CreatedAt time.Time
}

// queries is the pgx-backed implementation of the per-entity repositories.
type queries struct {
	conn *pgxpool.Pool
}

func (q *queries) InsertAccount(ctx context.Context, username, passwordHash string, cash decimal.Decimal) (accountRow, error) {
	var row accountRow
	err := q.conn.QueryRow(ctx,
		`INSERT INTO accounts (username, password_hash, cash)
		 VALUES ($1, $2, $3)
		 RETURNING id, username, password_hash, cash, created_at`,
		username, passwordHash, cash,
	).Scan(&row.Id, &row.Username, &row.PasswordHash, &row.Cash, &row.CreatedAt)
	return row, err
}

func (q *queries) AccountById(ctx context.Context, id int64) (accountRow, error) {
	var row accountRow
	err := q.conn.QueryRow(ctx,
		`SELECT id, username, password_hash, cash, created_at FROM accounts WHERE id = $1`,
		id,
	).Scan(&row.Id, &row.Username, &row.PasswordHash, &row.Cash, &row.CreatedAt)
	return row, err
}

func (q *queries) AccountByUsername(ctx context.Context, username string) (accountRow, error) {
	var row accountRow
	err := q.conn.QueryRow(ctx,
		`SELECT id, username, password_hash, cash, created_at FROM accounts WHERE username = $1`,
		username,
	).Scan(&row.Id, &row.Username, &row.PasswordHash, &row.Cash, &row.CreatedAt)
	return row, err
}

// DeleteAccountCascade removes the account together with all of its
// positions and history rows in one transaction.
func (q *queries) DeleteAccountCascade(ctx context.Context, id int64) error {
	tx, err := q.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM history WHERE account_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM positions WHERE account_id = $1`, id); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return tx.Commit(ctx)
}

func (q *queries) PositionsByAccount(ctx context.Context, accountId int64) ([]positionRow, error) {
	rows, err := q.conn.Query(ctx,
		`SELECT id, account_id, symbol, name, quantity, avg_cost
		 FROM positions WHERE account_id = $1 ORDER BY symbol`,
		accountId,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[positionRow])
}

func (q *queries) PositionsBySymbol(ctx context.Context, accountId int64, symbol string) ([]positionRow, error) {
	rows, err := q.conn.Query(ctx,
		`SELECT id, account_id, symbol, name, quantity, avg_cost
		 FROM positions WHERE account_id = $1 AND symbol = $2`,
		accountId, symbol,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[positionRow])
}

func (q *queries) HistoryByAccount(ctx context.Context, accountId int64) ([]historyRow, error) {
	rows, err := q.conn.Query(ctx,
		`SELECT id, account_id, symbol, name, quantity, price, created_at
		 FROM history WHERE account_id = $1 ORDER BY id`,
		accountId,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[historyRow])
}

// ApplyTrade writes the history row, the position change and the new cash
// balance in a single transaction so a trade is never half applied.
func (q *queries) ApplyTrade(ctx context.Context, trade types.Trade) error {
	tx, err := q.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO history (account_id, symbol, name, quantity, price)
		 VALUES ($1, $2, $3, $4, $5)`,
		trade.AccountId, trade.Entry.Symbol, trade.Entry.Name, trade.Entry.Quantity, trade.Entry.Price,
	); err != nil {
		return err
	}

	if trade.Position == nil {
		if _, err := tx.Exec(ctx,
			`DELETE FROM positions WHERE account_id = $1 AND symbol = $2`,
			trade.AccountId, trade.Entry.Symbol,
		); err != nil {
			return err
		}
	} else {
		tag, err := tx.Exec(ctx,
			`UPDATE positions SET quantity = $3, avg_cost = $4, name = $5
			 WHERE account_id = $1 AND symbol = $2`,
			trade.AccountId, trade.Position.Symbol, trade.Position.Quantity, trade.Position.AvgCost, trade.Position.Name,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			if _, err := tx.Exec(ctx,
				`INSERT INTO positions (account_id, symbol, name, quantity, avg_cost)
				 VALUES ($1, $2, $3, $4, $5)`,
				trade.AccountId, trade.Position.Symbol, trade.Position.Name, trade.Position.Quantity, trade.Position.AvgCost,
			); err != nil {
				return err
			}
		}
	}

	if _, err := tx.Exec(ctx,
		`UPDATE accounts SET cash = $2 WHERE id = $1`,
		trade.AccountId, trade.NewCash,
	); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
