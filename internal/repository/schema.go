package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Positions intentionally carry no UNIQUE(account_id, symbol) constraint:
// a duplicate row there means a corrupted ledger and must be observable and
// reported by callers, not masked by the schema.
const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id            BIGSERIAL PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	cash          NUMERIC NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS positions (
	id         BIGSERIAL PRIMARY KEY,
	account_id BIGINT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
	symbol     TEXT NOT NULL,
	name       TEXT NOT NULL,
	quantity   BIGINT NOT NULL,
	avg_cost   NUMERIC NOT NULL
);
CREATE INDEX IF NOT EXISTS positions_account_symbol_idx ON positions (account_id, symbol);

CREATE TABLE IF NOT EXISTS history (
	id         BIGSERIAL PRIMARY KEY,
	account_id BIGINT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
	symbol     TEXT NOT NULL,
	name       TEXT NOT NULL,
	quantity   BIGINT NOT NULL,
	price      NUMERIC NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS history_account_idx ON history (account_id);
`

func ensureSchema(ctx context.Context, conn *pgxpool.Pool) error {
	_, err := conn.Exec(ctx, schema)
	return err
}
