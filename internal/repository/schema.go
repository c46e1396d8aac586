package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CounterTransactionSerial names the ledger_counters row backing serial numbers.
const CounterTransactionSerial = "transaction_serial"

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS parties (
		id           BIGSERIAL PRIMARY KEY,
		name         TEXT NOT NULL UNIQUE,
		billing_name TEXT,
		location     TEXT,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at   TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS transaction_types (
		id         BIGSERIAL PRIMARY KEY,
		note       TEXT NOT NULL,
		kind       TEXT NOT NULL CHECK (kind IN ('increase', 'decrease')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id               BIGSERIAL PRIMARY KEY,
		serial_number    BIGINT NOT NULL,
		date             DATE NOT NULL,
		party_id         BIGINT NOT NULL REFERENCES parties(id),
		type_id          BIGINT NOT NULL REFERENCES transaction_types(id),
		amount           BIGINT NOT NULL CHECK (amount > 0),
		transaction_note TEXT,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at       TIMESTAMPTZ,
		CONSTRAINT transactions_serial_number_key UNIQUE (serial_number)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_party_id ON transactions(party_id)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_type_id ON transactions(type_id)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_date_serial ON transactions(date DESC, serial_number DESC)`,
	`CREATE TABLE IF NOT EXISTS ledger_counters (
		name  TEXT PRIMARY KEY,
		value BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS admins (
		id              BIGSERIAL PRIMARY KEY,
		login_id        TEXT NOT NULL UNIQUE,
		hashed_password TEXT NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// EnsureSchema creates the ledger tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
