package ledgermigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating ledger tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS ledger_accounts (
					id             BIGSERIAL   PRIMARY KEY,
					participant_id BIGINT      NULL UNIQUE REFERENCES participants(id),
					balance        BIGINT      NOT NULL DEFAULT 0,
					created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE UNIQUE INDEX IF NOT EXISTS idx_ledger_accounts_single_central
					ON ledger_accounts ((participant_id IS NULL))
					WHERE participant_id IS NULL;
			`); err != nil {
				return fmt.Errorf("failed to create ledger_accounts table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS ledger_transaction_logs (
					id              BIGSERIAL   PRIMARY KEY,
					tx_time         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					from_account_id BIGINT      NOT NULL REFERENCES ledger_accounts(id),
					to_account_id   BIGINT      NOT NULL REFERENCES ledger_accounts(id),
					amount          BIGINT      NOT NULL CHECK (amount > 0),
					memo            TEXT        NOT NULL DEFAULT ''
				);
				CREATE INDEX IF NOT EXISTS idx_ledger_tx_logs_from ON ledger_transaction_logs(from_account_id, tx_time DESC);
				CREATE INDEX IF NOT EXISTS idx_ledger_tx_logs_to ON ledger_transaction_logs(to_account_id, tx_time DESC);
			`); err != nil {
				return fmt.Errorf("failed to create ledger_transaction_logs table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				INSERT INTO ledger_accounts (participant_id, balance)
				SELECT NULL, 0
				WHERE NOT EXISTS (SELECT 1 FROM ledger_accounts WHERE participant_id IS NULL);
			`); err != nil {
				return fmt.Errorf("failed to seed central account: %w", err)
			}

			fmt.Println("Ledger tables created successfully!")
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping ledger tables...")

		if _, err := db.ExecContext(ctx, `
			DROP TABLE IF EXISTS ledger_transaction_logs;
			DROP TABLE IF EXISTS ledger_accounts;
		`); err != nil {
			return fmt.Errorf("failed to drop ledger tables: %w", err)
		}

		fmt.Println("Ledger tables dropped successfully!")
		return nil
	})
}
