package participantmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating participant tables...")

		_, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS participants (
				id           BIGSERIAL   PRIMARY KEY,
				display_name TEXT        NOT NULL,
				streak       INTEGER     NOT NULL DEFAULT 0 CHECK (streak >= 0),
				created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE TABLE IF NOT EXISTS participant_identities (
				external_id    VARCHAR(20) PRIMARY KEY,
				participant_id BIGINT      NOT NULL REFERENCES participants(id) ON DELETE CASCADE,
				created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX IF NOT EXISTS idx_participant_identities_participant
				ON participant_identities(participant_id);
		`)
		if err != nil {
			return fmt.Errorf("failed to create participant tables: %w", err)
		}

		fmt.Println("Participant tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping participant tables...")

		if _, err := db.ExecContext(ctx, `
			DROP TABLE IF EXISTS participant_identities;
			DROP TABLE IF EXISTS participants;
		`); err != nil {
			return fmt.Errorf("failed to drop participant tables: %w", err)
		}
		return nil
	})
}
