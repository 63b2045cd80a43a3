package scrummigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating scrum tables...")

		_, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS scrums (
				id         BIGSERIAL   PRIMARY KEY,
				scrum_date VARCHAR(10) NOT NULL UNIQUE,
				is_open    BOOLEAN     NOT NULL DEFAULT TRUE,
				channel_id VARCHAR(20) NOT NULL,
				message_id VARCHAR(20) NOT NULL UNIQUE,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				closed_at  TIMESTAMPTZ
			);
			CREATE TABLE IF NOT EXISTS scrum_responses (
				id             BIGSERIAL   PRIMARY KEY,
				scrum_id       BIGINT      NOT NULL REFERENCES scrums(id) ON DELETE CASCADE,
				participant_id BIGINT      NOT NULL REFERENCES participants(id) ON DELETE CASCADE,
				available      BOOLEAN     NOT NULL,
				responded_at   TIMESTAMPTZ NOT NULL,
				UNIQUE (scrum_id, participant_id)
			);
		`)
		if err != nil {
			return fmt.Errorf("failed to create scrum tables: %w", err)
		}

		fmt.Println("Scrum tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping scrum tables...")

		if _, err := db.ExecContext(ctx, `
			DROP TABLE IF EXISTS scrum_responses;
			DROP TABLE IF EXISTS scrums;
		`); err != nil {
			return fmt.Errorf("failed to drop scrum tables: %w", err)
		}
		return nil
	})
}
