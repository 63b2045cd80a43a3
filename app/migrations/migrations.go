// Package migrations lists every module's schema migrations in dependency order.
package migrations

import (
	"context"
	"fmt"

	ledgermigrations "github.com/Black-And-White-Club/scrum-bot/app/modules/ledger/infrastructure/repositories/migrations"
	participantmigrations "github.com/Black-And-White-Club/scrum-bot/app/modules/participant/infrastructure/repositories/migrations"
	scrummigrations "github.com/Black-And-White-Club/scrum-bot/app/modules/scrum/infrastructure/repositories/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// Module is one module's migration set.
type Module struct {
	Name       string
	Migrations *migrate.Migrations
}

// Modules returns the sets in apply order. Later modules reference tables of
// earlier ones.
func Modules() []Module {
	return []Module{
		{Name: "participant", Migrations: participantmigrations.Migrations},
		{Name: "ledger", Migrations: ledgermigrations.Migrations},
		{Name: "scrum", Migrations: scrummigrations.Migrations},
	}
}

// Migrator pairs a module name with its bun migrator.
type Migrator struct {
	Name string
	*migrate.Migrator
}

// NewMigrators builds one migrator per module, each tracking its own
// history table.
func NewMigrators(db *bun.DB) []Migrator {
	modules := Modules()
	out := make([]Migrator, 0, len(modules))
	for _, m := range modules {
		out = append(out, Migrator{
			Name: m.Name,
			Migrator: migrate.NewMigrator(db, m.Migrations,
				migrate.WithTableName("bun_migrations_"+m.Name),
				migrate.WithLocksTableName("bun_migration_locks_"+m.Name),
			),
		})
	}
	return out
}

// Up initializes and applies every module's migrations in order.
func Up(ctx context.Context, db *bun.DB) error {
	for _, m := range NewMigrators(db) {
		if err := m.Init(ctx); err != nil {
			return fmt.Errorf("failed to init %s migrations: %w", m.Name, err)
		}
		if _, err := m.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to apply %s migrations: %w", m.Name, err)
		}
	}
	return nil
}

// RiverUp applies River's own schema on pool.
func RiverUp(ctx context.Context, pool *pgxpool.Pool) (*rivermigrate.MigrateResult, error) {
	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create river migrator: %w", err)
	}
	res, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to apply river migrations: %w", err)
	}
	return res, nil
}
