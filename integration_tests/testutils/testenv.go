package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/scrum-bot/app/migrations"
	"github.com/Black-And-White-Club/scrum-bot/integration_tests/containers"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// TestEnvironment holds the containers and connections shared by a test package.
type TestEnvironment struct {
	Ctx           context.Context
	CancelContext context.CancelFunc
	PgContainer   *postgres.PostgresContainer
	NatsContainer testcontainers.Container
	DSN           string
	NatsURL       string
	DB            *bun.DB
	NatsConn      *nats.Conn
}

// NewTestEnvironment starts Postgres and NATS and applies every migration.
func NewTestEnvironment() (*TestEnvironment, error) {
	ctx, cancel := context.WithCancel(context.Background())
	env := &TestEnvironment{Ctx: ctx, CancelContext: cancel}

	pgContainer, dsn, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to setup postgres container: %w", err)
	}
	env.PgContainer = pgContainer
	env.DSN = dsn

	natsContainer, natsURL, err := containers.SetupNatsContainer(ctx)
	if err != nil {
		env.Cleanup()
		return nil, fmt.Errorf("failed to setup nats container: %w", err)
	}
	env.NatsContainer = natsContainer
	env.NatsURL = natsURL

	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		env.Cleanup()
		return nil, fmt.Errorf("failed to open sql DB connection: %w", err)
	}
	env.DB = bun.NewDB(sqlDB, pgdialect.New())

	if err := migrations.Up(ctx, env.DB); err != nil {
		env.Cleanup()
		return nil, err
	}
	if err := runRiverMigrations(ctx, dsn); err != nil {
		env.Cleanup()
		return nil, err
	}

	natsConn, err := nats.Connect(natsURL, nats.Timeout(10*time.Second))
	if err != nil {
		env.Cleanup()
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	env.NatsConn = natsConn

	return env, nil
}

func runRiverMigrations(ctx context.Context, dsn string) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("failed to open pgx pool: %w", err)
	}
	defer pool.Close()

	if _, err := migrations.RiverUp(ctx, pool); err != nil {
		return err
	}
	return nil
}

// Reset empties every module table and zeroes the central account.
func (env *TestEnvironment) Reset(ctx context.Context) error {
	if err := TruncateTables(ctx, env.DB,
		"scrum_responses",
		"scrums",
		"ledger_transaction_logs",
		"participant_identities",
	); err != nil {
		return err
	}
	if _, err := env.DB.ExecContext(ctx, "DELETE FROM ledger_accounts WHERE participant_id IS NOT NULL"); err != nil {
		return fmt.Errorf("failed to delete participant accounts: %w", err)
	}
	if err := env.FundCentral(ctx, CentralSupply); err != nil {
		return err
	}
	// DELETE rather than TRUNCATE: a cascade would take the central account along.
	if _, err := env.DB.ExecContext(ctx, "DELETE FROM participants"); err != nil {
		return fmt.Errorf("failed to delete participants: %w", err)
	}
	return nil
}

// CentralSupply is the central balance, in minor units, after Reset.
const CentralSupply int64 = 100_000

// FundCentral sets the central account balance in minor units.
func (env *TestEnvironment) FundCentral(ctx context.Context, balance int64) error {
	if _, err := env.DB.ExecContext(ctx, "UPDATE ledger_accounts SET balance = ? WHERE participant_id IS NULL", balance); err != nil {
		return fmt.Errorf("failed to reset central account: %w", err)
	}
	return nil
}

// Cleanup tears down all resources created for testing.
func (env *TestEnvironment) Cleanup() {
	if env.CancelContext != nil {
		env.CancelContext()
	}
	if env.NatsConn != nil {
		env.NatsConn.Close()
	}
	if env.DB != nil {
		_ = env.DB.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if env.NatsContainer != nil {
		if err := env.NatsContainer.Terminate(ctx); err != nil {
			log.Printf("Error terminating NATS container: %v", err)
		}
	}
	if env.PgContainer != nil {
		if err := env.PgContainer.Terminate(ctx); err != nil {
			log.Printf("Error terminating Postgres container: %v", err)
		}
	}
}

// DiscardLogger is a silent logger for services under test.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NoopTracer returns a tracer that records nothing.
func NoopTracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer("test")
}
