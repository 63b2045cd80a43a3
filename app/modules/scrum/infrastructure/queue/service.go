package scrumqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/scrum-bot/app/shared/observability"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/observability/attr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
)

const metricsService = "river"

// DefaultTickInterval is used when no interval is configured.
const DefaultTickInterval = time.Minute

// QueueService runs the scrum scheduler on River.
type QueueService interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	HealthCheck(ctx context.Context) error
}

// Ensure Service implements QueueService
var _ QueueService = (*Service)(nil)

// Service owns the pgx pool and River client that run periodic scrum ticks.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	logger  *slog.Logger
	metrics observability.OperationMetrics
}

// NewService connects to dsn and builds a River client with the tick worker
// and its periodic job registered.
func NewService(ctx context.Context, logger *slog.Logger, dsn string, interval time.Duration, metrics observability.OperationMetrics, ticker Ticker) (*Service, error) {
	if metrics == nil {
		metrics = observability.NewNoop()
	}
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	ctxLogger := logger.With(
		attr.String("component", "river_queue"),
		attr.Duration("tick_interval", interval),
	)

	start := time.Now()
	metrics.RecordOperationAttempt(ctx, "initialize_service", metricsService)

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", metricsService)
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", metricsService)
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "initialize_service", metricsService)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewTickWorker(ctxLogger, ticker))

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			QueueName: {MaxWorkers: 1},
		},
		Workers:      workers,
		PeriodicJobs: []*river.PeriodicJob{periodicTick(interval)},
		Logger:       ctxLogger,
	})
	if err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "initialize_service", metricsService)
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	metrics.RecordOperationSuccess(ctx, "initialize_service", metricsService)
	metrics.RecordOperationDuration(ctx, "initialize_service", metricsService, time.Since(start))
	ctxLogger.Info("Scrum queue service initialized")

	return &Service{client: client, pool: pool, logger: ctxLogger, metrics: metrics}, nil
}

func (s *Service) Start(ctx context.Context) error {
	return s.instrument(ctx, "start_service", func() error {
		if err := s.client.Start(ctx); err != nil {
			return fmt.Errorf("failed to start River client: %w", err)
		}
		s.logger.Info("Scrum queue service started")
		return nil
	})
}

// Stop drains running ticks and closes the pool.
func (s *Service) Stop(ctx context.Context) error {
	return s.instrument(ctx, "stop_service", func() error {
		defer s.pool.Close()
		if err := s.client.Stop(ctx); err != nil {
			return fmt.Errorf("failed to stop River client: %w", err)
		}
		s.logger.Info("Scrum queue service stopped")
		return nil
	})
}

// HealthCheck pings the pool River runs on.
func (s *Service) HealthCheck(ctx context.Context) error {
	return s.instrument(ctx, "health_check", func() error {
		if s.client == nil || s.pool == nil {
			return errors.New("river client is not initialized")
		}
		if err := s.pool.Ping(ctx); err != nil {
			return fmt.Errorf("queue service health check failed: %w", err)
		}
		return nil
	})
}

func (s *Service) instrument(ctx context.Context, operation string, fn func() error) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, operation, metricsService)
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operation, metricsService, time.Since(start))
	}()

	if err := fn(); err != nil {
		s.logger.ErrorContext(ctx, "Queue operation failed", attr.String("operation", operation), attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, operation, metricsService)
		return err
	}
	s.metrics.RecordOperationSuccess(ctx, operation, metricsService)
	return nil
}
