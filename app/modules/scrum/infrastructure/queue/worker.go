package scrumqueue

import (
	"context"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/scrum-bot/app/shared/observability/attr"
	"github.com/google/uuid"
	"github.com/riverqueue/river"
)

// Ticker is the scrum service entry point the worker drives.
type Ticker interface {
	Tick(ctx context.Context) error
}

// TickWorker executes scrum_tick jobs.
type TickWorker struct {
	river.WorkerDefaults[TickJob]
	logger *slog.Logger
	ticker Ticker
}

// NewTickWorker creates a new TickWorker.
func NewTickWorker(logger *slog.Logger, ticker Ticker) *TickWorker {
	return &TickWorker{logger: logger, ticker: ticker}
}

// Timeout bounds a tick well below the default interval.
func (w *TickWorker) Timeout(*river.Job[TickJob]) time.Duration {
	return 45 * time.Second
}

func (w *TickWorker) Work(ctx context.Context, job *river.Job[TickJob]) error {
	ctx = attr.WithCorrelationID(ctx, uuid.NewString())
	logger := w.logger.With(
		attr.ExtractCorrelationID(ctx),
		attr.Int64("job_id", job.ID),
		attr.String("job_kind", job.Kind),
	)

	logger.DebugContext(ctx, "Running scrum tick")
	if err := w.ticker.Tick(ctx); err != nil {
		logger.ErrorContext(ctx, "Scrum tick failed", attr.Error(err))
		return err
	}
	return nil
}
