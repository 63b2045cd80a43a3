package scrumservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	scrumdomain "github.com/Black-And-White-Club/scrum-bot/app/modules/scrum/domain"
	scrumdb "github.com/Black-And-White-Club/scrum-bot/app/modules/scrum/infrastructure/repositories"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/channel"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/observability"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/observability/attr"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/results"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "ScrumService"

// Config carries the lifecycle settings.
type Config struct {
	Window     scrumdomain.Window
	Precedence scrumdomain.Precedence
	Markers    channel.MarkerSet
	Location   *time.Location
	// Clock defaults to time.Now.
	Clock func() time.Time
	// CloseWriteTimeout bounds the poll edit and summary post made while a
	// close holds its locks. Defaults to DefaultCloseWriteTimeout.
	CloseWriteTimeout time.Duration
}

// DefaultCloseWriteTimeout is used when Config.CloseWriteTimeout is zero.
const DefaultCloseWriteTimeout = 15 * time.Second

// ScrumService implements the Service interface.
type ScrumService struct {
	repo         scrumdb.Repository
	participants Participants
	ledger       Ledger
	gateway      channel.Gateway
	window       scrumdomain.Window
	precedence   scrumdomain.Precedence
	markers      channel.MarkerSet
	loc          *time.Location
	clock        func() time.Time
	writeTimeout time.Duration
	logger       *slog.Logger
	metrics      observability.OperationMetrics
	tracer       trace.Tracer
	db           *bun.DB
}

// NewScrumService creates a new ScrumService.
func NewScrumService(
	repo scrumdb.Repository,
	participants Participants,
	ledger Ledger,
	gateway channel.Gateway,
	cfg Config,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
) *ScrumService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewNoop()
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Markers == (channel.MarkerSet{}) {
		cfg.Markers = channel.DefaultMarkerSet
	}
	if cfg.Window == (scrumdomain.Window{}) {
		cfg.Window = scrumdomain.DefaultWindow
	}
	if cfg.CloseWriteTimeout <= 0 {
		cfg.CloseWriteTimeout = DefaultCloseWriteTimeout
	}
	return &ScrumService{
		repo:         repo,
		participants: participants,
		ledger:       ledger,
		gateway:      gateway,
		window:       cfg.Window,
		precedence:   cfg.Precedence,
		markers:      cfg.Markers,
		loc:          cfg.Location,
		clock:        cfg.Clock,
		writeTimeout: cfg.CloseWriteTimeout,
		logger:       logger,
		metrics:      metrics,
		tracer:       tracer,
		db:           db,
	}
}

// now returns the current time in the scrum's location.
func (s *ScrumService) now() time.Time {
	return s.clock().In(s.loc)
}

// today loads the scrum for the current local date, nil when none exists.
func (s *ScrumService) today(ctx context.Context, now time.Time) (*scrumdomain.Scrum, error) {
	row, err := s.repo.GetByDate(ctx, nil, string(scrumdomain.DateOf(now)))
	if err != nil {
		if errors.Is(err, scrumdb.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load today's scrum: %w", err)
	}
	scrum := toDomain(row)
	return &scrum, nil
}

func toDomain(row *scrumdb.Scrum) scrumdomain.Scrum {
	return scrumdomain.Scrum{
		ID:     row.ID,
		Date:   scrumdomain.Date(row.ScrumDate),
		IsOpen: row.IsOpen,
		Poll:   channel.MessageRef{ChannelID: row.ChannelID, MessageID: row.MessageID},
	}
}

// -----------------------------------------------------------------------------
// Generic Helpers
// -----------------------------------------------------------------------------

type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *ScrumService,
	ctx context.Context,
	operationName string,
	identifier string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, serviceName+"."+operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(startTime))
	}()

	s.logger.InfoContext(ctx, "Operation triggered",
		attr.ExtractCorrelationID(ctx),
		attr.String("operation", operationName),
		attr.String("identifier", identifier),
	)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("identifier", identifier),
				attr.Error(err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)
	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Error(wrappedErr),
		)
		s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Any("failure_payload", *result.Failure),
		)
	}

	s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	s.logger.InfoContext(ctx, "Operation completed successfully",
		attr.ExtractCorrelationID(ctx),
		attr.String("operation", operationName),
		attr.String("identifier", identifier),
	)
	return result, nil
}

// runInTx runs fn inside a transaction on the service's DB. Without a DB fn
// runs directly against the repositories' default handles.
func runInTx[S any, F any](
	s *ScrumService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error),
) (results.OperationResult[S, F], error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, F]
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})
	return result, err
}
