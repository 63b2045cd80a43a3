package ledgerservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	ledgerdb "github.com/Black-And-White-Club/scrum-bot/app/modules/ledger/infrastructure/repositories"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/observability"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/observability/attr"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/results"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "LedgerService"

// LedgerService implements the Service interface.
type LedgerService struct {
	repo    ledgerdb.Repository
	logger  *slog.Logger
	metrics observability.OperationMetrics
	tracer  trace.Tracer
	db      *bun.DB
	now     func() time.Time
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(
	repo ledgerdb.Repository,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
) *LedgerService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewNoop()
	}
	return &LedgerService{
		repo:    repo,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
		db:      db,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// EnsureAccount returns the participant's account, creating it if needed.
func (s *LedgerService) EnsureAccount(ctx context.Context, db bun.IDB, participantID int64) (*ledgerdb.Account, error) {
	result, err := withTelemetry(s, ctx, "EnsureAccount", fmt.Sprint(participantID), func(ctx context.Context) (results.OperationResult[*ledgerdb.Account, error], error) {
		account, err := s.ensureAccount(ctx, db, participantID)
		if err != nil {
			return results.OperationResult[*ledgerdb.Account, error]{}, err
		}
		return results.SuccessResult[*ledgerdb.Account, error](account), nil
	})
	if err != nil {
		return nil, err
	}
	return *result.Success, nil
}

func (s *LedgerService) ensureAccount(ctx context.Context, db bun.IDB, participantID int64) (*ledgerdb.Account, error) {
	account, err := s.repo.GetAccountByParticipant(ctx, db, participantID)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, ledgerdb.ErrNotFound) {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	account, err = s.repo.CreateAccount(ctx, db, participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return account, nil
}

// ListBalances returns every account's balance, largest first.
func (s *LedgerService) ListBalances(ctx context.Context) ([]Balance, error) {
	result, err := withTelemetry(s, ctx, "ListBalances", "all", func(ctx context.Context) (results.OperationResult[[]Balance, error], error) {
		accounts, err := s.repo.ListAccounts(ctx, nil)
		if err != nil {
			return results.OperationResult[[]Balance, error]{}, fmt.Errorf("failed to list accounts: %w", err)
		}
		balances := make([]Balance, 0, len(accounts))
		for _, a := range accounts {
			balances = append(balances, Balance{
				AccountID:     a.ID,
				ParticipantID: a.ParticipantID,
				Amount:        amountOf(a.Balance),
			})
		}
		return results.SuccessResult[[]Balance, error](balances), nil
	})
	if err != nil {
		return nil, err
	}
	return *result.Success, nil
}

// History returns the newest ledger movements touching a participant's account.
func (s *LedgerService) History(ctx context.Context, participantID int64, limit int) ([]ledgerdb.TransactionLog, error) {
	result, err := withTelemetry(s, ctx, "History", fmt.Sprint(participantID), func(ctx context.Context) (results.OperationResult[[]ledgerdb.TransactionLog, error], error) {
		account, err := s.repo.GetAccountByParticipant(ctx, nil, participantID)
		if err != nil {
			if errors.Is(err, ledgerdb.ErrNotFound) {
				return results.SuccessResult[[]ledgerdb.TransactionLog, error](nil), nil
			}
			return results.OperationResult[[]ledgerdb.TransactionLog, error]{}, fmt.Errorf("failed to get account: %w", err)
		}
		entries, err := s.repo.ListTransactionLogs(ctx, nil, account.ID, limit)
		if err != nil {
			return results.OperationResult[[]ledgerdb.TransactionLog, error]{}, fmt.Errorf("failed to list transaction logs: %w", err)
		}
		return results.SuccessResult[[]ledgerdb.TransactionLog, error](entries), nil
	})
	if err != nil {
		return nil, err
	}
	return *result.Success, nil
}

// -----------------------------------------------------------------------------
// Generic Helpers
// -----------------------------------------------------------------------------

type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *LedgerService,
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

	s.logger.DebugContext(ctx, "Operation triggered", attr.ExtractCorrelationID(ctx), attr.String("operation", operationName))

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
	return result, nil
}

// runInTx runs fn inside a transaction. A non-nil outer handle is used to
// open it (a savepoint when outer is already a transaction); otherwise the
// service's own DB is used. Without any DB fn runs directly.
func runInTx[S any, F any](
	s *LedgerService,
	ctx context.Context,
	outer bun.IDB,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error),
) (results.OperationResult[S, F], error) {
	var result results.OperationResult[S, F]
	body := func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	}

	switch {
	case outer != nil:
		return result, outer.RunInTx(ctx, nil, body)
	case s.db != nil:
		return result, s.db.RunInTx(ctx, &sql.TxOptions{}, body)
	default:
		return fn(ctx, nil)
	}
}
