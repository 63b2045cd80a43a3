package commandservice

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	commanddomain "github.com/Black-And-White-Club/scrum-bot/app/modules/command/domain"
	ledgerdomain "github.com/Black-And-White-Club/scrum-bot/app/modules/ledger/domain"
	participantservice "github.com/Black-And-White-Club/scrum-bot/app/modules/participant/application"
	participantdb "github.com/Black-And-White-Club/scrum-bot/app/modules/participant/infrastructure/repositories"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/channel"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/observability"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/observability/attr"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/results"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	serviceName = "CommandService"

	// CentralAccountName labels the central account in balance listings.
	CentralAccountName = "Central Bank"
)

type commandResult = results.OperationResult[Reply, error]

// CommandService implements the Service interface.
type CommandService struct {
	dispatcher   *commanddomain.Dispatcher
	participants Participants
	ledger       Ledger
	logger       *slog.Logger
	metrics      observability.OperationMetrics
	tracer       trace.Tracer
}

// NewCommandService creates a new CommandService.
func NewCommandService(
	dispatcher *commanddomain.Dispatcher,
	participants Participants,
	ledger Ledger,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
) *CommandService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewNoop()
	}
	return &CommandService{
		dispatcher:   dispatcher,
		participants: participants,
		ledger:       ledger,
		logger:       logger,
		metrics:      metrics,
		tracer:       tracer,
	}
}

func (s *CommandService) Execute(ctx context.Context, inv Invocation) (commandResult, error) {
	return s.withTelemetry(ctx, inv, func(ctx context.Context) (commandResult, error) {
		cmd, err := s.dispatcher.Parse(inv.Name, inv.Args)
		if err != nil {
			return results.FailureResult[Reply, error](err), nil
		}

		switch c := cmd.(type) {
		case commanddomain.Greet:
			return s.greet(ctx, inv.Actor)
		case commanddomain.Balances:
			return s.balances(ctx)
		case commanddomain.History:
			return s.history(ctx, inv.Actor, c.Limit)
		case commanddomain.Register:
			return s.register(ctx, inv.Actor, c.DisplayName)
		default:
			panic(fmt.Sprintf("unhandled command %T", cmd))
		}
	})
}

func (s *CommandService) resolve(ctx context.Context, actor channel.ActorID) (*participantdb.Participant, *commandResult, error) {
	p, err := s.participants.Resolve(ctx, actor)
	if err == nil {
		return p, nil, nil
	}
	var parseErr *channel.IdentifierParseError
	switch {
	case errors.Is(err, participantdb.ErrNotFound):
		failure := results.FailureResult[Reply, error](ErrNotRegistered)
		return nil, &failure, nil
	case errors.As(err, &parseErr):
		failure := results.FailureResult[Reply, error](err)
		return nil, &failure, nil
	}
	return nil, nil, fmt.Errorf("failed to resolve invoker: %w", err)
}

func (s *CommandService) greet(ctx context.Context, actor channel.ActorID) (commandResult, error) {
	p, failure, err := s.resolve(ctx, actor)
	if err != nil || failure != nil {
		return deref(failure), err
	}
	return results.SuccessResult[Reply, error](Reply{Content: "Hello " + p.DisplayName}), nil
}

type balanceLine struct {
	name    string
	amount  ledgerdomain.Amount
	streak  int
	central bool
}

func (s *CommandService) balances(ctx context.Context) (commandResult, error) {
	roster, err := s.participants.Roster(ctx, nil)
	if err != nil {
		return commandResult{}, fmt.Errorf("failed to load participants: %w", err)
	}
	balances, err := s.ledger.ListBalances(ctx)
	if err != nil {
		return commandResult{}, fmt.Errorf("failed to load balances: %w", err)
	}

	byParticipant := make(map[int64]ledgerdomain.Amount, len(balances))
	lines := make([]balanceLine, 0, len(roster)+1)
	for _, b := range balances {
		if b.IsCentral() {
			lines = append(lines, balanceLine{name: CentralAccountName, amount: b.Amount, central: true})
			continue
		}
		byParticipant[*b.ParticipantID] = b.Amount
	}
	for _, p := range roster {
		lines = append(lines, balanceLine{name: p.DisplayName, amount: byParticipant[p.ID], streak: p.Streak})
	}

	slices.SortStableFunc(lines, func(a, b balanceLine) int {
		return cmp.Or(cmp.Compare(b.amount, a.amount), cmp.Compare(a.name, b.name))
	})

	var sb strings.Builder
	sb.WriteString("Current balances:\n\n")
	for _, l := range lines {
		if l.central {
			fmt.Fprintf(&sb, "%s: %s\n", l.name, commanddomain.FormatAmount(l.amount))
			continue
		}
		fmt.Fprintf(&sb, "%s: %s (scrum streak %d)\n", l.name, commanddomain.FormatAmount(l.amount), l.streak)
	}
	return results.SuccessResult[Reply, error](Reply{Content: strings.TrimRight(sb.String(), "\n")}), nil
}

func (s *CommandService) history(ctx context.Context, actor channel.ActorID, limit int) (commandResult, error) {
	p, failure, err := s.resolve(ctx, actor)
	if err != nil || failure != nil {
		return deref(failure), err
	}

	entries, err := s.ledger.History(ctx, p.ID, limit)
	if err != nil {
		return commandResult{}, fmt.Errorf("failed to load history: %w", err)
	}
	if len(entries) == 0 {
		return results.SuccessResult[Reply, error](Reply{Content: "You have no ledger entries yet."}), nil
	}

	balances, err := s.ledger.ListBalances(ctx)
	if err != nil {
		return commandResult{}, fmt.Errorf("failed to load balances: %w", err)
	}
	var own int64
	for _, b := range balances {
		if b.ParticipantID != nil && *b.ParticipantID == p.ID {
			own = b.AccountID
			break
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Your last %d ledger entries:\n", len(entries))
	for _, e := range entries {
		amount := ledgerdomain.Amount(e.Amount)
		sign := "+"
		if e.FromAccountID == own {
			sign = "-"
		}
		fmt.Fprintf(&sb, "\n%s %s%s %s", e.TxTime.UTC().Format(time.DateOnly), sign, commanddomain.FormatAmount(amount), e.Memo)
	}
	return results.SuccessResult[Reply, error](Reply{Content: sb.String()}), nil
}

func (s *CommandService) register(ctx context.Context, actor channel.ActorID, displayName string) (commandResult, error) {
	p, err := s.participants.Register(ctx, displayName, actor)
	if err != nil {
		var parseErr *channel.IdentifierParseError
		switch {
		case errors.Is(err, participantdb.ErrIdentityTaken):
			return results.FailureResult[Reply, error](ErrAlreadyRegistered), nil
		case errors.As(err, &parseErr), errors.Is(err, participantservice.ErrEmptyDisplayName):
			return results.FailureResult[Reply, error](err), nil
		}
		return commandResult{}, fmt.Errorf("failed to register: %w", err)
	}
	return results.SuccessResult[Reply, error](Reply{Content: fmt.Sprintf("Welcome, %s! You will get tomorrow's scrum check.", p.DisplayName)}), nil
}

func deref(r *commandResult) commandResult {
	if r == nil {
		return commandResult{}
	}
	return *r
}

// -----------------------------------------------------------------------------
// Generic Helpers
// -----------------------------------------------------------------------------

func (s *CommandService) withTelemetry(ctx context.Context, inv Invocation, op func(ctx context.Context) (commandResult, error)) (result commandResult, err error) {
	operationName := "Execute"
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, serviceName+"."+operationName, trace.WithAttributes(
			attribute.String("command", inv.Name),
			attribute.String("actor", string(inv.Actor)),
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

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("command", inv.Name),
				attr.Error(err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			span.RecordError(err)
			result = commandResult{}
		}
	}()

	result, err = op(ctx)
	if err != nil {
		err = fmt.Errorf("%s %s: %w", operationName, inv.Name, err)
		s.logger.ErrorContext(ctx, "Command failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("command", inv.Name),
			attr.String("actor", string(inv.Actor)),
			attr.Error(err),
		)
		s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		span.RecordError(err)
		return result, err
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Command rejected",
			attr.ExtractCorrelationID(ctx),
			attr.String("command", inv.Name),
			attr.String("actor", string(inv.Actor)),
			attr.Error(*result.Failure),
		)
	}
	s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	return result, nil
}
