package participantservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	participantdb "github.com/Black-And-White-Club/scrum-bot/app/modules/participant/infrastructure/repositories"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/channel"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/observability/attr"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// ErrEmptyDisplayName rejects registrations without a name.
var ErrEmptyDisplayName = errors.New("display name must not be empty")

// ParticipantService implements the Service interface.
type ParticipantService struct {
	repo   participantdb.Repository
	logger *slog.Logger
	tracer trace.Tracer
}

// NewParticipantService creates a new ParticipantService.
func NewParticipantService(repo participantdb.Repository, logger *slog.Logger, tracer trace.Tracer) *ParticipantService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParticipantService{repo: repo, logger: logger, tracer: tracer}
}

func (s *ParticipantService) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if s.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return s.tracer.Start(ctx, "ParticipantService."+name)
}

func (s *ParticipantService) Resolve(ctx context.Context, actor channel.ActorID) (*participantdb.Participant, error) {
	ctx, span := s.startSpan(ctx, "Resolve")
	defer span.End()

	if _, err := channel.ParseSnowflake("actor_id", string(actor)); err != nil {
		return nil, err
	}
	p, err := s.repo.GetByExternalID(ctx, nil, strings.TrimSpace(string(actor)))
	if err != nil {
		if errors.Is(err, participantdb.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to resolve actor %s: %w", actor, err)
	}
	return p, nil
}

func (s *ParticipantService) Roster(ctx context.Context, db bun.IDB) ([]participantdb.Participant, error) {
	ctx, span := s.startSpan(ctx, "Roster")
	defer span.End()

	participants, err := s.repo.List(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}
	return participants, nil
}

func (s *ParticipantService) RecordParticipation(ctx context.Context, db bun.IDB, participantID int64) (int, error) {
	streak, err := s.repo.IncrementStreak(ctx, db, participantID)
	if err != nil {
		return 0, fmt.Errorf("failed to increment streak for participant %d: %w", participantID, err)
	}
	return streak, nil
}

func (s *ParticipantService) ResetStreak(ctx context.Context, db bun.IDB, participantID int64) error {
	if err := s.repo.ResetStreak(ctx, db, participantID); err != nil {
		return fmt.Errorf("failed to reset streak for participant %d: %w", participantID, err)
	}
	return nil
}

func (s *ParticipantService) Register(ctx context.Context, displayName string, actor channel.ActorID) (*participantdb.Participant, error) {
	ctx, span := s.startSpan(ctx, "Register")
	defer span.End()

	name := strings.TrimSpace(displayName)
	if name == "" {
		return nil, ErrEmptyDisplayName
	}
	if _, err := channel.ParseSnowflake("actor_id", string(actor)); err != nil {
		return nil, err
	}

	p := &participantdb.Participant{DisplayName: name}
	if err := s.repo.Create(ctx, nil, p, strings.TrimSpace(string(actor))); err != nil {
		return nil, fmt.Errorf("failed to register participant: %w", err)
	}

	s.logger.InfoContext(ctx, "Participant registered",
		attr.ExtractCorrelationID(ctx),
		attr.Int64("participant_id", p.ID),
		attr.String("display_name", p.DisplayName),
	)
	return p, nil
}
