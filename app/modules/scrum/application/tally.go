package scrumservice

import (
	"context"
	"errors"
	"fmt"

	participantdb "github.com/Black-And-White-Club/scrum-bot/app/modules/participant/infrastructure/repositories"
	scrumdomain "github.com/Black-And-White-Club/scrum-bot/app/modules/scrum/domain"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/channel"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/observability/attr"
	"github.com/uptrace/bun"
)

// resolveActor maps an actor to a participant. ok is false when the actor is
// unknown or its id is malformed; both are dropped silently.
func (s *ScrumService) resolveActor(ctx context.Context, actor channel.ActorID) (*participantdb.Participant, bool, error) {
	p, err := s.participants.Resolve(ctx, actor)
	if err == nil {
		return p, true, nil
	}
	var parseErr *channel.IdentifierParseError
	if errors.Is(err, participantdb.ErrNotFound) || errors.As(err, &parseErr) {
		s.logger.DebugContext(ctx, "Dropping unresolvable actor",
			attr.ExtractCorrelationID(ctx),
			attr.String("actor_id", string(actor)),
			attr.Error(err),
		)
		return nil, false, nil
	}
	return nil, false, err
}

// collectSignals lists both markers on the poll and resolves their holders.
func (s *ScrumService) collectSignals(ctx context.Context, poll channel.MessageRef) ([]scrumdomain.Signal, error) {
	resolved := make(map[channel.ActorID]*participantdb.Participant)
	var signals []scrumdomain.Signal
	for _, marker := range channel.Markers {
		actors, err := s.gateway.ListSignals(ctx, poll, marker)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s signals: %w", marker, err)
		}
		for _, actor := range actors {
			p, seen := resolved[actor]
			if !seen {
				p, _, err = s.resolveActor(ctx, actor)
				if err != nil {
					return nil, fmt.Errorf("failed to resolve actor %s: %w", actor, err)
				}
				resolved[actor] = p
			}
			if p == nil {
				continue
			}
			signals = append(signals, scrumdomain.Signal{ParticipantID: p.ID, Marker: marker})
		}
	}
	return signals, nil
}

func (s *ScrumService) roster(ctx context.Context, db bun.IDB) ([]scrumdomain.Participant, error) {
	participants, err := s.participants.Roster(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}
	roster := make([]scrumdomain.Participant, len(participants))
	for i, p := range participants {
		roster[i] = scrumdomain.Participant{ID: p.ID, DisplayName: p.DisplayName, Streak: p.Streak}
	}
	return roster, nil
}
