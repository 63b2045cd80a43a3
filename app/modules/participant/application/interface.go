package participantservice

import (
	"context"

	participantdb "github.com/Black-And-White-Club/scrum-bot/app/modules/participant/infrastructure/repositories"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/channel"
	"github.com/uptrace/bun"
)

// Service resolves chat actors to participants and maintains streaks.
type Service interface {
	// Resolve maps an actor to a participant. Unknown actors yield
	// participantdb.ErrNotFound; malformed ids a *channel.IdentifierParseError.
	Resolve(ctx context.Context, actor channel.ActorID) (*participantdb.Participant, error)
	Roster(ctx context.Context, db bun.IDB) ([]participantdb.Participant, error)
	RecordParticipation(ctx context.Context, db bun.IDB, participantID int64) (int, error)
	ResetStreak(ctx context.Context, db bun.IDB, participantID int64) error
	Register(ctx context.Context, displayName string, actor channel.ActorID) (*participantdb.Participant, error)
}
