package participant

import (
	"context"

	participantservice "github.com/Black-And-White-Club/scrum-bot/app/modules/participant/application"
	participantdb "github.com/Black-And-White-Club/scrum-bot/app/modules/participant/infrastructure/repositories"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/observability"
	"github.com/uptrace/bun"
)

// Module represents the participant module. It has no router: the scrum
// and command modules call its service directly.
type Module struct {
	ParticipantService participantservice.Service
}

// NewParticipantModule creates and initializes a new participant module.
func NewParticipantModule(ctx context.Context, obs observability.Observability, db *bun.DB) *Module {
	obs.Logger.InfoContext(ctx, "participant.NewParticipantModule initializing")

	repo := participantdb.NewRepository(db)
	service := participantservice.NewParticipantService(repo, obs.Logger, obs.Tracer)

	return &Module{ParticipantService: service}
}
