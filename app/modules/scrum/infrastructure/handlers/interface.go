package scrumhandlers

import (
	"context"

	scrumevents "github.com/Black-And-White-Club/scrum-bot/app/events/scrum"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/handlerwrapper"
)

// Handlers defines the interface for scrum event handlers.
type Handlers interface {
	// HandleReactionAdded applies a vote placed on a poll.
	HandleReactionAdded(ctx context.Context, payload *scrumevents.ReactionPayloadV1) ([]handlerwrapper.Result, error)
	// HandleReactionRemoved retracts a vote removed from a poll.
	HandleReactionRemoved(ctx context.Context, payload *scrumevents.ReactionPayloadV1) ([]handlerwrapper.Result, error)
}
