package commandhandlers

import (
	"context"

	commandevents "github.com/Black-And-White-Club/scrum-bot/app/events/command"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/handlerwrapper"
)

// Handlers defines the interface for command event handlers.
type Handlers interface {
	HandleCommandInvoked(ctx context.Context, payload *commandevents.CommandInvokedPayloadV1) ([]handlerwrapper.Result, error)
}
