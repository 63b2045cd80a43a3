package commandrouter

import (
	"context"
	"log/slog"

	"github.com/Black-And-White-Club/scrum-bot/app/eventbus"
	commandevents "github.com/Black-And-White-Club/scrum-bot/app/events/command"
	commandhandlers "github.com/Black-And-White-Club/scrum-bot/app/modules/command/infrastructure/handlers"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"
)

// CommandRouter registers the slash command handler. Router metrics are
// attached by the scrum router, which shares the same message.Router.
type CommandRouter struct {
	logger     *slog.Logger
	Router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	tracer     trace.Tracer
}

// NewCommandRouter creates a new CommandRouter.
func NewCommandRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber eventbus.EventBus,
	publisher eventbus.EventBus,
	tracer trace.Tracer,
) *CommandRouter {
	return &CommandRouter{
		logger:     logger,
		Router:     router,
		subscriber: subscriber,
		publisher:  publisher,
		tracer:     tracer,
	}
}

// Configure sets up the router with handlers.
func (r *CommandRouter) Configure(_ context.Context, handlers commandhandlers.Handlers) error {
	handlerName := "command." + commandevents.CommandInvokedV1

	r.logger.Info("Registering command module handlers",
		slog.String("command_invoked_subject", commandevents.CommandInvokedV1),
	)

	r.Router.AddHandler(
		handlerName,
		commandevents.CommandInvokedV1,
		r.subscriber,
		"",
		r.publisher,
		handlerwrapper.WrapTransformingTyped[commandevents.CommandInvokedPayloadV1](
			handlerName,
			r.logger,
			r.tracer,
			handlers.HandleCommandInvoked,
		),
	)
	return nil
}

// Close shuts down the router.
func (r *CommandRouter) Close() error {
	return r.Router.Close()
}
