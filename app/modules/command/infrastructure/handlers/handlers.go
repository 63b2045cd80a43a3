package commandhandlers

import (
	"context"
	"log/slog"

	commandevents "github.com/Black-And-White-Club/scrum-bot/app/events/command"
	commandservice "github.com/Black-And-White-Club/scrum-bot/app/modules/command/application"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/channel"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/handlerwrapper"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/observability/attr"
	"go.opentelemetry.io/otel/trace"
)

// CommandHandlers implements the Handlers interface.
type CommandHandlers struct {
	service commandservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewCommandHandlers creates a new CommandHandlers instance.
func NewCommandHandlers(service commandservice.Service, logger *slog.Logger, tracer trace.Tracer) Handlers {
	return &CommandHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

// HandleCommandInvoked runs the command and always answers the interaction,
// even when the invoker made a mistake.
func (h *CommandHandlers) HandleCommandInvoked(ctx context.Context, payload *commandevents.CommandInvokedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "CommandHandlers.HandleCommandInvoked")
	defer span.End()

	if payload.InteractionID == "" {
		h.logger.WarnContext(ctx, "Dropping command without interaction id",
			attr.ExtractCorrelationID(ctx),
			attr.String("command", payload.Name),
		)
		return nil, nil
	}

	result, err := h.service.Execute(ctx, commandservice.Invocation{
		Name:  payload.Name,
		Actor: channel.ActorID(payload.UserID),
		Args:  payload.Args,
	})
	if err != nil {
		return nil, err
	}

	var content string
	switch {
	case result.IsSuccess():
		content = result.Success.Content
	case result.IsFailure():
		content = commandservice.FailureMessage(*result.Failure)
	default:
		return nil, nil
	}

	return []handlerwrapper.Result{{
		Topic: commandevents.CommandReplyV1,
		Payload: &commandevents.CommandReplyPayloadV1{
			InteractionID: payload.InteractionID,
			Content:       content,
		},
	}}, nil
}
