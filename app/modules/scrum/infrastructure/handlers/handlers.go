package scrumhandlers

import (
	"context"
	"log/slog"

	scrumevents "github.com/Black-And-White-Club/scrum-bot/app/events/scrum"
	scrumservice "github.com/Black-And-White-Club/scrum-bot/app/modules/scrum/application"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/channel"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/handlerwrapper"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/observability/attr"
	"go.opentelemetry.io/otel/trace"
)

// ScrumHandlers implements the Handlers interface.
type ScrumHandlers struct {
	service scrumservice.Service
	markers channel.MarkerSet
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewScrumHandlers creates a new ScrumHandlers instance.
func NewScrumHandlers(
	service scrumservice.Service,
	markers channel.MarkerSet,
	logger *slog.Logger,
	tracer trace.Tracer,
) Handlers {
	return &ScrumHandlers{
		service: service,
		markers: markers,
		logger:  logger,
		tracer:  tracer,
	}
}

func (h *ScrumHandlers) HandleReactionAdded(ctx context.Context, payload *scrumevents.ReactionPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "ScrumHandlers.HandleReactionAdded")
	defer span.End()

	event, ok := h.toEvent(ctx, payload)
	if !ok {
		return nil, nil
	}
	result, err := h.service.ApplyResponse(ctx, event)
	if err != nil {
		return nil, err
	}
	return closedResults(result), nil
}

func (h *ScrumHandlers) HandleReactionRemoved(ctx context.Context, payload *scrumevents.ReactionPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "ScrumHandlers.HandleReactionRemoved")
	defer span.End()

	event, ok := h.toEvent(ctx, payload)
	if !ok {
		return nil, nil
	}
	result, err := h.service.RetractResponse(ctx, event)
	if err != nil {
		return nil, err
	}
	return closedResults(result), nil
}

// toEvent filters out bot reactions and emoji outside the marker set.
func (h *ScrumHandlers) toEvent(ctx context.Context, payload *scrumevents.ReactionPayloadV1) (scrumservice.ResponseEvent, bool) {
	if payload.IsBot {
		return scrumservice.ResponseEvent{}, false
	}
	marker, ok := h.markers.Lookup(payload.Emoji)
	if !ok {
		h.logger.DebugContext(ctx, "Ignoring reaction outside the marker set",
			attr.ExtractCorrelationID(ctx),
			attr.String("emoji", payload.Emoji),
			attr.String("message_id", payload.MessageID),
		)
		return scrumservice.ResponseEvent{}, false
	}
	return scrumservice.ResponseEvent{
		Poll:   channel.MessageRef{ChannelID: payload.ChannelID, MessageID: payload.MessageID},
		Actor:  channel.ActorID(payload.UserID),
		Marker: marker,
	}, true
}

func closedResults(result scrumservice.ResponseResult) []handlerwrapper.Result {
	if result.Closed == nil {
		return nil
	}
	report := result.Closed
	return []handlerwrapper.Result{{
		Topic: scrumevents.ScrumClosedV1,
		Payload: &scrumevents.ScrumClosedPayloadV1{
			ScrumID:        report.Scrum.ID,
			ScrumDate:      string(report.Scrum.Date),
			Outcome:        report.Outcome.String(),
			NumAvailable:   report.Tally.Available,
			NumUnavailable: report.Tally.Unavailable,
			NumUnknown:     report.Tally.Unknown,
		},
	}}
}
