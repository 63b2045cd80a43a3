// Package natschannel implements channel.Gateway over NATS request/reply
// against the chat platform bridge.
package natschannel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/scrum-bot/app/shared/channel"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/observability/attr"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// Requester is the slice of *nats.Conn the gateway uses.
type Requester interface {
	RequestWithContext(ctx context.Context, subj string, data []byte) (*nats.Msg, error)
}

// Options tunes a Gateway.
type Options struct {
	ChannelID      string
	Markers        channel.MarkerSet
	RequestTimeout time.Duration
	// RatePerSecond and Burst throttle outbound requests. Zero disables throttling.
	RatePerSecond float64
	Burst         int
}

// Gateway talks to a single channel.
type Gateway struct {
	conn      Requester
	channelID string
	markers   channel.MarkerSet
	timeout   time.Duration
	limiter   *rate.Limiter
	logger    *slog.Logger
	tracer    trace.Tracer
}

var _ channel.Gateway = (*Gateway)(nil)

// ErrBridge is wrapped by every error reported in a bridge reply.
var ErrBridge = errors.New("bridge reported failure")

// NewGateway creates a gateway bound to opts.ChannelID.
func NewGateway(conn Requester, opts Options, logger *slog.Logger, tracer trace.Tracer) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	if opts.Markers == (channel.MarkerSet{}) {
		opts.Markers = channel.DefaultMarkerSet
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RatePerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
	}

	return &Gateway{
		conn:      conn,
		channelID: opts.ChannelID,
		markers:   opts.Markers,
		timeout:   opts.RequestTimeout,
		limiter:   limiter,
		logger:    logger,
		tracer:    tracer,
	}
}

// PostMessage posts text to the bound channel.
func (g *Gateway) PostMessage(ctx context.Context, text string) (channel.MessageRef, error) {
	ref := channel.MessageRef{ChannelID: g.channelID}
	reply, err := g.request(ctx, "post", ref, PostMessageSubject, MessageRequest{
		ChannelID: g.channelID,
		Content:   text,
	})
	if err != nil {
		return channel.MessageRef{}, err
	}
	if reply.MessageID == "" {
		return channel.MessageRef{}, &channel.GatewayError{Op: "post", Ref: ref, Err: fmt.Errorf("reply carried no message id")}
	}
	ref.MessageID = reply.MessageID
	return ref, nil
}

func (g *Gateway) EditMessage(ctx context.Context, ref channel.MessageRef, text string) error {
	_, err := g.request(ctx, "edit", ref, EditMessageSubject, MessageRequest{
		ChannelID: ref.ChannelID,
		MessageID: ref.MessageID,
		Content:   text,
	})
	return err
}

func (g *Gateway) DeleteMessage(ctx context.Context, ref channel.MessageRef) error {
	_, err := g.request(ctx, "delete", ref, DeleteMessageSubject, MessageRequest{
		ChannelID: ref.ChannelID,
		MessageID: ref.MessageID,
	})
	return err
}

func (g *Gateway) AttachMarker(ctx context.Context, ref channel.MessageRef, marker channel.Marker) error {
	_, err := g.request(ctx, "attach_marker", ref, AddReactionSubject, ReactionRequest{
		ChannelID: ref.ChannelID,
		MessageID: ref.MessageID,
		Emoji:     g.markers.Emoji(marker),
	})
	return err
}

// ListSignals returns every actor currently holding marker on the message,
// including the bot's own seeded marker.
func (g *Gateway) ListSignals(ctx context.Context, ref channel.MessageRef, marker channel.Marker) ([]channel.ActorID, error) {
	reply, err := g.request(ctx, "list_signals", ref, ListReactionsSubject, ReactionRequest{
		ChannelID: ref.ChannelID,
		MessageID: ref.MessageID,
		Emoji:     g.markers.Emoji(marker),
	})
	if err != nil {
		return nil, err
	}
	actors := make([]channel.ActorID, 0, len(reply.UserIDs))
	for _, id := range reply.UserIDs {
		actors = append(actors, channel.ActorID(id))
	}
	return actors, nil
}

func (g *Gateway) request(ctx context.Context, op string, ref channel.MessageRef, subject string, body any) (*Reply, error) {
	if g.tracer != nil {
		var span trace.Span
		ctx, span = g.tracer.Start(ctx, "ChannelGateway."+op, trace.WithAttributes(
			attribute.String("subject", subject),
			attribute.String("message_ref", ref.String()),
		))
		defer span.End()
	}

	fail := func(err error) (*Reply, error) {
		g.logger.WarnContext(ctx, "Channel request failed",
			attr.ExtractCorrelationID(ctx),
			attr.String("op", op),
			attr.String("subject", subject),
			attr.String("message_ref", ref.String()),
			attr.Error(err),
		)
		return nil, &channel.GatewayError{Op: op, Ref: ref, Err: err}
	}

	data, err := json.Marshal(body)
	if err != nil {
		return fail(fmt.Errorf("failed to marshal request: %w", err))
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return fail(fmt.Errorf("rate limiter: %w", err))
	}

	reqCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	msg, err := g.conn.RequestWithContext(reqCtx, subject, data)
	if err != nil {
		return fail(err)
	}

	var reply Reply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		return fail(fmt.Errorf("failed to unmarshal reply: %w", err))
	}
	if reply.Error != "" {
		return fail(fmt.Errorf("%w: %s", ErrBridge, reply.Error))
	}
	return &reply, nil
}
