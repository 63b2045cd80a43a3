package handlerwrapper

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/Black-And-White-Club/scrum-bot/app/shared/observability/attr"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

type pingPayload struct {
	Name string `json:"name"`
}

type pongPayload struct {
	Greeting string `json:"greeting"`
}

func TestWrapTransformingTyped(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tracer := noop.NewTracerProvider().Tracer("test")

	t.Run("decodes payload and encodes results", func(t *testing.T) {
		var seenCorrelation string
		h := WrapTransformingTyped("test.ping", logger, tracer, func(ctx context.Context, p *pingPayload) ([]Result, error) {
			seenCorrelation = attr.CorrelationID(ctx)
			return []Result{{Topic: "pong", Payload: &pongPayload{Greeting: "hi " + p.Name}}}, nil
		})

		in := message.NewMessage("msg-1", []byte(`{"name":"ada"}`))
		in.Metadata.Set(CorrelationIDMetadataKey, "corr-1")

		out, err := h(in)
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "corr-1", seenCorrelation)
		assert.Equal(t, "pong", out[0].Metadata.Get(TopicMetadataKey))
		assert.Equal(t, "corr-1", out[0].Metadata.Get(CorrelationIDMetadataKey))

		var got pongPayload
		require.NoError(t, json.Unmarshal(out[0].Payload, &got))
		assert.Equal(t, "hi ada", got.Greeting)
	})

	t.Run("falls back to message uuid for correlation", func(t *testing.T) {
		var seen string
		h := WrapTransformingTyped("test.ping", logger, nil, func(ctx context.Context, p *pingPayload) ([]Result, error) {
			seen = attr.CorrelationID(ctx)
			return nil, nil
		})
		_, err := h(message.NewMessage("msg-2", []byte(`{}`)))
		require.NoError(t, err)
		assert.Equal(t, "msg-2", seen)
	})

	t.Run("drops undecodable payloads", func(t *testing.T) {
		called := false
		h := WrapTransformingTyped("test.ping", logger, tracer, func(ctx context.Context, p *pingPayload) ([]Result, error) {
			called = true
			return nil, nil
		})
		out, err := h(message.NewMessage("msg-3", []byte(`not json`)))
		assert.NoError(t, err)
		assert.Nil(t, out)
		assert.False(t, called)
	})

	t.Run("propagates handler errors", func(t *testing.T) {
		boom := errors.New("boom")
		h := WrapTransformingTyped("test.ping", logger, tracer, func(ctx context.Context, p *pingPayload) ([]Result, error) {
			return nil, boom
		})
		_, err := h(message.NewMessage("msg-4", []byte(`{}`)))
		assert.ErrorIs(t, err, boom)
	})

	t.Run("rejects results without topic", func(t *testing.T) {
		h := WrapTransformingTyped("test.ping", logger, tracer, func(ctx context.Context, p *pingPayload) ([]Result, error) {
			return []Result{{Payload: &pongPayload{}}}, nil
		})
		_, err := h(message.NewMessage("msg-5", []byte(`{}`)))
		assert.Error(t, err)
	})
}
