// Package channel defines the contract the core uses to talk to the chat
// channel hosting the poll, independent of the transport behind it.
package channel

import (
	"context"
	"fmt"
)

// ActorID identifies whoever placed a signal on a message, as reported by the
// chat platform. It may or may not resolve to a participant.
type ActorID string

// MessageRef is an opaque handle to a posted message.
type MessageRef struct {
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`
}

func (r MessageRef) String() string {
	return r.ChannelID + "/" + r.MessageID
}

// IsZero reports whether r points at nothing.
func (r MessageRef) IsZero() bool {
	return r.ChannelID == "" && r.MessageID == ""
}

// Validate checks that both halves of the reference are platform snowflakes.
func (r MessageRef) Validate() error {
	if _, err := ParseSnowflake("channel_id", r.ChannelID); err != nil {
		return err
	}
	if _, err := ParseSnowflake("message_id", r.MessageID); err != nil {
		return err
	}
	return nil
}

// Marker is one of the two opposite vote affordances attached to a poll.
type Marker string

const (
	MarkerPositive Marker = "positive"
	MarkerNegative Marker = "negative"
)

// Markers lists both markers in the order they are attached to a poll.
var Markers = []Marker{MarkerPositive, MarkerNegative}

func (m Marker) Valid() bool {
	return m == MarkerPositive || m == MarkerNegative
}

// Opposite returns the other marker.
func (m Marker) Opposite() Marker {
	if m == MarkerPositive {
		return MarkerNegative
	}
	return MarkerPositive
}

// Available is the response value a signal of this marker stands for.
func (m Marker) Available() bool {
	return m == MarkerPositive
}

// MarkerSet maps markers onto the emoji used by the chat platform.
type MarkerSet struct {
	Positive string `yaml:"positive"`
	Negative string `yaml:"negative"`
}

// DefaultMarkerSet is thumbs up / thumbs down.
var DefaultMarkerSet = MarkerSet{Positive: "\U0001F44D", Negative: "\U0001F44E"}

// Emoji returns the platform emoji for m.
func (s MarkerSet) Emoji(m Marker) string {
	if m == MarkerPositive {
		return s.Positive
	}
	return s.Negative
}

// Lookup maps an emoji back to its marker. Anything else is not a vote.
func (s MarkerSet) Lookup(emoji string) (Marker, bool) {
	switch emoji {
	case s.Positive:
		return MarkerPositive, true
	case s.Negative:
		return MarkerNegative, true
	default:
		return "", false
	}
}

// Gateway is the channel I/O the scrum lifecycle needs. Every call blocks
// until the platform answers; failures are reported as *GatewayError.
type Gateway interface {
	PostMessage(ctx context.Context, text string) (MessageRef, error)
	EditMessage(ctx context.Context, ref MessageRef, text string) error
	DeleteMessage(ctx context.Context, ref MessageRef) error
	AttachMarker(ctx context.Context, ref MessageRef, marker Marker) error
	ListSignals(ctx context.Context, ref MessageRef, marker Marker) ([]ActorID, error)
}

// GatewayError wraps a failed channel call.
type GatewayError struct {
	Op  string
	Ref MessageRef
	Err error
}

func (e *GatewayError) Error() string {
	if e.Ref.IsZero() {
		return fmt.Sprintf("channel %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("channel %s %s: %v", e.Op, e.Ref, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }
