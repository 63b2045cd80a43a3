// Package scrumevents defines the topics and payloads of the scrum lifecycle.
package scrumevents

const (
	// ReactionAddedV1 is published by the chat bridge when a reaction is placed.
	ReactionAddedV1 = "channel.reaction.added.v1"
	// ReactionRemovedV1 is published by the chat bridge when a reaction is removed.
	ReactionRemovedV1 = "channel.reaction.removed.v1"
	// ScrumClosedV1 is published when a live response closes a scrum early.
	ScrumClosedV1 = "scrum.closed.v1"
)

// ReactionPayloadV1 describes one reaction change on a channel message.
type ReactionPayloadV1 struct {
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`
	UserID    string `json:"user_id"`
	Emoji     string `json:"emoji"`
	IsBot     bool   `json:"is_bot"`
}

// ScrumClosedPayloadV1 reports the outcome of a closed scrum.
type ScrumClosedPayloadV1 struct {
	ScrumID        int64  `json:"scrum_id"`
	ScrumDate      string `json:"scrum_date"`
	Outcome        string `json:"outcome"`
	NumAvailable   int    `json:"num_available"`
	NumUnavailable int    `json:"num_unavailable"`
	NumUnknown     int    `json:"num_unknown"`
}
