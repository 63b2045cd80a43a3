// Package commandevents defines the slash-command topics and payloads.
package commandevents

const (
	// CommandInvokedV1 is published by the chat bridge for every slash command.
	CommandInvokedV1 = "command.invoked.v1"
	// CommandReplyV1 carries the reply the bridge posts back to the interaction.
	CommandReplyV1 = "command.reply.v1"
)

// CommandInvokedPayloadV1 is one slash-command invocation.
type CommandInvokedPayloadV1 struct {
	InteractionID string            `json:"interaction_id"`
	Name          string            `json:"name"`
	UserID        string            `json:"user_id"`
	Args          map[string]string `json:"args,omitempty"`
}

// CommandReplyPayloadV1 answers an invocation.
type CommandReplyPayloadV1 struct {
	InteractionID string `json:"interaction_id"`
	Content       string `json:"content"`
}
