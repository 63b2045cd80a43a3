package natschannel

// Request subjects served by the chat platform bridge.
const (
	PostMessageSubject   = "channel.message.post.v1"
	EditMessageSubject   = "channel.message.edit.v1"
	DeleteMessageSubject = "channel.message.delete.v1"
	AddReactionSubject   = "channel.reaction.add.v1"
	ListReactionsSubject = "channel.reaction.list.v1"
)

// MessageRequest is the body of post, edit and delete requests.
type MessageRequest struct {
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id,omitempty"`
	Content   string `json:"content,omitempty"`
}

// ReactionRequest is the body of reaction add and list requests.
type ReactionRequest struct {
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`
	Emoji     string `json:"emoji"`
}

// Reply is the envelope every bridge reply uses. A non-empty Error means the
// platform call failed.
type Reply struct {
	Error     string   `json:"error,omitempty"`
	MessageID string   `json:"message_id,omitempty"`
	UserIDs   []string `json:"user_ids,omitempty"`
}
