package testutils

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/Black-And-White-Club/scrum-bot/app/shared/channel/natschannel"
	"github.com/nats-io/nats.go"
)

// FakeBridge answers the channel bridge subjects over a real NATS connection
// and keeps the posted messages and reactions in memory.
type FakeBridge struct {
	mu        sync.Mutex
	nextID    uint64
	messages  map[string]string
	deleted   []string
	reactions map[string]map[string][]string
	failing   map[string]string
	subs      []*nats.Subscription
}

// StartFakeBridge subscribes the bridge to every channel subject on nc.
func StartFakeBridge(nc *nats.Conn) (*FakeBridge, error) {
	b := &FakeBridge{
		nextID:    900000000000000000,
		messages:  map[string]string{},
		reactions: map[string]map[string][]string{},
		failing:   map[string]string{},
	}
	handlers := map[string]func(data []byte) natschannel.Reply{
		natschannel.PostMessageSubject:   b.post,
		natschannel.EditMessageSubject:   b.edit,
		natschannel.DeleteMessageSubject: b.delete,
		natschannel.AddReactionSubject:   b.addReaction,
		natschannel.ListReactionsSubject: b.listReactions,
	}
	for subject, handle := range handlers {
		sub, err := nc.Subscribe(subject, func(msg *nats.Msg) {
			reply := b.failure(msg.Subject)
			if reply == nil {
				r := handle(msg.Data)
				reply = &r
			}
			out, _ := json.Marshal(reply)
			_ = msg.Respond(out)
		})
		if err != nil {
			b.Stop()
			return nil, fmt.Errorf("failed to subscribe to %s: %w", subject, err)
		}
		b.subs = append(b.subs, sub)
	}
	if err := nc.Flush(); err != nil {
		b.Stop()
		return nil, err
	}
	return b, nil
}

// Stop removes every subscription.
func (b *FakeBridge) Stop() {
	for _, sub := range b.subs {
		_ = sub.Unsubscribe()
	}
	b.subs = nil
}

// FailSubject makes every request on subject answer with message as the error.
// An empty message clears the failure.
func (b *FakeBridge) FailSubject(subject, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if message == "" {
		delete(b.failing, subject)
		return
	}
	b.failing[subject] = message
}

// React places emoji on messageID on behalf of userIDs.
func (b *FakeBridge) React(messageID, emoji string, userIDs ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	byEmoji, ok := b.reactions[messageID]
	if !ok {
		byEmoji = map[string][]string{}
		b.reactions[messageID] = byEmoji
	}
	for _, id := range userIDs {
		if !slices.Contains(byEmoji[emoji], id) {
			byEmoji[emoji] = append(byEmoji[emoji], id)
		}
	}
}

// Message returns the current content of messageID.
func (b *FakeBridge) Message(messageID string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	content, ok := b.messages[messageID]
	return content, ok
}

// Messages returns every live message content in posting order.
func (b *FakeBridge) Messages() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	ids := make([]string, 0, len(b.messages))
	for id := range b.messages {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = b.messages[id]
	}
	return out
}

// Deleted returns the ids of deleted messages.
func (b *FakeBridge) Deleted() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.deleted)
}

func (b *FakeBridge) failure(subject string) *natschannel.Reply {
	b.mu.Lock()
	defer b.mu.Unlock()
	if msg, ok := b.failing[subject]; ok {
		return &natschannel.Reply{Error: msg}
	}
	return nil
}

func (b *FakeBridge) post(data []byte) natschannel.Reply {
	var req natschannel.MessageRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return natschannel.Reply{Error: err.Error()}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := strconv.FormatUint(b.nextID, 10)
	b.messages[id] = req.Content
	return natschannel.Reply{MessageID: id}
}

func (b *FakeBridge) edit(data []byte) natschannel.Reply {
	var req natschannel.MessageRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return natschannel.Reply{Error: err.Error()}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.messages[req.MessageID]; !ok {
		return natschannel.Reply{Error: "unknown message"}
	}
	b.messages[req.MessageID] = req.Content
	return natschannel.Reply{MessageID: req.MessageID}
}

func (b *FakeBridge) delete(data []byte) natschannel.Reply {
	var req natschannel.MessageRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return natschannel.Reply{Error: err.Error()}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.messages, req.MessageID)
	delete(b.reactions, req.MessageID)
	b.deleted = append(b.deleted, req.MessageID)
	return natschannel.Reply{}
}

// BotUserID is listed among the holders of every marker the bot attaches.
const BotUserID = "100000000000000001"

func (b *FakeBridge) addReaction(data []byte) natschannel.Reply {
	var req natschannel.ReactionRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return natschannel.Reply{Error: err.Error()}
	}
	b.mu.Lock()
	_, ok := b.messages[req.MessageID]
	b.mu.Unlock()
	if !ok {
		return natschannel.Reply{Error: "unknown message"}
	}
	b.React(req.MessageID, req.Emoji, BotUserID)
	return natschannel.Reply{}
}

func (b *FakeBridge) listReactions(data []byte) natschannel.Reply {
	var req natschannel.ReactionRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return natschannel.Reply{Error: err.Error()}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return natschannel.Reply{UserIDs: slices.Clone(b.reactions[req.MessageID][req.Emoji])}
}
