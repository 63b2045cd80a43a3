package scrumdb

import (
	"time"

	"github.com/uptrace/bun"
)

// Scrum is one day's availability poll.
type Scrum struct {
	bun.BaseModel `bun:"table:scrums,alias:s"`

	ID        int64      `bun:"id,pk,autoincrement"`
	ScrumDate string     `bun:"scrum_date,notnull,unique"`
	IsOpen    bool       `bun:"is_open,notnull,default:true"`
	ChannelID string     `bun:"channel_id,notnull"`
	MessageID string     `bun:"message_id,notnull,unique"`
	CreatedAt time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	ClosedAt  *time.Time `bun:"closed_at"`
}

// Response records the latest vote of one participant on one scrum.
type Response struct {
	bun.BaseModel `bun:"table:scrum_responses,alias:sr"`

	ID            int64     `bun:"id,pk,autoincrement"`
	ScrumID       int64     `bun:"scrum_id,notnull"`
	ParticipantID int64     `bun:"participant_id,notnull"`
	Available     bool      `bun:"available,notnull"`
	RespondedAt   time.Time `bun:"responded_at,notnull"`
}
