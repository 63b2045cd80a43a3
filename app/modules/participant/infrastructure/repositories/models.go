package participantdb

import (
	"time"

	"github.com/uptrace/bun"
)

// Participant is a person eligible to vote on scrums and earn rewards.
// Identity is by ID only.
type Participant struct {
	bun.BaseModel `bun:"table:participants,alias:p"`

	ID          int64     `bun:"id,pk,autoincrement"`
	DisplayName string    `bun:"display_name,notnull"`
	Streak      int       `bun:"streak,notnull,default:0"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Identity links a chat platform actor id to a participant.
type Identity struct {
	bun.BaseModel `bun:"table:participant_identities,alias:pi"`

	ParticipantID int64     `bun:"participant_id,notnull"`
	ExternalID    string    `bun:"external_id,pk"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
