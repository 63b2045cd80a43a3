package participantdb

import (
	"context"

	"github.com/uptrace/bun"
)

// Repository defines the contract for participant persistence.
type Repository interface {
	GetByID(ctx context.Context, db bun.IDB, id int64) (*Participant, error)
	GetByExternalID(ctx context.Context, db bun.IDB, externalID string) (*Participant, error)
	// List returns every participant ordered by id.
	List(ctx context.Context, db bun.IDB) ([]Participant, error)
	// Create inserts the participant and links externalID to it.
	Create(ctx context.Context, db bun.IDB, p *Participant, externalID string) error
	// IncrementStreak adds one to the streak and returns the new value.
	IncrementStreak(ctx context.Context, db bun.IDB, id int64) (int, error)
	ResetStreak(ctx context.Context, db bun.IDB, id int64) error
}
