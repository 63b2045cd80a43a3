package scrumdb

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Repository defines the contract for scrum persistence.
// Every method accepts an optional bun.IDB; nil uses the default connection.
type Repository interface {
	GetByDate(ctx context.Context, db bun.IDB, date string) (*Scrum, error)
	GetByMessage(ctx context.Context, db bun.IDB, messageID string) (*Scrum, error)
	Create(ctx context.Context, db bun.IDB, scrum *Scrum) error
	MarkClosed(ctx context.Context, db bun.IDB, scrumID int64, closedAt time.Time) error

	UpsertResponse(ctx context.Context, db bun.IDB, response *Response) error
	// DeleteResponse removes the participant's response only when it holds the
	// given availability. It reports whether a row was removed.
	DeleteResponse(ctx context.Context, db bun.IDB, scrumID, participantID int64, available bool) (bool, error)
	ListResponses(ctx context.Context, db bun.IDB, scrumID int64) ([]Response, error)
}
