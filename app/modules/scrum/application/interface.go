package scrumservice

import (
	"context"
	"time"

	ledgerdomain "github.com/Black-And-White-Club/scrum-bot/app/modules/ledger/domain"
	ledgerdb "github.com/Black-And-White-Club/scrum-bot/app/modules/ledger/infrastructure/repositories"
	participantdb "github.com/Black-And-White-Club/scrum-bot/app/modules/participant/infrastructure/repositories"
	scrumdomain "github.com/Black-And-White-Club/scrum-bot/app/modules/scrum/domain"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/channel"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/results"
	"github.com/uptrace/bun"
)

// Service drives the daily scrum lifecycle.
type Service interface {
	// Tick runs one scheduler cycle against a single snapshot of today's scrum.
	Tick(ctx context.Context) error
	OpenScrum(ctx context.Context, now time.Time) (results.OperationResult[*scrumdomain.Scrum, error], error)
	CloseScrum(ctx context.Context, scrum scrumdomain.Scrum) (results.OperationResult[*CloseReport, error], error)
	ApplyResponse(ctx context.Context, event ResponseEvent) (ResponseResult, error)
	RetractResponse(ctx context.Context, event ResponseEvent) (ResponseResult, error)
}

// Participants is the slice of the participant service the lifecycle needs.
type Participants interface {
	Resolve(ctx context.Context, actor channel.ActorID) (*participantdb.Participant, error)
	Roster(ctx context.Context, db bun.IDB) ([]participantdb.Participant, error)
	RecordParticipation(ctx context.Context, db bun.IDB, participantID int64) (int, error)
	ResetStreak(ctx context.Context, db bun.IDB, participantID int64) error
}

// Ledger pays rewards.
type Ledger interface {
	Credit(ctx context.Context, db bun.IDB, participantID int64, amount ledgerdomain.Amount, memo string) (*ledgerdb.TransactionLog, error)
}

// ResponseEvent is a marker placed on or removed from a message.
type ResponseEvent struct {
	Poll   channel.MessageRef
	Actor  channel.ActorID
	Marker channel.Marker
}

// IgnoreReason explains why a response event had no effect.
type IgnoreReason string

const (
	IgnoredNotScrum      IgnoreReason = "not_a_scrum_message"
	IgnoredClosed        IgnoreReason = "scrum_closed"
	IgnoredStale         IgnoreReason = "scrum_not_today"
	IgnoredUnknownActor  IgnoreReason = "unknown_actor"
	IgnoredInvalidMarker IgnoreReason = "invalid_marker"
	IgnoredNoVote        IgnoreReason = "no_matching_vote"
)

// ResponseResult describes the effect of one response event.
type ResponseResult struct {
	Ignored IgnoreReason
	Scrum   *scrumdomain.Scrum
	Tally   *scrumdomain.Tally
	// Closed is set when the response made the tally decisive and the scrum
	// was closed.
	Closed *CloseReport
	// CloseErr holds the failure of an attempted early close. The scrum stays
	// open until the scheduler force-closes it.
	CloseErr error
}

// RewardEntry is what one participant received at close.
type RewardEntry struct {
	ParticipantID  int64
	Classification scrumdomain.Classification
	Streak         int
	Amount         ledgerdomain.Amount
}

// CloseReport summarises a completed close.
type CloseReport struct {
	Scrum        scrumdomain.Scrum
	Outcome      scrumdomain.Outcome
	Tally        scrumdomain.Tally
	Rewards      []RewardEntry
	Reset        []int64
	NotAvailable []scrumdomain.Participant
	Summary      string
}
