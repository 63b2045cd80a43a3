package commandservice

import (
	"context"

	ledgerservice "github.com/Black-And-White-Club/scrum-bot/app/modules/ledger/application"
	ledgerdb "github.com/Black-And-White-Club/scrum-bot/app/modules/ledger/infrastructure/repositories"
	participantdb "github.com/Black-And-White-Club/scrum-bot/app/modules/participant/infrastructure/repositories"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/channel"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/results"
	"github.com/uptrace/bun"
)

// Service executes chat commands. Failures the invoker caused (unknown
// command, bad argument, not registered) come back as a failure result;
// returned errors are infrastructure problems.
type Service interface {
	Execute(ctx context.Context, inv Invocation) (results.OperationResult[Reply, error], error)
}

// Participants is the slice of the participant service commands use.
type Participants interface {
	Resolve(ctx context.Context, actor channel.ActorID) (*participantdb.Participant, error)
	Roster(ctx context.Context, db bun.IDB) ([]participantdb.Participant, error)
	Register(ctx context.Context, displayName string, actor channel.ActorID) (*participantdb.Participant, error)
}

// Ledger is the slice of the ledger service commands use.
type Ledger interface {
	ListBalances(ctx context.Context) ([]ledgerservice.Balance, error)
	History(ctx context.Context, participantID int64, limit int) ([]ledgerdb.TransactionLog, error)
}

// Invocation is one slash command call.
type Invocation struct {
	Name  string
	Actor channel.ActorID
	Args  map[string]string
}

// Reply is the text sent back to the invoker.
type Reply struct {
	Content string
}
