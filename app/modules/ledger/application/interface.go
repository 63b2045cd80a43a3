package ledgerservice

import (
	"context"

	ledgerdomain "github.com/Black-And-White-Club/scrum-bot/app/modules/ledger/domain"
	ledgerdb "github.com/Black-And-White-Club/scrum-bot/app/modules/ledger/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// Service is the ledger engine. Mutating operations accept an optional
// bun.IDB: when it is a transaction the transfer joins it, otherwise the
// service opens its own.
type Service interface {
	Transfer(ctx context.Context, db bun.IDB, fromAccountID, toAccountID int64, amount ledgerdomain.Amount, memo string) (*ledgerdb.TransactionLog, error)
	Credit(ctx context.Context, db bun.IDB, participantID int64, amount ledgerdomain.Amount, memo string) (*ledgerdb.TransactionLog, error)
	Debit(ctx context.Context, db bun.IDB, participantID int64, amount ledgerdomain.Amount, memo string) (*ledgerdb.TransactionLog, error)
	EnsureAccount(ctx context.Context, db bun.IDB, participantID int64) (*ledgerdb.Account, error)
	ListBalances(ctx context.Context) ([]Balance, error)
	History(ctx context.Context, participantID int64, limit int) ([]ledgerdb.TransactionLog, error)
	ProvisionCentralSupply(ctx context.Context, supply ledgerdomain.Amount) (ledgerdomain.Amount, error)
}

// Balance is one account's standing.
type Balance struct {
	AccountID     int64
	ParticipantID *int64
	Amount        ledgerdomain.Amount
}

// IsCentral reports whether the balance belongs to the central account.
func (b Balance) IsCentral() bool {
	return b.ParticipantID == nil
}
