package ledgerdb

import (
	"context"

	"github.com/uptrace/bun"
)

// Repository defines the contract for ledger persistence. Every method
// accepts an optional bun.IDB so callers can run it inside their transaction.
type Repository interface {
	// GetCentralAccount returns the central account.
	GetCentralAccount(ctx context.Context, db bun.IDB) (*Account, error)

	// GetAccountByParticipant returns the account owned by a participant.
	GetAccountByParticipant(ctx context.Context, db bun.IDB, participantID int64) (*Account, error)

	// CreateAccount inserts a zero-balance account for a participant. An
	// existing account is returned unchanged.
	CreateAccount(ctx context.Context, db bun.IDB, participantID int64) (*Account, error)

	// LockAccounts selects the given accounts FOR UPDATE in id order.
	LockAccounts(ctx context.Context, db bun.IDB, ids ...int64) (map[int64]*Account, error)

	// AdjustBalance adds delta to an account balance.
	AdjustBalance(ctx context.Context, db bun.IDB, accountID int64, delta int64) error

	// InsertTransactionLog appends one log row.
	InsertTransactionLog(ctx context.Context, db bun.IDB, entry *TransactionLog) error

	// ListAccounts returns every account ordered by balance descending.
	ListAccounts(ctx context.Context, db bun.IDB) ([]Account, error)

	// ListTransactionLogs returns the newest log rows touching an account.
	ListTransactionLogs(ctx context.Context, db bun.IDB, accountID int64, limit int) ([]TransactionLog, error)
}
