package ledgerdb

import (
	"time"

	"github.com/uptrace/bun"
)

// Account holds a balance in minor units. The single account without a
// participant is the central account.
type Account struct {
	bun.BaseModel `bun:"table:ledger_accounts,alias:la"`

	ID            int64     `bun:"id,pk,autoincrement"`
	ParticipantID *int64    `bun:"participant_id,unique"`
	Balance       int64     `bun:"balance,notnull,default:0"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// IsCentral reports whether a is the central account.
func (a *Account) IsCentral() bool {
	return a.ParticipantID == nil
}

// TransactionLog is one immutable ledger movement.
type TransactionLog struct {
	bun.BaseModel `bun:"table:ledger_transaction_logs,alias:ltl"`

	ID            int64     `bun:"id,pk,autoincrement"`
	TxTime        time.Time `bun:"tx_time,notnull"`
	FromAccountID int64     `bun:"from_account_id,notnull"`
	ToAccountID   int64     `bun:"to_account_id,notnull"`
	Amount        int64     `bun:"amount,notnull"`
	Memo          string    `bun:"memo,notnull"`
}
