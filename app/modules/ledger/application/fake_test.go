package ledgerservice

import (
	"context"

	ledgerdb "github.com/Black-And-White-Club/scrum-bot/app/modules/ledger/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Ledger Repo
// ------------------------

type FakeLedgerRepo struct {
	trace []string

	GetCentralAccountFunc       func(ctx context.Context, db bun.IDB) (*ledgerdb.Account, error)
	GetAccountByParticipantFunc func(ctx context.Context, db bun.IDB, participantID int64) (*ledgerdb.Account, error)
	CreateAccountFunc           func(ctx context.Context, db bun.IDB, participantID int64) (*ledgerdb.Account, error)
	LockAccountsFunc            func(ctx context.Context, db bun.IDB, ids ...int64) (map[int64]*ledgerdb.Account, error)
	AdjustBalanceFunc           func(ctx context.Context, db bun.IDB, accountID int64, delta int64) error
	InsertTransactionLogFunc    func(ctx context.Context, db bun.IDB, entry *ledgerdb.TransactionLog) error
	ListAccountsFunc            func(ctx context.Context, db bun.IDB) ([]ledgerdb.Account, error)
	ListTransactionLogsFunc     func(ctx context.Context, db bun.IDB, accountID int64, limit int) ([]ledgerdb.TransactionLog, error)
}

func NewFakeLedgerRepo() *FakeLedgerRepo {
	return &FakeLedgerRepo{
		trace: []string{},
	}
}

func (f *FakeLedgerRepo) record(step string) {
	f.trace = append(f.trace, step)
}

// --- Repository Interface Implementation ---

func (f *FakeLedgerRepo) GetCentralAccount(ctx context.Context, db bun.IDB) (*ledgerdb.Account, error) {
	f.record("GetCentralAccount")
	if f.GetCentralAccountFunc != nil {
		return f.GetCentralAccountFunc(ctx, db)
	}
	return nil, ledgerdb.ErrNotFound
}

func (f *FakeLedgerRepo) GetAccountByParticipant(ctx context.Context, db bun.IDB, participantID int64) (*ledgerdb.Account, error) {
	f.record("GetAccountByParticipant")
	if f.GetAccountByParticipantFunc != nil {
		return f.GetAccountByParticipantFunc(ctx, db, participantID)
	}
	return nil, ledgerdb.ErrNotFound
}

func (f *FakeLedgerRepo) CreateAccount(ctx context.Context, db bun.IDB, participantID int64) (*ledgerdb.Account, error) {
	f.record("CreateAccount")
	if f.CreateAccountFunc != nil {
		return f.CreateAccountFunc(ctx, db, participantID)
	}
	return &ledgerdb.Account{ID: participantID + 1000, ParticipantID: &participantID}, nil
}

func (f *FakeLedgerRepo) LockAccounts(ctx context.Context, db bun.IDB, ids ...int64) (map[int64]*ledgerdb.Account, error) {
	f.record("LockAccounts")
	if f.LockAccountsFunc != nil {
		return f.LockAccountsFunc(ctx, db, ids...)
	}
	return map[int64]*ledgerdb.Account{}, nil
}

func (f *FakeLedgerRepo) AdjustBalance(ctx context.Context, db bun.IDB, accountID int64, delta int64) error {
	f.record("AdjustBalance")
	if f.AdjustBalanceFunc != nil {
		return f.AdjustBalanceFunc(ctx, db, accountID, delta)
	}
	return nil
}

func (f *FakeLedgerRepo) InsertTransactionLog(ctx context.Context, db bun.IDB, entry *ledgerdb.TransactionLog) error {
	f.record("InsertTransactionLog")
	if f.InsertTransactionLogFunc != nil {
		return f.InsertTransactionLogFunc(ctx, db, entry)
	}
	return nil
}

func (f *FakeLedgerRepo) ListAccounts(ctx context.Context, db bun.IDB) ([]ledgerdb.Account, error) {
	f.record("ListAccounts")
	if f.ListAccountsFunc != nil {
		return f.ListAccountsFunc(ctx, db)
	}
	return nil, nil
}

func (f *FakeLedgerRepo) ListTransactionLogs(ctx context.Context, db bun.IDB, accountID int64, limit int) ([]ledgerdb.TransactionLog, error) {
	f.record("ListTransactionLogs")
	if f.ListTransactionLogsFunc != nil {
		return f.ListTransactionLogsFunc(ctx, db, accountID, limit)
	}
	return nil, nil
}

// --- Accessors for assertions ---

func (f *FakeLedgerRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Ensure the fake actually satisfies the interface
var _ ledgerdb.Repository = (*FakeLedgerRepo)(nil)

// accountBook is an in-memory balance table used to script LockAccounts and
// AdjustBalance consistently.
type accountBook map[int64]*ledgerdb.Account

func (b accountBook) install(f *FakeLedgerRepo) {
	f.LockAccountsFunc = func(ctx context.Context, db bun.IDB, ids ...int64) (map[int64]*ledgerdb.Account, error) {
		out := map[int64]*ledgerdb.Account{}
		for _, id := range ids {
			if a, ok := b[id]; ok {
				cp := *a
				out[id] = &cp
			}
		}
		return out, nil
	}
	f.AdjustBalanceFunc = func(ctx context.Context, db bun.IDB, accountID int64, delta int64) error {
		a, ok := b[accountID]
		if !ok {
			return ledgerdb.ErrNoRowsAffected
		}
		a.Balance += delta
		return nil
	}
	f.ListAccountsFunc = func(ctx context.Context, db bun.IDB) ([]ledgerdb.Account, error) {
		out := make([]ledgerdb.Account, 0, len(b))
		for _, a := range b {
			out = append(out, *a)
		}
		return out, nil
	}
	f.GetCentralAccountFunc = func(ctx context.Context, db bun.IDB) (*ledgerdb.Account, error) {
		for _, a := range b {
			if a.IsCentral() {
				return a, nil
			}
		}
		return nil, ledgerdb.ErrNotFound
	}
	f.GetAccountByParticipantFunc = func(ctx context.Context, db bun.IDB, participantID int64) (*ledgerdb.Account, error) {
		for _, a := range b {
			if a.ParticipantID != nil && *a.ParticipantID == participantID {
				return a, nil
			}
		}
		return nil, ledgerdb.ErrNotFound
	}
}

func ptrInt64(v int64) *int64 { return &v }
