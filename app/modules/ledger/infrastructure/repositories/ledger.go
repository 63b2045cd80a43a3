package ledgerdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new ledger repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) GetCentralAccount(ctx context.Context, db bun.IDB) (*Account, error) {
	db = r.resolveDB(db)
	account := new(Account)
	err := db.NewSelect().
		Model(account).
		Where("participant_id IS NULL").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ledgerdb.GetCentralAccount: %w", err)
	}
	return account, nil
}

func (r *Impl) GetAccountByParticipant(ctx context.Context, db bun.IDB, participantID int64) (*Account, error) {
	db = r.resolveDB(db)
	account := new(Account)
	err := db.NewSelect().
		Model(account).
		Where("participant_id = ?", participantID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ledgerdb.GetAccountByParticipant: %w", err)
	}
	return account, nil
}

func (r *Impl) CreateAccount(ctx context.Context, db bun.IDB, participantID int64) (*Account, error) {
	db = r.resolveDB(db)
	account := &Account{ParticipantID: &participantID}
	_, err := db.NewInsert().
		Model(account).
		On("CONFLICT (participant_id) DO NOTHING").
		Returning("*").
		Exec(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("ledgerdb.CreateAccount: %w", err)
	}
	if account.ID != 0 {
		return account, nil
	}
	// Lost the race to a concurrent insert; read the winner.
	return r.GetAccountByParticipant(ctx, db, participantID)
}

func (r *Impl) LockAccounts(ctx context.Context, db bun.IDB, ids ...int64) (map[int64]*Account, error) {
	db = r.resolveDB(db)
	var accounts []Account
	err := db.NewSelect().
		Model(&accounts).
		Where("id IN (?)", bun.In(ids)).
		Order("id ASC").
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("ledgerdb.LockAccounts: %w", err)
	}

	out := make(map[int64]*Account, len(accounts))
	for i := range accounts {
		out[accounts[i].ID] = &accounts[i]
	}
	return out, nil
}

func (r *Impl) AdjustBalance(ctx context.Context, db bun.IDB, accountID int64, delta int64) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*Account)(nil)).
		Set("balance = balance + ?", delta).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", accountID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("ledgerdb.AdjustBalance: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ledgerdb.AdjustBalance: rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (r *Impl) InsertTransactionLog(ctx context.Context, db bun.IDB, entry *TransactionLog) error {
	db = r.resolveDB(db)
	if entry.TxTime.IsZero() {
		entry.TxTime = time.Now().UTC()
	}
	if _, err := db.NewInsert().Model(entry).Exec(ctx); err != nil {
		return fmt.Errorf("ledgerdb.InsertTransactionLog: %w", err)
	}
	return nil
}

func (r *Impl) ListAccounts(ctx context.Context, db bun.IDB) ([]Account, error) {
	db = r.resolveDB(db)
	var accounts []Account
	err := db.NewSelect().
		Model(&accounts).
		Order("balance DESC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("ledgerdb.ListAccounts: %w", err)
	}
	return accounts, nil
}

func (r *Impl) ListTransactionLogs(ctx context.Context, db bun.IDB, accountID int64, limit int) ([]TransactionLog, error) {
	db = r.resolveDB(db)
	if limit <= 0 {
		limit = 10
	}
	var entries []TransactionLog
	err := db.NewSelect().
		Model(&entries).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("from_account_id = ?", accountID).WhereOr("to_account_id = ?", accountID)
		}).
		Order("tx_time DESC", "id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("ledgerdb.ListTransactionLogs: %w", err)
	}
	return entries, nil
}
