package ledgerservice

import (
	"context"
	"errors"
	"fmt"

	ledgerdomain "github.com/Black-And-White-Club/scrum-bot/app/modules/ledger/domain"
	ledgerdb "github.com/Black-And-White-Club/scrum-bot/app/modules/ledger/infrastructure/repositories"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/results"
	"github.com/uptrace/bun"
)

type transferResult = results.OperationResult[*ledgerdb.TransactionLog, error]

// Transfer moves amount from one account to another and appends the log row,
// all inside one transaction.
//
// Rules:
//   - Negative amounts are rejected with ErrNegativeAmount.
//   - A zero amount is not a mutation: nothing is written and nil is returned.
//   - No account may go below zero (ErrInsufficientFunds). This includes the
//     central account, so Credit fails once the issuance supply is spent.
//   - Any failure after the rows are locked rolls back every write.
func (s *LedgerService) Transfer(ctx context.Context, db bun.IDB, fromAccountID, toAccountID int64, amount ledgerdomain.Amount, memo string) (*ledgerdb.TransactionLog, error) {
	id := fmt.Sprintf("%d->%d", fromAccountID, toAccountID)
	result, err := withTelemetry(s, ctx, "Transfer", id, func(ctx context.Context) (transferResult, error) {
		if amount < 0 {
			return results.FailureResult[*ledgerdb.TransactionLog, error](ErrNegativeAmount), nil
		}
		if amount == 0 {
			return results.SuccessResult[*ledgerdb.TransactionLog, error](nil), nil
		}
		return runInTx(s, ctx, db, func(ctx context.Context, tx bun.IDB) (transferResult, error) {
			return s.transferLogic(ctx, tx, fromAccountID, toAccountID, amount, memo)
		})
	})
	return unwrapTransfer(result, err)
}

// Credit pays amount from the central account to a participant.
func (s *LedgerService) Credit(ctx context.Context, db bun.IDB, participantID int64, amount ledgerdomain.Amount, memo string) (*ledgerdb.TransactionLog, error) {
	result, err := withTelemetry(s, ctx, "Credit", fmt.Sprint(participantID), func(ctx context.Context) (transferResult, error) {
		if amount < 0 {
			return results.FailureResult[*ledgerdb.TransactionLog, error](ErrNegativeAmount), nil
		}
		return runInTx(s, ctx, db, func(ctx context.Context, tx bun.IDB) (transferResult, error) {
			central, err := s.repo.GetCentralAccount(ctx, tx)
			if err != nil {
				return transferResult{}, fmt.Errorf("failed to get central account: %w", err)
			}
			account, err := s.ensureAccount(ctx, tx, participantID)
			if err != nil {
				return transferResult{}, err
			}
			if amount == 0 {
				return results.SuccessResult[*ledgerdb.TransactionLog, error](nil), nil
			}
			return s.transferLogic(ctx, tx, central.ID, account.ID, amount, memo)
		})
	})
	return unwrapTransfer(result, err)
}

// Debit returns amount from a participant to the central account.
func (s *LedgerService) Debit(ctx context.Context, db bun.IDB, participantID int64, amount ledgerdomain.Amount, memo string) (*ledgerdb.TransactionLog, error) {
	result, err := withTelemetry(s, ctx, "Debit", fmt.Sprint(participantID), func(ctx context.Context) (transferResult, error) {
		if amount < 0 {
			return results.FailureResult[*ledgerdb.TransactionLog, error](ErrNegativeAmount), nil
		}
		return runInTx(s, ctx, db, func(ctx context.Context, tx bun.IDB) (transferResult, error) {
			central, err := s.repo.GetCentralAccount(ctx, tx)
			if err != nil {
				return transferResult{}, fmt.Errorf("failed to get central account: %w", err)
			}
			account, err := s.repo.GetAccountByParticipant(ctx, tx, participantID)
			if err != nil {
				if errors.Is(err, ledgerdb.ErrNotFound) {
					return results.FailureResult[*ledgerdb.TransactionLog, error](ErrAccountNotFound), nil
				}
				return transferResult{}, fmt.Errorf("failed to get account: %w", err)
			}
			if amount == 0 {
				return results.SuccessResult[*ledgerdb.TransactionLog, error](nil), nil
			}
			return s.transferLogic(ctx, tx, account.ID, central.ID, amount, memo)
		})
	})
	return unwrapTransfer(result, err)
}

// transferLogic must run inside a transaction; it returns an error (not a
// failure result) for anything that happens after the first write so the
// transaction rolls back.
func (s *LedgerService) transferLogic(ctx context.Context, db bun.IDB, fromID, toID int64, amount ledgerdomain.Amount, memo string) (transferResult, error) {
	accounts, err := s.repo.LockAccounts(ctx, db, fromID, toID)
	if err != nil {
		return transferResult{}, fmt.Errorf("failed to lock accounts: %w", err)
	}
	from, ok := accounts[fromID]
	if !ok {
		return results.FailureResult[*ledgerdb.TransactionLog, error](ErrAccountNotFound), nil
	}
	if _, ok := accounts[toID]; !ok {
		return results.FailureResult[*ledgerdb.TransactionLog, error](ErrAccountNotFound), nil
	}

	if from.Balance < int64(amount) {
		return results.FailureResult[*ledgerdb.TransactionLog, error](ErrInsufficientFunds), nil
	}

	if err := s.repo.AdjustBalance(ctx, db, fromID, -int64(amount)); err != nil {
		return transferResult{}, fmt.Errorf("failed to debit account %d: %w", fromID, err)
	}
	if err := s.repo.AdjustBalance(ctx, db, toID, int64(amount)); err != nil {
		return transferResult{}, fmt.Errorf("failed to credit account %d: %w", toID, err)
	}

	entry := &ledgerdb.TransactionLog{
		TxTime:        s.now(),
		FromAccountID: fromID,
		ToAccountID:   toID,
		Amount:        int64(amount),
		Memo:          memo,
	}
	if err := s.repo.InsertTransactionLog(ctx, db, entry); err != nil {
		return transferResult{}, fmt.Errorf("failed to append transaction log: %w", err)
	}

	return results.SuccessResult[*ledgerdb.TransactionLog, error](entry), nil
}

func unwrapTransfer(result transferResult, err error) (*ledgerdb.TransactionLog, error) {
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	if result.Success == nil {
		return nil, nil
	}
	return *result.Success, nil
}

func amountOf(minor int64) ledgerdomain.Amount {
	return ledgerdomain.Amount(minor)
}
