package ledgerservice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	ledgerdomain "github.com/Black-And-White-Club/scrum-bot/app/modules/ledger/domain"
	ledgerdb "github.com/Black-And-White-Club/scrum-bot/app/modules/ledger/infrastructure/repositories"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"
)

func newTestService(repo ledgerdb.Repository) *LedgerService {
	return NewLedgerService(
		repo,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		observability.NewNoop(),
		noop.NewTracerProvider().Tracer("test"),
		nil,
	)
}

func newBook() accountBook {
	return accountBook{
		1: {ID: 1, Balance: 1000},
		2: {ID: 2, ParticipantID: ptrInt64(20), Balance: 500},
		3: {ID: 3, ParticipantID: ptrInt64(30), Balance: 0},
	}
}

func TestTransfer(t *testing.T) {
	tests := []struct {
		name        string
		from, to    int64
		amount      ledgerdomain.Amount
		setupRepo   func(*FakeLedgerRepo, accountBook)
		wantErr     error
		wantBalance map[int64]int64
		wantTrace   []string
	}{
		{
			name:        "moves funds between participants",
			from:        2,
			to:          3,
			amount:      200,
			wantBalance: map[int64]int64{2: 300, 3: 200},
			wantTrace:   []string{"LockAccounts", "AdjustBalance", "AdjustBalance", "InsertTransactionLog"},
		},
		{
			name:        "drains source exactly",
			from:        2,
			to:          3,
			amount:      500,
			wantBalance: map[int64]int64{2: 0, 3: 500},
		},
		{
			name:        "rejects negative amount without touching storage",
			from:        2,
			to:          3,
			amount:      -1,
			wantErr:     ErrNegativeAmount,
			wantBalance: map[int64]int64{2: 500, 3: 0},
			wantTrace:   []string{},
		},
		{
			name:        "rejects insufficient funds",
			from:        3,
			to:          2,
			amount:      1,
			wantErr:     ErrInsufficientFunds,
			wantBalance: map[int64]int64{2: 500, 3: 0},
			wantTrace:   []string{"LockAccounts"},
		},
		{
			name:        "central account pays from its supply",
			from:        1,
			to:          3,
			amount:      100,
			wantBalance: map[int64]int64{1: 900, 3: 100},
		},
		{
			name:        "central account cannot overdraw",
			from:        1,
			to:          3,
			amount:      1001,
			wantErr:     ErrInsufficientFunds,
			wantBalance: map[int64]int64{1: 1000, 3: 0},
			wantTrace:   []string{"LockAccounts"},
		},
		{
			name:   "empty central account cannot issue",
			from:   1,
			to:     3,
			amount: 100,
			setupRepo: func(f *FakeLedgerRepo, b accountBook) {
				b[1].Balance = 0
			},
			wantErr:     ErrInsufficientFunds,
			wantBalance: map[int64]int64{1: 0, 3: 0},
			wantTrace:   []string{"LockAccounts"},
		},
		{
			name:        "zero amount writes nothing",
			from:        2,
			to:          3,
			amount:      0,
			wantBalance: map[int64]int64{2: 500, 3: 0},
			wantTrace:   []string{},
		},
		{
			name:    "missing account",
			from:    2,
			to:      99,
			amount:  10,
			wantErr: ErrAccountNotFound,
		},
		{
			name:   "log failure surfaces error",
			from:   2,
			to:     3,
			amount: 10,
			setupRepo: func(f *FakeLedgerRepo, b accountBook) {
				f.InsertTransactionLogFunc = func(ctx context.Context, db bun.IDB, entry *ledgerdb.TransactionLog) error {
					return errors.New("disk full")
				}
			},
			wantErr: errors.New("disk full"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book := newBook()
			fakeRepo := NewFakeLedgerRepo()
			book.install(fakeRepo)
			if tt.setupRepo != nil {
				tt.setupRepo(fakeRepo, book)
			}
			svc := newTestService(fakeRepo)

			entry, err := svc.Transfer(context.Background(), nil, tt.from, tt.to, tt.amount, "memo")

			switch {
			case tt.wantErr == nil:
				require.NoError(t, err)
			case errors.Is(tt.wantErr, ErrLedgerViolation) || errors.Is(tt.wantErr, ErrAccountNotFound):
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, entry)
			default:
				assert.ErrorContains(t, err, tt.wantErr.Error())
			}

			for id, want := range tt.wantBalance {
				assert.Equal(t, want, book[id].Balance, "balance of account %d", id)
			}
			if tt.wantTrace != nil {
				assert.Equal(t, tt.wantTrace, fakeRepo.Trace())
			}
			if tt.wantErr == nil && tt.amount > 0 {
				require.NotNil(t, entry)
				assert.Equal(t, tt.from, entry.FromAccountID)
				assert.Equal(t, tt.to, entry.ToAccountID)
				assert.Equal(t, int64(tt.amount), entry.Amount)
				assert.Equal(t, "memo", entry.Memo)
			}
		})
	}
}

func TestLedgerViolationsAreClassified(t *testing.T) {
	assert.ErrorIs(t, ErrNegativeAmount, ErrLedgerViolation)
	assert.ErrorIs(t, ErrInsufficientFunds, ErrLedgerViolation)
	assert.NotErrorIs(t, ErrAccountNotFound, ErrLedgerViolation)
}

func TestCredit(t *testing.T) {
	t.Run("pays from central", func(t *testing.T) {
		book := newBook()
		fakeRepo := NewFakeLedgerRepo()
		book.install(fakeRepo)
		svc := newTestService(fakeRepo)

		entry, err := svc.Credit(context.Background(), nil, 30, ledgerdomain.Reward(7), "Scrum reward for 2026-10-14")
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, int64(1), entry.FromAccountID)
		assert.Equal(t, int64(3), entry.ToAccountID)
		assert.Equal(t, int64(200), book[3].Balance)
		assert.Equal(t, int64(800), book[1].Balance)
	})

	t.Run("fails once the supply is spent", func(t *testing.T) {
		book := newBook()
		book[1].Balance = 150
		fakeRepo := NewFakeLedgerRepo()
		book.install(fakeRepo)
		svc := newTestService(fakeRepo)

		entry, err := svc.Credit(context.Background(), nil, 30, ledgerdomain.Reward(7), "Scrum reward for 2026-10-14")
		assert.ErrorIs(t, err, ErrInsufficientFunds)
		assert.Nil(t, entry)
		assert.Equal(t, int64(1150), book[1].Balance)
		assert.Equal(t, int64(0), book[3].Balance)
		assert.NotContains(t, fakeRepo.Trace(), "AdjustBalance")
		assert.NotContains(t, fakeRepo.Trace(), "InsertTransactionLog")
	})

	t.Run("provisions missing account", func(t *testing.T) {
		book := newBook()
		fakeRepo := NewFakeLedgerRepo()
		book.install(fakeRepo)
		fakeRepo.CreateAccountFunc = func(ctx context.Context, db bun.IDB, participantID int64) (*ledgerdb.Account, error) {
			a := &ledgerdb.Account{ID: 4, ParticipantID: &participantID}
			book[4] = a
			return a, nil
		}
		svc := newTestService(fakeRepo)

		_, err := svc.Credit(context.Background(), nil, 40, 100, "memo")
		require.NoError(t, err)
		assert.Contains(t, fakeRepo.Trace(), "CreateAccount")
		assert.Equal(t, int64(100), book[4].Balance)
	})

	t.Run("missing central account", func(t *testing.T) {
		fakeRepo := NewFakeLedgerRepo()
		svc := newTestService(fakeRepo)

		_, err := svc.Credit(context.Background(), nil, 30, 100, "memo")
		assert.ErrorIs(t, err, ledgerdb.ErrNotFound)
	})

	t.Run("negative credit rejected", func(t *testing.T) {
		fakeRepo := NewFakeLedgerRepo()
		svc := newTestService(fakeRepo)

		_, err := svc.Credit(context.Background(), nil, 30, -100, "memo")
		assert.ErrorIs(t, err, ErrNegativeAmount)
		assert.Empty(t, fakeRepo.Trace())
	})
}

func TestDebit(t *testing.T) {
	book := newBook()
	fakeRepo := NewFakeLedgerRepo()
	book.install(fakeRepo)
	svc := newTestService(fakeRepo)

	_, err := svc.Debit(context.Background(), nil, 20, 150, "fine")
	require.NoError(t, err)
	assert.Equal(t, int64(350), book[2].Balance)
	assert.Equal(t, int64(1150), book[1].Balance)

	_, err = svc.Debit(context.Background(), nil, 30, 1, "fine")
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	_, err = svc.Debit(context.Background(), nil, 99, 1, "fine")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestProvisionCentralSupply(t *testing.T) {
	tests := []struct {
		name        string
		supply      ledgerdomain.Amount
		wantAdded   ledgerdomain.Amount
		wantErr     error
		wantCentral int64
	}{
		{name: "tops up to the supply", supply: 10000, wantAdded: 8500, wantCentral: 9500},
		{name: "already provisioned", supply: 1500, wantAdded: 0, wantCentral: 1000},
		{name: "supply below circulation is left alone", supply: 100, wantAdded: 0, wantCentral: 1000},
		{name: "negative supply", supply: -1, wantErr: ErrNegativeAmount, wantCentral: 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book := newBook()
			fakeRepo := NewFakeLedgerRepo()
			book.install(fakeRepo)
			svc := newTestService(fakeRepo)

			added, err := svc.ProvisionCentralSupply(context.Background(), tt.supply)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantAdded, added)
			assert.Equal(t, tt.wantCentral, book[1].Balance)
		})
	}

	t.Run("second run writes nothing", func(t *testing.T) {
		book := newBook()
		fakeRepo := NewFakeLedgerRepo()
		book.install(fakeRepo)
		svc := newTestService(fakeRepo)

		_, err := svc.ProvisionCentralSupply(context.Background(), 5000)
		require.NoError(t, err)
		added, err := svc.ProvisionCentralSupply(context.Background(), 5000)
		require.NoError(t, err)
		assert.Zero(t, added)
		assert.Equal(t, int64(4500), book[1].Balance)
		assert.Equal(t, 1, countCalls(fakeRepo.Trace(), "AdjustBalance"))
	})
}

func countCalls(trace []string, name string) int {
	n := 0
	for _, call := range trace {
		if call == name {
			n++
		}
	}
	return n
}

func TestListBalances(t *testing.T) {
	fakeRepo := NewFakeLedgerRepo()
	fakeRepo.ListAccountsFunc = func(ctx context.Context, db bun.IDB) ([]ledgerdb.Account, error) {
		return []ledgerdb.Account{
			{ID: 2, ParticipantID: ptrInt64(20), Balance: 900},
			{ID: 1, Balance: 100},
		}, nil
	}
	svc := newTestService(fakeRepo)

	balances, err := svc.ListBalances(context.Background())
	require.NoError(t, err)
	require.Len(t, balances, 2)
	assert.Equal(t, ledgerdomain.Amount(900), balances[0].Amount)
	assert.False(t, balances[0].IsCentral())
	assert.True(t, balances[1].IsCentral())

	fakeRepo.ListAccountsFunc = func(ctx context.Context, db bun.IDB) ([]ledgerdb.Account, error) {
		return nil, errors.New("connection reset")
	}
	_, err = svc.ListBalances(context.Background())
	assert.Error(t, err)
}

func TestHistory(t *testing.T) {
	book := newBook()
	fakeRepo := NewFakeLedgerRepo()
	book.install(fakeRepo)
	fakeRepo.ListTransactionLogsFunc = func(ctx context.Context, db bun.IDB, accountID int64, limit int) ([]ledgerdb.TransactionLog, error) {
		assert.Equal(t, int64(2), accountID)
		assert.Equal(t, 5, limit)
		return []ledgerdb.TransactionLog{{ID: 9, FromAccountID: 1, ToAccountID: 2, Amount: 100}}, nil
	}
	svc := newTestService(fakeRepo)

	entries, err := svc.History(context.Background(), 20, 5)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	entries, err = svc.History(context.Background(), 77, 5)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPanicIsRecovered(t *testing.T) {
	fakeRepo := NewFakeLedgerRepo()
	fakeRepo.ListAccountsFunc = func(ctx context.Context, db bun.IDB) ([]ledgerdb.Account, error) {
		panic("boom")
	}
	svc := newTestService(fakeRepo)

	_, err := svc.ListBalances(context.Background())
	assert.ErrorContains(t, err, "panic in ListBalances")
}
