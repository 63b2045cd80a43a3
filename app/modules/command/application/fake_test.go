package commandservice

import (
	"context"
	"strings"

	ledgerservice "github.com/Black-And-White-Club/scrum-bot/app/modules/ledger/application"
	ledgerdb "github.com/Black-And-White-Club/scrum-bot/app/modules/ledger/infrastructure/repositories"
	participantdb "github.com/Black-And-White-Club/scrum-bot/app/modules/participant/infrastructure/repositories"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/channel"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Participants
// ------------------------

type FakeParticipants struct {
	trace   []string
	byActor map[channel.ActorID]participantdb.Participant
	roster  []participantdb.Participant

	ResolveFunc  func(ctx context.Context, actor channel.ActorID) (*participantdb.Participant, error)
	RosterFunc   func(ctx context.Context, db bun.IDB) ([]participantdb.Participant, error)
	RegisterFunc func(ctx context.Context, displayName string, actor channel.ActorID) (*participantdb.Participant, error)
}

func NewFakeParticipants() *FakeParticipants {
	return &FakeParticipants{byActor: map[channel.ActorID]participantdb.Participant{}}
}

func (f *FakeParticipants) add(actor channel.ActorID, p participantdb.Participant) {
	f.byActor[actor] = p
	f.roster = append(f.roster, p)
}

func (f *FakeParticipants) record(step string) { f.trace = append(f.trace, step) }

func (f *FakeParticipants) Trace() []string { return f.trace }

func (f *FakeParticipants) Resolve(ctx context.Context, actor channel.ActorID) (*participantdb.Participant, error) {
	f.record("Resolve")
	if f.ResolveFunc != nil {
		return f.ResolveFunc(ctx, actor)
	}
	if _, err := channel.ParseSnowflake("actor_id", string(actor)); err != nil {
		return nil, err
	}
	p, ok := f.byActor[actor]
	if !ok {
		return nil, participantdb.ErrNotFound
	}
	return &p, nil
}

func (f *FakeParticipants) Roster(ctx context.Context, db bun.IDB) ([]participantdb.Participant, error) {
	f.record("Roster")
	if f.RosterFunc != nil {
		return f.RosterFunc(ctx, db)
	}
	return f.roster, nil
}

func (f *FakeParticipants) Register(ctx context.Context, displayName string, actor channel.ActorID) (*participantdb.Participant, error) {
	f.record("Register")
	if f.RegisterFunc != nil {
		return f.RegisterFunc(ctx, displayName, actor)
	}
	if _, ok := f.byActor[actor]; ok {
		return nil, participantdb.ErrIdentityTaken
	}
	p := participantdb.Participant{ID: int64(len(f.roster) + 1), DisplayName: strings.TrimSpace(displayName)}
	f.add(actor, p)
	return &p, nil
}

// ------------------------
// Fake Ledger
// ------------------------

type FakeLedger struct {
	trace    []string
	balances []ledgerservice.Balance
	history  map[int64][]ledgerdb.TransactionLog

	ListBalancesFunc func(ctx context.Context) ([]ledgerservice.Balance, error)
	HistoryFunc      func(ctx context.Context, participantID int64, limit int) ([]ledgerdb.TransactionLog, error)
}

func (f *FakeLedger) record(step string) { f.trace = append(f.trace, step) }

func (f *FakeLedger) ListBalances(ctx context.Context) ([]ledgerservice.Balance, error) {
	f.record("ListBalances")
	if f.ListBalancesFunc != nil {
		return f.ListBalancesFunc(ctx)
	}
	return f.balances, nil
}

func (f *FakeLedger) History(ctx context.Context, participantID int64, limit int) ([]ledgerdb.TransactionLog, error) {
	f.record("History")
	if f.HistoryFunc != nil {
		return f.HistoryFunc(ctx, participantID, limit)
	}
	entries := f.history[participantID]
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

var (
	_ Participants = (*FakeParticipants)(nil)
	_ Ledger       = (*FakeLedger)(nil)
)
