package scrumservice

import (
	"context"
	"fmt"
	"slices"
	"time"

	ledgerdomain "github.com/Black-And-White-Club/scrum-bot/app/modules/ledger/domain"
	ledgerdb "github.com/Black-And-White-Club/scrum-bot/app/modules/ledger/infrastructure/repositories"
	participantdb "github.com/Black-And-White-Club/scrum-bot/app/modules/participant/infrastructure/repositories"
	scrumdb "github.com/Black-And-White-Club/scrum-bot/app/modules/scrum/infrastructure/repositories"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/channel"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Scrum Repo
// ------------------------

// FakeScrumRepo keeps scrums and responses in memory. Func fields override
// the in-memory behaviour for failure injection.
type FakeScrumRepo struct {
	trace     []string
	nextID    int64
	scrums    map[int64]*scrumdb.Scrum
	responses map[[2]int64]scrumdb.Response

	GetByDateFunc      func(ctx context.Context, db bun.IDB, date string) (*scrumdb.Scrum, error)
	CreateFunc         func(ctx context.Context, db bun.IDB, scrum *scrumdb.Scrum) error
	MarkClosedFunc     func(ctx context.Context, db bun.IDB, scrumID int64, closedAt time.Time) error
	UpsertResponseFunc func(ctx context.Context, db bun.IDB, response *scrumdb.Response) error
}

func NewFakeScrumRepo() *FakeScrumRepo {
	return &FakeScrumRepo{
		trace:     []string{},
		scrums:    map[int64]*scrumdb.Scrum{},
		responses: map[[2]int64]scrumdb.Response{},
	}
}

func (f *FakeScrumRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeScrumRepo) Trace() []string {
	return f.trace
}

// seed stores a scrum directly, bypassing the trace.
func (f *FakeScrumRepo) seed(s scrumdb.Scrum) *scrumdb.Scrum {
	if s.ID == 0 {
		f.nextID++
		s.ID = f.nextID
	}
	f.scrums[s.ID] = &s
	return &s
}

func (f *FakeScrumRepo) GetByDate(ctx context.Context, db bun.IDB, date string) (*scrumdb.Scrum, error) {
	f.record("GetByDate")
	if f.GetByDateFunc != nil {
		return f.GetByDateFunc(ctx, db, date)
	}
	for _, s := range f.scrums {
		if s.ScrumDate == date {
			cp := *s
			return &cp, nil
		}
	}
	return nil, scrumdb.ErrNotFound
}

func (f *FakeScrumRepo) GetByMessage(ctx context.Context, db bun.IDB, messageID string) (*scrumdb.Scrum, error) {
	f.record("GetByMessage")
	for _, s := range f.scrums {
		if s.MessageID == messageID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, scrumdb.ErrNotFound
}

func (f *FakeScrumRepo) Create(ctx context.Context, db bun.IDB, scrum *scrumdb.Scrum) error {
	f.record("Create")
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, db, scrum)
	}
	for _, s := range f.scrums {
		if s.ScrumDate == scrum.ScrumDate || s.MessageID == scrum.MessageID {
			return scrumdb.ErrDuplicateScrum
		}
	}
	scrum.IsOpen = true
	stored := f.seed(*scrum)
	scrum.ID = stored.ID
	return nil
}

func (f *FakeScrumRepo) MarkClosed(ctx context.Context, db bun.IDB, scrumID int64, closedAt time.Time) error {
	f.record("MarkClosed")
	if f.MarkClosedFunc != nil {
		return f.MarkClosedFunc(ctx, db, scrumID, closedAt)
	}
	s, ok := f.scrums[scrumID]
	if !ok || !s.IsOpen {
		return scrumdb.ErrAlreadyClosed
	}
	s.IsOpen = false
	s.ClosedAt = &closedAt
	return nil
}

func (f *FakeScrumRepo) UpsertResponse(ctx context.Context, db bun.IDB, response *scrumdb.Response) error {
	f.record("UpsertResponse")
	if f.UpsertResponseFunc != nil {
		return f.UpsertResponseFunc(ctx, db, response)
	}
	f.responses[[2]int64{response.ScrumID, response.ParticipantID}] = *response
	return nil
}

func (f *FakeScrumRepo) DeleteResponse(ctx context.Context, db bun.IDB, scrumID, participantID int64, available bool) (bool, error) {
	f.record("DeleteResponse")
	key := [2]int64{scrumID, participantID}
	r, ok := f.responses[key]
	if !ok || r.Available != available {
		return false, nil
	}
	delete(f.responses, key)
	return true, nil
}

func (f *FakeScrumRepo) ListResponses(ctx context.Context, db bun.IDB, scrumID int64) ([]scrumdb.Response, error) {
	f.record("ListResponses")
	var out []scrumdb.Response
	for key, r := range f.responses {
		if key[0] == scrumID {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b scrumdb.Response) int { return int(a.ParticipantID - b.ParticipantID) })
	return out, nil
}

// ------------------------
// Fake Participants
// ------------------------

type FakeParticipants struct {
	trace   []string
	byActor map[channel.ActorID]*participantdb.Participant
	byID    map[int64]*participantdb.Participant

	ResolveFunc             func(ctx context.Context, actor channel.ActorID) (*participantdb.Participant, error)
	RosterFunc              func(ctx context.Context, db bun.IDB) ([]participantdb.Participant, error)
	RecordParticipationFunc func(ctx context.Context, db bun.IDB, participantID int64) (int, error)
	ResetStreakFunc         func(ctx context.Context, db bun.IDB, participantID int64) error
}

func NewFakeParticipants() *FakeParticipants {
	return &FakeParticipants{
		trace:   []string{},
		byActor: map[channel.ActorID]*participantdb.Participant{},
		byID:    map[int64]*participantdb.Participant{},
	}
}

func (f *FakeParticipants) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeParticipants) add(id int64, name string, streak int) channel.ActorID {
	actor := channel.ActorID(fmt.Sprintf("%d", 1000+id))
	p := &participantdb.Participant{ID: id, DisplayName: name, Streak: streak}
	f.byActor[actor] = p
	f.byID[id] = p
	return actor
}

func (f *FakeParticipants) streak(id int64) int {
	return f.byID[id].Streak
}

func (f *FakeParticipants) Resolve(ctx context.Context, actor channel.ActorID) (*participantdb.Participant, error) {
	f.record("Resolve")
	if f.ResolveFunc != nil {
		return f.ResolveFunc(ctx, actor)
	}
	p, ok := f.byActor[actor]
	if !ok {
		return nil, participantdb.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *FakeParticipants) Roster(ctx context.Context, db bun.IDB) ([]participantdb.Participant, error) {
	f.record("Roster")
	if f.RosterFunc != nil {
		return f.RosterFunc(ctx, db)
	}
	out := make([]participantdb.Participant, 0, len(f.byID))
	for _, p := range f.byID {
		out = append(out, *p)
	}
	return out, nil
}

func (f *FakeParticipants) RecordParticipation(ctx context.Context, db bun.IDB, participantID int64) (int, error) {
	f.record("RecordParticipation")
	if f.RecordParticipationFunc != nil {
		return f.RecordParticipationFunc(ctx, db, participantID)
	}
	p, ok := f.byID[participantID]
	if !ok {
		return 0, participantdb.ErrNotFound
	}
	p.Streak++
	return p.Streak, nil
}

func (f *FakeParticipants) ResetStreak(ctx context.Context, db bun.IDB, participantID int64) error {
	f.record("ResetStreak")
	if f.ResetStreakFunc != nil {
		return f.ResetStreakFunc(ctx, db, participantID)
	}
	p, ok := f.byID[participantID]
	if !ok {
		return participantdb.ErrNotFound
	}
	p.Streak = 0
	return nil
}

// ------------------------
// Fake Ledger
// ------------------------

type credit struct {
	ParticipantID int64
	Amount        ledgerdomain.Amount
	Memo          string
}

type FakeLedger struct {
	credits []credit

	CreditFunc func(ctx context.Context, db bun.IDB, participantID int64, amount ledgerdomain.Amount, memo string) (*ledgerdb.TransactionLog, error)
}

func (f *FakeLedger) Credit(ctx context.Context, db bun.IDB, participantID int64, amount ledgerdomain.Amount, memo string) (*ledgerdb.TransactionLog, error) {
	if f.CreditFunc != nil {
		return f.CreditFunc(ctx, db, participantID, amount, memo)
	}
	f.credits = append(f.credits, credit{ParticipantID: participantID, Amount: amount, Memo: memo})
	return &ledgerdb.TransactionLog{ID: int64(len(f.credits)), Amount: int64(amount), Memo: memo}, nil
}

// ------------------------
// Fake Gateway
// ------------------------

// FakeGateway records channel writes and serves markers from memory.
type FakeGateway struct {
	trace   []string
	nextID  int
	posted  []string
	edited  map[string]string
	deleted []channel.MessageRef
	signals map[string]map[channel.Marker][]channel.ActorID

	PostMessageFunc   func(ctx context.Context, text string) (channel.MessageRef, error)
	EditMessageFunc   func(ctx context.Context, ref channel.MessageRef, text string) error
	DeleteMessageFunc func(ctx context.Context, ref channel.MessageRef) error
	AttachMarkerFunc  func(ctx context.Context, ref channel.MessageRef, marker channel.Marker) error
	ListSignalsFunc   func(ctx context.Context, ref channel.MessageRef, marker channel.Marker) ([]channel.ActorID, error)
}

var _ channel.Gateway = (*FakeGateway)(nil)

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		trace:   []string{},
		edited:  map[string]string{},
		signals: map[string]map[channel.Marker][]channel.ActorID{},
	}
}

func (f *FakeGateway) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeGateway) Trace() []string {
	return f.trace
}

// react places a marker as actor.
func (f *FakeGateway) react(messageID string, marker channel.Marker, actors ...channel.ActorID) {
	if f.signals[messageID] == nil {
		f.signals[messageID] = map[channel.Marker][]channel.ActorID{}
	}
	f.signals[messageID][marker] = append(f.signals[messageID][marker], actors...)
}

// unreact removes actor's marker.
func (f *FakeGateway) unreact(messageID string, marker channel.Marker, actor channel.ActorID) {
	f.signals[messageID][marker] = slices.DeleteFunc(f.signals[messageID][marker], func(a channel.ActorID) bool {
		return a == actor
	})
}

func (f *FakeGateway) PostMessage(ctx context.Context, text string) (channel.MessageRef, error) {
	f.record("PostMessage")
	if f.PostMessageFunc != nil {
		return f.PostMessageFunc(ctx, text)
	}
	f.nextID++
	f.posted = append(f.posted, text)
	return channel.MessageRef{ChannelID: "42", MessageID: fmt.Sprintf("%d", 9000+f.nextID)}, nil
}

func (f *FakeGateway) EditMessage(ctx context.Context, ref channel.MessageRef, text string) error {
	f.record("EditMessage")
	if f.EditMessageFunc != nil {
		return f.EditMessageFunc(ctx, ref, text)
	}
	f.edited[ref.MessageID] = text
	return nil
}

func (f *FakeGateway) DeleteMessage(ctx context.Context, ref channel.MessageRef) error {
	f.record("DeleteMessage")
	if f.DeleteMessageFunc != nil {
		return f.DeleteMessageFunc(ctx, ref)
	}
	f.deleted = append(f.deleted, ref)
	return nil
}

func (f *FakeGateway) AttachMarker(ctx context.Context, ref channel.MessageRef, marker channel.Marker) error {
	f.record("AttachMarker")
	if f.AttachMarkerFunc != nil {
		return f.AttachMarkerFunc(ctx, ref, marker)
	}
	f.react(ref.MessageID, marker, botActor)
	return nil
}

func (f *FakeGateway) ListSignals(ctx context.Context, ref channel.MessageRef, marker channel.Marker) ([]channel.ActorID, error) {
	f.record("ListSignals")
	if f.ListSignalsFunc != nil {
		return f.ListSignalsFunc(ctx, ref, marker)
	}
	return slices.Clone(f.signals[ref.MessageID][marker]), nil
}

// botActor is the id under which the bot's own markers appear.
const botActor channel.ActorID = "999"

var (
	_ scrumdb.Repository = (*FakeScrumRepo)(nil)
	_ Participants       = (*FakeParticipants)(nil)
	_ Ledger             = (*FakeLedger)(nil)
)
