package participantservice

import (
	"context"

	participantdb "github.com/Black-And-White-Club/scrum-bot/app/modules/participant/infrastructure/repositories"
	"github.com/uptrace/bun"
)

type FakeParticipantRepo struct {
	trace []string

	GetByIDFunc         func(ctx context.Context, db bun.IDB, id int64) (*participantdb.Participant, error)
	GetByExternalIDFunc func(ctx context.Context, db bun.IDB, externalID string) (*participantdb.Participant, error)
	ListFunc            func(ctx context.Context, db bun.IDB) ([]participantdb.Participant, error)
	CreateFunc          func(ctx context.Context, db bun.IDB, p *participantdb.Participant, externalID string) error
	IncrementStreakFunc func(ctx context.Context, db bun.IDB, id int64) (int, error)
	ResetStreakFunc     func(ctx context.Context, db bun.IDB, id int64) error
}

func NewFakeParticipantRepo() *FakeParticipantRepo {
	return &FakeParticipantRepo{trace: []string{}}
}

func (f *FakeParticipantRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeParticipantRepo) GetByID(ctx context.Context, db bun.IDB, id int64) (*participantdb.Participant, error) {
	f.record("GetByID")
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, db, id)
	}
	return nil, participantdb.ErrNotFound
}

func (f *FakeParticipantRepo) GetByExternalID(ctx context.Context, db bun.IDB, externalID string) (*participantdb.Participant, error) {
	f.record("GetByExternalID")
	if f.GetByExternalIDFunc != nil {
		return f.GetByExternalIDFunc(ctx, db, externalID)
	}
	return nil, participantdb.ErrNotFound
}

func (f *FakeParticipantRepo) List(ctx context.Context, db bun.IDB) ([]participantdb.Participant, error) {
	f.record("List")
	if f.ListFunc != nil {
		return f.ListFunc(ctx, db)
	}
	return nil, nil
}

func (f *FakeParticipantRepo) Create(ctx context.Context, db bun.IDB, p *participantdb.Participant, externalID string) error {
	f.record("Create")
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, db, p, externalID)
	}
	return nil
}

func (f *FakeParticipantRepo) IncrementStreak(ctx context.Context, db bun.IDB, id int64) (int, error) {
	f.record("IncrementStreak")
	if f.IncrementStreakFunc != nil {
		return f.IncrementStreakFunc(ctx, db, id)
	}
	return 1, nil
}

func (f *FakeParticipantRepo) ResetStreak(ctx context.Context, db bun.IDB, id int64) error {
	f.record("ResetStreak")
	if f.ResetStreakFunc != nil {
		return f.ResetStreakFunc(ctx, db, id)
	}
	return nil
}

func (f *FakeParticipantRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ participantdb.Repository = (*FakeParticipantRepo)(nil)
