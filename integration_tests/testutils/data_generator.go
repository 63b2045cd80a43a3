package testutils

import (
	"context"
	"fmt"
	"time"

	participantdb "github.com/Black-And-White-Club/scrum-bot/app/modules/participant/infrastructure/repositories"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/channel"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/uptrace/bun"
)

// TestDataGenerator creates participants with fake names and platform ids.
type TestDataGenerator struct {
	faker *gofakeit.Faker
}

// NewTestDataGenerator creates a new generator with an optional seed.
func NewTestDataGenerator(seed ...uint64) *TestDataGenerator {
	s := uint64(time.Now().UnixNano())
	if len(seed) > 0 {
		s = seed[0]
	}
	return &TestDataGenerator{faker: gofakeit.New(s)}
}

// SeededParticipant is a stored participant and the actor id linked to it.
type SeededParticipant struct {
	participantdb.Participant
	Actor channel.ActorID
}

// SeedParticipants stores one participant per streak value.
func (g *TestDataGenerator) SeedParticipants(ctx context.Context, db *bun.DB, streaks ...int) ([]SeededParticipant, error) {
	repo := participantdb.NewRepository(db)
	out := make([]SeededParticipant, 0, len(streaks))
	for i, streak := range streaks {
		// A leading non-zero digit keeps the id a valid snowflake.
		actor := channel.ActorID(fmt.Sprintf("%d%s", i+1, g.faker.Numerify("#################")))
		p := &participantdb.Participant{DisplayName: g.faker.FirstName(), Streak: streak}
		if err := repo.Create(ctx, db, p, string(actor)); err != nil {
			return nil, fmt.Errorf("failed to seed participant: %w", err)
		}
		out = append(out, SeededParticipant{Participant: *p, Actor: actor})
	}
	return out, nil
}
