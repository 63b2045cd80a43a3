package scrumintegrationtests

import (
	"context"
	"testing"
	"time"

	scrumdb "github.com/Black-And-White-Club/scrum-bot/app/modules/scrum/infrastructure/repositories"
	"github.com/Black-And-White-Club/scrum-bot/integration_tests/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScrumDateIsUnique(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, testEnv.Reset(ctx))
	repo := scrumdb.NewRepository(testEnv.DB)

	first := &scrumdb.Scrum{ScrumDate: "2026-10-14", ChannelID: testChannelID, MessageID: "200000000000000001"}
	require.NoError(t, repo.Create(ctx, nil, first))
	assert.NotZero(t, first.ID)

	dup := &scrumdb.Scrum{ScrumDate: "2026-10-14", ChannelID: testChannelID, MessageID: "200000000000000002"}
	assert.ErrorIs(t, repo.Create(ctx, nil, dup), scrumdb.ErrDuplicateScrum)
}

func TestMarkClosedOnlyOnce(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, testEnv.Reset(ctx))
	repo := scrumdb.NewRepository(testEnv.DB)

	row := &scrumdb.Scrum{ScrumDate: "2026-10-14", ChannelID: testChannelID, MessageID: "200000000000000003"}
	require.NoError(t, repo.Create(ctx, nil, row))

	require.NoError(t, repo.MarkClosed(ctx, nil, row.ID, time.Now()))
	assert.ErrorIs(t, repo.MarkClosed(ctx, nil, row.ID, time.Now()), scrumdb.ErrAlreadyClosed)
}

func TestResponseUpsertKeepsLatestVote(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, testEnv.Reset(ctx))
	people, err := testutils.NewTestDataGenerator(3).SeedParticipants(ctx, testEnv.DB, 0)
	require.NoError(t, err)
	repo := scrumdb.NewRepository(testEnv.DB)

	row := &scrumdb.Scrum{ScrumDate: "2026-10-14", ChannelID: testChannelID, MessageID: "200000000000000004"}
	require.NoError(t, repo.Create(ctx, nil, row))

	now := time.Now().UTC()
	require.NoError(t, repo.UpsertResponse(ctx, nil, &scrumdb.Response{ScrumID: row.ID, ParticipantID: people[0].ID, Available: true, RespondedAt: now}))
	require.NoError(t, repo.UpsertResponse(ctx, nil, &scrumdb.Response{ScrumID: row.ID, ParticipantID: people[0].ID, Available: false, RespondedAt: now.Add(time.Minute)}))

	responses, err := repo.ListResponses(ctx, nil, row.ID)
	require.NoError(t, err)
	require.Len(t, responses, 1)
	assert.False(t, responses[0].Available)

	removed, err := repo.DeleteResponse(ctx, nil, row.ID, people[0].ID, true)
	require.NoError(t, err)
	assert.False(t, removed, "retracting the other marker leaves the vote")

	removed, err = repo.DeleteResponse(ctx, nil, row.ID, people[0].ID, false)
	require.NoError(t, err)
	assert.True(t, removed)
}
