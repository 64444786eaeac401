package repository

import (
	"context"
	"testing"
	"time"

	"tourney/domain/entities"
	"tourney/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchRepository_SkeletonAndUpdateMany(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	tournaments := NewTournamentRepository(testDB.DB, testGuildID)
	repo := NewMatchRepository(testDB.DB, testGuildID)

	tournament := testutil.CreateTestTournament(0, "Cup")
	require.NoError(t, tournaments.Create(ctx, tournament))

	left := testutil.CreateTestMatch(tournament.ID, 10, 11)
	right := testutil.CreateTestMatch(tournament.ID, 12, 13)
	require.NoError(t, repo.Create(ctx, left))
	require.NoError(t, repo.Create(ctx, right))
	final := &entities.Match{
		TournamentID:     tournament.ID,
		PreviousMatch1ID: &left.ID,
		PreviousMatch2ID: &right.ID,
	}
	require.NoError(t, repo.Create(ctx, final))

	left.Decide(10, "2-0", time.Now())
	final.PlaceUser(10)
	final.SetMap("mirage")
	require.NoError(t, repo.UpdateMany(ctx, []*entities.Match{left, final}))

	matches, err := repo.GetByTournament(ctx, tournament.ID)
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Equal(t, []int64{left.ID, right.ID, final.ID}, []int64{matches[0].ID, matches[1].ID, matches[2].ID})

	gotLeft := matches[0]
	require.NotNil(t, gotLeft.WinnerID)
	assert.Equal(t, int64(10), *gotLeft.WinnerID)
	assert.Equal(t, "2-0", *gotLeft.Score)
	assert.NotNil(t, gotLeft.DecidedAt)
	assert.True(t, gotLeft.IsLeaf())

	gotFinal, err := repo.GetByID(ctx, final.ID)
	require.NoError(t, err)
	assert.True(t, gotFinal.HasUser(10))
	assert.Equal(t, "mirage", *gotFinal.Map)
	assert.Equal(t, left.ID, *gotFinal.PreviousMatch1ID)

	t.Run("winner must be a participant", func(t *testing.T) {
		bad := *right
		bad.WinnerID = int64Ptr(99)
		assert.Error(t, repo.UpdateMany(ctx, []*entities.Match{&bad}))
	})

	t.Run("missing match", func(t *testing.T) {
		assert.Error(t, repo.UpdateMany(ctx, []*entities.Match{{ID: 999999}}))
	})
}

func TestMatchRepository_GetUserRecord(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	tournaments := NewTournamentRepository(testDB.DB, testGuildID)
	repo := NewMatchRepository(testDB.DB, testGuildID)

	tournament := testutil.CreateTestTournament(0, "History")
	require.NoError(t, tournaments.Create(ctx, tournament))

	won := testutil.CreateTestMatch(tournament.ID, 10, 11)
	won.Decide(10, "2-0", time.Now())
	lost := testutil.CreateTestMatch(tournament.ID, 12, 10)
	lost.Decide(12, "2-1", time.Now())
	bye := &entities.Match{TournamentID: tournament.ID, User1ID: int64Ptr(10)}
	bye.Decide(10, entities.ScoreNotPlayed, time.Now())
	pending := testutil.CreateTestMatch(tournament.ID, 10, 13)
	for _, m := range []*entities.Match{won, lost, bye, pending} {
		require.NoError(t, repo.Create(ctx, m))
	}

	wins, losses, err := repo.GetUserRecord(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, losses)

	otherGuild := NewMatchRepository(testDB.DB, 7)
	wins, losses, err = otherGuild.GetUserRecord(ctx, 10)
	require.NoError(t, err)
	assert.Zero(t, wins)
	assert.Zero(t, losses)
}
