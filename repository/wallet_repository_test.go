package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"tourney/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletRepository_GetOrCreate(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	tournaments := NewTournamentRepository(testDB.DB, testGuildID)
	repo := NewWalletRepository(testDB.DB, testGuildID)

	tournament := testutil.CreateTestTournament(0, "Wallets")
	require.NoError(t, tournaments.Create(ctx, tournament))

	missing, err := repo.Get(ctx, tournament.ID, 500)
	require.NoError(t, err)
	assert.Nil(t, missing)

	wallet, err := repo.GetOrCreate(ctx, tournament.ID, 500, 1000)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, wallet.Amount)

	require.NoError(t, repo.Credit(ctx, tournament.ID, 500, 50))

	// A second call never resets the balance
	again, err := repo.GetOrCreate(ctx, tournament.ID, 500, 1000)
	require.NoError(t, err)
	assert.Equal(t, wallet.ID, again.ID)
	assert.Equal(t, 1050.0, again.Amount)
}

func TestWalletRepository_Debit(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	tournaments := NewTournamentRepository(testDB.DB, testGuildID)
	repo := NewWalletRepository(testDB.DB, testGuildID)

	tournament := testutil.CreateTestTournament(0, "Debits")
	require.NoError(t, tournaments.Create(ctx, tournament))
	_, err := repo.GetOrCreate(ctx, tournament.ID, 500, 100)
	require.NoError(t, err)

	ok, err := repo.Debit(ctx, tournament.ID, 500, 100)
	require.NoError(t, err)
	assert.True(t, ok, "a stake equal to the balance is allowed")

	ok, err = repo.Debit(ctx, tournament.ID, 500, 0.01)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Debit(ctx, tournament.ID, 501, 1)
	require.NoError(t, err)
	assert.False(t, ok, "no wallet, no debit")

	wallet, err := repo.Get(ctx, tournament.ID, 500)
	require.NoError(t, err)
	assert.Equal(t, 0.0, wallet.Amount)
}

func TestWalletRepository_ConcurrentDebitsNeverOverdraw(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	tournaments := NewTournamentRepository(testDB.DB, testGuildID)
	repo := NewWalletRepository(testDB.DB, testGuildID)

	tournament := testutil.CreateTestTournament(0, "Race")
	require.NoError(t, tournaments.Create(ctx, tournament))
	_, err := repo.GetOrCreate(ctx, tournament.ID, 500, 1000)
	require.NoError(t, err)

	var succeeded atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.Debit(ctx, tournament.ID, 500, 200)
			assert.NoError(t, err)
			if ok {
				succeeded.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(5), succeeded.Load())
	wallet, err := repo.Get(ctx, tournament.ID, 500)
	require.NoError(t, err)
	assert.Equal(t, 0.0, wallet.Amount)
}

func TestWalletRepository_Leaderboard(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	tournaments := NewTournamentRepository(testDB.DB, testGuildID)
	repo := NewWalletRepository(testDB.DB, testGuildID)

	tournament := testutil.CreateTestTournament(0, "Board")
	require.NoError(t, tournaments.Create(ctx, tournament))
	for userID, amount := range map[int64]float64{500: 900, 501: 1200, 502: 1000} {
		_, err := repo.GetOrCreate(ctx, tournament.ID, userID, amount)
		require.NoError(t, err)
	}

	wallets, err := repo.GetByTournament(ctx, tournament.ID)
	require.NoError(t, err)
	require.Len(t, wallets, 3)
	assert.Equal(t, []int64{501, 502, 500}, []int64{wallets[0].UserID, wallets[1].UserID, wallets[2].UserID})
}
