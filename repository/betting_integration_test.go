package repository

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"tourney/domain/entities"
	"tourney/domain/events"
	"tourney/domain/interfaces"
	"tourney/domain/services"
	"tourney/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedStartedTournament creates a started two-player tournament with one leaf match
func seedStartedTournament(t *testing.T, ctx context.Context, factory *UnitOfWorkFactory) (*entities.Tournament, *entities.Match) {
	t.Helper()

	uow := factory.CreateForGuildWithPublisher(testGuildID, &collectingPublisher{})
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()

	tournament := testutil.CreateTestTournament(testGuildID, "Final Showdown")
	tournament.MaxPlayers = 2
	tournament.HasStarted = true
	require.NoError(t, uow.TournamentRepository().Create(ctx, tournament))
	for _, userID := range []int64{10, 11} {
		require.NoError(t, uow.TournamentRepository().RegisterParticipant(ctx, tournament.ID, userID))
	}

	match := testutil.CreateTestMatch(tournament.ID, 10, 11)
	match.SetMap("dust2")
	require.NoError(t, uow.MatchRepository().Create(ctx, match))
	require.NoError(t, uow.Commit())

	return tournament, match
}

func TestBetting_EndToEndSettlement(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	factory := NewUnitOfWorkFactory(testDB.DB)
	tournament, match := seedStartedTournament(t, ctx, factory)

	// Odds
	publisher := &collectingPublisher{}
	uow := factory.CreateForGuildWithPublisher(testGuildID, publisher)
	require.NoError(t, uow.Begin(ctx))
	odds := services.NewOddsService(uow.TournamentRepository(), uow.MatchRepository(), uow.BetGameRepository(), services.EvenOddsPolicy{}, uow.EventBus())
	games, err := odds.GenerateOdds(ctx, tournament.ID)
	require.NoError(t, err)
	require.NoError(t, uow.Commit())
	require.Len(t, games, 1)
	require.Len(t, publisher.flushed, 1)
	assert.Equal(t, events.EventTypeOddsPublished, publisher.flushed[0].Type())
	game := games[0]

	// Bet 10 on user 10 at 0.5
	uow = factory.CreateForGuildWithPublisher(testGuildID, &collectingPublisher{})
	require.NoError(t, uow.Begin(ctx))
	bets := services.NewBetService(uow.TournamentRepository(), uow.MatchRepository(), uow.WalletRepository(), uow.BetGameRepository(), uow.WagerRepository(), uow.EventBus())
	wager, err := bets.PlaceBet(ctx, tournament.ID, game.ID, 500, 10, 10)
	require.NoError(t, err)
	assert.Equal(t, 0.5, wager.Probability)
	require.NoError(t, uow.Commit())

	// User 11 loses
	uow = factory.CreateForGuildWithPublisher(testGuildID, &collectingPublisher{})
	require.NoError(t, uow.Begin(ctx))
	matches := services.NewMatchService(uow.TournamentRepository(), uow.MatchRepository(), uow.EventBus(), rand.New(rand.NewSource(1)))
	result, err := matches.ReportLoss(ctx, tournament.ID, 11, "2-1")
	require.NoError(t, err)
	assert.True(t, result.IsFinal())
	require.NoError(t, uow.Commit())

	// Settle
	type settleOutcome struct {
		Result *interfaces.SettlementResult
		Events []events.Event
	}
	settle := func() settleOutcome {
		publisher := &collectingPublisher{}
		uow := factory.CreateForGuildWithPublisher(testGuildID, publisher)
		require.NoError(t, uow.Begin(ctx))
		defer uow.Rollback()
		svc := services.NewSettlementService(uow.TournamentRepository(), uow.MatchRepository(), uow.WalletRepository(), uow.BetGameRepository(), uow.WagerRepository(), uow.LedgerRepository(), uow.EventBus())
		res, err := svc.SettleBetGame(ctx, game.ID)
		require.NoError(t, err)
		require.NoError(t, uow.Commit())
		return settleOutcome{Result: res, Events: publisher.flushed}
	}

	first := settle()
	assert.False(t, first.Result.AlreadySettled)
	assert.Equal(t, 20.0, first.Result.TotalPaid)
	require.Len(t, first.Events, 1)

	wallet, err := NewWalletRepository(testDB.DB, testGuildID).Get(ctx, tournament.ID, 500)
	require.NoError(t, err)
	assert.Equal(t, 1010.0, wallet.Amount)

	entries, err := NewLedgerRepository(testDB.DB, testGuildID).GetByMatch(ctx, match.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 20.0, entries[0].Amount)
	assert.Equal(t, wager.ID, entries[0].WagerID)

	// A second pass changes nothing
	second := settle()
	assert.True(t, second.Result.AlreadySettled)
	assert.Empty(t, second.Events)

	wallet, err = NewWalletRepository(testDB.DB, testGuildID).Get(ctx, tournament.ID, 500)
	require.NoError(t, err)
	assert.Equal(t, 1010.0, wallet.Amount)

	pending, err := NewBetGameRepository(testDB.DB, 0).GetGuildsWithPendingSettlement(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestBetting_PendingSettlementQueries(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	factory := NewUnitOfWorkFactory(testDB.DB)
	tournament, match := seedStartedTournament(t, ctx, factory)

	games := NewBetGameRepository(testDB.DB, testGuildID)
	game := testutil.CreateTestBetGame(tournament.ID, match.ID)
	require.NoError(t, games.Create(ctx, game))

	pending, err := games.GetPendingSettlement(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Empty(t, pending, "undecided matches are not pending")

	match.Decide(10, "2-0", time.Now())
	require.NoError(t, NewMatchRepository(testDB.DB, testGuildID).UpdateMany(ctx, []*entities.Match{match}))

	pending, err = games.GetPendingSettlement(ctx, tournament.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, game.ID, pending[0].ID)

	tournamentIDs, err := games.GetTournamentsWithPendingSettlement(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{tournament.ID}, tournamentIDs)

	guilds, err := NewBetGameRepository(testDB.DB, 0).GetGuildsWithPendingSettlement(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{testGuildID}, guilds)

	require.NoError(t, games.MarkDistributed(ctx, game.ID))
	pending, err = games.GetPendingSettlement(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

// failingCreditWallets fails every credit to one user, leaving the rest of the repository intact
type failingCreditWallets struct {
	interfaces.WalletRepository
	failUserID int64
}

func (w *failingCreditWallets) Credit(ctx context.Context, tournamentID, userID int64, amount float64) error {
	if userID == w.failUserID {
		return errors.New("connection reset by peer")
	}
	return w.WalletRepository.Credit(ctx, tournamentID, userID, amount)
}

func TestBetting_FailedSettlementRollsBackAndRetries(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	factory := NewUnitOfWorkFactory(testDB.DB)
	tournament, match := seedStartedTournament(t, ctx, factory)

	uow := factory.CreateForGuildWithPublisher(testGuildID, &collectingPublisher{})
	require.NoError(t, uow.Begin(ctx))
	odds := services.NewOddsService(uow.TournamentRepository(), uow.MatchRepository(), uow.BetGameRepository(), services.EvenOddsPolicy{}, uow.EventBus())
	games, err := odds.GenerateOdds(ctx, tournament.ID)
	require.NoError(t, err)
	require.Len(t, games, 1)
	game := games[0]
	bets := services.NewBetService(uow.TournamentRepository(), uow.MatchRepository(), uow.WalletRepository(), uow.BetGameRepository(), uow.WagerRepository(), uow.EventBus())
	_, err = bets.PlaceBet(ctx, tournament.ID, game.ID, 500, 10, 10)
	require.NoError(t, err)
	_, err = bets.PlaceBet(ctx, tournament.ID, game.ID, 501, 30, 10)
	require.NoError(t, err)
	matchSvc := services.NewMatchService(uow.TournamentRepository(), uow.MatchRepository(), uow.EventBus(), rand.New(rand.NewSource(1)))
	_, err = matchSvc.ReportLoss(ctx, tournament.ID, 11, "2-0")
	require.NoError(t, err)
	require.NoError(t, uow.Commit())

	// settlePending runs one sweep over the tournament, one transaction per bet game
	settlePending := func(wallets func(interfaces.WalletRepository) interfaces.WalletRepository) []error {
		lookup := NewBetGameRepository(testDB.DB, testGuildID)
		pending, err := lookup.GetPendingSettlement(ctx, tournament.ID)
		require.NoError(t, err)

		var errs []error
		for _, g := range pending {
			publisher := &collectingPublisher{}
			uow := factory.CreateForGuildWithPublisher(testGuildID, publisher)
			require.NoError(t, uow.Begin(ctx))
			svc := services.NewSettlementService(uow.TournamentRepository(), uow.MatchRepository(), wallets(uow.WalletRepository()), uow.BetGameRepository(), uow.WagerRepository(), uow.LedgerRepository(), uow.EventBus())
			if _, err := svc.SettleBetGame(ctx, g.ID); err != nil {
				require.NoError(t, uow.Rollback())
				assert.Empty(t, publisher.flushed)
				errs = append(errs, err)
				continue
			}
			require.NoError(t, uow.Commit())
		}
		return errs
	}
	walletAmount := func(userID int64) float64 {
		wallet, err := NewWalletRepository(testDB.DB, testGuildID).Get(ctx, tournament.ID, userID)
		require.NoError(t, err)
		require.NotNil(t, wallet)
		return wallet.Amount
	}

	// The first wager is credited before the second one fails
	errs := settlePending(func(w interfaces.WalletRepository) interfaces.WalletRepository {
		return &failingCreditWallets{WalletRepository: w, failUserID: 501}
	})
	require.Len(t, errs, 1)

	ledger := NewLedgerRepository(testDB.DB, testGuildID)
	entries, err := ledger.GetByMatch(ctx, match.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, 990.0, walletAmount(500))
	assert.Equal(t, 970.0, walletAmount(501))

	storedGame, err := NewBetGameRepository(testDB.DB, testGuildID).GetByID(ctx, game.ID)
	require.NoError(t, err)
	assert.False(t, storedGame.Distributed)
	undistributed, err := NewWagerRepository(testDB.DB, testGuildID).GetUndistributedByBetGame(ctx, game.ID)
	require.NoError(t, err)
	assert.Len(t, undistributed, 2)

	// The next sweep picks the game up again and pays everyone once
	errs = settlePending(func(w interfaces.WalletRepository) interfaces.WalletRepository { return w })
	require.Empty(t, errs)

	entries, err = ledger.GetByMatch(ctx, match.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	paid := map[int64]float64{}
	for _, e := range entries {
		paid[e.UserID] += e.Amount
	}
	assert.Equal(t, map[int64]float64{500: 20, 501: 60}, paid)
	assert.Equal(t, 1010.0, walletAmount(500))
	assert.Equal(t, 1030.0, walletAmount(501))

	storedGame, err = NewBetGameRepository(testDB.DB, testGuildID).GetByID(ctx, game.ID)
	require.NoError(t, err)
	assert.True(t, storedGame.Distributed)

	assert.Empty(t, settlePending(func(w interfaces.WalletRepository) interfaces.WalletRepository { return w }))
	entries, err = ledger.GetByMatch(ctx, match.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
