package services

import (
	"math/rand"
	"testing"
	"time"

	"tourney/domain/entities"
	"tourney/domain/events"
	"tourney/domain/testhelpers"

	"github.com/stretchr/testify/mock"
)

// Test constants for consistent test data
const (
	testGuildID      = int64(555555555)
	testTournamentID = int64(1)
	testBetGameID    = int64(40)
	testBettorID     = int64(500)
)

// testMocks aggregates all repository mocks for testing
type testMocks struct {
	TournamentRepo *testhelpers.MockTournamentRepository
	MatchRepo      *testhelpers.MockMatchRepository
	WalletRepo     *testhelpers.MockWalletRepository
	BetGameRepo    *testhelpers.MockBetGameRepository
	WagerRepo      *testhelpers.MockWagerRepository
	LedgerRepo     *testhelpers.MockLedgerRepository
	EventPublisher *testhelpers.MockEventPublisher
}

func newTestMocks() *testMocks {
	return &testMocks{
		TournamentRepo: new(testhelpers.MockTournamentRepository),
		MatchRepo:      new(testhelpers.MockMatchRepository),
		WalletRepo:     new(testhelpers.MockWalletRepository),
		BetGameRepo:    new(testhelpers.MockBetGameRepository),
		WagerRepo:      new(testhelpers.MockWagerRepository),
		LedgerRepo:     new(testhelpers.MockLedgerRepository),
		EventPublisher: new(testhelpers.MockEventPublisher),
	}
}

func (m *testMocks) assertAllExpectations(t *testing.T) {
	t.Helper()
	m.TournamentRepo.AssertExpectations(t)
	m.MatchRepo.AssertExpectations(t)
	m.WalletRepo.AssertExpectations(t)
	m.BetGameRepo.AssertExpectations(t)
	m.WagerRepo.AssertExpectations(t)
	m.LedgerRepo.AssertExpectations(t)
	m.EventPublisher.AssertExpectations(t)
}

func (m *testMocks) tournamentService() *tournamentService {
	return NewTournamentService(m.TournamentRepo, m.MatchRepo, m.EventPublisher, rand.New(rand.NewSource(1))).(*tournamentService)
}

func (m *testMocks) matchService() *matchService {
	return NewMatchService(m.TournamentRepo, m.MatchRepo, m.EventPublisher, rand.New(rand.NewSource(1))).(*matchService)
}

func (m *testMocks) betService() *betService {
	return NewBetService(m.TournamentRepo, m.MatchRepo, m.WalletRepo, m.BetGameRepo, m.WagerRepo, m.EventPublisher).(*betService)
}

func (m *testMocks) settlementService() *settlementService {
	return NewSettlementService(m.TournamentRepo, m.MatchRepo, m.WalletRepo, m.BetGameRepo, m.WagerRepo, m.LedgerRepo, m.EventPublisher).(*settlementService)
}

// expectEventPublish expects one event of the given type
func (m *testMocks) expectEventPublish(eventType events.EventType) {
	m.EventPublisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		return e.Type() == eventType
	})).Return(nil).Once()
}

// createTestTournament returns an open solo tournament with common defaults
func createTestTournament(opts ...func(*entities.Tournament)) *entities.Tournament {
	now := time.Now()
	tournament := &entities.Tournament{
		ID:               testTournamentID,
		GuildID:          testGuildID,
		Name:             "Spring Cup",
		RegistrationDate: now.Add(-24 * time.Hour),
		StartDate:        now.Add(24 * time.Hour),
		EndDate:          now.Add(48 * time.Hour),
		BestOf:           3,
		MaxPlayers:       4,
		Maps:             []string{"dust2", "mirage"},
		TeamSize:         1,
		CreatedAt:        now,
	}
	for _, opt := range opts {
		opt(tournament)
	}
	return tournament
}

func started(t *entities.Tournament) {
	t.HasStarted = true
}

func participants(userIDs ...int64) []*entities.TournamentParticipant {
	out := make([]*entities.TournamentParticipant, len(userIDs))
	for i, id := range userIDs {
		out[i] = &entities.TournamentParticipant{
			TournamentID: testTournamentID,
			UserID:       id,
			RegisteredAt: time.Now().Add(time.Duration(i) * time.Minute),
		}
	}
	return out
}

func ptr(v int64) *int64 {
	return &v
}

// fourPlayerBracket returns leaves 1=(10,11) and 2=(12,13) feeding root 3
func fourPlayerBracket() []*entities.Match {
	return []*entities.Match{
		{ID: 1, TournamentID: testTournamentID, User1ID: ptr(10), User2ID: ptr(11), Map: strPtr("dust2")},
		{ID: 2, TournamentID: testTournamentID, User1ID: ptr(12), User2ID: ptr(13), Map: strPtr("mirage")},
		{ID: 3, TournamentID: testTournamentID, PreviousMatch1ID: ptr(1), PreviousMatch2ID: ptr(2)},
	}
}

func strPtr(s string) *string {
	return &s
}
