package testhelpers

import (
	"context"

	"tourney/domain/entities"
	"tourney/domain/events"

	"github.com/stretchr/testify/mock"
)

// MockTournamentRepository is a mock implementation of TournamentRepository
type MockTournamentRepository struct {
	mock.Mock
}

func (m *MockTournamentRepository) Create(ctx context.Context, tournament *entities.Tournament) error {
	args := m.Called(ctx, tournament)
	return args.Error(0)
}

func (m *MockTournamentRepository) GetByID(ctx context.Context, id int64) (*entities.Tournament, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Tournament), args.Error(1)
}

func (m *MockTournamentRepository) Update(ctx context.Context, tournament *entities.Tournament) error {
	args := m.Called(ctx, tournament)
	return args.Error(0)
}

func (m *MockTournamentRepository) GetActive(ctx context.Context) ([]*entities.Tournament, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Tournament), args.Error(1)
}

func (m *MockTournamentRepository) RegisterParticipant(ctx context.Context, tournamentID, userID int64) error {
	args := m.Called(ctx, tournamentID, userID)
	return args.Error(0)
}

func (m *MockTournamentRepository) UnregisterParticipant(ctx context.Context, tournamentID, userID int64) (bool, error) {
	args := m.Called(ctx, tournamentID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTournamentRepository) IsRegistered(ctx context.Context, tournamentID, userID int64) (bool, error) {
	args := m.Called(ctx, tournamentID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTournamentRepository) GetParticipants(ctx context.Context, tournamentID int64) ([]*entities.TournamentParticipant, error) {
	args := m.Called(ctx, tournamentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.TournamentParticipant), args.Error(1)
}

func (m *MockTournamentRepository) SaveTeamMembers(ctx context.Context, members []*entities.TeamMember) error {
	args := m.Called(ctx, members)
	return args.Error(0)
}

func (m *MockTournamentRepository) GetTeamMembers(ctx context.Context, tournamentID int64) ([]*entities.TeamMember, error) {
	args := m.Called(ctx, tournamentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.TeamMember), args.Error(1)
}

// MockMatchRepository is a mock implementation of MatchRepository
type MockMatchRepository struct {
	mock.Mock
}

func (m *MockMatchRepository) Create(ctx context.Context, match *entities.Match) error {
	args := m.Called(ctx, match)
	return args.Error(0)
}

func (m *MockMatchRepository) GetByID(ctx context.Context, id int64) (*entities.Match, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Match), args.Error(1)
}

func (m *MockMatchRepository) GetByTournament(ctx context.Context, tournamentID int64) ([]*entities.Match, error) {
	args := m.Called(ctx, tournamentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Match), args.Error(1)
}

func (m *MockMatchRepository) UpdateMany(ctx context.Context, matches []*entities.Match) error {
	args := m.Called(ctx, matches)
	return args.Error(0)
}

func (m *MockMatchRepository) GetUserRecord(ctx context.Context, userID int64) (int, int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Int(1), args.Error(2)
}

// MockWalletRepository is a mock implementation of WalletRepository
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) GetOrCreate(ctx context.Context, tournamentID, userID int64, initialAmount float64) (*entities.Wallet, error) {
	args := m.Called(ctx, tournamentID, userID, initialAmount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletRepository) Get(ctx context.Context, tournamentID, userID int64) (*entities.Wallet, error) {
	args := m.Called(ctx, tournamentID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletRepository) Debit(ctx context.Context, tournamentID, userID int64, amount float64) (bool, error) {
	args := m.Called(ctx, tournamentID, userID, amount)
	return args.Bool(0), args.Error(1)
}

func (m *MockWalletRepository) Credit(ctx context.Context, tournamentID, userID int64, amount float64) error {
	args := m.Called(ctx, tournamentID, userID, amount)
	return args.Error(0)
}

func (m *MockWalletRepository) GetByTournament(ctx context.Context, tournamentID int64) ([]*entities.Wallet, error) {
	args := m.Called(ctx, tournamentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Wallet), args.Error(1)
}

// MockBetGameRepository is a mock implementation of BetGameRepository
type MockBetGameRepository struct {
	mock.Mock
}

func (m *MockBetGameRepository) Create(ctx context.Context, game *entities.BetGame) error {
	args := m.Called(ctx, game)
	return args.Error(0)
}

func (m *MockBetGameRepository) GetByID(ctx context.Context, id int64) (*entities.BetGame, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.BetGame), args.Error(1)
}

func (m *MockBetGameRepository) GetByTournament(ctx context.Context, tournamentID int64) ([]*entities.BetGame, error) {
	args := m.Called(ctx, tournamentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.BetGame), args.Error(1)
}

func (m *MockBetGameRepository) MarkDistributed(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBetGameRepository) GetPendingSettlement(ctx context.Context, tournamentID int64) ([]*entities.BetGame, error) {
	args := m.Called(ctx, tournamentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.BetGame), args.Error(1)
}

func (m *MockBetGameRepository) GetTournamentsWithPendingSettlement(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockBetGameRepository) GetGuildsWithPendingSettlement(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

// MockWagerRepository is a mock implementation of WagerRepository
type MockWagerRepository struct {
	mock.Mock
}

func (m *MockWagerRepository) Create(ctx context.Context, wager *entities.Wager) error {
	args := m.Called(ctx, wager)
	return args.Error(0)
}

func (m *MockWagerRepository) GetUndistributedByBetGame(ctx context.Context, betGameID int64) ([]*entities.Wager, error) {
	args := m.Called(ctx, betGameID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Wager), args.Error(1)
}

func (m *MockWagerRepository) GetByUser(ctx context.Context, tournamentID, userID int64) ([]*entities.Wager, error) {
	args := m.Called(ctx, tournamentID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Wager), args.Error(1)
}

func (m *MockWagerRepository) MarkDistributed(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockLedgerRepository is a mock implementation of LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Record(ctx context.Context, entry *entities.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) GetByMatch(ctx context.Context, matchID int64) ([]*entities.LedgerEntry, error) {
	args := m.Called(ctx, matchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) GetByUser(ctx context.Context, tournamentID, userID int64) ([]*entities.LedgerEntry, error) {
	args := m.Called(ctx, tournamentID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.LedgerEntry), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}
