package interfaces

import (
	"context"

	"tourney/domain/entities"
	"tourney/domain/events"
)

// TournamentRepository defines the interface for tournament, registration and team data access
type TournamentRepository interface {
	// Create inserts a tournament and sets its ID
	Create(ctx context.Context, tournament *entities.Tournament) error

	// GetByID retrieves a tournament with its registered count, nil if not found
	GetByID(ctx context.Context, id int64) (*entities.Tournament, error)

	// Update persists mutable tournament fields
	Update(ctx context.Context, tournament *entities.Tournament) error

	// GetActive returns tournaments of the guild that have not finished
	GetActive(ctx context.Context) ([]*entities.Tournament, error)

	// Registration operations
	RegisterParticipant(ctx context.Context, tournamentID, userID int64) error
	UnregisterParticipant(ctx context.Context, tournamentID, userID int64) (bool, error)
	IsRegistered(ctx context.Context, tournamentID, userID int64) (bool, error)
	GetParticipants(ctx context.Context, tournamentID int64) ([]*entities.TournamentParticipant, error)

	// Team operations
	SaveTeamMembers(ctx context.Context, members []*entities.TeamMember) error
	GetTeamMembers(ctx context.Context, tournamentID int64) ([]*entities.TeamMember, error)
}

// MatchRepository defines the interface for bracket match data access
type MatchRepository interface {
	// Create inserts a match and sets its ID
	Create(ctx context.Context, match *entities.Match) error

	// GetByID retrieves a match, nil if not found
	GetByID(ctx context.Context, id int64) (*entities.Match, error)

	// GetByTournament returns every match of a tournament ordered by id
	GetByTournament(ctx context.Context, tournamentID int64) ([]*entities.Match, error)

	// UpdateMany persists slots, winner, score, map and decision time of the given matches
	UpdateMany(ctx context.Context, matches []*entities.Match) error

	// GetUserRecord returns decided match wins and losses of a user across the guild
	GetUserRecord(ctx context.Context, userID int64) (wins int, losses int, err error)
}

// WalletRepository defines the interface for per-tournament betting wallets
type WalletRepository interface {
	// GetOrCreate returns the wallet, creating it with the initial amount if missing
	GetOrCreate(ctx context.Context, tournamentID, userID int64, initialAmount float64) (*entities.Wallet, error)

	// Get returns the wallet, nil if missing
	Get(ctx context.Context, tournamentID, userID int64) (*entities.Wallet, error)

	// Debit subtracts amount only if the balance covers it. Returns false when it does not.
	Debit(ctx context.Context, tournamentID, userID int64, amount float64) (bool, error)

	// Credit adds amount to the wallet
	Credit(ctx context.Context, tournamentID, userID int64, amount float64) error

	// GetByTournament returns all wallets of a tournament, richest first
	GetByTournament(ctx context.Context, tournamentID int64) ([]*entities.Wallet, error)
}

// BetGameRepository defines the interface for bettable match data access
type BetGameRepository interface {
	Create(ctx context.Context, game *entities.BetGame) error
	GetByID(ctx context.Context, id int64) (*entities.BetGame, error)
	GetByTournament(ctx context.Context, tournamentID int64) ([]*entities.BetGame, error)
	MarkDistributed(ctx context.Context, id int64) error

	// GetPendingSettlement returns undistributed games whose match has a winner
	GetPendingSettlement(ctx context.Context, tournamentID int64) ([]*entities.BetGame, error)

	// GetTournamentsWithPendingSettlement returns tournament ids of the guild with games to settle
	GetTournamentsWithPendingSettlement(ctx context.Context) ([]int64, error)

	// GetGuildsWithPendingSettlement returns guild ids with games to settle, across all guilds
	GetGuildsWithPendingSettlement(ctx context.Context) ([]int64, error)
}

// WagerRepository defines the interface for wager data access
type WagerRepository interface {
	Create(ctx context.Context, wager *entities.Wager) error
	GetUndistributedByBetGame(ctx context.Context, betGameID int64) ([]*entities.Wager, error)
	GetByUser(ctx context.Context, tournamentID, userID int64) ([]*entities.Wager, error)
	MarkDistributed(ctx context.Context, id int64) error
}

// LedgerRepository defines the interface for the append-only settlement ledger
type LedgerRepository interface {
	Record(ctx context.Context, entry *entities.LedgerEntry) error
	GetByMatch(ctx context.Context, matchID int64) ([]*entities.LedgerEntry, error)
	GetByUser(ctx context.Context, tournamentID, userID int64) ([]*entities.LedgerEntry, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher buffers events until the surrounding transaction commits
type TransactionalEventPublisher interface {
	EventPublisher

	// Flush publishes every pending event
	Flush(ctx context.Context) error

	// Discard drops every pending event
	Discard()
}
