package interfaces

import (
	"context"

	"tourney/domain/bracket"
	"tourney/domain/entities"
)

// TournamentService defines the interface for the tournament lifecycle
type TournamentService interface {
	// CreateTournament validates and persists a new tournament
	CreateTournament(ctx context.Context, tournament *entities.Tournament) error

	// GetTournament returns the tournament or ErrTournamentNotFound
	GetTournament(ctx context.Context, tournamentID int64) (*entities.Tournament, error)

	// ListActiveTournaments returns the guild's tournaments that have not finished
	ListActiveTournaments(ctx context.Context) ([]*entities.Tournament, error)

	// Register adds a participant while the registration window is open
	Register(ctx context.Context, tournamentID, userID int64) error

	// Unregister removes a participant before the tournament starts
	Unregister(ctx context.Context, tournamentID, userID int64) error

	// Start seeds the bracket and returns who made it in and who was left out
	Start(ctx context.Context, tournamentID int64) (*StartResult, error)

	// GetBracket rebuilds the bracket tree, nil when no match exists yet
	GetBracket(ctx context.Context, tournamentID int64) (*bracket.Node, error)

	// GetTeams returns the teammates of every team leader
	GetTeams(ctx context.Context, tournamentID int64) (map[int64][]int64, error)

	// Finalize computes the standings once the final is decided and marks the tournament finished
	Finalize(ctx context.Context, tournamentID int64) (*entities.Standings, error)
}

// StartResult describes a freshly started tournament
type StartResult struct {
	Tournament *entities.Tournament
	Admitted   []int64
	Excluded   []int64
	Leaders    []int64
	Teams      map[int64][]int64
	Matches    []*entities.Match
}

// MatchService defines the interface for recording results and advancing the bracket
type MatchService interface {
	// ReportLoss closes the active match of the losing participant and promotes the opponent
	ReportLoss(ctx context.Context, tournamentID, loserID int64, score string) (*ReportResult, error)

	// AdvanceByes promotes participants whose opponent can never arrive and persists the changes
	AdvanceByes(ctx context.Context, tournamentID int64) ([]*entities.Match, error)
}

// ReportResult describes a match closed by a reported loss
type ReportResult struct {
	Tournament *entities.Tournament
	Match      *entities.Match
	Parent     *entities.Match // nil when the final was closed
	WinnerID   int64
	LoserID    int64
}

// IsFinal reports whether the closed match was the bracket root
func (r *ReportResult) IsFinal() bool {
	return r.Parent == nil
}

// OddsPolicy prices the two sides of a match.
// Implementations must return probabilities in (0, 1) that sum to 1.
type OddsPolicy interface {
	Probabilities(ctx context.Context, match *entities.Match) (p1 float64, p2 float64, err error)
}

// OddsService defines the interface for opening matches to betting
type OddsService interface {
	// GenerateOdds creates a bet game for every pending fully paired match that has none
	GenerateOdds(ctx context.Context, tournamentID int64) ([]*entities.BetGame, error)
}

// BetService defines the interface for wallets and wagers
type BetService interface {
	// GetOrCreateWallet returns the user's wallet for the tournament, creating it at the default stake
	GetOrCreateWallet(ctx context.Context, tournamentID, userID int64) (*entities.Wallet, error)

	// PlaceBet debits the stake and records a wager at the current odds of the target
	PlaceBet(ctx context.Context, tournamentID, betGameID, bettorID int64, amount float64, targetID int64) (*entities.Wager, error)

	// ListOpenBetGames returns bet games whose match is still undecided
	ListOpenBetGames(ctx context.Context, tournamentID int64) ([]*OpenBetGame, error)

	// ListWagers returns the user's wagers in the tournament
	ListWagers(ctx context.Context, tournamentID, userID int64) ([]*entities.Wager, error)

	// GetLeaderboard returns the tournament wallets, richest first
	GetLeaderboard(ctx context.Context, tournamentID int64) ([]*entities.Wallet, error)
}

// OpenBetGame pairs a bet game with its match
type OpenBetGame struct {
	Game  *entities.BetGame
	Match *entities.Match
}

// SettlementService defines the interface for paying out decided matches
type SettlementService interface {
	// PendingSettlements returns bet games whose match is decided but not yet paid out
	PendingSettlements(ctx context.Context, tournamentID int64) ([]*entities.BetGame, error)

	// SettleBetGame pays out every undistributed wager of the bet game.
	// Must run inside a single transaction.
	SettleBetGame(ctx context.Context, betGameID int64) (*SettlementResult, error)
}

// SettlementResult summarizes one settled bet game
type SettlementResult struct {
	BetGame     *entities.BetGame
	WinnerID    int64
	Entries     []*entities.LedgerEntry
	TotalStaked float64
	TotalPaid   float64
	// AlreadySettled is true when another pass distributed the game first
	AlreadySettled bool
}
