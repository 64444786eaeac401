package repository

import (
	"context"
	"errors"
	"fmt"

	"tourney/database"
	"tourney/domain/entities"
	"tourney/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// betGameRepository implements interfaces.BetGameRepository
type betGameRepository struct {
	q       Queryable
	guildID int64
}

// NewBetGameRepository creates a guild-scoped bet game repository on the pool
func NewBetGameRepository(db *database.DB, guildID int64) interfaces.BetGameRepository {
	return &betGameRepository{q: db.Pool, guildID: guildID}
}

// NewBetGameRepositoryScoped creates a bet game repository with a transaction and guild scope
func NewBetGameRepositoryScoped(tx Queryable, guildID int64) interfaces.BetGameRepository {
	return &betGameRepository{q: tx, guildID: guildID}
}

const betGameColumns = `
	g.id, g.tournament_id, g.match_id, g.probability_user1, g.probability_user2,
	g.distributed, g.created_at`

// Create inserts a bet game and sets its ID
func (r *betGameRepository) Create(ctx context.Context, game *entities.BetGame) error {
	query := `
		INSERT INTO bet_games (tournament_id, match_id, probability_user1, probability_user2, distributed)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		game.TournamentID,
		game.MatchID,
		game.Probability1,
		game.Probability2,
		game.Distributed,
	).Scan(&game.ID, &game.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create bet game for match %d: %w", game.MatchID, err)
	}

	return nil
}

// GetByID retrieves a bet game, nil if not found
func (r *betGameRepository) GetByID(ctx context.Context, id int64) (*entities.BetGame, error) {
	query := `SELECT ` + betGameColumns + `
		FROM bet_games g
		JOIN tournaments t ON t.id = g.tournament_id
		WHERE g.id = $1 AND ($2::BIGINT = 0 OR t.guild_id = $2)
	`

	game, err := scanBetGame(r.q.QueryRow(ctx, query, id, r.guildID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bet game %d: %w", id, err)
	}

	return game, nil
}

// GetByTournament returns every bet game of the tournament ordered by id
func (r *betGameRepository) GetByTournament(ctx context.Context, tournamentID int64) ([]*entities.BetGame, error) {
	query := `SELECT ` + betGameColumns + `
		FROM bet_games g
		WHERE g.tournament_id = $1
		ORDER BY g.id
	`

	return r.query(ctx, query, tournamentID)
}

// MarkDistributed flags the bet game as settled
func (r *betGameRepository) MarkDistributed(ctx context.Context, id int64) error {
	query := `UPDATE bet_games SET distributed = TRUE WHERE id = $1`

	if _, err := r.q.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to mark bet game %d distributed: %w", id, err)
	}

	return nil
}

// GetPendingSettlement returns undistributed games whose match has a winner
func (r *betGameRepository) GetPendingSettlement(ctx context.Context, tournamentID int64) ([]*entities.BetGame, error) {
	query := `SELECT ` + betGameColumns + `
		FROM bet_games g
		JOIN tournament_matches m ON m.id = g.match_id
		WHERE g.tournament_id = $1 AND g.distributed = FALSE AND m.winner_id IS NOT NULL
		ORDER BY g.id
	`

	return r.query(ctx, query, tournamentID)
}

// GetTournamentsWithPendingSettlement returns tournament ids of the guild with games to settle
func (r *betGameRepository) GetTournamentsWithPendingSettlement(ctx context.Context) ([]int64, error) {
	query := `
		SELECT DISTINCT g.tournament_id
		FROM bet_games g
		JOIN tournament_matches m ON m.id = g.match_id
		JOIN tournaments t ON t.id = g.tournament_id
		WHERE g.distributed = FALSE AND m.winner_id IS NOT NULL
			AND ($1::BIGINT = 0 OR t.guild_id = $1)
		ORDER BY g.tournament_id
	`

	return r.queryIDs(ctx, query, r.guildID)
}

// GetGuildsWithPendingSettlement returns every guild with games to settle
func (r *betGameRepository) GetGuildsWithPendingSettlement(ctx context.Context) ([]int64, error) {
	query := `
		SELECT DISTINCT t.guild_id
		FROM bet_games g
		JOIN tournament_matches m ON m.id = g.match_id
		JOIN tournaments t ON t.id = g.tournament_id
		WHERE g.distributed = FALSE AND m.winner_id IS NOT NULL
		ORDER BY t.guild_id
	`

	return r.queryIDs(ctx, query)
}

func (r *betGameRepository) query(ctx context.Context, query string, args ...any) ([]*entities.BetGame, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bet games: %w", err)
	}
	defer rows.Close()

	var games []*entities.BetGame
	for rows.Next() {
		game, err := scanBetGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet game: %w", err)
		}
		games = append(games, game)
	}

	return games, rows.Err()
}

func (r *betGameRepository) queryIDs(ctx context.Context, query string, args ...any) ([]int64, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending settlements: %w", err)
	}
	defer rows.Close()

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("failed to collect ids: %w", err)
	}

	return ids, nil
}

func scanBetGame(row pgx.Row) (*entities.BetGame, error) {
	var g entities.BetGame
	err := row.Scan(
		&g.ID,
		&g.TournamentID,
		&g.MatchID,
		&g.Probability1,
		&g.Probability2,
		&g.Distributed,
		&g.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}
