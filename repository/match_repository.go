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

// matchRepository implements interfaces.MatchRepository
type matchRepository struct {
	q       Queryable
	guildID int64
}

// NewMatchRepository creates a guild-scoped match repository on the pool
func NewMatchRepository(db *database.DB, guildID int64) interfaces.MatchRepository {
	return &matchRepository{q: db.Pool, guildID: guildID}
}

// NewMatchRepositoryScoped creates a match repository with a transaction and guild scope
func NewMatchRepositoryScoped(tx Queryable, guildID int64) interfaces.MatchRepository {
	return &matchRepository{q: tx, guildID: guildID}
}

const matchColumns = `
	id, tournament_id, user1_id, user2_id, winner_id, score, map, decided_at,
	previous_match1_id, previous_match2_id`

// Create inserts a match and sets its ID
func (r *matchRepository) Create(ctx context.Context, match *entities.Match) error {
	query := `
		INSERT INTO tournament_matches (
			tournament_id, user1_id, user2_id, winner_id, score, map, decided_at,
			previous_match1_id, previous_match2_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	err := r.q.QueryRow(ctx, query,
		match.TournamentID,
		match.User1ID,
		match.User2ID,
		match.WinnerID,
		match.Score,
		match.Map,
		match.DecidedAt,
		match.PreviousMatch1ID,
		match.PreviousMatch2ID,
	).Scan(&match.ID)
	if err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}

	return nil
}

// GetByID retrieves a match, nil if not found
func (r *matchRepository) GetByID(ctx context.Context, id int64) (*entities.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM tournament_matches WHERE id = $1`

	match, err := scanMatch(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match %d: %w", id, err)
	}

	return match, nil
}

// GetByTournament returns every match of a tournament ordered by id
func (r *matchRepository) GetByTournament(ctx context.Context, tournamentID int64) ([]*entities.Match, error) {
	query := `SELECT ` + matchColumns + `
		FROM tournament_matches
		WHERE tournament_id = $1
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches of tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	var matches []*entities.Match
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, match)
	}

	return matches, rows.Err()
}

// UpdateMany persists the mutable columns of the given matches in one batch
func (r *matchRepository) UpdateMany(ctx context.Context, matches []*entities.Match) error {
	if len(matches) == 0 {
		return nil
	}

	query := `
		UPDATE tournament_matches
		SET user1_id = $2, user2_id = $3, winner_id = $4, score = $5, map = $6, decided_at = $7
		WHERE id = $1
	`

	batch := &pgx.Batch{}
	for _, m := range matches {
		batch.Queue(query, m.ID, m.User1ID, m.User2ID, m.WinnerID, m.Score, m.Map, m.DecidedAt)
	}

	results := r.q.SendBatch(ctx, batch)
	defer results.Close()

	for _, m := range matches {
		tag, err := results.Exec()
		if err != nil {
			return fmt.Errorf("failed to update match %d: %w", m.ID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("match %d not found", m.ID)
		}
	}

	return nil
}

// GetUserRecord counts played matches won and lost by the user in the guild.
// Byes are not counted.
func (r *matchRepository) GetUserRecord(ctx context.Context, userID int64) (int, int, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE m.winner_id = $1),
			COUNT(*) FILTER (WHERE m.winner_id <> $1)
		FROM tournament_matches m
		JOIN tournaments t ON t.id = m.tournament_id
		WHERE (m.user1_id = $1 OR m.user2_id = $1)
			AND m.user1_id IS NOT NULL AND m.user2_id IS NOT NULL
			AND m.winner_id IS NOT NULL
			AND ($2::BIGINT = 0 OR t.guild_id = $2)
	`

	var wins, losses int
	if err := r.q.QueryRow(ctx, query, userID, r.guildID).Scan(&wins, &losses); err != nil {
		return 0, 0, fmt.Errorf("failed to get match record of user %d: %w", userID, err)
	}

	return wins, losses, nil
}

func scanMatch(row pgx.Row) (*entities.Match, error) {
	var m entities.Match
	err := row.Scan(
		&m.ID,
		&m.TournamentID,
		&m.User1ID,
		&m.User2ID,
		&m.WinnerID,
		&m.Score,
		&m.Map,
		&m.DecidedAt,
		&m.PreviousMatch1ID,
		&m.PreviousMatch2ID,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
