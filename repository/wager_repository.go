package repository

import (
	"context"
	"fmt"

	"tourney/database"
	"tourney/domain/entities"
	"tourney/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// wagerRepository implements interfaces.WagerRepository
type wagerRepository struct {
	q       Queryable
	guildID int64
}

// NewWagerRepository creates a wager repository on the pool
func NewWagerRepository(db *database.DB, guildID int64) interfaces.WagerRepository {
	return &wagerRepository{q: db.Pool, guildID: guildID}
}

// NewWagerRepositoryScoped creates a wager repository with a transaction and guild scope
func NewWagerRepositoryScoped(tx Queryable, guildID int64) interfaces.WagerRepository {
	return &wagerRepository{q: tx, guildID: guildID}
}

const wagerColumns = `
	id, tournament_id, bet_game_id, user_id, amount, target_user_id, placed_at,
	probability, distributed`

// Create inserts a wager and sets its ID and placement time
func (r *wagerRepository) Create(ctx context.Context, wager *entities.Wager) error {
	query := `
		INSERT INTO bet_wagers (
			tournament_id, bet_game_id, user_id, amount, target_user_id, probability, distributed
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, placed_at
	`

	err := r.q.QueryRow(ctx, query,
		wager.TournamentID,
		wager.BetGameID,
		wager.UserID,
		wager.Amount,
		wager.TargetUserID,
		wager.Probability,
		wager.Distributed,
	).Scan(&wager.ID, &wager.PlacedAt)
	if err != nil {
		return fmt.Errorf("failed to create wager: %w", err)
	}

	return nil
}

// GetUndistributedByBetGame returns wagers of the bet game not yet settled, oldest first
func (r *wagerRepository) GetUndistributedByBetGame(ctx context.Context, betGameID int64) ([]*entities.Wager, error) {
	query := `SELECT ` + wagerColumns + `
		FROM bet_wagers
		WHERE bet_game_id = $1 AND distributed = FALSE
		ORDER BY id
		FOR UPDATE
	`

	return r.query(ctx, query, betGameID)
}

// GetByUser returns the user's wagers in the tournament, newest first
func (r *wagerRepository) GetByUser(ctx context.Context, tournamentID, userID int64) ([]*entities.Wager, error) {
	query := `SELECT ` + wagerColumns + `
		FROM bet_wagers
		WHERE tournament_id = $1 AND user_id = $2
		ORDER BY placed_at DESC, id DESC
	`

	return r.query(ctx, query, tournamentID, userID)
}

// MarkDistributed flags the wager as settled
func (r *wagerRepository) MarkDistributed(ctx context.Context, id int64) error {
	query := `UPDATE bet_wagers SET distributed = TRUE WHERE id = $1`

	if _, err := r.q.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to mark wager %d distributed: %w", id, err)
	}

	return nil
}

func (r *wagerRepository) query(ctx context.Context, query string, args ...any) ([]*entities.Wager, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query wagers: %w", err)
	}
	defer rows.Close()

	wagers, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entities.Wager, error) {
		var w entities.Wager
		err := row.Scan(
			&w.ID,
			&w.TournamentID,
			&w.BetGameID,
			&w.UserID,
			&w.Amount,
			&w.TargetUserID,
			&w.PlacedAt,
			&w.Probability,
			&w.Distributed,
		)
		return &w, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan wagers: %w", err)
	}

	return wagers, nil
}
