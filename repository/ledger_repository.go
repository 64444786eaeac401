package repository

import (
	"context"
	"fmt"

	"tourney/database"
	"tourney/domain/entities"
	"tourney/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// ledgerRepository implements interfaces.LedgerRepository
type ledgerRepository struct {
	q       Queryable
	guildID int64
}

// NewLedgerRepository creates a ledger repository on the pool
func NewLedgerRepository(db *database.DB, guildID int64) interfaces.LedgerRepository {
	return &ledgerRepository{q: db.Pool, guildID: guildID}
}

// NewLedgerRepositoryScoped creates a ledger repository with a transaction and guild scope
func NewLedgerRepositoryScoped(tx Queryable, guildID int64) interfaces.LedgerRepository {
	return &ledgerRepository{q: tx, guildID: guildID}
}

const ledgerColumns = `id, tournament_id, match_id, bet_game_id, wager_id, user_id, amount, created_at`

// Record appends a settlement entry. An entry per wager can only be written once.
func (r *ledgerRepository) Record(ctx context.Context, entry *entities.LedgerEntry) error {
	query := `
		INSERT INTO bet_ledger_entries (tournament_id, match_id, bet_game_id, wager_id, user_id, amount)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		entry.TournamentID,
		entry.MatchID,
		entry.BetGameID,
		entry.WagerID,
		entry.UserID,
		entry.Amount,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record ledger entry for wager %d: %w", entry.WagerID, err)
	}

	return nil
}

// GetByMatch returns the entries of a match in insertion order
func (r *ledgerRepository) GetByMatch(ctx context.Context, matchID int64) ([]*entities.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + `
		FROM bet_ledger_entries
		WHERE match_id = $1
		ORDER BY id
	`

	return r.query(ctx, query, matchID)
}

// GetByUser returns the user's entries in the tournament in insertion order
func (r *ledgerRepository) GetByUser(ctx context.Context, tournamentID, userID int64) ([]*entities.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + `
		FROM bet_ledger_entries
		WHERE tournament_id = $1 AND user_id = $2
		ORDER BY id
	`

	return r.query(ctx, query, tournamentID, userID)
}

func (r *ledgerRepository) query(ctx context.Context, query string, args ...any) ([]*entities.LedgerEntry, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}
	defer rows.Close()

	entries, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[entities.LedgerEntry])
	if err != nil {
		return nil, fmt.Errorf("failed to scan ledger entries: %w", err)
	}

	return entries, nil
}
