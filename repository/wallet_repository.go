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

// walletRepository implements interfaces.WalletRepository
type walletRepository struct {
	q       Queryable
	guildID int64
}

// NewWalletRepository creates a wallet repository on the pool
func NewWalletRepository(db *database.DB, guildID int64) interfaces.WalletRepository {
	return &walletRepository{q: db.Pool, guildID: guildID}
}

// NewWalletRepositoryScoped creates a wallet repository with a transaction and guild scope
func NewWalletRepositoryScoped(tx Queryable, guildID int64) interfaces.WalletRepository {
	return &walletRepository{q: tx, guildID: guildID}
}

// GetOrCreate returns the wallet, creating it with the initial amount if missing.
// Concurrent creators converge on the same row.
func (r *walletRepository) GetOrCreate(ctx context.Context, tournamentID, userID int64, initialAmount float64) (*entities.Wallet, error) {
	insert := `
		INSERT INTO bet_wallets (tournament_id, user_id, amount)
		VALUES ($1, $2, $3)
		ON CONFLICT (tournament_id, user_id) DO NOTHING
	`
	if _, err := r.q.Exec(ctx, insert, tournamentID, userID, initialAmount); err != nil {
		return nil, fmt.Errorf("failed to create wallet for user %d: %w", userID, err)
	}

	wallet, err := r.Get(ctx, tournamentID, userID)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, fmt.Errorf("wallet for user %d vanished after creation", userID)
	}

	return wallet, nil
}

// Get returns the wallet, nil if missing
func (r *walletRepository) Get(ctx context.Context, tournamentID, userID int64) (*entities.Wallet, error) {
	query := `
		SELECT id, tournament_id, user_id, amount
		FROM bet_wallets
		WHERE tournament_id = $1 AND user_id = $2
	`

	var w entities.Wallet
	err := r.q.QueryRow(ctx, query, tournamentID, userID).Scan(&w.ID, &w.TournamentID, &w.UserID, &w.Amount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet of user %d: %w", userID, err)
	}

	return &w, nil
}

// Debit subtracts amount only if the balance covers it
func (r *walletRepository) Debit(ctx context.Context, tournamentID, userID int64, amount float64) (bool, error) {
	query := `
		UPDATE bet_wallets
		SET amount = amount - $3
		WHERE tournament_id = $1 AND user_id = $2 AND amount >= $3
	`

	tag, err := r.q.Exec(ctx, query, tournamentID, userID, amount)
	if err != nil {
		return false, fmt.Errorf("failed to debit wallet of user %d: %w", userID, err)
	}

	return tag.RowsAffected() == 1, nil
}

// Credit adds amount to the wallet
func (r *walletRepository) Credit(ctx context.Context, tournamentID, userID int64, amount float64) error {
	query := `
		UPDATE bet_wallets
		SET amount = amount + $3
		WHERE tournament_id = $1 AND user_id = $2
	`

	tag, err := r.q.Exec(ctx, query, tournamentID, userID, amount)
	if err != nil {
		return fmt.Errorf("failed to credit wallet of user %d: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet of user %d in tournament %d not found", userID, tournamentID)
	}

	return nil
}

// GetByTournament returns every wallet of the tournament, richest first
func (r *walletRepository) GetByTournament(ctx context.Context, tournamentID int64) ([]*entities.Wallet, error) {
	query := `
		SELECT id, tournament_id, user_id, amount
		FROM bet_wallets
		WHERE tournament_id = $1
		ORDER BY amount DESC, user_id
	`

	rows, err := r.q.Query(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query wallets: %w", err)
	}
	defer rows.Close()

	var wallets []*entities.Wallet
	for rows.Next() {
		var w entities.Wallet
		if err := rows.Scan(&w.ID, &w.TournamentID, &w.UserID, &w.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan wallet: %w", err)
		}
		wallets = append(wallets, &w)
	}

	return wallets, rows.Err()
}
