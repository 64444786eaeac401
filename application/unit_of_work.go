package application

import (
	"context"

	"tourney/domain/interfaces"
)

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes queued events
	Commit() error

	// Rollback rolls back the transaction and discards queued events
	Rollback() error

	// Repository getters
	TournamentRepository() interfaces.TournamentRepository
	MatchRepository() interfaces.MatchRepository
	WalletRepository() interfaces.WalletRepository
	BetGameRepository() interfaces.BetGameRepository
	WagerRepository() interfaces.WagerRepository
	LedgerRepository() interfaces.LedgerRepository
	EventBus() interfaces.EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// CreateForGuild creates a new UnitOfWork scoped to a guild.
	// Guild 0 is unscoped and only meant for cross-guild reads.
	CreateForGuild(guildID int64) UnitOfWork
}
