package application

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"tourney/config"
	"tourney/domain/entities"
	"tourney/domain/interfaces"
	"tourney/domain/services"

	log "github.com/sirupsen/logrus"
)

// TournamentManager runs every state-changing tournament and betting operation.
// Calls touching the same tournament are serialized; each step commits its own unit of work.
type TournamentManager struct {
	uowFactory UnitOfWorkFactory
	config     *config.Config
	locks      *tournamentLocks
	newRand    func() *rand.Rand
}

// NewTournamentManager creates a new tournament manager
func NewTournamentManager(uowFactory UnitOfWorkFactory) *TournamentManager {
	return &TournamentManager{
		uowFactory: uowFactory,
		config:     config.Get(),
		locks:      newTournamentLocks(),
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

// SettlementSummary reports one settlement pass over a tournament
type SettlementSummary struct {
	Settled []*interfaces.SettlementResult
	Failed  int
}

// CreateTournament validates and stores a tournament for the guild
func (m *TournamentManager) CreateTournament(ctx context.Context, guildID int64, tournament *entities.Tournament) error {
	tournament.GuildID = guildID
	return m.withUnitOfWork(ctx, guildID, func(uow UnitOfWork) error {
		return m.tournamentService(uow).CreateTournament(ctx, tournament)
	})
}

// Register adds the user to the tournament
func (m *TournamentManager) Register(ctx context.Context, guildID, tournamentID, userID int64) error {
	unlock := m.locks.lock(tournamentID)
	defer unlock()

	return m.withUnitOfWork(ctx, guildID, func(uow UnitOfWork) error {
		return m.tournamentService(uow).Register(ctx, tournamentID, userID)
	})
}

// Unregister removes the user from the tournament
func (m *TournamentManager) Unregister(ctx context.Context, guildID, tournamentID, userID int64) error {
	unlock := m.locks.lock(tournamentID)
	defer unlock()

	return m.withUnitOfWork(ctx, guildID, func(uow UnitOfWork) error {
		return m.tournamentService(uow).Unregister(ctx, tournamentID, userID)
	})
}

// Start seeds the bracket and opens the first matches to betting
func (m *TournamentManager) Start(ctx context.Context, guildID, tournamentID int64) (*interfaces.StartResult, error) {
	unlock := m.locks.lock(tournamentID)
	defer unlock()

	var result *interfaces.StartResult
	err := m.withUnitOfWork(ctx, guildID, func(uow UnitOfWork) error {
		var err error
		result, err = m.tournamentService(uow).Start(ctx, tournamentID)
		return err
	})
	if err != nil {
		return nil, err
	}

	m.generateOdds(ctx, guildID, tournamentID)
	return result, nil
}

// ReportLoss records the loss and then brings the rest of the tournament up to date:
// byes are advanced, a decided final finishes the tournament, decided matches are
// settled and newly paired matches get odds. Failures after the result is stored are
// logged and retried by the settlement worker.
func (m *TournamentManager) ReportLoss(ctx context.Context, guildID, tournamentID, loserID int64, score string) (*interfaces.ReportResult, error) {
	unlock := m.locks.lock(tournamentID)
	defer unlock()

	var result *interfaces.ReportResult
	err := m.withUnitOfWork(ctx, guildID, func(uow UnitOfWork) error {
		var err error
		result, err = m.matchService(uow).ReportLoss(ctx, tournamentID, loserID, score)
		return err
	})
	if err != nil {
		return nil, err
	}

	m.advanceAndFinalize(ctx, guildID, tournamentID)
	if _, err := m.settlePending(ctx, guildID, tournamentID); err != nil {
		log.WithFields(log.Fields{
			"guild_id":      guildID,
			"tournament_id": tournamentID,
			"error":         err,
		}).Error("Failed to settle bets after reported result")
	}
	m.generateOdds(ctx, guildID, tournamentID)

	return result, nil
}

// PlaceBet places a wager while no result can be recorded for the same tournament
func (m *TournamentManager) PlaceBet(ctx context.Context, guildID, tournamentID, betGameID, bettorID int64, amount float64, targetID int64) (*entities.Wager, error) {
	unlock := m.locks.lock(tournamentID)
	defer unlock()

	var wager *entities.Wager
	err := m.withUnitOfWork(ctx, guildID, func(uow UnitOfWork) error {
		var err error
		wager, err = m.betService(uow).PlaceBet(ctx, tournamentID, betGameID, bettorID, amount, targetID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return wager, nil
}

// SettlePending settles every decided, unpaid bet game of the tournament
func (m *TournamentManager) SettlePending(ctx context.Context, guildID, tournamentID int64) (*SettlementSummary, error) {
	unlock := m.locks.lock(tournamentID)
	defer unlock()

	return m.settlePending(ctx, guildID, tournamentID)
}

func (m *TournamentManager) settlePending(ctx context.Context, guildID, tournamentID int64) (*SettlementSummary, error) {
	var pending []*entities.BetGame
	err := m.withUnitOfWork(ctx, guildID, func(uow UnitOfWork) error {
		var err error
		pending, err = m.settlementService(uow).PendingSettlements(ctx, tournamentID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pending settlements: %w", err)
	}

	summary := &SettlementSummary{}
	for _, game := range pending {
		// One transaction per bet game so a failure only delays that game
		var result *interfaces.SettlementResult
		err := m.withUnitOfWork(ctx, guildID, func(uow UnitOfWork) error {
			var err error
			result, err = m.settlementService(uow).SettleBetGame(ctx, game.ID)
			return err
		})
		if err != nil {
			summary.Failed++
			log.WithFields(log.Fields{
				"guild_id":      guildID,
				"tournament_id": tournamentID,
				"bet_game_id":   game.ID,
				"error":         err,
			}).Error("Failed to settle bet game")
			continue
		}
		if !result.AlreadySettled {
			summary.Settled = append(summary.Settled, result)
		}
	}

	if summary.Failed > 0 {
		return summary, fmt.Errorf("%d of %d bet games failed to settle", summary.Failed, len(pending))
	}
	return summary, nil
}

// advanceAndFinalize promotes byes and finishes the tournament once the final is decided
func (m *TournamentManager) advanceAndFinalize(ctx context.Context, guildID, tournamentID int64) {
	err := m.withUnitOfWork(ctx, guildID, func(uow UnitOfWork) error {
		if _, err := m.matchService(uow).AdvanceByes(ctx, tournamentID); err != nil {
			return err
		}
		_, err := m.tournamentService(uow).Finalize(ctx, tournamentID)
		if errors.Is(err, services.ErrTournamentNotFinished) {
			return nil
		}
		return err
	})
	if err != nil {
		log.WithFields(log.Fields{
			"guild_id":      guildID,
			"tournament_id": tournamentID,
			"error":         err,
		}).Error("Failed to advance bracket")
	}
}

// generateOdds opens every newly paired match to betting
func (m *TournamentManager) generateOdds(ctx context.Context, guildID, tournamentID int64) {
	err := m.withUnitOfWork(ctx, guildID, func(uow UnitOfWork) error {
		_, err := m.oddsService(uow).GenerateOdds(ctx, tournamentID)
		return err
	})
	if err != nil {
		log.WithFields(log.Fields{
			"guild_id":      guildID,
			"tournament_id": tournamentID,
			"error":         err,
		}).Error("Failed to generate odds")
	}
}

// withUnitOfWork runs fn in a fresh unit of work and commits when it succeeds
func (m *TournamentManager) withUnitOfWork(ctx context.Context, guildID int64, fn func(uow UnitOfWork) error) error {
	uow := m.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := fn(uow); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (m *TournamentManager) tournamentService(uow UnitOfWork) interfaces.TournamentService {
	return services.NewTournamentService(uow.TournamentRepository(), uow.MatchRepository(), uow.EventBus(), m.newRand())
}

func (m *TournamentManager) matchService(uow UnitOfWork) interfaces.MatchService {
	return services.NewMatchService(uow.TournamentRepository(), uow.MatchRepository(), uow.EventBus(), m.newRand())
}

func (m *TournamentManager) oddsService(uow UnitOfWork) interfaces.OddsService {
	policy := services.NewOddsPolicy(m.config.OddsPolicy, uow.MatchRepository())
	return services.NewOddsService(uow.TournamentRepository(), uow.MatchRepository(), uow.BetGameRepository(), policy, uow.EventBus())
}

func (m *TournamentManager) betService(uow UnitOfWork) interfaces.BetService {
	return services.NewBetService(uow.TournamentRepository(), uow.MatchRepository(), uow.WalletRepository(), uow.BetGameRepository(), uow.WagerRepository(), uow.EventBus())
}

func (m *TournamentManager) settlementService(uow UnitOfWork) interfaces.SettlementService {
	return services.NewSettlementService(uow.TournamentRepository(), uow.MatchRepository(), uow.WalletRepository(), uow.BetGameRepository(), uow.WagerRepository(), uow.LedgerRepository(), uow.EventBus())
}
