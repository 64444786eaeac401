package services

import (
	"context"
	"fmt"
	"time"

	"tourney/config"
	"tourney/domain/entities"
	"tourney/domain/events"
	"tourney/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// settlementService pays out wagers of decided matches
type settlementService struct {
	config         *config.Config
	tournamentRepo interfaces.TournamentRepository
	matchRepo      interfaces.MatchRepository
	walletRepo     interfaces.WalletRepository
	betGameRepo    interfaces.BetGameRepository
	wagerRepo      interfaces.WagerRepository
	ledgerRepo     interfaces.LedgerRepository
	eventPublisher interfaces.EventPublisher
}

// NewSettlementService creates a new settlement service
func NewSettlementService(
	tournamentRepo interfaces.TournamentRepository,
	matchRepo interfaces.MatchRepository,
	walletRepo interfaces.WalletRepository,
	betGameRepo interfaces.BetGameRepository,
	wagerRepo interfaces.WagerRepository,
	ledgerRepo interfaces.LedgerRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.SettlementService {
	return &settlementService{
		config:         config.Get(),
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		walletRepo:     walletRepo,
		betGameRepo:    betGameRepo,
		wagerRepo:      wagerRepo,
		ledgerRepo:     ledgerRepo,
		eventPublisher: eventPublisher,
	}
}

// PendingSettlements returns undistributed bet games whose match has a winner
func (s *settlementService) PendingSettlements(ctx context.Context, tournamentID int64) ([]*entities.BetGame, error) {
	games, err := s.betGameRepo.GetPendingSettlement(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending settlements: %w", err)
	}
	return games, nil
}

// SettleBetGame writes one ledger entry per undistributed wager, credits winning wallets
// and marks the wagers and the game distributed. Callers run it in one transaction and
// roll back on error; the distributed flags make the next attempt pick up where nothing was applied.
func (s *settlementService) SettleBetGame(ctx context.Context, betGameID int64) (*interfaces.SettlementResult, error) {
	game, err := s.betGameRepo.GetByID(ctx, betGameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet game: %w", err)
	}
	if game == nil {
		return nil, ErrBetGameNotFound
	}
	if game.Distributed {
		return &interfaces.SettlementResult{BetGame: game, AlreadySettled: true}, nil
	}

	match, err := s.matchRepo.GetByID(ctx, game.MatchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	if match == nil {
		return nil, ErrMatchNotFound
	}
	if !match.IsDecided() {
		return nil, ErrMatchNotDecided
	}
	winnerID := *match.WinnerID

	wagers, err := s.wagerRepo.GetUndistributedByBetGame(ctx, game.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wagers: %w", err)
	}

	result := &interfaces.SettlementResult{BetGame: game, WinnerID: winnerID}
	payouts := make(map[int64]float64)
	now := time.Now()

	for _, wager := range wagers {
		payout := wager.Payout(winnerID)

		entry := &entities.LedgerEntry{
			TournamentID: game.TournamentID,
			MatchID:      match.ID,
			BetGameID:    game.ID,
			WagerID:      wager.ID,
			UserID:       wager.UserID,
			Amount:       payout,
			CreatedAt:    now,
		}
		if err := s.ledgerRepo.Record(ctx, entry); err != nil {
			return nil, fmt.Errorf("failed to record ledger entry for wager %d: %w", wager.ID, err)
		}

		if payout > 0 {
			if _, err := s.walletRepo.GetOrCreate(ctx, game.TournamentID, wager.UserID, s.config.DefaultWalletStake); err != nil {
				return nil, fmt.Errorf("failed to get wallet for wager %d: %w", wager.ID, err)
			}
			if err := s.walletRepo.Credit(ctx, game.TournamentID, wager.UserID, payout); err != nil {
				return nil, fmt.Errorf("failed to credit wallet for wager %d: %w", wager.ID, err)
			}
			payouts[wager.UserID] += payout
		}

		if err := s.wagerRepo.MarkDistributed(ctx, wager.ID); err != nil {
			return nil, fmt.Errorf("failed to mark wager %d distributed: %w", wager.ID, err)
		}

		result.Entries = append(result.Entries, entry)
		result.TotalStaked += wager.Amount
		result.TotalPaid += payout
	}

	if err := s.betGameRepo.MarkDistributed(ctx, game.ID); err != nil {
		return nil, fmt.Errorf("failed to mark bet game distributed: %w", err)
	}
	game.Distributed = true

	tournament, err := s.tournamentRepo.GetByID(ctx, game.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}
	if tournament != nil {
		if err := s.eventPublisher.Publish(events.BetGameSettledEvent{
			GuildID:      tournament.GuildID,
			TournamentID: game.TournamentID,
			BetGameID:    game.ID,
			MatchID:      match.ID,
			WinnerID:     winnerID,
			WagerCount:   len(wagers),
			TotalStaked:  result.TotalStaked,
			TotalPaid:    result.TotalPaid,
			Payouts:      payouts,
		}); err != nil {
			log.WithError(err).Error("Failed to publish bet game settled event")
		}
	}

	log.WithFields(log.Fields{
		"tournament_id": game.TournamentID,
		"bet_game_id":   game.ID,
		"match_id":      match.ID,
		"wagers":        len(wagers),
		"total_staked":  result.TotalStaked,
		"total_paid":    result.TotalPaid,
	}).Info("Bet game settled")
	return result, nil
}
