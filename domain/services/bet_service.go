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

// betService manages tournament wallets and wagers
type betService struct {
	config         *config.Config
	tournamentRepo interfaces.TournamentRepository
	matchRepo      interfaces.MatchRepository
	walletRepo     interfaces.WalletRepository
	betGameRepo    interfaces.BetGameRepository
	wagerRepo      interfaces.WagerRepository
	eventPublisher interfaces.EventPublisher
}

// NewBetService creates a new bet service
func NewBetService(
	tournamentRepo interfaces.TournamentRepository,
	matchRepo interfaces.MatchRepository,
	walletRepo interfaces.WalletRepository,
	betGameRepo interfaces.BetGameRepository,
	wagerRepo interfaces.WagerRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.BetService {
	return &betService{
		config:         config.Get(),
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		walletRepo:     walletRepo,
		betGameRepo:    betGameRepo,
		wagerRepo:      wagerRepo,
		eventPublisher: eventPublisher,
	}
}

// getTournament resolves the tournament through the guild-scoped repository
func (s *betService) getTournament(ctx context.Context, tournamentID int64) (*entities.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}
	if tournament == nil {
		return nil, ErrTournamentNotFound
	}
	return tournament, nil
}

// GetOrCreateWallet returns the user's wallet, creating it at the configured stake
func (s *betService) GetOrCreateWallet(ctx context.Context, tournamentID, userID int64) (*entities.Wallet, error) {
	if _, err := s.getTournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	return s.getOrCreateWallet(ctx, tournamentID, userID)
}

func (s *betService) getOrCreateWallet(ctx context.Context, tournamentID, userID int64) (*entities.Wallet, error) {
	wallet, err := s.walletRepo.GetOrCreate(ctx, tournamentID, userID, s.config.DefaultWalletStake)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return wallet, nil
}

// PlaceBet validates the wager, debits the stake and records the wager at the target's current probability.
// The debit only succeeds when the balance covers the stake, so concurrent bets cannot overdraw a wallet.
func (s *betService) PlaceBet(ctx context.Context, tournamentID, betGameID, bettorID int64, amount float64, targetID int64) (*entities.Wager, error) {
	tournament, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	game, err := s.betGameRepo.GetByID(ctx, betGameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet game: %w", err)
	}
	if game == nil || game.TournamentID != tournamentID {
		return nil, ErrBetGameNotFound
	}

	match, err := s.matchRepo.GetByID(ctx, game.MatchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	if match == nil {
		return nil, ErrBetGameNotFound
	}
	if match.IsDecided() {
		return nil, ErrMatchAlreadyFinished
	}

	if amount < s.config.MinBetStake {
		return nil, ErrBelowMinimumStake
	}

	playing, err := s.isPlaying(ctx, tournamentID, match, bettorID)
	if err != nil {
		return nil, err
	}
	if playing {
		return nil, ErrSelfBetForbidden
	}

	probability, ok := game.ProbabilityFor(match, targetID)
	if !ok {
		return nil, ErrInvalidTarget
	}

	if _, err := s.getOrCreateWallet(ctx, tournamentID, bettorID); err != nil {
		return nil, err
	}
	debited, err := s.walletRepo.Debit(ctx, tournamentID, bettorID, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to debit wallet: %w", err)
	}
	if !debited {
		return nil, ErrInsufficientFunds
	}

	wager := &entities.Wager{
		TournamentID: tournamentID,
		BetGameID:    game.ID,
		UserID:       bettorID,
		Amount:       amount,
		TargetUserID: targetID,
		PlacedAt:     time.Now(),
		Probability:  probability,
	}
	if err := s.wagerRepo.Create(ctx, wager); err != nil {
		return nil, fmt.Errorf("failed to create wager: %w", err)
	}

	if err := s.eventPublisher.Publish(events.BetPlacedEvent{
		GuildID:      tournament.GuildID,
		TournamentID: tournamentID,
		WagerID:      wager.ID,
		BetGameID:    game.ID,
		UserID:       bettorID,
		TargetUserID: targetID,
		Amount:       amount,
		Probability:  probability,
	}); err != nil {
		log.WithError(err).Error("Failed to publish bet placed event")
	}

	log.WithFields(log.Fields{
		"tournament_id": tournamentID,
		"bet_game_id":   game.ID,
		"user_id":       bettorID,
		"target_id":     targetID,
		"amount":        amount,
		"probability":   probability,
	}).Info("Wager placed")
	return wager, nil
}

// isPlaying reports whether the user takes part in the match, directly or as a teammate
func (s *betService) isPlaying(ctx context.Context, tournamentID int64, match *entities.Match, userID int64) (bool, error) {
	if match.HasUser(userID) {
		return true, nil
	}
	members, err := s.tournamentRepo.GetTeamMembers(ctx, tournamentID)
	if err != nil {
		return false, fmt.Errorf("failed to get team members: %w", err)
	}
	for _, m := range members {
		if m.TeammateID == userID && match.HasUser(m.LeaderID) {
			return true, nil
		}
	}
	return false, nil
}

// ListOpenBetGames returns bet games whose match is still undecided
func (s *betService) ListOpenBetGames(ctx context.Context, tournamentID int64) ([]*interfaces.OpenBetGame, error) {
	if _, err := s.getTournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	games, err := s.betGameRepo.GetByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet games: %w", err)
	}
	matches, err := s.matchRepo.GetByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get matches: %w", err)
	}

	byID := make(map[int64]*entities.Match, len(matches))
	for _, m := range matches {
		byID[m.ID] = m
	}

	var open []*interfaces.OpenBetGame
	for _, g := range games {
		m, ok := byID[g.MatchID]
		if !ok || m.IsDecided() {
			continue
		}
		open = append(open, &interfaces.OpenBetGame{Game: g, Match: m})
	}
	return open, nil
}

// ListWagers returns the user's wagers in the tournament, newest first
func (s *betService) ListWagers(ctx context.Context, tournamentID, userID int64) ([]*entities.Wager, error) {
	if _, err := s.getTournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	wagers, err := s.wagerRepo.GetByUser(ctx, tournamentID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wagers: %w", err)
	}
	return wagers, nil
}

// GetLeaderboard returns the tournament's wallets, richest first
func (s *betService) GetLeaderboard(ctx context.Context, tournamentID int64) ([]*entities.Wallet, error) {
	if _, err := s.getTournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	wallets, err := s.walletRepo.GetByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallets: %w", err)
	}
	return wallets, nil
}
