package services

import (
	"context"
	"fmt"

	"tourney/domain/entities"
	"tourney/domain/events"
	"tourney/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// oddsService opens pending matches to betting
type oddsService struct {
	tournamentRepo interfaces.TournamentRepository
	matchRepo      interfaces.MatchRepository
	betGameRepo    interfaces.BetGameRepository
	policy         interfaces.OddsPolicy
	eventPublisher interfaces.EventPublisher
}

// NewOddsService creates a new odds service
func NewOddsService(
	tournamentRepo interfaces.TournamentRepository,
	matchRepo interfaces.MatchRepository,
	betGameRepo interfaces.BetGameRepository,
	policy interfaces.OddsPolicy,
	eventPublisher interfaces.EventPublisher,
) interfaces.OddsService {
	return &oddsService{
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		betGameRepo:    betGameRepo,
		policy:         policy,
		eventPublisher: eventPublisher,
	}
}

// GenerateOdds creates one bet game per undecided, fully paired match that has none yet.
// Safe to call any number of times.
func (s *oddsService) GenerateOdds(ctx context.Context, tournamentID int64) ([]*entities.BetGame, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}
	if tournament == nil {
		return nil, ErrTournamentNotFound
	}

	matches, err := s.matchRepo.GetByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get matches: %w", err)
	}
	games, err := s.betGameRepo.GetByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet games: %w", err)
	}

	priced := make(map[int64]bool, len(games))
	for _, g := range games {
		priced[g.MatchID] = true
	}

	var created []*entities.BetGame
	for _, m := range matches {
		if priced[m.ID] || !m.HasBothUsers() || m.IsDecided() {
			continue
		}

		p1, p2, err := s.policy.Probabilities(ctx, m)
		if err != nil {
			return created, fmt.Errorf("failed to price match %d: %w", m.ID, err)
		}

		game := &entities.BetGame{
			TournamentID: tournamentID,
			MatchID:      m.ID,
			Probability1: p1,
			Probability2: p2,
		}
		if err := s.betGameRepo.Create(ctx, game); err != nil {
			return created, fmt.Errorf("failed to create bet game for match %d: %w", m.ID, err)
		}
		created = append(created, game)

		if err := s.eventPublisher.Publish(events.OddsPublishedEvent{
			GuildID:      tournament.GuildID,
			TournamentID: tournamentID,
			BetGameID:    game.ID,
			MatchID:      m.ID,
			User1ID:      *m.User1ID,
			User2ID:      *m.User2ID,
			Probability1: p1,
			Probability2: p2,
		}); err != nil {
			log.WithError(err).Error("Failed to publish odds published event")
		}
	}

	if len(created) > 0 {
		log.WithFields(log.Fields{
			"tournament_id": tournamentID,
			"bet_games":     len(created),
		}).Info("Odds generated")
	}
	return created, nil
}

// EvenOddsPolicy prices every match as a coin flip
type EvenOddsPolicy struct{}

// Probabilities returns 0.5 for both sides
func (EvenOddsPolicy) Probabilities(ctx context.Context, match *entities.Match) (float64, float64, error) {
	return 0.5, 0.5, nil
}

// WinHistoryPolicy prices a match from both participants' decided match records in the guild.
// Each strength is (wins+1)/(played+2), so newcomers start even; strengths are normalized to sum to 1.
type WinHistoryPolicy struct {
	matchRepo interfaces.MatchRepository
}

// NewWinHistoryPolicy creates a policy backed by the guild's match history
func NewWinHistoryPolicy(matchRepo interfaces.MatchRepository) *WinHistoryPolicy {
	return &WinHistoryPolicy{matchRepo: matchRepo}
}

// Probabilities returns the normalized strengths of user 1 and user 2
func (p *WinHistoryPolicy) Probabilities(ctx context.Context, match *entities.Match) (float64, float64, error) {
	if !match.HasBothUsers() {
		return 0, 0, fmt.Errorf("match %d is not fully paired", match.ID)
	}

	s1, err := p.strength(ctx, *match.User1ID)
	if err != nil {
		return 0, 0, err
	}
	s2, err := p.strength(ctx, *match.User2ID)
	if err != nil {
		return 0, 0, err
	}

	p1 := s1 / (s1 + s2)
	return p1, 1 - p1, nil
}

func (p *WinHistoryPolicy) strength(ctx context.Context, userID int64) (float64, error) {
	wins, losses, err := p.matchRepo.GetUserRecord(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to get record of user %d: %w", userID, err)
	}
	return float64(wins+1) / float64(wins+losses+2), nil
}

// NewOddsPolicy returns the policy registered under name, EvenOddsPolicy for unknown names
func NewOddsPolicy(name string, matchRepo interfaces.MatchRepository) interfaces.OddsPolicy {
	switch name {
	case "history":
		return NewWinHistoryPolicy(matchRepo)
	default:
		return EvenOddsPolicy{}
	}
}
