package services

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode/utf8"

	"tourney/domain/bracket"
	"tourney/domain/entities"
	"tourney/domain/events"
	"tourney/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// matchService records reported results and keeps the bracket advanced
type matchService struct {
	tournamentRepo interfaces.TournamentRepository
	matchRepo      interfaces.MatchRepository
	eventPublisher interfaces.EventPublisher
	rng            *rand.Rand
}

// NewMatchService creates a new match service
func NewMatchService(
	tournamentRepo interfaces.TournamentRepository,
	matchRepo interfaces.MatchRepository,
	eventPublisher interfaces.EventPublisher,
	rng *rand.Rand,
) interfaces.MatchService {
	return &matchService{
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		eventPublisher: eventPublisher,
		rng:            rng,
	}
}

// ReportLoss closes the loser's active match: the opponent wins with the given score and
// moves into the parent match, which gets a map once both of its slots are known.
// In team tournaments any team member may report for the team.
func (s *matchService) ReportLoss(ctx context.Context, tournamentID, loserID int64, score string) (*interfaces.ReportResult, error) {
	score = strings.TrimSpace(score)
	if n := utf8.RuneCountInString(score); n == 0 || n > entities.MaxScoreLength {
		return nil, ErrInvalidScore
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}
	if tournament == nil {
		return nil, ErrTournamentNotFound
	}

	registered, err := s.tournamentRepo.IsRegistered(ctx, tournamentID, loserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check registration: %w", err)
	}
	if !registered {
		return nil, ErrNotRegistered
	}
	if !tournament.HasStarted {
		return nil, ErrTournamentNotStarted
	}

	bracketID, err := s.bracketIdentity(ctx, tournament, loserID)
	if err != nil {
		return nil, err
	}

	matches, err := s.matchRepo.GetByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get matches: %w", err)
	}
	root := bracket.BuildTree(matches)

	active := bracket.FindActiveMatch(root, bracketID)
	if active == nil {
		return nil, ErrAlreadyEliminated
	}
	match := active.Match
	if !match.HasBothUsers() {
		return nil, ErrMatchNotReady
	}

	winnerID := *match.Opponent(bracketID)
	match.Decide(winnerID, score, time.Now())
	changed := []*entities.Match{match}

	var parentMatch *entities.Match
	if parent := bracket.FindParent(root, match.ID); parent != nil {
		parentMatch = parent.Match
		parentMatch.PlaceUser(winnerID)
		if parentMatch.HasBothUsers() && parentMatch.Map == nil && len(tournament.Maps) > 0 {
			parentMatch.SetMap(bracket.RandomMap(tournament.Maps, s.rng))
		}
		changed = append(changed, parentMatch)
	}

	if err := s.matchRepo.UpdateMany(ctx, changed); err != nil {
		return nil, fmt.Errorf("failed to persist match result: %w", err)
	}

	if err := s.eventPublisher.Publish(events.MatchCompletedEvent{
		GuildID:      tournament.GuildID,
		TournamentID: tournament.ID,
		MatchID:      match.ID,
		WinnerID:     winnerID,
		LoserID:      bracketID,
		Score:        score,
		IsFinal:      parentMatch == nil,
	}); err != nil {
		log.WithError(err).Error("Failed to publish match completed event")
	}

	log.WithFields(log.Fields{
		"tournament_id": tournamentID,
		"match_id":      match.ID,
		"winner_id":     winnerID,
		"loser_id":      bracketID,
		"score":         score,
	}).Info("Match result recorded")

	return &interfaces.ReportResult{
		Tournament: tournament,
		Match:      match,
		Parent:     parentMatch,
		WinnerID:   winnerID,
		LoserID:    bracketID,
	}, nil
}

// AdvanceByes reruns bye propagation over the whole bracket and persists what changed.
// Matches that become fully paired get a map.
func (s *matchService) AdvanceByes(ctx context.Context, tournamentID int64) ([]*entities.Match, error) {
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

	dirty := bracket.AutoAdvance(bracket.BuildTree(matches))
	if len(dirty) == 0 {
		return nil, nil
	}

	for _, m := range dirty {
		if !m.IsDecided() && m.HasBothUsers() && m.Map == nil && len(tournament.Maps) > 0 {
			m.SetMap(bracket.RandomMap(tournament.Maps, s.rng))
		}
	}

	if err := s.matchRepo.UpdateMany(ctx, dirty); err != nil {
		return nil, fmt.Errorf("failed to persist advanced matches: %w", err)
	}

	log.WithFields(log.Fields{
		"tournament_id": tournamentID,
		"changed":       len(dirty),
	}).Debug("Byes advanced")
	return dirty, nil
}

// bracketIdentity maps a team member to the leader that holds the team's bracket slot
func (s *matchService) bracketIdentity(ctx context.Context, tournament *entities.Tournament, userID int64) (int64, error) {
	if !tournament.IsTeamTournament() {
		return userID, nil
	}
	members, err := s.tournamentRepo.GetTeamMembers(ctx, tournament.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to get team members: %w", err)
	}
	for _, m := range members {
		if m.TeammateID == userID {
			return m.LeaderID, nil
		}
	}
	return userID, nil
}
