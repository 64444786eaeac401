package services

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"tourney/domain/bracket"
	"tourney/domain/entities"
	"tourney/domain/events"
	"tourney/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// tournamentService implements the tournament lifecycle: registration, seeding and finalization
type tournamentService struct {
	tournamentRepo interfaces.TournamentRepository
	matchRepo      interfaces.MatchRepository
	eventPublisher interfaces.EventPublisher
	rng            *rand.Rand
}

// NewTournamentService creates a new tournament service.
// rng drives team formation, seeding and map picks.
func NewTournamentService(
	tournamentRepo interfaces.TournamentRepository,
	matchRepo interfaces.MatchRepository,
	eventPublisher interfaces.EventPublisher,
	rng *rand.Rand,
) interfaces.TournamentService {
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		eventPublisher: eventPublisher,
		rng:            rng,
	}
}

// CreateTournament validates and persists a new tournament
func (s *tournamentService) CreateTournament(ctx context.Context, tournament *entities.Tournament) error {
	if err := tournament.Validate(); err != nil {
		return err
	}
	tournament.HasStarted = false
	tournament.HasFinished = false

	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		return fmt.Errorf("failed to create tournament: %w", err)
	}
	return nil
}

// GetTournament returns the tournament or ErrTournamentNotFound
func (s *tournamentService) GetTournament(ctx context.Context, tournamentID int64) (*entities.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}
	if tournament == nil {
		return nil, ErrTournamentNotFound
	}
	return tournament, nil
}

// ListActiveTournaments returns the guild's unfinished tournaments
func (s *tournamentService) ListActiveTournaments(ctx context.Context) ([]*entities.Tournament, error) {
	tournaments, err := s.tournamentRepo.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get active tournaments: %w", err)
	}
	return tournaments, nil
}

// Register adds the user to the tournament.
// Checks run in order: existence, started, registration window, capacity, duplicate.
func (s *tournamentService) Register(ctx context.Context, tournamentID, userID int64) error {
	tournament, err := s.GetTournament(ctx, tournamentID)
	if err != nil {
		return err
	}
	if tournament.HasStarted {
		return ErrTournamentStarted
	}
	if !tournament.IsRegistrationOpen(time.Now()) {
		return ErrRegistrationClosed
	}

	if tournament.IsFull() {
		return ErrTournamentFull
	}
	registered, err := s.tournamentRepo.IsRegistered(ctx, tournamentID, userID)
	if err != nil {
		return fmt.Errorf("failed to check registration: %w", err)
	}
	if registered {
		return ErrAlreadyRegistered
	}

	if err := s.tournamentRepo.RegisterParticipant(ctx, tournamentID, userID); err != nil {
		return fmt.Errorf("failed to register participant: %w", err)
	}

	log.WithFields(log.Fields{
		"tournament_id": tournamentID,
		"user_id":       userID,
		"registered":    tournament.RegisteredCount + 1,
		"capacity":      tournament.Capacity(),
	}).Info("Participant registered")
	return nil
}

// Unregister removes the user before the tournament starts
func (s *tournamentService) Unregister(ctx context.Context, tournamentID, userID int64) error {
	tournament, err := s.GetTournament(ctx, tournamentID)
	if err != nil {
		return err
	}
	if tournament.HasStarted {
		return ErrTournamentStarted
	}

	removed, err := s.tournamentRepo.UnregisterParticipant(ctx, tournamentID, userID)
	if err != nil {
		return fmt.Errorf("failed to unregister participant: %w", err)
	}
	if !removed {
		return ErrNotRegistered
	}
	return nil
}

// Start admits as many full teams as registrations allow, resizes the bracket to fit them,
// seeds the first round and resolves byes. Starting twice fails with ErrTournamentStarted.
func (s *tournamentService) Start(ctx context.Context, tournamentID int64) (*interfaces.StartResult, error) {
	tournament, err := s.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.HasStarted {
		return nil, ErrTournamentStarted
	}

	participants, err := s.tournamentRepo.GetParticipants(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	userIDs := make([]int64, len(participants))
	for i, p := range participants {
		userIDs[i] = p.UserID
	}

	teamSize := tournament.TeamSize
	if teamSize < 1 {
		teamSize = 1
	}
	teamCount := len(userIDs) / teamSize
	if teamCount < 2 {
		return nil, ErrNotEnoughParticipants
	}

	admitted, excluded := bracket.SplitParticipants(userIDs, teamSize)
	tournament.MaxPlayers = bracket.ResizeTournament(tournament.MaxPlayers, teamCount)

	matches, err := s.ensureSkeleton(ctx, tournament)
	if err != nil {
		return nil, err
	}

	leaders, teams := bracket.FormTeams(admitted, teamSize, s.rng)
	if len(teams) > 0 {
		if err := s.tournamentRepo.SaveTeamMembers(ctx, teamMembers(tournamentID, teams)); err != nil {
			return nil, fmt.Errorf("failed to save teams: %w", err)
		}
	}

	root := bracket.BuildTree(matches)
	seeded := bracket.AssignToLeaves(root, leaders, tournament.Maps, s.rng)
	advanced := bracket.AutoAdvance(root)
	if dirty := mergeMatches(seeded, advanced); len(dirty) > 0 {
		if err := s.matchRepo.UpdateMany(ctx, dirty); err != nil {
			return nil, fmt.Errorf("failed to persist seeded matches: %w", err)
		}
	}

	tournament.HasStarted = true
	if err := s.tournamentRepo.Update(ctx, tournament); err != nil {
		return nil, fmt.Errorf("failed to mark tournament started: %w", err)
	}

	if err := s.eventPublisher.Publish(events.TournamentStartedEvent{
		GuildID:      tournament.GuildID,
		TournamentID: tournament.ID,
		Name:         tournament.Name,
		Admitted:     admitted,
		Excluded:     excluded,
		BracketSize:  tournament.MaxPlayers,
	}); err != nil {
		log.WithError(err).Error("Failed to publish tournament started event")
	}

	log.WithFields(log.Fields{
		"tournament_id": tournament.ID,
		"admitted":      len(admitted),
		"excluded":      len(excluded),
		"bracket_size":  tournament.MaxPlayers,
		"matches":       len(matches),
	}).Info("Tournament started")

	return &interfaces.StartResult{
		Tournament: tournament,
		Admitted:   admitted,
		Excluded:   excluded,
		Leaders:    leaders,
		Teams:      teams,
		Matches:    matches,
	}, nil
}

// ensureSkeleton returns the existing matches or creates an empty bracket sized to MaxPlayers
func (s *tournamentService) ensureSkeleton(ctx context.Context, tournament *entities.Tournament) ([]*entities.Match, error) {
	existing, err := s.matchRepo.GetByTournament(ctx, tournament.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get matches: %w", err)
	}
	if len(existing) > 0 {
		return existing, nil
	}

	matches, err := bracket.BuildSkeleton(tournament.ID, tournament.MaxPlayers, func(m *entities.Match) error {
		return s.matchRepo.Create(ctx, m)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bracket: %w", err)
	}
	return matches, nil
}

// GetBracket rebuilds the bracket tree, nil when the tournament has no match yet
func (s *tournamentService) GetBracket(ctx context.Context, tournamentID int64) (*bracket.Node, error) {
	if _, err := s.GetTournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	matches, err := s.matchRepo.GetByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get matches: %w", err)
	}
	return bracket.BuildTree(matches), nil
}

// GetTeams returns teammates keyed by team leader
func (s *tournamentService) GetTeams(ctx context.Context, tournamentID int64) (map[int64][]int64, error) {
	members, err := s.tournamentRepo.GetTeamMembers(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get team members: %w", err)
	}
	teams := make(map[int64][]int64)
	for _, m := range members {
		teams[m.LeaderID] = append(teams[m.LeaderID], m.TeammateID)
	}
	return teams, nil
}

// Finalize computes the standings and marks the tournament finished.
// The finished event is only published on the first successful call.
func (s *tournamentService) Finalize(ctx context.Context, tournamentID int64) (*entities.Standings, error) {
	tournament, err := s.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	root, err := s.GetBracket(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	standings, ok := bracket.FinalStandings(root)
	if !ok {
		return nil, ErrTournamentNotFinished
	}
	if tournament.HasFinished {
		return standings, nil
	}

	tournament.HasFinished = true
	if err := s.tournamentRepo.Update(ctx, tournament); err != nil {
		return nil, fmt.Errorf("failed to mark tournament finished: %w", err)
	}

	if err := s.eventPublisher.Publish(events.TournamentFinishedEvent{
		GuildID:      tournament.GuildID,
		TournamentID: tournament.ID,
		Name:         tournament.Name,
		First:        standings.First,
		Second:       standings.Second,
		Third:        standings.Third,
	}); err != nil {
		log.WithError(err).Error("Failed to publish tournament finished event")
	}

	log.WithFields(log.Fields{
		"tournament_id": tournament.ID,
		"winner":        standings.First,
	}).Info("Tournament finished")
	return standings, nil
}

// teamMembers flattens the leader to teammates map into rows with stable positions
func teamMembers(tournamentID int64, teams map[int64][]int64) []*entities.TeamMember {
	var members []*entities.TeamMember
	for leader, mates := range teams {
		for i, mate := range mates {
			members = append(members, &entities.TeamMember{
				TournamentID: tournamentID,
				LeaderID:     leader,
				TeammateID:   mate,
				Position:     i + 1,
			})
		}
	}
	return members
}

// mergeMatches concatenates match lists keeping the first occurrence of each id
func mergeMatches(lists ...[]*entities.Match) []*entities.Match {
	seen := make(map[int64]bool)
	var merged []*entities.Match
	for _, list := range lists {
		for _, m := range list {
			if seen[m.ID] {
				continue
			}
			seen[m.ID] = true
			merged = append(merged, m)
		}
	}
	return merged
}
