package testutil

import (
	"time"

	"tourney/domain/entities"
)

// CreateTestTournament returns a valid, not yet started tournament whose registration is open
func CreateTestTournament(guildID int64, name string) *entities.Tournament {
	now := time.Now().UTC().Truncate(time.Second)
	return &entities.Tournament{
		GuildID:          guildID,
		Name:             name,
		RegistrationDate: now.Add(-time.Hour),
		StartDate:        now.Add(24 * time.Hour),
		EndDate:          now.Add(48 * time.Hour),
		BestOf:           3,
		MaxPlayers:       4,
		Maps:             []string{"dust2", "mirage", "inferno"},
		TeamSize:         1,
	}
}

// CreateTestMatch returns a leaf match between two users
func CreateTestMatch(tournamentID, user1, user2 int64) *entities.Match {
	return &entities.Match{
		TournamentID: tournamentID,
		User1ID:      &user1,
		User2ID:      &user2,
	}
}

// CreateTestBetGame returns an even bet game on the match
func CreateTestBetGame(tournamentID, matchID int64) *entities.BetGame {
	return &entities.BetGame{
		TournamentID: tournamentID,
		MatchID:      matchID,
		Probability1: 0.5,
		Probability2: 0.5,
	}
}
