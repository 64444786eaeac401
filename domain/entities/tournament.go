package entities

import (
	"errors"
	"time"
)

// Tournament represents a single-elimination tournament hosted in a guild
type Tournament struct {
	ID               int64     `db:"id"`
	GuildID          int64     `db:"guild_id"`
	Name             string    `db:"name"`
	RegistrationDate time.Time `db:"registration_date"`
	StartDate        time.Time `db:"start_date"`
	EndDate          time.Time `db:"end_date"`
	BestOf           int       `db:"best_of"`
	MaxPlayers       int       `db:"max_players"`
	Maps             []string  `db:"maps"`
	TeamSize         int       `db:"team_size"`
	HasStarted       bool      `db:"has_started"`
	HasFinished      bool      `db:"has_finished"`
	ChannelID        *int64    `db:"channel_id"`
	RegisteredCount  int       `db:"-"` // Derived from tournament_participants
	CreatedAt        time.Time `db:"created_at"`
}

// TournamentParticipant is a registration of a user to a tournament
type TournamentParticipant struct {
	TournamentID int64     `db:"tournament_id"`
	UserID       int64     `db:"user_id"`
	RegisteredAt time.Time `db:"registered_at"`
}

// TeamMember links a teammate to the team leader that represents the team in the bracket
type TeamMember struct {
	TournamentID int64 `db:"tournament_id"`
	LeaderID     int64 `db:"leader_id"`
	TeammateID   int64 `db:"teammate_id"`
	Position     int   `db:"position"`
}

// Standings holds the final placements of a finished tournament.
// A zero id means the place was never contested.
type Standings struct {
	First  int64
	Second int64
	Third  [2]int64
}

// IsRegistrationOpen reports whether registrations are accepted at the given time
func (t *Tournament) IsRegistrationOpen(now time.Time) bool {
	return !now.Before(t.RegistrationDate) && now.Before(t.StartDate)
}

// IsFull reports whether every bracket seat is taken
func (t *Tournament) IsFull() bool {
	return t.RegisteredCount >= t.Capacity()
}

// Capacity is the number of individual registrations the tournament accepts
func (t *Tournament) Capacity() int {
	size := t.TeamSize
	if size < 1 {
		size = 1
	}
	return t.MaxPlayers * size
}

// IsTeamTournament reports whether participants are grouped into teams
func (t *Tournament) IsTeamTournament() bool {
	return t.TeamSize > 1
}

// IsInProgress reports whether the bracket is live
func (t *Tournament) IsInProgress() bool {
	return t.HasStarted && !t.HasFinished
}

// Validate checks the tournament definition before it is persisted
func (t *Tournament) Validate() error {
	if t.Name == "" {
		return errors.New("tournament name cannot be empty")
	}
	if t.StartDate.Before(t.RegistrationDate) {
		return errors.New("start date must not be before the registration date")
	}
	if t.EndDate.Before(t.StartDate) {
		return errors.New("end date must not be before the start date")
	}
	if t.BestOf < 1 || t.BestOf%2 == 0 {
		return errors.New("best of must be a positive odd number")
	}
	if !IsPowerOfTwo(t.MaxPlayers) || t.MaxPlayers < 2 {
		return errors.New("max players must be a power of two of at least 2")
	}
	if t.TeamSize < 1 {
		return errors.New("team size must be at least 1")
	}
	if len(t.Maps) == 0 {
		return errors.New("map pool cannot be empty")
	}
	return nil
}

// IsPowerOfTwo reports whether n is a positive power of two
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
