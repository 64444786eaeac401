package entities

import "time"

// ScoreNotPlayed is recorded on matches decided without being played
const ScoreNotPlayed = "N/A"

// MaxScoreLength is the longest score the matches table stores
const MaxScoreLength = 32

// Match is one node of a tournament bracket, persisted as a flat row.
// PreviousMatch1ID and PreviousMatch2ID point to the matches feeding this one;
// both nil means the match is a first-round leaf.
type Match struct {
	ID               int64      `db:"id"`
	TournamentID     int64      `db:"tournament_id"`
	User1ID          *int64     `db:"user1_id"`
	User2ID          *int64     `db:"user2_id"`
	WinnerID         *int64     `db:"winner_id"`
	Score            *string    `db:"score"`
	Map              *string    `db:"map"`
	DecidedAt        *time.Time `db:"decided_at"`
	PreviousMatch1ID *int64     `db:"previous_match1_id"`
	PreviousMatch2ID *int64     `db:"previous_match2_id"`
}

// IsLeaf reports whether the match has no predecessor matches
func (m *Match) IsLeaf() bool {
	return m.PreviousMatch1ID == nil && m.PreviousMatch2ID == nil
}

// IsDecided reports whether a winner has been recorded
func (m *Match) IsDecided() bool {
	return m.WinnerID != nil
}

// HasBothUsers reports whether both slots are filled
func (m *Match) HasBothUsers() bool {
	return m.User1ID != nil && m.User2ID != nil
}

// HasNoUsers reports whether both slots are empty
func (m *Match) HasNoUsers() bool {
	return m.User1ID == nil && m.User2ID == nil
}

// HasExactlyOneUser reports whether exactly one slot is filled
func (m *Match) HasExactlyOneUser() bool {
	return (m.User1ID == nil) != (m.User2ID == nil)
}

// HasUser reports whether userID occupies either slot
func (m *Match) HasUser(userID int64) bool {
	return (m.User1ID != nil && *m.User1ID == userID) || (m.User2ID != nil && *m.User2ID == userID)
}

// LoneUser returns the single filled slot, or nil when the match is not half-filled
func (m *Match) LoneUser() *int64 {
	if !m.HasExactlyOneUser() {
		return nil
	}
	if m.User1ID != nil {
		return m.User1ID
	}
	return m.User2ID
}

// Opponent returns the user facing userID in this match
func (m *Match) Opponent(userID int64) *int64 {
	if m.User1ID != nil && *m.User1ID == userID {
		return m.User2ID
	}
	if m.User2ID != nil && *m.User2ID == userID {
		return m.User1ID
	}
	return nil
}

// Loser returns the participant that did not win, nil while undecided
func (m *Match) Loser() *int64 {
	if m.WinnerID == nil {
		return nil
	}
	return m.Opponent(*m.WinnerID)
}

// PlaceUser puts userID into the first empty slot.
// Returns false when the user is already present or both slots are taken.
func (m *Match) PlaceUser(userID int64) bool {
	if m.HasUser(userID) {
		return false
	}
	id := userID
	switch {
	case m.User1ID == nil:
		m.User1ID = &id
	case m.User2ID == nil:
		m.User2ID = &id
	default:
		return false
	}
	return true
}

// Decide records the winner and score of the match
func (m *Match) Decide(winnerID int64, score string, at time.Time) {
	winner := winnerID
	s := score
	decidedAt := at
	m.WinnerID = &winner
	m.Score = &s
	m.DecidedAt = &decidedAt
}

// SetMap assigns the map to be played
func (m *Match) SetMap(name string) {
	n := name
	m.Map = &n
}
