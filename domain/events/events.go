package events

import "context"

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeTournamentStarted  EventType = "tournament_started"
	EventTypeTournamentFinished EventType = "tournament_finished"
	EventTypeMatchCompleted     EventType = "match_completed"
	EventTypeOddsPublished      EventType = "odds_published"
	EventTypeBetPlaced          EventType = "bet_placed"
	EventTypeBetGameSettled     EventType = "bet_game_settled"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// Handler processes an event in the publishing process
type Handler func(ctx context.Context, event Event) error

// TournamentStartedEvent is emitted once the bracket is seeded
type TournamentStartedEvent struct {
	GuildID      int64
	TournamentID int64
	Name         string
	Admitted     []int64
	Excluded     []int64
	BracketSize  int
}

func (e TournamentStartedEvent) Type() EventType {
	return EventTypeTournamentStarted
}

// MatchCompletedEvent is emitted when a reported result closes a match
type MatchCompletedEvent struct {
	GuildID      int64
	TournamentID int64
	MatchID      int64
	WinnerID     int64
	LoserID      int64
	Score        string
	IsFinal      bool
}

func (e MatchCompletedEvent) Type() EventType {
	return EventTypeMatchCompleted
}

// TournamentFinishedEvent carries the final standings
type TournamentFinishedEvent struct {
	GuildID      int64
	TournamentID int64
	Name         string
	First        int64
	Second       int64
	Third        [2]int64
}

func (e TournamentFinishedEvent) Type() EventType {
	return EventTypeTournamentFinished
}

// OddsPublishedEvent is emitted when a match becomes bettable
type OddsPublishedEvent struct {
	GuildID      int64
	TournamentID int64
	BetGameID    int64
	MatchID      int64
	User1ID      int64
	User2ID      int64
	Probability1 float64
	Probability2 float64
}

func (e OddsPublishedEvent) Type() EventType {
	return EventTypeOddsPublished
}

// BetPlacedEvent represents a wager that was accepted
type BetPlacedEvent struct {
	GuildID      int64
	TournamentID int64
	WagerID      int64
	BetGameID    int64
	UserID       int64
	TargetUserID int64
	Amount       float64
	Probability  float64
}

func (e BetPlacedEvent) Type() EventType {
	return EventTypeBetPlaced
}

// BetGameSettledEvent is emitted after a match's wagers are paid out
type BetGameSettledEvent struct {
	GuildID      int64
	TournamentID int64
	BetGameID    int64
	MatchID      int64
	WinnerID     int64
	WagerCount   int
	TotalStaked  float64
	TotalPaid    float64
	Payouts      map[int64]float64 // user id -> amount credited
}

func (e BetGameSettledEvent) Type() EventType {
	return EventTypeBetGameSettled
}
