package infrastructure

import (
	"fmt"

	"tourney/domain/events"
)

// DomainEventStream is the JetStream stream carrying every domain event
const DomainEventStream = "tourney_events"

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeTournamentStarted:
		return "tournaments.started"
	case events.EventTypeTournamentFinished:
		return "tournaments.finished"
	case events.EventTypeMatchCompleted:
		return "tournaments.match_completed"
	case events.EventTypeOddsPublished:
		return "betting.odds_published"
	case events.EventTypeBetPlaced:
		return "betting.bet_placed"
	case events.EventTypeBetGameSettled:
		return "betting.settled"
	default:
		return fmt.Sprintf("events.%s", event.Type())
	}
}

// GetAllSubjects returns the subjects the domain event stream must capture
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		"tournaments.*",
		"betting.*",
		"events.*",
	}
}
