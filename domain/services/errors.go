package services

import "errors"

// Errors returned by the tournament and betting services.
// Callers match them with errors.Is; messages are safe to show to users.
var (
	// Not found
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrMatchNotFound      = errors.New("match not found")
	ErrBetGameNotFound    = errors.New("bet game not found")

	// Registration
	ErrTournamentStarted  = errors.New("tournament has already started")
	ErrRegistrationClosed = errors.New("registration is closed")
	ErrTournamentFull     = errors.New("tournament is full")
	ErrAlreadyRegistered  = errors.New("already registered for this tournament")
	ErrNotRegistered      = errors.New("not registered for this tournament")

	// Lifecycle
	ErrNotEnoughParticipants = errors.New("not enough participants to start the tournament")
	ErrTournamentNotStarted  = errors.New("tournament has not started yet")
	ErrTournamentNotFinished = errors.New("tournament is not finished")

	// Match reporting
	ErrAlreadyEliminated = errors.New("no pending match, already eliminated")
	ErrMatchNotReady     = errors.New("opponent is not known yet")
	ErrMatchNotDecided   = errors.New("match has no winner yet")
	ErrInvalidScore      = errors.New("score must be between 1 and 32 characters")

	// Betting
	ErrMatchAlreadyFinished = errors.New("match already has a winner")
	ErrBelowMinimumStake    = errors.New("stake is below the minimum")
	ErrSelfBetForbidden     = errors.New("participants cannot bet on their own match")
	ErrInvalidTarget        = errors.New("target is not a participant of this match")
	ErrInsufficientFunds    = errors.New("insufficient funds in wallet")
)
