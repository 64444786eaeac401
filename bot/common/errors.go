package common

import (
	"errors"

	"tourney/domain/services"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const genericErrorMessage = "Something went wrong. Please try again later."

// userFacingErrors are domain errors whose message can be shown as is
var userFacingErrors = []error{
	services.ErrTournamentNotFound,
	services.ErrMatchNotFound,
	services.ErrBetGameNotFound,
	services.ErrTournamentStarted,
	services.ErrRegistrationClosed,
	services.ErrTournamentFull,
	services.ErrAlreadyRegistered,
	services.ErrNotRegistered,
	services.ErrNotEnoughParticipants,
	services.ErrTournamentNotStarted,
	services.ErrTournamentNotFinished,
	services.ErrAlreadyEliminated,
	services.ErrMatchNotReady,
	services.ErrMatchNotDecided,
	services.ErrInvalidScore,
	services.ErrMatchAlreadyFinished,
	services.ErrBelowMinimumStake,
	services.ErrSelfBetForbidden,
	services.ErrInvalidTarget,
	services.ErrInsufficientFunds,
}

// UserMessage returns the message shown to the user for err and whether err was expected
func UserMessage(err error) (string, bool) {
	var invalid *InvalidInputError
	if errors.As(err, &invalid) {
		return invalid.Message, true
	}
	for _, known := range userFacingErrors {
		if errors.Is(err, known) {
			return capitalize(known.Error()), true
		}
	}
	return genericErrorMessage, false
}

// InvalidInputError is a validation failure of command input
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string {
	return e.Message
}

// NewInvalidInput creates an InvalidInputError
func NewInvalidInput(message string) error {
	return &InvalidInputError{Message: message}
}

// HandleError logs err and sends the user-facing message, as a follow-up when the interaction was deferred
func HandleError(s *discordgo.Session, i *discordgo.InteractionCreate, err error, deferred bool) {
	message, expected := UserMessage(err)

	fields := log.Fields{
		"guild_id": i.GuildID,
		"error":    err.Error(),
	}
	if i.Member != nil && i.Member.User != nil {
		fields["user_id"] = i.Member.User.ID
	}
	if i.Type == discordgo.InteractionApplicationCommand {
		fields["command"] = i.ApplicationCommandData().Name
	}

	if expected {
		log.WithFields(fields).Debug("Rejected command")
	} else {
		log.WithFields(fields).Error("Unexpected error in bot command")
	}

	if deferred {
		FollowUpWithError(s, i, message)
	} else {
		RespondWithError(s, i, message)
	}
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
