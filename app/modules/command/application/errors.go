package commandservice

import (
	"errors"
	"fmt"

	commanddomain "github.com/Black-And-White-Club/scrum-bot/app/modules/command/domain"
	participantservice "github.com/Black-And-White-Club/scrum-bot/app/modules/participant/application"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/channel"
)

var (
	ErrNotRegistered     = errors.New("invoker is not a registered participant")
	ErrAlreadyRegistered = errors.New("invoker is already registered")
)

// FailureMessage turns a failure result into the text shown to the invoker.
func FailureMessage(err error) string {
	var parseErr *channel.IdentifierParseError
	switch {
	case errors.Is(err, commanddomain.ErrUnknownCommand):
		return "Sorry, I don't know that command."
	case errors.Is(err, commanddomain.ErrInvalidArgument):
		return fmt.Sprintf("Sorry, %v.", err)
	case errors.Is(err, ErrNotRegistered):
		return "You are not registered yet. Use /register to join the scrum."
	case errors.Is(err, ErrAlreadyRegistered):
		return "You are already registered."
	case errors.Is(err, participantservice.ErrEmptyDisplayName):
		return "Please give a display name."
	case errors.As(err, &parseErr):
		return "Sorry, I could not read your user id."
	default:
		return "Sorry, something went wrong."
	}
}
