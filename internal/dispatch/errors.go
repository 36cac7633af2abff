package dispatch

import (
	"errors"

	"github.com/OwaisSafa/ChessVerse/internal/model"
)

// ErrorMessage maps a handler error to the message sent to the caller.
// notify is false for errors nobody needs to hear about.
func ErrorMessage(event model.EventName, err error) (message string, notify bool) {
	switch {
	case errors.Is(err, model.ErrOpponentMissing):
		return "", false
	case errors.Is(err, model.ErrRoomIDRequired):
		return "Room ID is required", true
	case errors.Is(err, model.ErrRoomNotFound):
		return "Room not found", true
	case errors.Is(err, model.ErrRoomFull):
		return "Room is full", true
	case errors.Is(err, model.ErrAlreadyInRoom):
		return "Already in a room", true
	case errors.Is(err, model.ErrNotInGame):
		return "Not in a game", true
	case errors.Is(err, model.ErrRoomGoneMissing):
		return "Game room not found", true
	case errors.Is(err, model.ErrMalformedEvent):
		return "Invalid event", true
	case errors.Is(err, model.ErrRoomCodesExhausted):
		return "No rooms available, try again later", true
	case event == model.EventMakeMove:
		return "Failed to process move", true
	default:
		return "Failed to process request", true
	}
}

// isKnown reports whether err belongs to the relay's error taxonomy
func isKnown(err error) bool {
	for _, known := range []error{
		model.ErrOpponentMissing,
		model.ErrRoomIDRequired,
		model.ErrRoomNotFound,
		model.ErrRoomFull,
		model.ErrAlreadyInRoom,
		model.ErrNotInGame,
		model.ErrRoomGoneMissing,
		model.ErrMalformedEvent,
		model.ErrRoomCodesExhausted,
		model.ErrRelayFailure,
	} {
		if errors.Is(err, known) {
			return true
		}
	}
	return false
}
