package model

import "errors"

// Common errors used across the application
var (
	// Connection / player errors
	ErrInvalidConnection = errors.New("connection id is required")
	ErrPlayerNotFound    = errors.New("player not found")
	ErrAlreadyInRoom     = errors.New("connection is already in a room")
	ErrNotInGame         = errors.New("not in a game")

	// Room errors
	ErrRoomIDRequired     = errors.New("room id is required")
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomFull           = errors.New("room is full")
	ErrRoomGoneMissing    = errors.New("game room not found")
	ErrRoomCodesExhausted = errors.New("no free room codes")

	// Relay errors
	ErrOpponentMissing = errors.New("opponent not found")
	ErrRelayFailure    = errors.New("failed to relay event")
	ErrMalformedEvent  = errors.New("malformed event")
)
