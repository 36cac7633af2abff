package model

import "time"

// PlayerID identifies a player by the connection that owns it.
// A connection has at most one player at a time.
type PlayerID string

// Color is the side a player is seated on
type Color string

const (
	ColorWhite Color = "white"
	ColorBlack Color = "black"
)

// Player is the per-connection identity and seat within a room
type Player struct {
	ID          PlayerID
	DisplayName string
	RoomCode    RoomCode // Empty when not seated
	Color       Color
	ConnectedAt time.Time
}

// InRoom reports whether the player is seated in a room
func (p *Player) InRoom() bool {
	return p != nil && p.RoomCode != ""
}
