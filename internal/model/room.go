package model

import (
	"slices"
	"time"
)

// RoomCode is the 4-digit numeric invite code for a room
type RoomCode string

// RoomState represents where a room is in its lifecycle
type RoomState string

const (
	RoomStateWaiting  RoomState = "waiting"  // Only the creator is seated
	RoomStatePlaying  RoomState = "playing"  // Both seats filled
	RoomStateFinished RoomState = "finished" // Game over, resigned, drawn, or white left
)

// MaxRoomMembers is the number of connections a room can hold
const MaxRoomMembers = 2

// Move is a relayed move. Squares and promotion are opaque to the server.
type Move struct {
	From      string   `json:"from"`
	To        string   `json:"to"`
	Promotion string   `json:"promotion,omitempty"`
	Color     Color    `json:"color,omitempty"`
	PlayerID  PlayerID `json:"player_id,omitempty"`
}

// Room is a two-player match session
type Room struct {
	Code        RoomCode
	WhitePlayer PlayerID   // Empty when the white seat is free
	BlackPlayer PlayerID   // Empty when the black seat is free
	Members     []PlayerID // Join order
	State       RoomState
	LastMove    *Move
	Moves       []Move
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasMember reports whether the connection is in the member list
func (r *Room) HasMember(id PlayerID) bool {
	return slices.Contains(r.Members, id)
}

// IsFull reports whether the member list is at capacity
func (r *Room) IsFull() bool {
	return len(r.Members) >= MaxRoomMembers
}

// IsEmpty reports whether the room has no members left
func (r *Room) IsEmpty() bool {
	return len(r.Members) == 0
}

// RemoveMember drops the connection from the member list, keeping join order.
// Returns false if it was not a member.
func (r *Room) RemoveMember(id PlayerID) bool {
	i := slices.Index(r.Members, id)
	if i < 0 {
		return false
	}
	r.Members = slices.Delete(r.Members, i, i+1)
	return true
}

// Opponent returns the occupant of the other color seat.
// Both seats must be filled and id must hold one of them.
func (r *Room) Opponent(id PlayerID) (PlayerID, bool) {
	if r.WhitePlayer == "" || r.BlackPlayer == "" {
		return "", false
	}
	switch id {
	case r.WhitePlayer:
		return r.BlackPlayer, true
	case r.BlackPlayer:
		return r.WhitePlayer, true
	}
	return "", false
}

// Clone returns a deep copy so stored rooms are never aliased by callers
func (r *Room) Clone() *Room {
	if r == nil {
		return nil
	}
	c := *r
	c.Members = slices.Clone(r.Members)
	c.Moves = slices.Clone(r.Moves)
	if r.LastMove != nil {
		m := *r.LastMove
		c.LastMove = &m
	}
	return &c
}
