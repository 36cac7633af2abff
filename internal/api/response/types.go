package response

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/OwaisSafa/ChessVerse/internal/model"
)

// Room is the public summary of a room. Connection ids are never exposed.
type Room struct {
	Code        string    `json:"code"`
	State       string    `json:"state"`
	MemberCount int       `json:"member_count"`
	White       string    `json:"white,omitempty"`
	Black       string    `json:"black,omitempty"`
	MoveCount   int       `json:"move_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RoomFromModel converts model.Room using the resolved seat holder names
func RoomFromModel(r *model.Room, white, black string) Room {
	return Room{
		Code:        string(r.Code),
		State:       string(r.State),
		MemberCount: len(r.Members),
		White:       white,
		Black:       black,
		MoveCount:   len(r.Moves),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// Health is the health check response
type Health struct {
	Status string `json:"status"`
}

// JSON writes data with the given status as an uncached JSON body
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}
