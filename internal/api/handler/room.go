package handler

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/OwaisSafa/ChessVerse/internal/api/response"
	"github.com/OwaisSafa/ChessVerse/internal/model"
	"github.com/OwaisSafa/ChessVerse/internal/services/identity"
	"github.com/OwaisSafa/ChessVerse/internal/services/room"
)

// RoomHandler serves read-only room lookups for invite previews
type RoomHandler struct {
	rooms    *room.Store
	registry *identity.Registry
}

// NewRoomHandler creates a new RoomHandler
func NewRoomHandler(rooms *room.Store, registry *identity.Registry) *RoomHandler {
	return &RoomHandler{rooms: rooms, registry: registry}
}

// Get handles GET /rooms/{code}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := model.RoomCode(strings.TrimSpace(mux.Vars(r)["code"]))
	if code == "" {
		WriteError(w, model.ErrRoomIDRequired)
		return
	}

	found, err := h.rooms.Get(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFromModel(found, h.displayName(r, found.WhitePlayer), h.displayName(r, found.BlackPlayer)))
}

// displayName resolves a seat holder's name; empty seats and vanished players give ""
func (h *RoomHandler) displayName(r *http.Request, id model.PlayerID) string {
	if id == "" {
		return ""
	}
	player, err := h.registry.Lookup(r.Context(), id)
	if err != nil {
		return ""
	}
	return player.DisplayName
}
