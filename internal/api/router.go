package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/OwaisSafa/ChessVerse/internal/api/handler"
	"github.com/OwaisSafa/ChessVerse/internal/api/middleware"
	"github.com/OwaisSafa/ChessVerse/internal/api/response"
	"github.com/OwaisSafa/ChessVerse/internal/services/identity"
	"github.com/OwaisSafa/ChessVerse/internal/services/room"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger    *slog.Logger
	Rooms     *room.Store
	Registry  *identity.Registry
	WSHandler http.Handler
	// StaticDir is served at / when set
	StaticDir string
}

// NewRouter creates a new router with the websocket endpoint, the JSON API,
// and the optional static mount
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	roomHandler := handler.NewRoomHandler(cfg.Rooms, cfg.Registry)

	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)

	// Websocket upgrade
	r.Handle("/ws", cfg.WSHandler).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{code}", roomHandler.Get).Methods(http.MethodGet)

	if cfg.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(cfg.StaticDir))).Methods(http.MethodGet, http.MethodHead)
	}

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
