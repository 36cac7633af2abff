package ws

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/OwaisSafa/ChessVerse/internal/model"
)

// EventHandler receives the lifecycle and frames of every connection.
// dispatch.Dispatcher satisfies it.
type EventHandler interface {
	Connect(ctx context.Context, id model.PlayerID)
	Handle(ctx context.Context, id model.PlayerID, frame []byte)
	Disconnect(ctx context.Context, id model.PlayerID)
}

// Handler upgrades HTTP requests to websocket connections
type Handler struct {
	hub      *Hub
	handler  EventHandler
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a new websocket Handler
func NewHandler(hub *Hub, handler EventHandler, logger *slog.Logger) *Handler {
	return &Handler{
		hub:     hub,
		handler: handler,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Any origin may connect
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger.With(slog.String("component", "ws")),
	}
}

// ServeHTTP runs the connection until it closes. Each connection gets a
// fresh id; frames are handled sequentially on this goroutine.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", slog.String("error", err.Error()))
		return
	}

	id := model.PlayerID(uuid.NewString())
	client := newClient(id, conn)
	h.hub.attach(client)
	go client.writePump()

	ctx := r.Context()
	h.handler.Connect(ctx, id)

	client.readPump(ctx, h.handler, h.logger)

	// Detach before tearing down the session so nothing is queued for a dead socket
	h.hub.detach(client)
	h.handler.Disconnect(context.WithoutCancel(ctx), id)
}
