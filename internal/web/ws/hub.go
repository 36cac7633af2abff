package ws

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/OwaisSafa/ChessVerse/internal/dependencies/emitter"
	"github.com/OwaisSafa/ChessVerse/internal/model"
)

// ErrBufferFull is returned when a client's send buffer has no room left
var ErrBufferFull = errors.New("client send buffer full")

// Hub tracks live websocket connections by connection id and delivers
// outbound events to them
type Hub struct {
	clients map[model.PlayerID]*Client
	mu      sync.RWMutex
	logger  *slog.Logger
}

// Ensure Hub implements Emitter
var _ emitter.Emitter = (*Hub)(nil)

// NewHub creates a new Hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[model.PlayerID]*Client),
		logger:  logger.With(slog.String("component", "ws")),
	}
}

// Emit encodes the event and queues it for the connection without blocking.
// The send happens under the read lock so detach cannot close the channel
// underneath it.
func (h *Hub) Emit(_ context.Context, to model.PlayerID, ev model.OutboundEvent) error {
	frame, err := model.EncodeOutbound(ev)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	client, ok := h.clients[to]
	if !ok {
		return fmt.Errorf("%w: %s", emitter.ErrConnectionGone, to)
	}

	select {
	case client.send <- frame:
		return nil
	default:
		h.logger.Warn("ws message dropped - client buffer full",
			slog.String("conn_id", string(to)),
			slog.String("event", string(ev.EventName())))
		return ErrBufferFull
	}
}

// ClientCount returns the number of attached connections
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close detaches every connection. Each write pump sends a close frame and
// the read loops then run their disconnect handling.
func (h *Hub) Close() {
	h.mu.Lock()
	count := len(h.clients)
	for id, client := range h.clients {
		close(client.send)
		delete(h.clients, id)
	}
	h.mu.Unlock()

	h.logger.Info("ws hub closed", slog.Int("disconnected_clients", count))
}

func (h *Hub) attach(client *Client) {
	h.mu.Lock()
	h.clients[client.id] = client
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("ws client attached",
		slog.String("conn_id", string(client.id)),
		slog.Int("total_clients", count))
}

// detach is idempotent; only the first call closes the send channel
func (h *Hub) detach(client *Client) {
	h.mu.Lock()
	current, ok := h.clients[client.id]
	if !ok || current != client {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client.id)
	close(client.send)
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("ws client detached",
		slog.String("conn_id", string(client.id)),
		slog.Duration("connection_duration", time.Since(client.connectedAt)),
		slog.Int("total_clients", count))
}
