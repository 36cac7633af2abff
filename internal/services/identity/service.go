package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/OwaisSafa/ChessVerse/internal/dependencies/clock"
	"github.com/OwaisSafa/ChessVerse/internal/model"
	"github.com/OwaisSafa/ChessVerse/internal/storage"
)

// Registry maps live connections to their Player record.
// Writes are serialized registry-wide; lookups read storage directly.
type Registry struct {
	mu      sync.Mutex
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new Registry
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Registry {
	return &Registry{
		storage: storage,
		clock:   clock,
		logger:  logger.With(slog.String("component", "identity")),
	}
}

// Register creates the Player for a connection.
// A connection that already has a Player gets ErrAlreadyInRoom.
func (r *Registry) Register(ctx context.Context, id model.PlayerID, name string, code model.RoomCode, color model.Color) (*model.Player, error) {
	if id == "" {
		return nil, model.ErrInvalidConnection
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.storage.GetPlayer(ctx, id)
	switch {
	case err == nil:
		return nil, model.ErrAlreadyInRoom
	case !errors.Is(err, model.ErrPlayerNotFound):
		return nil, fmt.Errorf("check player %s: %w", id, err)
	}

	player := &model.Player{
		ID:          id,
		DisplayName: name,
		RoomCode:    code,
		Color:       color,
		ConnectedAt: r.clock.Now(),
	}
	if err := r.storage.SavePlayer(ctx, player); err != nil {
		return nil, fmt.Errorf("save player %s: %w", id, err)
	}

	r.logger.Debug("player registered",
		slog.String("conn_id", string(id)),
		slog.String("room", string(code)),
		slog.String("color", string(color)))
	return player, nil
}

// Lookup returns the Player for a connection, or ErrPlayerNotFound
func (r *Registry) Lookup(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	if id == "" {
		return nil, model.ErrInvalidConnection
	}
	return r.storage.GetPlayer(ctx, id)
}

// Remove deletes the Player for a connection. Removing an unknown id is not an error.
func (r *Registry) Remove(ctx context.Context, id model.PlayerID) error {
	if id == "" {
		return model.ErrInvalidConnection
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.storage.DeletePlayer(ctx, id); err != nil {
		return fmt.Errorf("delete player %s: %w", id, err)
	}
	return nil
}

// Count returns the number of registered players
func (r *Registry) Count(ctx context.Context) (int, error) {
	return r.storage.CountPlayers(ctx)
}

// DefaultName returns the placeholder name for a player who did not pick one
func (r *Registry) DefaultName(ctx context.Context) string {
	n, err := r.Count(ctx)
	if err != nil {
		r.logger.Warn("could not count players for default name", slog.String("error", err.Error()))
		n = 0
	}
	return fmt.Sprintf("Player %d", n+1)
}
