package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/OwaisSafa/ChessVerse/internal/dependencies/clock"
	"github.com/OwaisSafa/ChessVerse/internal/dependencies/emitter"
	"github.com/OwaisSafa/ChessVerse/internal/model"
	"github.com/OwaisSafa/ChessVerse/internal/services/identity"
	"github.com/OwaisSafa/ChessVerse/internal/services/room"
)

// ExpiredMessage is sent to members of a room removed by the idle sweep
const ExpiredMessage = "Room expired due to inactivity"

// errNotIdle aborts an expiry when the room saw activity after it was listed
var errNotIdle = errors.New("room is no longer idle")

// Coordinator runs the connect / create / join / disconnect lifecycle
type Coordinator struct {
	registry  *identity.Registry
	rooms     *room.Store
	allocator *room.Allocator
	emitter   emitter.Emitter
	clock     clock.Clock
	logger    *slog.Logger
}

// NewCoordinator creates a new Coordinator
func NewCoordinator(
	registry *identity.Registry,
	rooms *room.Store,
	allocator *room.Allocator,
	emitter emitter.Emitter,
	clock clock.Clock,
	logger *slog.Logger,
) *Coordinator {
	return &Coordinator{
		registry:  registry,
		rooms:     rooms,
		allocator: allocator,
		emitter:   emitter,
		clock:     clock,
		logger:    logger.With(slog.String("component", "session")),
	}
}

// Connect acknowledges a new connection
func (c *Coordinator) Connect(ctx context.Context, id model.PlayerID) error {
	if id == "" {
		return model.ErrInvalidConnection
	}
	c.logger.Info("client connected", slog.String("conn_id", string(id)))
	return c.emitter.Emit(ctx, id, model.ConnectionEstablished{Status: "connected"})
}

// CreateRoom opens a new room with the caller seated as white
func (c *Coordinator) CreateRoom(ctx context.Context, id model.PlayerID, name string) (*model.Room, error) {
	if err := c.ensureNoSession(ctx, id); err != nil {
		return nil, err
	}
	name = c.displayName(ctx, name)

	created, err := c.allocator.Allocate(ctx, func(r *model.Room) error {
		if _, err := c.registry.Register(ctx, id, name, r.Code, model.ColorWhite); err != nil {
			return err
		}
		r.WhitePlayer = id
		r.Members = append(r.Members, id)
		return nil
	})
	if err != nil {
		// Allocate stores nothing on failure, so a player registered
		// for the discarded room must not survive it
		if !errors.Is(err, model.ErrAlreadyInRoom) {
			c.dropPlayer(ctx, id)
		}
		return nil, err
	}

	c.logger.Info("room created",
		slog.String("room", string(created.Code)),
		slog.String("conn_id", string(id)),
		slog.String("player", name))

	c.emit(ctx, id, model.RoomCreated{
		RoomCode:    created.Code,
		PlayerColor: model.ColorWhite,
		Status:      model.RoomStateWaiting,
	})
	return created, nil
}

// JoinRoom seats the caller in an existing room and starts the game.
// The joiner takes the black seat; if only white is free (the creator left
// and a member remains) the joiner takes white instead.
func (c *Coordinator) JoinRoom(ctx context.Context, id model.PlayerID, code model.RoomCode, name string) (*model.Room, error) {
	code = model.RoomCode(strings.TrimSpace(string(code)))
	if code == "" {
		return nil, model.ErrRoomIDRequired
	}
	if err := c.ensureNoSession(ctx, id); err != nil {
		return nil, err
	}
	name = c.displayName(ctx, name)

	registered := false
	joined, err := c.rooms.Update(ctx, code, func(r *model.Room) error {
		if r.IsFull() {
			return model.ErrRoomFull
		}

		color := model.ColorBlack
		if r.BlackPlayer != "" && r.WhitePlayer == "" {
			color = model.ColorWhite
		}
		if r.BlackPlayer != "" && r.WhitePlayer != "" {
			return model.ErrRoomFull
		}

		opponentID := r.WhitePlayer
		if color == model.ColorWhite {
			opponentID = r.BlackPlayer
		}
		opponentName := ""
		if opponent, err := c.registry.Lookup(ctx, opponentID); err == nil {
			opponentName = opponent.DisplayName
		}

		if _, err := c.registry.Register(ctx, id, name, r.Code, color); err != nil {
			return err
		}
		registered = true

		if color == model.ColorWhite {
			r.WhitePlayer = id
		} else {
			r.BlackPlayer = id
		}
		r.Members = append(r.Members, id)
		r.State = model.RoomStatePlaying

		c.emit(ctx, id, model.RoomJoined{
			RoomCode:    r.Code,
			PlayerColor: color,
			Opponent:    opponentName,
			Status:      model.RoomStatePlaying,
		})
		if opponentID != "" {
			c.emit(ctx, opponentID, model.OpponentJoined{
				Opponent: name,
				Status:   model.RoomStatePlaying,
			})
		}
		return nil
	})
	if err != nil {
		if registered {
			c.dropPlayer(ctx, id)
		}
		return nil, err
	}

	c.logger.Info("player joined room",
		slog.String("room", string(code)),
		slog.String("conn_id", string(id)),
		slog.String("player", name))
	return joined, nil
}

// Disconnect tears down the caller's session. The player leaves the member
// list, white leaving finishes the game, remaining members are told, an
// emptied room is deleted, and the player is always removed from the registry.
func (c *Coordinator) Disconnect(ctx context.Context, id model.PlayerID) error {
	logger := c.logger.With(slog.String("conn_id", string(id)))
	logger.Info("client disconnected")

	player, err := c.registry.Lookup(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return nil
		}
		return fmt.Errorf("lookup disconnecting player: %w", err)
	}

	removed := false
	var errs []error

	if player.InRoom() {
		_, err := c.rooms.Update(ctx, player.RoomCode, func(r *model.Room) error {
			r.RemoveMember(id)

			if player.Color == model.ColorWhite {
				if r.WhitePlayer == id {
					r.WhitePlayer = ""
				}
				r.State = model.RoomStateFinished
			} else if r.BlackPlayer == id {
				r.BlackPlayer = ""
			}

			notice := model.PlayerDisconnected{
				Player:    player.DisplayName,
				Color:     player.Color,
				GameState: r.State,
			}
			for _, member := range r.Members {
				c.emit(ctx, member, notice)
			}

			if err := c.registry.Remove(ctx, id); err != nil {
				return err
			}
			removed = true
			return nil
		})
		switch {
		case errors.Is(err, model.ErrRoomNotFound):
			logger.Warn("disconnecting player's room is gone", slog.String("room", string(player.RoomCode)))
		case err != nil:
			errs = append(errs, fmt.Errorf("leave room %s: %w", player.RoomCode, err))
		default:
			logger.Info("player left room",
				slog.String("room", string(player.RoomCode)),
				slog.String("color", string(player.Color)))
		}
	}

	if !removed {
		if err := c.registry.Remove(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SweepIdle removes rooms that have not changed for maxIdle. Members are told
// the room expired and lose their session. A non-positive maxIdle disables
// the sweep. Returns the number of rooms removed.
func (c *Coordinator) SweepIdle(ctx context.Context, maxIdle time.Duration) (int, error) {
	if maxIdle <= 0 {
		return 0, nil
	}

	rooms, err := c.rooms.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list rooms: %w", err)
	}

	removed := 0
	var errs []error
	for _, listed := range rooms {
		if !c.isIdle(listed, maxIdle) {
			continue
		}

		_, err := c.rooms.Update(ctx, listed.Code, func(r *model.Room) error {
			if !c.isIdle(r, maxIdle) {
				return errNotIdle
			}
			for _, member := range r.Members {
				c.emit(ctx, member, model.ErrorEvent{Message: ExpiredMessage})
				if err := c.registry.Remove(ctx, member); err != nil {
					return err
				}
			}
			r.Members = nil
			r.WhitePlayer = ""
			r.BlackPlayer = ""
			return nil
		})
		switch {
		case err == nil:
			removed++
			c.logger.Info("idle room expired", slog.String("room", string(listed.Code)))
		case errors.Is(err, errNotIdle), errors.Is(err, model.ErrRoomNotFound):
		default:
			errs = append(errs, fmt.Errorf("expire room %s: %w", listed.Code, err))
		}
	}
	return removed, errors.Join(errs...)
}

func (c *Coordinator) isIdle(r *model.Room, maxIdle time.Duration) bool {
	return c.clock.Now().Sub(r.UpdatedAt) >= maxIdle
}

// ensureNoSession rejects callers that are already seated somewhere
func (c *Coordinator) ensureNoSession(ctx context.Context, id model.PlayerID) error {
	if id == "" {
		return model.ErrInvalidConnection
	}
	_, err := c.registry.Lookup(ctx, id)
	switch {
	case err == nil:
		return model.ErrAlreadyInRoom
	case errors.Is(err, model.ErrPlayerNotFound):
		return nil
	default:
		return err
	}
}

func (c *Coordinator) displayName(ctx context.Context, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return c.registry.DefaultName(ctx)
	}
	return name
}

func (c *Coordinator) dropPlayer(ctx context.Context, id model.PlayerID) {
	if err := c.registry.Remove(ctx, id); err != nil {
		c.logger.Error("failed to roll back player registration",
			slog.String("conn_id", string(id)),
			slog.String("error", err.Error()))
	}
}

// emit delivers to one connection; delivery failures are logged, not returned,
// since the state change they report has already happened
func (c *Coordinator) emit(ctx context.Context, to model.PlayerID, ev model.OutboundEvent) {
	if err := c.emitter.Emit(ctx, to, ev); err != nil {
		c.logger.Warn("event delivery failed",
			slog.String("conn_id", string(to)),
			slog.String("event", string(ev.EventName())),
			slog.String("error", err.Error()))
	}
}
