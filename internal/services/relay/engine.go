package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/OwaisSafa/ChessVerse/internal/dependencies/emitter"
	"github.com/OwaisSafa/ChessVerse/internal/model"
	"github.com/OwaisSafa/ChessVerse/internal/services/identity"
	"github.com/OwaisSafa/ChessVerse/internal/services/room"
)

// DefaultResult is reported when a game_over omits its result
const DefaultResult = "unknown"

// Engine forwards game actions between the players of a room.
// It never inspects moves beyond filling in the default promotion.
type Engine struct {
	registry *identity.Registry
	rooms    *room.Store
	emitter  emitter.Emitter
	logger   *slog.Logger
}

// NewEngine creates a new Engine
func NewEngine(registry *identity.Registry, rooms *room.Store, emitter emitter.Emitter, logger *slog.Logger) *Engine {
	return &Engine{
		registry: registry,
		rooms:    rooms,
		emitter:  emitter,
		logger:   logger.With(slog.String("component", "relay")),
	}
}

// MakeMove records the move and broadcasts it to every member, sender included
func (e *Engine) MakeMove(ctx context.Context, id model.PlayerID, move model.MoveInput) error {
	player, err := e.seatedPlayer(ctx, id)
	if err != nil {
		return err
	}

	if move.From == "" || move.To == "" {
		return fmt.Errorf("%w: move requires from and to", model.ErrRelayFailure)
	}
	promotion := move.Promotion
	if promotion == "" {
		promotion = model.DefaultPromotion
	}

	event := model.ChessMove{
		From:      move.From,
		To:        move.To,
		Promotion: promotion,
		Player:    player.DisplayName,
		Color:     player.Color,
	}

	var deliveryErr error
	_, err = e.rooms.Update(ctx, player.RoomCode, func(r *model.Room) error {
		recorded := model.Move{
			From:      move.From,
			To:        move.To,
			Promotion: promotion,
			Color:     player.Color,
			PlayerID:  id,
		}
		r.Moves = append(r.Moves, recorded)
		r.LastMove = &recorded

		deliveryErr = e.broadcast(ctx, r.Members, event)
		return nil
	})
	if err != nil {
		if errors.Is(err, model.ErrRoomNotFound) {
			return model.ErrRoomGoneMissing
		}
		return fmt.Errorf("%w: %v", model.ErrRelayFailure, err)
	}

	e.logger.Info("move relayed",
		slog.String("room", string(player.RoomCode)),
		slog.String("player", player.DisplayName),
		slog.String("color", string(player.Color)),
		slog.String("from", move.From),
		slog.String("to", move.To))

	if deliveryErr != nil {
		return fmt.Errorf("%w: %v", model.ErrRelayFailure, deliveryErr)
	}
	return nil
}

// GameOver finishes the room and broadcasts the reported result.
// A caller without a session is ignored.
func (e *Engine) GameOver(ctx context.Context, id model.PlayerID, report model.GameOver) error {
	player, err := e.seatedPlayer(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotInGame) {
			e.logger.Debug("game over from connection without session", slog.String("conn_id", string(id)))
			return nil
		}
		return err
	}

	event := model.GameEnded{
		Result: DefaultResult,
		Winner: report.Winner,
	}
	if report.Result != nil {
		event.Result = *report.Result
	}
	if report.Reason != nil {
		event.Reason = *report.Reason
	}

	_, err = e.rooms.Update(ctx, player.RoomCode, func(r *model.Room) error {
		r.State = model.RoomStateFinished
		return nil
	})
	if err != nil {
		if errors.Is(err, model.ErrRoomNotFound) {
			e.logger.Debug("game over for missing room", slog.String("room", string(player.RoomCode)))
			return nil
		}
		return err
	}

	e.logger.Info("game ended",
		slog.String("room", string(player.RoomCode)),
		slog.String("result", event.Result),
		slog.String("reason", event.Reason))

	err = e.rooms.ForEachMember(ctx, player.RoomCode, func(member model.PlayerID) error {
		return e.emitter.Emit(ctx, member, event)
	})
	if err != nil && !errors.Is(err, model.ErrRoomNotFound) {
		return fmt.Errorf("%w: %v", model.ErrRelayFailure, err)
	}
	return nil
}

// OfferDraw sends a draw offer to the opponent only
func (e *Engine) OfferDraw(ctx context.Context, id model.PlayerID) error {
	player, err := e.seatedPlayer(ctx, id)
	if err != nil {
		return err
	}

	r, err := e.rooms.Get(ctx, player.RoomCode)
	if err != nil {
		if errors.Is(err, model.ErrRoomNotFound) {
			return model.ErrRoomGoneMissing
		}
		return err
	}

	opponent, ok := r.Opponent(id)
	if !ok {
		return e.opponentMissing(player, "offer_draw")
	}

	if err := e.emitter.Emit(ctx, opponent, model.DrawOffered{}); err != nil {
		return fmt.Errorf("%w: %v", model.ErrRelayFailure, err)
	}

	e.logger.Info("draw offered",
		slog.String("room", string(player.RoomCode)),
		slog.String("from", string(id)),
		slog.String("to", string(opponent)))
	return nil
}

// DrawResponse forwards the answer to the opponent and finishes the room if accepted
func (e *Engine) DrawResponse(ctx context.Context, id model.PlayerID, response model.DrawResponse) error {
	player, err := e.seatedPlayer(ctx, id)
	if err != nil {
		return err
	}

	var opponent model.PlayerID
	var deliveryErr error
	_, err = e.rooms.Update(ctx, player.RoomCode, func(r *model.Room) error {
		var ok bool
		opponent, ok = r.Opponent(id)
		if !ok {
			return model.ErrOpponentMissing
		}

		deliveryErr = e.emitter.Emit(ctx, opponent, model.DrawResponseRelayed{Payload: response.Payload})
		if response.Accepted {
			r.State = model.RoomStateFinished
		}
		return nil
	})
	if err != nil {
		return e.twoPartyError(player, "draw_response", err)
	}

	e.logger.Info("draw response relayed",
		slog.String("room", string(player.RoomCode)),
		slog.String("to", string(opponent)),
		slog.Bool("accepted", response.Accepted))

	if deliveryErr != nil {
		return fmt.Errorf("%w: %v", model.ErrRelayFailure, deliveryErr)
	}
	return nil
}

// Resign tells the opponent the caller resigned and finishes the room
func (e *Engine) Resign(ctx context.Context, id model.PlayerID) error {
	player, err := e.seatedPlayer(ctx, id)
	if err != nil {
		return err
	}

	var opponent model.PlayerID
	var deliveryErr error
	_, err = e.rooms.Update(ctx, player.RoomCode, func(r *model.Room) error {
		var ok bool
		opponent, ok = r.Opponent(id)
		if !ok {
			return model.ErrOpponentMissing
		}

		deliveryErr = e.emitter.Emit(ctx, opponent, model.OpponentResigned{})
		r.State = model.RoomStateFinished
		return nil
	})
	if err != nil {
		return e.twoPartyError(player, "resign_game", err)
	}

	e.logger.Info("player resigned",
		slog.String("room", string(player.RoomCode)),
		slog.String("player", player.DisplayName),
		slog.String("color", string(player.Color)))

	if deliveryErr != nil {
		return fmt.Errorf("%w: %v", model.ErrRelayFailure, deliveryErr)
	}
	return nil
}

// seatedPlayer resolves the caller's Player, requiring a room code
func (e *Engine) seatedPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	player, err := e.registry.Lookup(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) || errors.Is(err, model.ErrInvalidConnection) {
			return nil, model.ErrNotInGame
		}
		return nil, err
	}
	if !player.InRoom() {
		return nil, model.ErrNotInGame
	}
	return player, nil
}

// broadcast delivers to every member and joins the failures
func (e *Engine) broadcast(ctx context.Context, members []model.PlayerID, ev model.OutboundEvent) error {
	var errs []error
	for _, member := range members {
		if err := e.emitter.Emit(ctx, member, ev); err != nil {
			errs = append(errs, fmt.Errorf("deliver %s to %s: %w", ev.EventName(), member, err))
		}
	}
	return errors.Join(errs...)
}

func (e *Engine) twoPartyError(player *model.Player, action string, err error) error {
	switch {
	case errors.Is(err, model.ErrOpponentMissing):
		return e.opponentMissing(player, action)
	case errors.Is(err, model.ErrRoomNotFound):
		return model.ErrRoomGoneMissing
	default:
		return err
	}
}

func (e *Engine) opponentMissing(player *model.Player, action string) error {
	e.logger.Warn("opponent not found",
		slog.String("action", action),
		slog.String("room", string(player.RoomCode)),
		slog.String("conn_id", string(player.ID)))
	return model.ErrOpponentMissing
}
