package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/OwaisSafa/ChessVerse/internal/dependencies/emitter"
	"github.com/OwaisSafa/ChessVerse/internal/model"
	"github.com/OwaisSafa/ChessVerse/internal/services/relay"
	"github.com/OwaisSafa/ChessVerse/internal/services/session"
)

// Lifecycle events inferred from the transport rather than sent by clients
const (
	eventConnect    model.EventName = "connect"
	eventDisconnect model.EventName = "disconnect"
)

// Dispatcher routes inbound events to the session coordinator and relay
// engine. It is the only place handler errors turn into client-facing events.
type Dispatcher struct {
	sessions *session.Coordinator
	relay    *relay.Engine
	emitter  emitter.Emitter
	logger   *slog.Logger
}

// New creates a new Dispatcher
func New(sessions *session.Coordinator, relay *relay.Engine, emitter emitter.Emitter, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		sessions: sessions,
		relay:    relay,
		emitter:  emitter,
		logger:   logger.With(slog.String("component", "dispatch")),
	}
}

// Connect acknowledges a newly attached connection
func (d *Dispatcher) Connect(ctx context.Context, id model.PlayerID) {
	defer d.recoverPanic(id, eventConnect)

	if err := d.sessions.Connect(ctx, id); err != nil {
		d.logger.Warn("connect acknowledgement failed",
			slog.String("conn_id", string(id)),
			slog.String("error", err.Error()))
	}
}

// Handle decodes one wire frame and dispatches it
func (d *Dispatcher) Handle(ctx context.Context, id model.PlayerID, frame []byte) {
	ev, err := model.DecodeInbound(frame)
	if err != nil {
		d.logger.Warn("rejected inbound frame",
			slog.String("conn_id", string(id)),
			slog.String("error", err.Error()))
		d.reply(ctx, id, "", err)
		return
	}
	d.HandleEvent(ctx, id, ev)
}

// HandleEvent runs a typed inbound event for the connection
func (d *Dispatcher) HandleEvent(ctx context.Context, id model.PlayerID, ev model.InboundEvent) {
	defer d.recoverPanic(id, ev.EventName())

	d.logger.Debug("inbound event",
		slog.String("conn_id", string(id)),
		slog.String("event", string(ev.EventName())))

	if err := d.route(ctx, id, ev); err != nil {
		d.reply(ctx, id, ev.EventName(), err)
	}
}

// Disconnect tears down the connection's session. Errors are logged only,
// the connection is already gone.
func (d *Dispatcher) Disconnect(ctx context.Context, id model.PlayerID) {
	defer d.recoverPanic(id, eventDisconnect)

	if err := d.sessions.Disconnect(ctx, id); err != nil {
		d.logger.Error("disconnect failed",
			slog.String("conn_id", string(id)),
			slog.String("error", err.Error()))
	}
}

func (d *Dispatcher) route(ctx context.Context, id model.PlayerID, ev model.InboundEvent) error {
	switch ev := ev.(type) {
	case model.CreateRoom:
		_, err := d.sessions.CreateRoom(ctx, id, ev.PlayerName)
		return err
	case model.JoinRoom:
		_, err := d.sessions.JoinRoom(ctx, id, model.RoomCode(ev.RoomID), ev.PlayerName)
		return err
	case model.MakeMove:
		if ev.Move == nil {
			return fmt.Errorf("%w: make_move without move", model.ErrMalformedEvent)
		}
		return d.relay.MakeMove(ctx, id, *ev.Move)
	case model.GameOver:
		return d.relay.GameOver(ctx, id, ev)
	case model.OfferDraw:
		return d.relay.OfferDraw(ctx, id)
	case model.DrawResponse:
		return d.relay.DrawResponse(ctx, id, ev)
	case model.ResignGame:
		return d.relay.Resign(ctx, id)
	default:
		return fmt.Errorf("%w: unhandled event %s", model.ErrMalformedEvent, ev.EventName())
	}
}

// reply logs err and, unless nobody needs to hear about it, sends the caller an error event
func (d *Dispatcher) reply(ctx context.Context, id model.PlayerID, event model.EventName, err error) {
	message, notify := ErrorMessage(event, err)

	level := slog.LevelWarn
	if errors.Is(err, model.ErrRelayFailure) || !isKnown(err) {
		level = slog.LevelError
	}
	d.logger.Log(ctx, level, "event failed",
		slog.String("conn_id", string(id)),
		slog.String("event", string(event)),
		slog.String("error", err.Error()))

	if !notify {
		return
	}
	if err := d.emitter.Emit(ctx, id, model.ErrorEvent{Message: message}); err != nil {
		d.logger.Warn("error delivery failed",
			slog.String("conn_id", string(id)),
			slog.String("error", err.Error()))
	}
}

// recoverPanic turns a panicking handler into a logged RelayFailure
func (d *Dispatcher) recoverPanic(id model.PlayerID, event model.EventName) {
	if r := recover(); r != nil {
		d.logger.Error("panic recovered",
			slog.Any("error", r),
			slog.String("stack", string(debug.Stack())),
			slog.String("conn_id", string(id)),
			slog.String("event", string(event)))

		if event == eventConnect || event == eventDisconnect {
			return
		}
		message, _ := ErrorMessage(event, model.ErrRelayFailure)
		_ = d.emitter.Emit(context.Background(), id, model.ErrorEvent{Message: message})
	}
}
