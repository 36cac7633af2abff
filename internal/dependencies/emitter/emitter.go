package emitter

import (
	"context"
	"errors"

	"github.com/OwaisSafa/ChessVerse/internal/model"
)

// ErrConnectionGone is returned when the target connection is no longer attached
var ErrConnectionGone = errors.New("connection is not attached")

// Emitter delivers outbound events to a single connection.
// Implementations must not block on a slow peer.
type Emitter interface {
	Emit(ctx context.Context, to model.PlayerID, ev model.OutboundEvent) error
}

// Func adapts a function to the Emitter interface
type Func func(ctx context.Context, to model.PlayerID, ev model.OutboundEvent) error

// Emit calls f
func (f Func) Emit(ctx context.Context, to model.PlayerID, ev model.OutboundEvent) error {
	return f(ctx, to, ev)
}
