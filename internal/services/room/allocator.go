package room

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/OwaisSafa/ChessVerse/internal/dependencies/clock"
	"github.com/OwaisSafa/ChessVerse/internal/dependencies/random"
	"github.com/OwaisSafa/ChessVerse/internal/model"
)

const (
	// CodeLength is the number of digits in a room code
	CodeLength = 4
	// CodeSpace is the number of distinct room codes
	CodeSpace = 10000
	// randomAttempts is how many random draws to try before scanning for a free code
	randomAttempts = 64
)

// Allocator hands out unique room codes and creates rooms
type Allocator struct {
	mu     sync.Mutex
	store  *Store
	clock  clock.Clock
	random random.Random
	logger *slog.Logger
}

// NewAllocator creates a new Allocator
func NewAllocator(store *Store, clock clock.Clock, random random.Random, logger *slog.Logger) *Allocator {
	return &Allocator{
		store:  store,
		clock:  clock,
		random: random,
		logger: logger.With(slog.String("component", "allocator")),
	}
}

// NewRoomCode returns a code no stored room is using.
// Random draws are retried on collision; once those run out the whole space
// is scanned, so ErrRoomCodesExhausted means every code is taken.
func (a *Allocator) NewRoomCode(ctx context.Context) (model.RoomCode, error) {
	for i := 0; i < randomAttempts; i++ {
		code := model.RoomCode(a.random.String(CodeLength, random.Digits))
		exists, err := a.store.Exists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}

	a.logger.Warn("room code collisions exhausted random attempts, scanning",
		slog.Int("attempts", randomAttempts))

	start := a.random.Intn(CodeSpace)
	for i := 0; i < CodeSpace; i++ {
		code := formatCode((start + i) % CodeSpace)
		exists, err := a.store.Exists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}

	return "", model.ErrRoomCodesExhausted
}

// CreateRoom stores an empty room in the waiting state under code
func (a *Allocator) CreateRoom(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	return a.createRoom(ctx, code, nil)
}

// Allocate is NewRoomCode followed by CreateRoom, atomic with respect to
// other allocations.
// seat runs before the room is stored so it is never visible without members;
// if seat fails nothing is stored.
func (a *Allocator) Allocate(ctx context.Context, seat func(room *model.Room) error) (*model.Room, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	code, err := a.NewRoomCode(ctx)
	if err != nil {
		return nil, err
	}
	return a.createRoom(ctx, code, seat)
}

func (a *Allocator) createRoom(ctx context.Context, code model.RoomCode, seat func(room *model.Room) error) (*model.Room, error) {
	room := a.newRoom(code)
	if seat != nil {
		if err := seat(room); err != nil {
			return nil, err
		}
	}

	if err := a.store.Put(ctx, room); err != nil {
		return nil, fmt.Errorf("create room %s: %w", code, err)
	}

	a.logger.Info("room created", slog.String("room", string(code)))
	return room, nil
}

func (a *Allocator) newRoom(code model.RoomCode) *model.Room {
	now := a.clock.Now()
	return &model.Room{
		Code:      code,
		State:     model.RoomStateWaiting,
		Members:   []model.PlayerID{},
		Moves:     []model.Move{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// formatCode renders n as a zero-padded room code
func formatCode(n int) model.RoomCode {
	s := strconv.Itoa(n)
	for len(s) < CodeLength {
		s = "0" + s
	}
	return model.RoomCode(s)
}
