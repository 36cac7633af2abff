package room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/OwaisSafa/ChessVerse/internal/dependencies/clock"
	"github.com/OwaisSafa/ChessVerse/internal/model"
	"github.com/OwaisSafa/ChessVerse/internal/storage"
)

// Store is the room table. Every mutation of a room runs under that room's
// lock; rooms never lock each other.
type Store struct {
	storage storage.Storage
	clock   clock.Clock
	locks   *roomLocks
	logger  *slog.Logger
}

// NewStore creates a new Store
func NewStore(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Store {
	return &Store{
		storage: storage,
		clock:   clock,
		locks:   newRoomLocks(),
		logger:  logger.With(slog.String("component", "rooms")),
	}
}

// Get returns a snapshot of the room, or ErrRoomNotFound
func (s *Store) Get(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	return s.storage.GetRoom(ctx, code)
}

// Exists reports whether a room is stored under code
func (s *Store) Exists(ctx context.Context, code model.RoomCode) (bool, error) {
	return s.storage.RoomExists(ctx, code)
}

// Put stores the room, replacing any room with the same code
func (s *Store) Put(ctx context.Context, room *model.Room) error {
	release := s.locks.lock(room.Code)
	defer release()
	return s.storage.SaveRoom(ctx, room)
}

// Delete removes the room
func (s *Store) Delete(ctx context.Context, code model.RoomCode) error {
	release := s.locks.lock(code)
	defer release()
	return s.storage.DeleteRoom(ctx, code)
}

// List returns snapshots of every stored room
func (s *Store) List(ctx context.Context) ([]*model.Room, error) {
	return s.storage.ListRooms(ctx)
}

// Update runs fn against the room while holding its lock.
// If fn fails nothing is written. If fn leaves the room without members the
// room is deleted; otherwise it is saved with a fresh UpdatedAt.
// fn must not call back into the Store for the same room.
func (s *Store) Update(ctx context.Context, code model.RoomCode, fn func(room *model.Room) error) (*model.Room, error) {
	release := s.locks.lock(code)
	defer release()

	room, err := s.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	if err := fn(room); err != nil {
		return nil, err
	}

	if room.IsEmpty() {
		if err := s.storage.DeleteRoom(ctx, code); err != nil {
			return nil, fmt.Errorf("delete room %s: %w", code, err)
		}
		s.logger.Info("room deleted", slog.String("room", string(code)))
		return room, nil
	}

	room.UpdatedAt = s.clock.Now()
	if err := s.storage.SaveRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("save room %s: %w", code, err)
	}
	return room, nil
}

// ForEachMember calls fn for every member of the room in join order.
// The member list is read under the room lock, and fn runs after it is released.
// Every member is visited even if fn fails; the failures are joined.
func (s *Store) ForEachMember(ctx context.Context, code model.RoomCode, fn func(id model.PlayerID) error) error {
	release := s.locks.lock(code)
	room, err := s.storage.GetRoom(ctx, code)
	release()
	if err != nil {
		return err
	}

	var errs []error
	for _, id := range room.Members {
		if err := fn(id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
