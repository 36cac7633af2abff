package storage

import (
	"context"

	"github.com/OwaisSafa/ChessVerse/internal/model"
)

// Storage defines the interface for data persistence.
// Implementations hand out copies; callers persist changes with Save*.
type Storage interface {
	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	DeletePlayer(ctx context.Context, id model.PlayerID) error
	CountPlayers(ctx context.Context) (int, error)

	// Room operations
	SaveRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error)
	DeleteRoom(ctx context.Context, code model.RoomCode) error
	RoomExists(ctx context.Context, code model.RoomCode) (bool, error)
	ListRooms(ctx context.Context) ([]*model.Room, error)
}
