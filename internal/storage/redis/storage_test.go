package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/OwaisSafa/ChessVerse/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.PlayerTTL = time.Hour
	cfg.RoomTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

// Player tests

func (s *StorageSuite) TestSaveAndGetPlayer() {
	player := &model.Player{
		ID:          "conn-1",
		DisplayName: "Alice",
		RoomCode:    "1234",
		Color:       model.ColorWhite,
	}

	err := s.storage.SavePlayer(s.ctx, player)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetPlayer(s.ctx, "conn-1")
	s.Require().NoError(err)
	s.Equal(player.DisplayName, retrieved.DisplayName)
	s.Equal(player.RoomCode, retrieved.RoomCode)
	s.Equal(model.ColorWhite, retrieved.Color)
}

func (s *StorageSuite) TestGetPlayerNotFound() {
	_, err := s.storage.GetPlayer(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestDeletePlayerUpdatesCount() {
	_ = s.storage.SavePlayer(s.ctx, &model.Player{ID: "conn-1"})
	_ = s.storage.SavePlayer(s.ctx, &model.Player{ID: "conn-2"})

	count, err := s.storage.CountPlayers(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, count)

	err = s.storage.DeletePlayer(s.ctx, "conn-1")
	s.Require().NoError(err)

	count, _ = s.storage.CountPlayers(s.ctx)
	s.Equal(1, count)

	_, err = s.storage.GetPlayer(s.ctx, "conn-1")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestPlayerHasTTL() {
	_ = s.storage.SavePlayer(s.ctx, &model.Player{ID: "conn-1"})

	ttl := s.mini.TTL(playerKey("conn-1"))
	s.Equal(time.Hour, ttl)
}

func (s *StorageSuite) TestCountPlayersDropsExpiredEntries() {
	_ = s.storage.SavePlayer(s.ctx, &model.Player{ID: "conn-1"})
	_ = s.storage.SavePlayer(s.ctx, &model.Player{ID: "conn-2"})

	s.mini.FastForward(2 * time.Hour)
	_ = s.storage.SavePlayer(s.ctx, &model.Player{ID: "conn-3"})

	count, err := s.storage.CountPlayers(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, count)
	s.Equal([]string{"conn-3"}, s.mustMembers(playersIndexKey()))
}

func (s *StorageSuite) TestSaveRoomRefreshesMemberTTL() {
	_ = s.storage.SavePlayer(s.ctx, &model.Player{ID: "conn-1", RoomCode: "1234"})
	_ = s.storage.SavePlayer(s.ctx, &model.Player{ID: "conn-2", RoomCode: "1234"})
	room := &model.Room{Code: "1234", Members: []model.PlayerID{"conn-1", "conn-2"}}

	// Keep the room busy for longer than a single player TTL
	for i := 0; i < 3; i++ {
		s.mini.FastForward(40 * time.Minute)
		s.Require().NoError(s.storage.SaveRoom(s.ctx, room))
	}

	for _, id := range room.Members {
		_, err := s.storage.GetPlayer(s.ctx, id)
		s.NoError(err, id)
		s.Equal(time.Hour, s.mini.TTL(playerKey(id)))
	}

	count, err := s.storage.CountPlayers(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, count)
}

func (s *StorageSuite) TestSaveRoomIgnoresMembersWithoutPlayer() {
	room := &model.Room{Code: "1234", Members: []model.PlayerID{"ghost"}}
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	_, err := s.storage.GetPlayer(s.ctx, "ghost")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Room tests

func (s *StorageSuite) TestSaveAndGetRoom() {
	room := &model.Room{
		Code:        "1234",
		WhitePlayer: "conn-1",
		BlackPlayer: "conn-2",
		Members:     []model.PlayerID{"conn-1", "conn-2"},
		State:       model.RoomStatePlaying,
		Moves:       []model.Move{{From: "e2", To: "e4", Promotion: "q"}},
	}

	err := s.storage.SaveRoom(s.ctx, room)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetRoom(s.ctx, "1234")
	s.Require().NoError(err)
	s.Equal(room.Members, retrieved.Members)
	s.Equal(room.BlackPlayer, retrieved.BlackPlayer)
	s.Equal(model.RoomStatePlaying, retrieved.State)
	s.Equal(room.Moves, retrieved.Moves)
}

func (s *StorageSuite) TestGetRoomNotFound() {
	_, err := s.storage.GetRoom(s.ctx, "0000")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestRoomExistsAndDelete() {
	_ = s.storage.SaveRoom(s.ctx, &model.Room{Code: "1234"})

	exists, err := s.storage.RoomExists(s.ctx, "1234")
	s.Require().NoError(err)
	s.True(exists)

	err = s.storage.DeleteRoom(s.ctx, "1234")
	s.Require().NoError(err)

	exists, _ = s.storage.RoomExists(s.ctx, "1234")
	s.False(exists)
	s.Empty(s.mustMembers(roomsIndexKey()))
}

func (s *StorageSuite) TestListRooms() {
	_ = s.storage.SaveRoom(s.ctx, &model.Room{Code: "5678"})
	_ = s.storage.SaveRoom(s.ctx, &model.Room{Code: "1234"})

	rooms, err := s.storage.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(rooms, 2)
	s.Equal(model.RoomCode("1234"), rooms[0].Code)
	s.Equal(model.RoomCode("5678"), rooms[1].Code)
}

func (s *StorageSuite) TestListRoomsDropsExpiredEntries() {
	_ = s.storage.SaveRoom(s.ctx, &model.Room{Code: "1234"})
	_ = s.storage.SaveRoom(s.ctx, &model.Room{Code: "5678"})

	s.mini.Del(roomKey("5678"))

	rooms, err := s.storage.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(rooms, 1)
	s.Equal(model.RoomCode("1234"), rooms[0].Code)
	s.Equal([]string{"1234"}, s.mustMembers(roomsIndexKey()))
}

func (s *StorageSuite) TestListRoomsEmpty() {
	rooms, err := s.storage.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Empty(rooms)
}

func (s *StorageSuite) mustMembers(key string) []string {
	members, err := s.mini.Members(key)
	if err != nil {
		return nil
	}
	return members
}
