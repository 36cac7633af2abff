package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/OwaisSafa/ChessVerse/internal/model"
	"github.com/OwaisSafa/ChessVerse/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, playerKey(player.ID), data, s.cfg.PlayerTTL)
	pipe.SAdd(ctx, playersIndexKey(), string(player.ID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	data, err := s.client.Get(ctx, playerKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, playerKey(id))
	pipe.SRem(ctx, playersIndexKey(), string(id))
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) CountPlayers(ctx context.Context) (int, error) {
	ids, err := s.client.SMembers(ctx, playersIndexKey()).Result()
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	pipe := s.client.Pipeline()
	checks := make([]*redis.IntCmd, len(ids))
	for i, id := range ids {
		checks[i] = pipe.Exists(ctx, playerKey(model.PlayerID(id)))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}

	var expired []interface{}
	for i, check := range checks {
		if check.Val() == 0 {
			// Player TTL elapsed; drop the stale index entry
			expired = append(expired, ids[i])
		}
	}
	if len(expired) > 0 {
		if err := s.client.SRem(ctx, playersIndexKey(), expired...).Err(); err != nil {
			return 0, err
		}
	}
	return len(ids) - len(expired), nil
}

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}

	// Members' player keys live as long as the room they sit in
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, roomKey(room.Code), data, s.cfg.RoomTTL)
	pipe.SAdd(ctx, roomsIndexKey(), string(room.Code))
	for _, member := range room.Members {
		pipe.Expire(ctx, playerKey(member), s.cfg.PlayerTTL)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	data, err := s.client.Get(ctx, roomKey(code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrRoomNotFound
		}
		return nil, err
	}

	var room model.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *Storage) DeleteRoom(ctx context.Context, code model.RoomCode) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, roomKey(code))
	pipe.SRem(ctx, roomsIndexKey(), string(code))
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) RoomExists(ctx context.Context, code model.RoomCode) (bool, error) {
	exists, err := s.client.Exists(ctx, roomKey(code)).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

func (s *Storage) ListRooms(ctx context.Context) ([]*model.Room, error) {
	codes, err := s.client.SMembers(ctx, roomsIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	if len(codes) == 0 {
		return []*model.Room{}, nil
	}

	keys := make([]string, len(codes))
	for i, code := range codes {
		keys[i] = roomKey(model.RoomCode(code))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	rooms := make([]*model.Room, 0, len(values))
	var expired []interface{}
	for i, val := range values {
		if val == nil {
			// Room TTL elapsed; drop the stale index entry
			expired = append(expired, codes[i])
			continue
		}
		var room model.Room
		if err := json.Unmarshal([]byte(val.(string)), &room); err != nil {
			continue // Skip invalid data
		}
		rooms = append(rooms, &room)
	}

	if len(expired) > 0 {
		if err := s.client.SRem(ctx, roomsIndexKey(), expired...).Err(); err != nil {
			return nil, err
		}
	}

	sort.Slice(rooms, func(i, j int) bool { return rooms[i].Code < rooms[j].Code })
	return rooms, nil
}
