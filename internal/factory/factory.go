package factory

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/OwaisSafa/ChessVerse/internal/api"
	"github.com/OwaisSafa/ChessVerse/internal/dependencies/clock"
	"github.com/OwaisSafa/ChessVerse/internal/dependencies/emitter"
	"github.com/OwaisSafa/ChessVerse/internal/dependencies/random"
	"github.com/OwaisSafa/ChessVerse/internal/dispatch"
	"github.com/OwaisSafa/ChessVerse/internal/services/identity"
	"github.com/OwaisSafa/ChessVerse/internal/services/relay"
	"github.com/OwaisSafa/ChessVerse/internal/services/room"
	"github.com/OwaisSafa/ChessVerse/internal/services/session"
	"github.com/OwaisSafa/ChessVerse/internal/storage"
	"github.com/OwaisSafa/ChessVerse/internal/storage/memory"
	redisstorage "github.com/OwaisSafa/ChessVerse/internal/storage/redis"
	"github.com/OwaisSafa/ChessVerse/internal/web/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// DefaultSweepInterval is how often idle rooms are checked when RoomIdleTimeout is set
const DefaultSweepInterval = time.Minute

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Registry   *identity.Registry
	Rooms      *room.Store
	Allocator  *room.Allocator
	Sessions   *session.Coordinator
	Relay      *relay.Engine
	Dispatcher *dispatch.Dispatcher
	Janitor    *session.Janitor

	// Transport
	Hub       *ws.Hub
	WSHandler *ws.Handler

	logger *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// RoomIdleTimeout expires rooms untouched for this long. Zero disables expiry.
	RoomIdleTimeout time.Duration
	// SweepInterval is how often idle rooms are checked (optional)
	// If zero, defaults to DefaultSweepInterval
	SweepInterval time.Duration
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	return newWithDependencies(store, clk, rnd, nil, cfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing).
// A nil em delivers through the websocket hub.
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, em emitter.Emitter, cfg Config, logger *slog.Logger) *App {
	hub := ws.NewHub(logger)
	if em == nil {
		em = hub
	}

	registry := identity.New(store, clk, logger)
	rooms := room.NewStore(store, clk, logger)
	allocator := room.NewAllocator(rooms, clk, rnd, logger)
	sessions := session.NewCoordinator(registry, rooms, allocator, em, clk, logger)
	engine := relay.NewEngine(registry, rooms, em, logger)
	dispatcher := dispatch.New(sessions, engine, em, logger)

	interval := cfg.SweepInterval
	if interval == 0 {
		interval = DefaultSweepInterval
	}
	janitor := session.NewJanitor(sessions, interval, cfg.RoomIdleTimeout, logger)

	return &App{
		Storage:    store,
		Clock:      clk,
		Random:     rnd,
		Registry:   registry,
		Rooms:      rooms,
		Allocator:  allocator,
		Sessions:   sessions,
		Relay:      engine,
		Dispatcher: dispatcher,
		Janitor:    janitor,
		Hub:        hub,
		WSHandler:  ws.NewHandler(hub, dispatcher, logger),
		logger:     logger,
	}
}

// Router builds the HTTP handler serving the websocket endpoint and the API.
// staticDir is mounted at / when non-empty.
func (a *App) Router(staticDir string) http.Handler {
	return api.NewRouter(api.RouterConfig{
		Logger:    a.logger,
		Rooms:     a.Rooms,
		Registry:  a.Registry,
		WSHandler: a.WSHandler,
		StaticDir: staticDir,
	})
}

// Close releases the storage backend if it holds resources
func (a *App) Close() error {
	a.Hub.Close()
	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
