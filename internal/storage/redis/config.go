package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// TTL settings for different entity types.
	// Player TTLs are refreshed whenever their room is saved, so they only
	// lapse for rooms that also go quiet or when a server dies without
	// running its disconnect handlers.
	PlayerTTL time.Duration
	RoomTTL   time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		PlayerTTL:    24 * time.Hour,
		RoomTTL:      24 * time.Hour,
	}
}
