package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/railmitra/railmitra/lookup"
)

// Config holds Redis connection settings for the lookup loader.
type Config struct {
	Addr        string // Redis server address (e.g., "localhost:6379")
	Password    string // Redis password (if any)
	DB          int    // Redis database number
	StationsKey string // Hash key holding station name -> code
	TrainsKey   string // Hash key holding train name -> number
}

// DefaultConfig returns default Redis lookup configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:        "localhost:6379",
		StationsKey: "railmitra:lookup:stations",
		TrainsKey:   "railmitra:lookup:trains",
	}
}

// Load reads the offline-built lookup hashes from Redis once and returns
// immutable Tables. The connection is closed before returning; nothing in
// the core keeps talking to Redis after startup.
func Load(ctx context.Context, config *Config) (*lookup.Tables, error) {
	if config == nil {
		config = DefaultConfig()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})
	defer client.Close()

	stations, err := client.HGetAll(ctx, config.StationsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("load stations from redis: %w", err)
	}
	trains, err := client.HGetAll(ctx, config.TrainsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("load trains from redis: %w", err)
	}

	return lookup.New(stations, trains), nil
}
