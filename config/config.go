// Package config loads and validates process configuration from the
// environment. Everything here is read once at startup.
package config

import (
	"os"
	"strconv"
)

// LookupBackend selects where the static name lookup tables are loaded from.
type LookupBackend string

const (
	LookupFile  LookupBackend = "file"
	LookupRedis LookupBackend = "redis"
	LookupMongo LookupBackend = "mongo"
)

// Config is the full process configuration.
type Config struct {
	OpenAIAPIKey   string
	ChatModel      string
	EmbeddingModel string
	EmbeddingDim   int

	RapidAPIKey string

	RulesSnapshot string
	LinksSnapshot string
	PolicyFile    string

	LookupBackend LookupBackend
	StationsFile  string
	TrainsFile    string
	RedisAddr     string
	MongoURI      string

	DisableTelemetry bool
}

// FromEnv builds a Config from environment variables with defaults matching
// the offline data layout.
func FromEnv() *Config {
	return &Config{
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		ChatModel:        envOr("RAILMITRA_CHAT_MODEL", "gpt-4o-mini"),
		EmbeddingModel:   envOr("RAILMITRA_EMBEDDING_MODEL", "text-embedding-3-small"),
		EmbeddingDim:     envInt("RAILMITRA_EMBEDDING_DIM", 1536),
		RapidAPIKey:      os.Getenv("RAPIDAPI_KEY"),
		RulesSnapshot:    envOr("RAILMITRA_RULES_SNAPSHOT", "data/vector_store/rules_snapshot.json"),
		LinksSnapshot:    envOr("RAILMITRA_LINKS_SNAPSHOT", "data/vector_store/live_snapshot.json"),
		PolicyFile:       os.Getenv("RAILMITRA_POLICY_FILE"),
		LookupBackend:    LookupBackend(envOr("RAILMITRA_LOOKUP_BACKEND", string(LookupFile))),
		StationsFile:     envOr("RAILMITRA_STATIONS_LOOKUP", "data/static_lookup/stations_lookup.json"),
		TrainsFile:       envOr("RAILMITRA_TRAINS_LOOKUP", "data/static_lookup/trains_lookup.json"),
		RedisAddr:        envOr("RAILMITRA_REDIS_ADDR", "localhost:6379"),
		MongoURI:         envOr("RAILMITRA_MONGO_URI", "mongodb://localhost:27017"),
		DisableTelemetry: os.Getenv("RAILMITRA_DISABLE_TELEMETRY") != "",
	}
}

// Validate checks the configuration for startup.
func (c *Config) Validate() error {
	v := NewValidator().
		RequireNonEmpty("OPENAI_API_KEY", c.OpenAIAPIKey).
		RequireNonEmpty("RAPIDAPI_KEY", c.RapidAPIKey).
		RequirePositive("RAILMITRA_EMBEDDING_DIM", c.EmbeddingDim).
		ValidateOneOf("RAILMITRA_LOOKUP_BACKEND", string(c.LookupBackend),
			string(LookupFile), string(LookupRedis), string(LookupMongo))
	return v.Err()
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
