package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		OpenAIAPIKey:  "sk-test",
		RapidAPIKey:   "rapid-test",
		EmbeddingDim:  1536,
		LookupBackend: LookupFile,
	}
}

func TestValidateOK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestValidateMissingKeys(t *testing.T) {
	cfg := validConfig()
	cfg.OpenAIAPIKey = ""
	cfg.RapidAPIKey = "  "

	err := cfg.Validate()
	if err == nil {
		t.Fatalf("missing keys must fail validation")
	}
	msg := err.Error()
	if !strings.Contains(msg, "OPENAI_API_KEY") || !strings.Contains(msg, "RAPIDAPI_KEY") {
		t.Fatalf("error must name both fields: %v", err)
	}
}

func TestValidateBadBackend(t *testing.T) {
	cfg := validConfig()
	cfg.LookupBackend = "etcd"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("unknown backend must fail validation")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("RAPIDAPI_KEY", "rapid-test")
	t.Setenv("RAILMITRA_CHAT_MODEL", "")
	t.Setenv("RAILMITRA_EMBEDDING_DIM", "")
	t.Setenv("RAILMITRA_LOOKUP_BACKEND", "")

	cfg := FromEnv()
	if cfg.ChatModel != "gpt-4o-mini" {
		t.Fatalf("unexpected default chat model: %q", cfg.ChatModel)
	}
	if cfg.EmbeddingDim != 1536 {
		t.Fatalf("unexpected default embedding dim: %d", cfg.EmbeddingDim)
	}
	if cfg.LookupBackend != LookupFile {
		t.Fatalf("unexpected default backend: %q", cfg.LookupBackend)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("env config rejected: %v", err)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("RAILMITRA_CHAT_MODEL", "gpt-4o")
	t.Setenv("RAILMITRA_EMBEDDING_DIM", "3072")
	t.Setenv("RAILMITRA_LOOKUP_BACKEND", "redis")

	cfg := FromEnv()
	if cfg.ChatModel != "gpt-4o" || cfg.EmbeddingDim != 3072 || cfg.LookupBackend != LookupRedis {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestValidatorFloatRange(t *testing.T) {
	if err := NewValidator().ValidateFloatRange("x", 0.5, 0, 1).Err(); err != nil {
		t.Fatalf("in-range value rejected: %v", err)
	}
	if err := NewValidator().ValidateFloatRange("x", 1.5, 0, 1).Err(); err == nil {
		t.Fatalf("out-of-range value accepted")
	}
}
