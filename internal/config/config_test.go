package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configVars = []string{
	"PORT", "ENVIRONMENT", "LOG_LEVEL", "LLM_PROVIDER",
	"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "VENICE_API_KEY", "GEMINI_API_KEY",
	"OLLAMA_URL", "STORAGE_BACKEND", "CONTENT_DIR", "LORE_FILE", "REDIS_URL",
	"REQUEST_TIMEOUT",
}

// clearEnv blanks every variable Load reads; blank counts as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configVars {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, ProviderOpenAI, cfg.LLMProvider)
	assert.Equal(t, "sk-test", cfg.APIKey())
	assert.Equal(t, "http://localhost:11434", cfg.OllamaURL)
	assert.Equal(t, StorageFile, cfg.StorageBackend)
	assert.Equal(t, "./content", cfg.ContentDir)
	assert.Equal(t, "emberfall_lore.md", cfg.LoreFile)
	assert.Equal(t, "localhost:6379", cfg.RedisURL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LLM_PROVIDER", "Anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "ak-test")
	t.Setenv("STORAGE_BACKEND", "redis")
	t.Setenv("REDIS_URL", "redis://cache:6379/1")
	t.Setenv("REQUEST_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, ProviderAnthropic, cfg.LLMProvider)
	assert.Equal(t, "ak-test", cfg.APIKey())
	assert.Equal(t, StorageRedis, cfg.StorageBackend)
	assert.Equal(t, "redis://cache:6379/1", cfg.RedisURL)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
}

func TestLoad_MissingCredential(t *testing.T) {
	for _, provider := range []string{ProviderOpenAI, ProviderAnthropic, ProviderVenice, ProviderGemini} {
		t.Run(provider, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("LLM_PROVIDER", provider)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "is required when LLM_PROVIDER="+provider)
		})
	}
}

func TestLoad_OllamaNeedsNoCredential(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "ollama")
	t.Setenv("OLLAMA_URL", "http://ollama:11434")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "", cfg.APIKey())
	assert.Equal(t, "http://ollama:11434", cfg.OllamaURL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"unknown provider", map[string]string{"LLM_PROVIDER": "eliza"}, "unknown LLM_PROVIDER"},
		{"unknown storage", map[string]string{"OPENAI_API_KEY": "k", "STORAGE_BACKEND": "s3"}, "unknown STORAGE_BACKEND"},
		{"bad timeout", map[string]string{"OPENAI_API_KEY": "k", "REQUEST_TIMEOUT": "soon"}, "invalid REQUEST_TIMEOUT"},
		{"negative timeout", map[string]string{"OPENAI_API_KEY": "k", "REQUEST_TIMEOUT": "-1s"}, "invalid REQUEST_TIMEOUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("verbose"))
}
