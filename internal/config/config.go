package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LLM providers
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderVenice    = "venice"
	ProviderOllama    = "ollama"
	ProviderGemini    = "gemini"
)

// Storage backends
const (
	StorageFile  = "file"
	StorageRedis = "redis"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	// Completion provider
	LLMProvider     string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	VeniceAPIKey    string
	GeminiAPIKey    string
	OllamaURL       string

	// Content
	StorageBackend string
	ContentDir     string
	LoreFile       string
	RedisURL       string

	RequestTimeout time.Duration
}

// Load reads a .env file if present, then the environment. It fails when the
// chosen provider or storage backend is unknown or its credential is missing.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	timeout, err := time.ParseDuration(getEnv("REQUEST_TIMEOUT", "30s"))
	if err != nil || timeout <= 0 {
		return nil, fmt.Errorf("invalid REQUEST_TIMEOUT %q", os.Getenv("REQUEST_TIMEOUT"))
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),

		LLMProvider:     strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenAI)),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		VeniceAPIKey:    getEnv("VENICE_API_KEY", ""),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		OllamaURL:       getEnv("OLLAMA_URL", "http://localhost:11434"),

		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", StorageFile)),
		ContentDir:     getEnv("CONTENT_DIR", "./content"),
		LoreFile:       getEnv("LORE_FILE", "emberfall_lore.md"),
		RedisURL:       getEnv("REDIS_URL", "localhost:6379"),

		RequestTimeout: timeout,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks provider and storage settings.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case StorageFile, StorageRedis:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q (expected %q or %q)", c.StorageBackend, StorageFile, StorageRedis)
	}

	key, name := c.providerCredential()
	if name == "" {
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}
	if name != "-" && key == "" {
		return fmt.Errorf("%s is required when LLM_PROVIDER=%s", name, c.LLMProvider)
	}
	return nil
}

// APIKey returns the credential for the configured provider.
func (c *Config) APIKey() string {
	key, _ := c.providerCredential()
	return key
}

// providerCredential returns the provider's key and its env var name.
// Ollama needs none and reports "-"; an unknown provider reports "".
func (c *Config) providerCredential() (string, string) {
	switch c.LLMProvider {
	case ProviderOpenAI:
		return c.OpenAIAPIKey, "OPENAI_API_KEY"
	case ProviderAnthropic:
		return c.AnthropicAPIKey, "ANTHROPIC_API_KEY"
	case ProviderVenice:
		return c.VeniceAPIKey, "VENICE_API_KEY"
	case ProviderGemini:
		return c.GeminiAPIKey, "GEMINI_API_KEY"
	case ProviderOllama:
		return "", "-"
	default:
		return "", ""
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
