package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/npc-dialogue/internal/config"
	"github.com/jwebster45206/npc-dialogue/internal/dialogue"
	"github.com/jwebster45206/npc-dialogue/internal/logger"
	"github.com/jwebster45206/npc-dialogue/internal/router"
	"github.com/jwebster45206/npc-dialogue/internal/services"
	internalstorage "github.com/jwebster45206/npc-dialogue/internal/storage"
	"github.com/jwebster45206/npc-dialogue/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting NPC Dialogue API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"llm_provider", cfg.LLMProvider,
		"storage_backend", cfg.StorageBackend)

	llmService, err := newCompletionService(cfg, log)
	if err != nil {
		log.Error("Failed to create LLM service", "error", err, "provider", cfg.LLMProvider)
		os.Exit(1)
	}
	log.Info("Using LLM provider", "provider", llmService.Provider(), "model", llmService.ModelName())

	store, err := newStorage(cfg, log)
	if err != nil {
		log.Error("Failed to create storage", "error", err, "backend", cfg.StorageBackend)
		os.Exit(1)
	}

	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()
	if rs, ok := store.(*internalstorage.RedisStorage); ok {
		err = rs.WaitForConnection(storageCtx)
	} else {
		err = store.Ping(storageCtx)
	}
	if err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	// Pull the local model on startup
	if ollama, ok := llmService.(*services.OllamaService); ok {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if err := ollama.InitModel(ctx); err != nil {
			log.Error("Failed to initialize LLM model", "error", err, "model", ollama.ModelName())
			os.Exit(1)
		}
	}

	orchestrator := dialogue.NewOrchestrator(store, llmService, log)
	handler := router.New(orchestrator, store, llmService, cfg.RequestTimeout, log)

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: websocket connections are long-lived
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}
	if gemini, ok := llmService.(*services.GeminiService); ok {
		if err := gemini.Close(); err != nil {
			log.Error("Error closing Gemini client", "error", err)
		}
	}

	log.Info("Server exited")
}

func newCompletionService(cfg *config.Config, log *slog.Logger) (services.CompletionService, error) {
	// Provider calls never outlive the request deadline
	httpClient := services.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout})

	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		return services.NewOpenAIService(cfg.APIKey(), log, httpClient), nil
	case config.ProviderAnthropic:
		return services.NewAnthropicService(cfg.APIKey(), log, httpClient), nil
	case config.ProviderVenice:
		return services.NewVeniceService(cfg.APIKey(), log, httpClient), nil
	case config.ProviderOllama:
		return services.NewOllamaService(cfg.OllamaURL, log, httpClient), nil
	case config.ProviderGemini:
		return services.NewGeminiService(context.Background(), cfg.APIKey(), log)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.LLMProvider)
	}
}

func newStorage(cfg *config.Config, log *slog.Logger) (storage.Storage, error) {
	switch cfg.StorageBackend {
	case config.StorageRedis:
		return internalstorage.NewRedisStorage(cfg.RedisURL, log)
	default:
		return internalstorage.NewFileStorage(cfg.ContentDir, cfg.LoreFile, log), nil
	}
}
