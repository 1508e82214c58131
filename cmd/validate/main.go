package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/jwebster45206/npc-dialogue/internal/storage"
	"github.com/jwebster45206/npc-dialogue/pkg/actor"
)

func main() {
	_ = godotenv.Load()

	contentDir := flag.String("content", envOr("CONTENT_DIR", "./content"), "content directory containing npcs/ and world/")
	loreFile := flag.String("lore", envOr("LORE_FILE", "emberfall_lore.md"), "lore file name under world/")
	redisURL := flag.String("redis", "", "seed validated content into this Redis (host:port or redis:// URL)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-content dir] [-lore file] [-redis url] [persona.json ...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	validator := &PersonaValidator{}

	// Explicit files are validated on their own
	if flag.NArg() > 0 {
		failed := false
		for _, filename := range flag.Args() {
			fmt.Printf("Validating %s...\n", filename)
			if _, err := validator.validateFile(filename); err != nil {
				fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
				failed = true
			}
		}
		if failed {
			os.Exit(1)
		}
		fmt.Println("Persona files are valid!")
		return
	}

	fmt.Printf("Validating personas in %s...\n", *contentDir)
	personas, errs := validator.validateContent(*contentDir)
	for _, err := range errs {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
	}
	if len(errs) > 0 {
		os.Exit(1)
	}
	fmt.Printf("%d persona(s) are valid!\n", len(personas))

	lorePath := filepath.Join(*contentDir, "world", *loreFile)
	lore, err := os.ReadFile(lorePath)
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Failed to read lore: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Warning: no lore file at %s; prompts will carry empty lore\n", lorePath)
	}

	if *redisURL == "" {
		return
	}

	if err := seed(*redisURL, personas, string(lore)); err != nil {
		fmt.Fprintf(os.Stderr, "Seeding failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Seeded %d persona(s) into Redis\n", len(personas))
}

func seed(redisURL string, personas []*actor.Persona, lore string) error {
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	store, err := storage.NewRedisStorage(redisURL, log)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := store.Ping(ctx); err != nil {
		return err
	}
	for _, p := range personas {
		if err := store.SavePersona(ctx, p); err != nil {
			return fmt.Errorf("persona %s: %w", p.ID, err)
		}
	}
	if lore != "" {
		if err := store.SaveWorldLore(ctx, lore); err != nil {
			return err
		}
	}
	return nil
}

func envOr(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
