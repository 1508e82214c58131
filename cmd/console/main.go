package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
)

type ConsoleConfig struct {
	APIBaseURL string
	Timeout    time.Duration
	PlayerName string
	NPCID      string
}

func main() {
	_ = godotenv.Load()

	cfg := &ConsoleConfig{
		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8080"),
		Timeout:    45 * time.Second,
	}
	flag.StringVar(&cfg.PlayerName, "player", getEnv("PLAYER_NAME", "Ash"), "player name")
	flag.StringVar(&cfg.NPCID, "npc", getEnv("NPC_ID", "tavern_keeper_01"), "npc id to talk to")
	flag.Parse()

	client := &http.Client{
		Timeout: cfg.Timeout,
	}

	if !testConnection(client, cfg.APIBaseURL) {
		fmt.Fprintf(os.Stderr, "Could not connect to API at %s. Please ensure the API is running.\nTry: docker-compose up -d\n", cfg.APIBaseURL)
		os.Exit(1)
	}

	npcName := cfg.NPCID
	personas, err := listPersonas(client, cfg.APIBaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list personas: %v\n", err)
		os.Exit(1)
	}
	found := false
	for _, p := range personas {
		if p.ID == cfg.NPCID {
			npcName = p.Name
			found = true
		}
	}
	if !found {
		fmt.Fprintf(os.Stderr, "Unknown npc %q. Available:\n", cfg.NPCID)
		for _, p := range personas {
			fmt.Fprintf(os.Stderr, "  %s - %s (%s)\n", p.ID, p.Name, p.Role)
		}
		os.Exit(1)
	}

	p := tea.NewProgram(NewConsoleUI(cfg, client, npcName),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
