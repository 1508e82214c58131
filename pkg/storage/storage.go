package storage

import (
	"context"

	"github.com/jwebster45206/npc-dialogue/pkg/actor"
)

// Storage defines read-only access to dialogue content: NPC personas and
// world lore. Backends are the filesystem (default) and Redis.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// LoadPersona returns a complete persona or fails. A missing record is an
	// apperr not-found error; an unusable record is an invalid-content error.
	LoadPersona(ctx context.Context, npcID string) (*actor.Persona, error)
	ListPersonas(ctx context.Context) ([]string, error)

	// LoadWorldLore returns the lore text, or "" when none is configured.
	LoadWorldLore(ctx context.Context) (string, error)
}
