package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/jwebster45206/npc-dialogue/pkg/actor"
	"github.com/jwebster45206/npc-dialogue/pkg/apperr"
	"github.com/jwebster45206/npc-dialogue/pkg/storage"
	"github.com/redis/go-redis/v9"
)

const (
	personaKeyPrefix = "persona:"
	loreKey          = "lore"
)

// RedisStorage serves personas and lore from Redis. Personas are JSON
// documents under persona:<npc_id>; lore is a plain string under "lore".
type RedisStorage struct {
	client *redis.Client
	logger *slog.Logger
}

// Ensure RedisStorage implements Storage interface
var _ storage.Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance. redisURL may be a
// redis:// URL or a bare host:port address.
func NewRedisStorage(redisURL string, logger *slog.Logger) (*RedisStorage, error) {
	opts := &redis.Options{Addr: redisURL}
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		parsed, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		opts = parsed
	}

	return &RedisStorage{
		client: redis.NewClient(opts),
		logger: logger,
	}, nil
}

// Health and lifecycle methods

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// Persona operations

func (r *RedisStorage) LoadPersona(ctx context.Context, npcID string) (*actor.Persona, error) {
	if err := validateID(npcID); err != nil {
		return nil, err
	}

	data, err := r.client.Get(ctx, personaKeyPrefix+npcID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Warn("Persona not found", "npc_id", npcID)
			return nil, apperr.NewNotFoundError(fmt.Sprintf("persona not found: %s", npcID), nil)
		}
		r.logger.Error("Failed to load persona", "npc_id", npcID, "error", err)
		return nil, fmt.Errorf("failed to load persona: %w", err)
	}

	p, err := decodePersona(npcID, data)
	if err != nil {
		r.logger.Error("Stored persona is invalid", "npc_id", npcID, "error", err)
		return nil, err
	}
	return p, nil
}

func (r *RedisStorage) ListPersonas(ctx context.Context) ([]string, error) {
	ids := make([]string, 0)
	iter := r.client.Scan(ctx, 0, personaKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), personaKeyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list personas: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

// SavePersona stores a complete persona. Used to seed Redis from content files.
func (r *RedisStorage) SavePersona(ctx context.Context, p *actor.Persona) error {
	if err := validateID(p.ID); err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal persona: %w", err)
	}
	if err := r.client.Set(ctx, personaKeyPrefix+p.ID, data, 0).Err(); err != nil {
		r.logger.Error("Failed to save persona", "npc_id", p.ID, "error", err)
		return fmt.Errorf("failed to save persona: %w", err)
	}
	return nil
}

// Lore operations

// LoadWorldLore returns "" when no lore has been stored.
func (r *RedisStorage) LoadWorldLore(ctx context.Context) (string, error) {
	lore, err := r.client.Get(ctx, loreKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("failed to load lore: %w", err)
	}
	return lore, nil
}

func (r *RedisStorage) SaveWorldLore(ctx context.Context, lore string) error {
	if err := r.client.Set(ctx, loreKey, lore, 0).Err(); err != nil {
		return fmt.Errorf("failed to save lore: %w", err)
	}
	return nil
}
