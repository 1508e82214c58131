package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jwebster45206/npc-dialogue/pkg/actor"
	"github.com/jwebster45206/npc-dialogue/pkg/apperr"
	"github.com/jwebster45206/npc-dialogue/pkg/storage"
)

const (
	DefaultContentDir = "./content"
	DefaultLoreFile   = "emberfall_lore.md"

	npcsDir  = "npcs"
	worldDir = "world"
)

// FileStorage serves personas and lore from a content directory:
//
//	<contentDir>/npcs/<npc_id>.json
//	<contentDir>/world/<loreFile>
type FileStorage struct {
	contentDir string
	loreFile   string
	logger     *slog.Logger
}

// Ensure FileStorage implements Storage interface
var _ storage.Storage = (*FileStorage)(nil)

// NewFileStorage creates a filesystem-backed store
func NewFileStorage(contentDir string, loreFile string, logger *slog.Logger) *FileStorage {
	if contentDir == "" {
		contentDir = DefaultContentDir
	}
	if loreFile == "" {
		loreFile = DefaultLoreFile
	}
	return &FileStorage{
		contentDir: contentDir,
		loreFile:   loreFile,
		logger:     logger,
	}
}

// Ping checks that the content directory is readable.
func (f *FileStorage) Ping(ctx context.Context) error {
	info, err := os.Stat(f.contentDir)
	if err != nil {
		return fmt.Errorf("content directory unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("content path %s is not a directory", f.contentDir)
	}
	return nil
}

func (f *FileStorage) Close() error {
	return nil
}

func (f *FileStorage) LoadPersona(ctx context.Context, npcID string) (*actor.Persona, error) {
	if err := validateID(npcID); err != nil {
		return nil, err
	}

	path := filepath.Join(f.contentDir, npcsDir, npcID+".json")
	f.logger.Debug("Loading persona", "npc_id", npcID, "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.NewNotFoundError(fmt.Sprintf("persona not found: %s", npcID), nil)
		}
		return nil, fmt.Errorf("failed to read persona file %s: %w", path, err)
	}

	p, err := decodePersona(npcID, data)
	if err != nil {
		f.logger.Error("Persona file is invalid", "npc_id", npcID, "path", path, "error", err)
		return nil, err
	}
	return p, nil
}

func (f *FileStorage) ListPersonas(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(f.contentDir, npcsDir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read personas directory: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
			ids = append(ids, strings.TrimSuffix(entry.Name(), ".json"))
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// LoadWorldLore returns "" when the lore file does not exist.
func (f *FileStorage) LoadWorldLore(ctx context.Context) (string, error) {
	path := filepath.Join(f.contentDir, worldDir, f.loreFile)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			f.logger.Debug("No lore file configured", "path", path)
			return "", nil
		}
		return "", fmt.Errorf("failed to read lore file %s: %w", path, err)
	}
	return string(data), nil
}
