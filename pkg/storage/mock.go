package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jwebster45206/npc-dialogue/pkg/actor"
	"github.com/jwebster45206/npc-dialogue/pkg/apperr"
)

// MockStorage is a mock implementation of Storage for testing
type MockStorage struct {
	mu        sync.RWMutex
	personas  map[string]*actor.Persona
	lore      string
	pingError error
	loreError error

	// Track calls for testing
	LoadPersonaCalls []string
	LoadLoreCalls    int
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		personas:         make(map[string]*actor.Persona),
		LoadPersonaCalls: make([]string, 0),
	}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetLoreError configures the mock to fail when loading lore
func (m *MockStorage) SetLoreError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loreError = err
}

// Ping mocks storage ping
func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

// Close mocks storage close
func (m *MockStorage) Close() error {
	return nil
}

// AddPersona adds a persona to the mock storage (for testing).
// The persona is stored as given, so incomplete personas can be simulated.
func (m *MockStorage) AddPersona(p *actor.Persona) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.personas[p.ID] = p
}

// SetLore sets the lore text returned by LoadWorldLore
func (m *MockStorage) SetLore(lore string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lore = lore
}

// LoadPersona mocks loading a persona by id
func (m *MockStorage) LoadPersona(ctx context.Context, npcID string) (*actor.Persona, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LoadPersonaCalls = append(m.LoadPersonaCalls, npcID)

	if npcID == "" {
		return nil, apperr.NewValidationError("npc_id cannot be empty", nil)
	}
	p, exists := m.personas[npcID]
	if !exists {
		return nil, apperr.NewNotFoundError(fmt.Sprintf("persona not found: %s", npcID), nil)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	copied := *p
	return &copied, nil
}

// ListPersonas mocks listing persona ids
func (m *MockStorage) ListPersonas(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]string, 0, len(m.personas))
	for id := range m.personas {
		result = append(result, id)
	}
	sort.Strings(result)
	return result, nil
}

// LoadWorldLore mocks loading lore
func (m *MockStorage) LoadWorldLore(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LoadLoreCalls++
	if m.loreError != nil {
		return "", m.loreError
	}
	return m.lore, nil
}
