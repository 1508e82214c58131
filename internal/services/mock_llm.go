package services

import (
	"context"
	"sync"
)

// MockCompletionService is a mock implementation of CompletionService for testing
type MockCompletionService struct {
	CompleteFunc func(ctx context.Context, prompt string) (string, error)

	// Track calls for testing
	CompleteCalls []string

	mu sync.Mutex // protects all fields above
}

// Ensure MockCompletionService implements CompletionService interface
var _ CompletionService = (*MockCompletionService)(nil)

// NewMockCompletionService creates a new mock completion service
func NewMockCompletionService() *MockCompletionService {
	return &MockCompletionService{
		CompleteCalls: make([]string, 0),
	}
}

func (m *MockCompletionService) ModelName() string { return "mock-model" }

func (m *MockCompletionService) Provider() string { return "mock" }

// Complete records the prompt and returns the configured result
func (m *MockCompletionService) Complete(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CompleteCalls = append(m.CompleteCalls, prompt)

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt)
	}

	// Default behavior
	return "Mock response", nil
}

// SetResponse sets up the mock to return text on Complete
func (m *MockCompletionService) SetResponse(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CompleteFunc = func(ctx context.Context, prompt string) (string, error) {
		return text, nil
	}
}

// SetError sets up the mock to return an error on Complete
func (m *MockCompletionService) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CompleteFunc = func(ctx context.Context, prompt string) (string, error) {
		return "", err
	}
}

// Reset clears all call tracking
func (m *MockCompletionService) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CompleteCalls = make([]string, 0)
}

// GetCalls returns a copy of the recorded prompts in a thread-safe way
func (m *MockCompletionService) GetCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]string, len(m.CompleteCalls))
	copy(calls, m.CompleteCalls)
	return calls
}
