package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindPredicates(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		validation bool
		notFound   bool
		service    bool
		content    bool
	}{
		{"validation", NewValidationError("npc_id is required", nil), true, false, false, false},
		{"not found", NewNotFoundError("persona not found", nil), false, true, false, false},
		{"service", NewServiceError(CauseEmpty, "no output", nil), false, false, true, false},
		{"invalid content", NewInvalidContentError("persona incomplete", nil), false, false, false, true},
		{"plain error", errors.New("boom"), false, false, false, false},
		{"nil", nil, false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.validation, IsValidationError(tt.err))
			assert.Equal(t, tt.notFound, IsNotFoundError(tt.err))
			assert.Equal(t, tt.service, IsServiceError(tt.err))
			assert.Equal(t, tt.content, IsInvalidContentError(tt.err))
		})
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	inner := NewNotFoundError("persona not found: ghost", nil)
	wrapped := fmt.Errorf("loading persona: %w", inner)

	assert.True(t, IsNotFoundError(wrapped))
	assert.Equal(t, "NOT_FOUND", CodeOf(wrapped))
}

func TestServiceCause(t *testing.T) {
	transport := errors.New("dial tcp: connection refused")
	err := fmt.Errorf("completion: %w", NewServiceError(CauseNetwork, "request failed", transport))

	cause, ok := ServiceCause(err)
	assert.True(t, ok)
	assert.Equal(t, CauseNetwork, cause)
	assert.ErrorIs(t, err, transport)

	_, ok = ServiceCause(NewValidationError("bad", nil))
	assert.False(t, ok)
}

func TestCodes(t *testing.T) {
	assert.Equal(t, "LLM_RATE_LIMITED", NewServiceError(CauseRateLimited, "slow down", nil).Code)
	assert.Equal(t, "LLM_UNAVAILABLE", NewServiceError(CauseNetwork, "down", nil).Code)
	assert.Equal(t, "LLM_ERROR", NewServiceError(CauseAuth, "bad key", nil).Code)
	assert.Equal(t, "VALIDATION_ERROR", NewValidationError("bad", nil).Code)
	assert.Equal(t, "INTERNAL_ERROR", CodeOf(errors.New("boom")))
}

func TestErrorMessage(t *testing.T) {
	err := NewServiceError(CauseUpstream, "API request failed with status 500", errors.New("oops"))
	assert.Equal(t, "API request failed with status 500: oops", err.Error())
	assert.Equal(t, "persona not found", NewNotFoundError("persona not found", nil).Error())
}
