package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/jwebster45206/npc-dialogue/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnthropicService_Complete(t *testing.T) {
	responseJSON := `{
		"id": "msg_01ABC123",
		"type": "message",
		"role": "assistant",
		"content": [
			{"type": "text", "text": "Mind the stew, "},
			{"type": "text", "text": "it bites back."}
		],
		"model": "claude-3-5-haiku-latest",
		"stop_reason": "end_turn",
		"usage": {"input_tokens": 10, "output_tokens": 20}
	}`
	fp := newFakeProvider(t, http.StatusOK, responseJSON)
	service := NewAnthropicService("test-key", testLogger(), WithBaseURL(fp.URL()))

	text, err := service.Complete(context.Background(), "PLAYER: Hi\nMIRA:")
	require.NoError(t, err)
	assert.Equal(t, "Mind the stew, it bites back.", text)

	req := fp.lastRequest(t)
	assert.Equal(t, "/messages", req.Path)
	assert.Equal(t, "test-key", req.Headers.Get("x-api-key"))
	assert.Equal(t, anthropicVersion, req.Headers.Get("anthropic-version"))
	assert.Equal(t, AnthropicModel, req.Body["model"])
	assert.EqualValues(t, 150, req.Body["max_tokens"])
	assert.EqualValues(t, 0.7, req.Body["temperature"])

	messages, ok := req.Body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 1)
	assert.Equal(t, map[string]any{"role": "user", "content": "PLAYER: Hi\nMIRA:"}, messages[0])
}

func TestAnthropicService_Identity(t *testing.T) {
	service := NewAnthropicService("test-key", testLogger())
	assert.Equal(t, "claude-3-5-haiku-latest", service.ModelName())
	assert.Equal(t, "anthropic", service.Provider())
}

func TestAnthropicService_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		cause  apperr.Cause
	}{
		{"no content blocks", http.StatusOK, `{"content": []}`, apperr.CauseEmpty},
		{"only non-text blocks", http.StatusOK, `{"content": [{"type": "tool_use"}]}`, apperr.CauseEmpty},
		{"invalid key", http.StatusUnauthorized, `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`, apperr.CauseAuth},
		{"rate limited", http.StatusTooManyRequests, `{}`, apperr.CauseRateLimited},
		{"overloaded", 529, `{"type":"error","error":{"type":"overloaded_error"}}`, apperr.CauseUpstream},
		{"garbled", http.StatusOK, `{"content": [`, apperr.CauseMalformed},
		{"error in body", http.StatusOK, `{"error": {"type": "invalid_request_error", "message": "bad"}}`, apperr.CauseMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fp := newFakeProvider(t, tt.status, tt.body)
			service := NewAnthropicService("test-key", testLogger(), WithBaseURL(fp.URL()))

			text, err := service.Complete(context.Background(), "prompt")
			assert.Empty(t, text)
			assertCause(t, err, tt.cause)
		})
	}
}

func TestAnthropicService_NetworkFailure(t *testing.T) {
	service := NewAnthropicService("test-key", testLogger(), WithBaseURL(closedURL()))

	_, err := service.Complete(context.Background(), "prompt")
	assertCause(t, err, apperr.CauseNetwork)
}
