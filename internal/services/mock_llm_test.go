package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockCompletionService(t *testing.T) {
	mockService := NewMockCompletionService()

	text, err := mockService.Complete(context.Background(), "first")
	require.NoError(t, err)
	assert.Equal(t, "Mock response", text)

	mockService.SetResponse("Aye, the ale's fresh.")
	text, err = mockService.Complete(context.Background(), "second")
	require.NoError(t, err)
	assert.Equal(t, "Aye, the ale's fresh.", text)

	assert.Equal(t, []string{"first", "second"}, mockService.GetCalls())

	mockService.Reset()
	assert.Empty(t, mockService.GetCalls())
}

func TestMockCompletionService_ErrorHandling(t *testing.T) {
	mockService := NewMockCompletionService()
	expectedErr := errors.New("provider down")
	mockService.SetError(expectedErr)

	text, err := mockService.Complete(context.Background(), "prompt")
	assert.Empty(t, text)
	assert.ErrorIs(t, err, expectedErr)
	assert.Len(t, mockService.GetCalls(), 1)
}
