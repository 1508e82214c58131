package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jwebster45206/npc-dialogue/pkg/apperr"
)

const (
	anthropicBaseURL = "https://api.anthropic.com/v1"
	anthropicVersion = "2023-06-01"

	AnthropicModel = "claude-3-5-haiku-latest"
)

// AnthropicService implements CompletionService for Anthropic Claude
type AnthropicService struct {
	apiKey string
	opts   httpOptions
	logger *slog.Logger
}

type AnthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type AnthropicChatRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature *float64           `json:"temperature,omitempty"`
	Messages    []AnthropicMessage `json:"messages"`
	Stream      bool               `json:"stream,omitempty"`
}

type AnthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type AnthropicChatResponse struct {
	ID         string                  `json:"id"`
	Type       string                  `json:"type"`
	Role       string                  `json:"role"`
	Content    []AnthropicContentBlock `json:"content"`
	Model      string                  `json:"model"`
	StopReason string                  `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewAnthropicService(apiKey string, logger *slog.Logger, opts ...Option) *AnthropicService {
	return &AnthropicService{
		apiKey: apiKey,
		opts:   applyOptions(anthropicBaseURL, opts),
		logger: logger,
	}
}

func (a *AnthropicService) ModelName() string { return AnthropicModel }

func (a *AnthropicService) Provider() string { return "anthropic" }

// Complete sends the prompt as a single user message.
func (a *AnthropicService) Complete(ctx context.Context, prompt string) (string, error) {
	temperature := Temperature
	anthropicReq := AnthropicChatRequest{
		Model:       AnthropicModel,
		MaxTokens:   MaxOutputTokens,
		Temperature: &temperature,
		Messages:    []AnthropicMessage{{Role: "user", Content: prompt}},
	}

	headers := map[string]string{
		"x-api-key":         a.apiKey,
		"anthropic-version": anthropicVersion,
	}
	body, err := postJSON(ctx, a.opts.httpClient, a.opts.baseURL+"/messages", headers, anthropicReq)
	if err != nil {
		a.logger.Error("Anthropic request failed", "model", AnthropicModel, "error", err)
		return "", err
	}

	var anthropicResp AnthropicChatResponse
	if err := decodeJSON(body, &anthropicResp); err != nil {
		return "", err
	}

	if anthropicResp.Error != nil {
		return "", apperr.NewServiceError(apperr.CauseMalformed, fmt.Sprintf("API error: %s", anthropicResp.Error.Message), nil)
	}

	// Concatenate text blocks
	var responseText string
	for _, content := range anthropicResp.Content {
		if content.Type == "text" {
			responseText += content.Text
		}
	}

	return finishText(responseText)
}
