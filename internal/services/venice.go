package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jwebster45206/npc-dialogue/pkg/apperr"
)

const (
	veniceBaseURL = "https://api.venice.ai/api/v1"

	VeniceModel = "llama-3.3-70b"
)

// VeniceService implements CompletionService for Venice AI
type VeniceService struct {
	apiKey string
	opts   httpOptions
	logger *slog.Logger
}

type VeniceParameters struct {
	IncludeVeniceSystemPrompt bool   `json:"include_venice_system_prompt"`
	EnableWebSearch           string `json:"enable_web_search"`
}

type VeniceMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// VeniceChatRequest represents the request structure for Venice AI chat completions
type VeniceChatRequest struct {
	Model            string           `json:"model"`
	Messages         []VeniceMessage  `json:"messages"`
	Temperature      float64          `json:"temperature,omitempty"`
	MaxTokens        int              `json:"max_tokens,omitempty"`
	Stream           bool             `json:"stream"`
	VeniceParameters VeniceParameters `json:"venice_parameters"`
}

// VeniceChatChoice represents a single choice in the Venice AI response
type VeniceChatChoice struct {
	Index   int `json:"index"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

// VeniceChatResponse represents the response structure for Venice AI chat completions
type VeniceChatResponse struct {
	ID      string             `json:"id"`
	Object  string             `json:"object"`
	Created int64              `json:"created"`
	Model   string             `json:"model"`
	Choices []VeniceChatChoice `json:"choices"`
	Error   *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// NewVeniceService creates a new Venice AI service
func NewVeniceService(apiKey string, logger *slog.Logger, opts ...Option) *VeniceService {
	return &VeniceService{
		apiKey: apiKey,
		opts:   applyOptions(veniceBaseURL, opts),
		logger: logger,
	}
}

func (v *VeniceService) ModelName() string { return VeniceModel }

func (v *VeniceService) Provider() string { return "venice" }

func (v *VeniceService) Complete(ctx context.Context, prompt string) (string, error) {
	veniceReq := VeniceChatRequest{
		Model:       VeniceModel,
		Messages:    []VeniceMessage{{Role: "user", Content: prompt}},
		Temperature: Temperature,
		MaxTokens:   MaxOutputTokens,
		Stream:      false,
		VeniceParameters: VeniceParameters{
			IncludeVeniceSystemPrompt: false,
			EnableWebSearch:           "off",
		},
	}

	body, err := postJSON(ctx, v.opts.httpClient, v.opts.baseURL+"/chat/completions",
		map[string]string{"Authorization": "Bearer " + v.apiKey}, veniceReq)
	if err != nil {
		v.logger.Error("Venice request failed", "model", VeniceModel, "error", err)
		return "", err
	}

	var veniceResp VeniceChatResponse
	if err := decodeJSON(body, &veniceResp); err != nil {
		return "", err
	}

	if veniceResp.Error != nil {
		return "", apperr.NewServiceError(apperr.CauseMalformed, fmt.Sprintf("API error: %s", veniceResp.Error.Message), nil)
	}

	if len(veniceResp.Choices) == 0 {
		return "", apperr.NewServiceError(apperr.CauseEmpty, "no choices returned from API", nil)
	}

	return finishText(veniceResp.Choices[0].Message.Content)
}
