package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jwebster45206/npc-dialogue/pkg/apperr"
)

const (
	openAIBaseURL = "https://api.openai.com/v1"

	OpenAIModel = "gpt-4.1-mini"
)

// OpenAIService implements CompletionService using the OpenAI Responses API
type OpenAIService struct {
	apiKey string
	opts   httpOptions
	logger *slog.Logger
}

// OpenAIResponseRequest represents the request structure for the Responses API
type OpenAIResponseRequest struct {
	Model           string  `json:"model"`
	Input           string  `json:"input"`
	MaxOutputTokens int     `json:"max_output_tokens,omitempty"`
	Temperature     float64 `json:"temperature"`
}

// OpenAIContent is one content part of an output item
type OpenAIContent struct {
	Type    string `json:"type"` // "output_text" or "refusal"
	Text    string `json:"text,omitempty"`
	Refusal string `json:"refusal,omitempty"`
}

// OpenAIOutputItem is one entry of the response output list
type OpenAIOutputItem struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"` // "message", "reasoning", ...
	Role    string          `json:"role,omitempty"`
	Content []OpenAIContent `json:"content,omitempty"`
}

// OpenAIResponseResponse represents the response structure for the Responses API
type OpenAIResponseResponse struct {
	ID     string             `json:"id"`
	Object string             `json:"object"`
	Model  string             `json:"model"`
	Status string             `json:"status"`
	Output []OpenAIOutputItem `json:"output"`
	Usage  *struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// NewOpenAIService creates a new OpenAI service using the Responses API
func NewOpenAIService(apiKey string, logger *slog.Logger, opts ...Option) *OpenAIService {
	return &OpenAIService{
		apiKey: apiKey,
		opts:   applyOptions(openAIBaseURL, opts),
		logger: logger,
	}
}

func (o *OpenAIService) ModelName() string { return OpenAIModel }

func (o *OpenAIService) Provider() string { return "openai" }

// Complete sends the prompt as a single input string and returns the first
// output_text part of the response.
func (o *OpenAIService) Complete(ctx context.Context, prompt string) (string, error) {
	request := OpenAIResponseRequest{
		Model:           OpenAIModel,
		Input:           prompt,
		MaxOutputTokens: MaxOutputTokens,
		Temperature:     Temperature,
	}

	body, err := postJSON(ctx, o.opts.httpClient, o.opts.baseURL+"/responses",
		map[string]string{"Authorization": "Bearer " + o.apiKey}, request)
	if err != nil {
		o.logger.Error("OpenAI request failed", "model", OpenAIModel, "error", err)
		return "", err
	}

	var resp OpenAIResponseResponse
	if err := decodeJSON(body, &resp); err != nil {
		return "", err
	}

	if resp.Error != nil {
		return "", apperr.NewServiceError(apperr.CauseMalformed, fmt.Sprintf("API error: %s", resp.Error.Message), nil)
	}

	for _, item := range resp.Output {
		for _, content := range item.Content {
			if content.Type == "refusal" || content.Refusal != "" {
				return "", apperr.NewServiceError(apperr.CauseEmpty, fmt.Sprintf("model refused to respond: %s", content.Refusal), nil)
			}
			if content.Type == "output_text" {
				return finishText(content.Text)
			}
		}
	}

	return "", apperr.NewServiceError(apperr.CauseEmpty, "no output returned from API", nil)
}
