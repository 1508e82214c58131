package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jwebster45206/npc-dialogue/pkg/apperr"
)

const (
	DefaultOllamaURL = "http://localhost:11434"

	OllamaModel = "llama3.2"
)

// OllamaService implements CompletionService for a local Ollama server
type OllamaService struct {
	opts   httpOptions
	logger *slog.Logger
}

type OllamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type OllamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options OllamaOptions `json:"options"`
}

type OllamaGenerateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// NewOllamaService creates a new Ollama service instance. baseURL is the
// server root, e.g. http://localhost:11434.
func NewOllamaService(baseURL string, logger *slog.Logger, opts ...Option) *OllamaService {
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	return &OllamaService{
		opts:   applyOptions(baseURL, opts),
		logger: logger,
	}
}

func (s *OllamaService) ModelName() string { return OllamaModel }

func (s *OllamaService) Provider() string { return "ollama" }

// Complete generates a completion using the /api/generate endpoint (non-streaming)
func (s *OllamaService) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := OllamaGenerateRequest{
		Model:  OllamaModel,
		Prompt: prompt,
		Stream: false,
		Options: OllamaOptions{
			Temperature: Temperature,
			NumPredict:  MaxOutputTokens,
		},
	}

	url := s.opts.baseURL + "/api/generate"
	s.logger.Debug("Making Ollama generate request", "url", url, "model", OllamaModel, "prompt_length", len(prompt))

	body, err := postJSON(ctx, s.opts.httpClient, url, nil, reqBody)
	if err != nil {
		s.logger.Error("Ollama API returned error", "url", url, "error", err)
		return "", err
	}

	var ollamaResp OllamaGenerateResponse
	if err := decodeJSON(body, &ollamaResp); err != nil {
		s.logger.Error("Failed to decode Ollama response", "error", err, "response_body", truncate(string(body), 512))
		return "", err
	}

	if ollamaResp.Error != "" {
		return "", apperr.NewServiceError(apperr.CauseMalformed, fmt.Sprintf("API error: %s", ollamaResp.Error), nil)
	}

	return finishText(ollamaResp.Response)
}

// InitModel waits for the server and pulls the model if it is not present yet.
// Called once at startup; Complete never pulls.
func (s *OllamaService) InitModel(ctx context.Context) error {
	s.logger.Info("Initializing LLM model", "model", OllamaModel)

	if err := s.waitForOllamaReady(ctx); err != nil {
		return fmt.Errorf("ollama service is not ready: %w", err)
	}

	ready, err := s.isModelReady(ctx, OllamaModel)
	if err != nil {
		return fmt.Errorf("failed to check model readiness: %w", err)
	}

	if ready {
		s.logger.Info("Model already available", "model", OllamaModel)
		return nil
	}

	s.logger.Info("Model not found, pulling it", "model", OllamaModel)
	if err := s.pullModel(ctx, OllamaModel); err != nil {
		return fmt.Errorf("failed to pull model: %w", err)
	}
	s.logger.Info("Model pulled successfully", "model", OllamaModel)
	return nil
}

// isModelReady checks if the specified model is available
func (s *OllamaService) isModelReady(ctx context.Context, modelName string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", s.opts.baseURL+"/api/tags", nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.opts.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("API request failed with status: %d", resp.StatusCode)
	}

	var tagsResp struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&tagsResp); err != nil {
		return false, fmt.Errorf("failed to decode response: %w", err)
	}

	for _, model := range tagsResp.Models {
		// tags are reported as "llama3.2:latest"
		if model.Name == modelName || model.Name == modelName+":latest" {
			return true, nil
		}
	}

	return false, nil
}

// pullModel pulls a model from Ollama
func (s *OllamaService) pullModel(ctx context.Context, modelName string) error {
	jsonBody, err := json.Marshal(map[string]any{"name": modelName, "stream": false})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.opts.baseURL+"/api/pull", bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	// Pulling a model can take a while
	client := &http.Client{
		Timeout: 10 * time.Minute,
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API request failed with status: %d", resp.StatusCode)
	}

	return nil
}

// waitForOllamaReady waits for Ollama service to be ready with retries
func (s *OllamaService) waitForOllamaReady(ctx context.Context) error {
	maxRetries := 5
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		req, err := http.NewRequestWithContext(ctx, "GET", s.opts.baseURL+"/api/tags", nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := s.opts.httpClient.Do(req)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				s.logger.Info("Ollama service is ready")
				return nil
			}
			s.logger.Debug("Ollama returned non-200 status", "status", resp.StatusCode, "attempt", i+1)
		} else {
			s.logger.Debug("Ollama not ready yet", "error", err, "attempt", i+1)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryDelay):
		}
	}

	return fmt.Errorf("ollama service did not become ready after %d attempts", maxRetries)
}
