package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jwebster45206/npc-dialogue/pkg/apperr"
)

// Generation parameters shared by every provider.
const (
	MaxOutputTokens = 150
	Temperature     = 0.7
)

// CompletionService turns a compiled prompt into a single text completion.
type CompletionService interface {
	// Complete sends prompt to the provider once and returns the trimmed
	// completion text. It never returns "" with a nil error; failures are
	// apperr service errors carrying a Cause.
	Complete(ctx context.Context, prompt string) (string, error)

	// ModelName is the fixed model identifier sent to the provider.
	ModelName() string

	// Provider names the backend, e.g. "openai".
	Provider() string
}

// Option configures an HTTP-backed service.
type Option func(*httpOptions)

type httpOptions struct {
	baseURL    string
	httpClient *http.Client
}

// WithBaseURL points the service at a different API root, e.g. a test server.
func WithBaseURL(url string) Option {
	return func(o *httpOptions) {
		o.baseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *httpOptions) {
		o.httpClient = client
	}
}

func applyOptions(defaultBaseURL string, opts []Option) httpOptions {
	o := httpOptions{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// postJSON sends body to url and returns the raw response body of a 2xx
// reply. Every failure, including a request that cannot be built, comes back
// as a service error.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, body any) ([]byte, error) {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return nil, apperr.NewServiceError(apperr.CauseUpstream, "failed to marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, apperr.NewServiceError(apperr.CauseUpstream, "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, apperr.NewServiceError(apperr.CauseNetwork, "failed to make request", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.NewServiceError(apperr.CauseNetwork, "failed to read response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperr.NewServiceError(classifyStatus(resp.StatusCode),
			fmt.Sprintf("API request failed with status %d", resp.StatusCode),
			errors.New(truncate(string(respBody), 512)))
	}
	return respBody, nil
}

// classifyStatus maps a non-2xx HTTP status to a failure cause.
func classifyStatus(status int) apperr.Cause {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperr.CauseAuth
	case http.StatusTooManyRequests:
		return apperr.CauseRateLimited
	default:
		return apperr.CauseUpstream
	}
}

// decodeJSON unmarshals a provider body, reporting failures as malformed.
func decodeJSON(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return apperr.NewServiceError(apperr.CauseMalformed, "failed to parse response", err)
	}
	return nil
}

// finishText trims a completion and rejects blank output.
func finishText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", apperr.NewServiceError(apperr.CauseEmpty, "no text content found in response", nil)
	}
	return text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
