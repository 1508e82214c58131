package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jwebster45206/npc-dialogue/pkg/chat"
)

// ErrorResponse mirrors the API error body.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// APIError is a non-2xx reply from the dialogue API.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("API returned status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// PersonaSummary mirrors one entry of GET /v1/personas.
type PersonaSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

func listPersonas(client *http.Client, baseURL string) ([]PersonaSummary, error) {
	resp, err := client.Get(baseURL + "/v1/personas")
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp.StatusCode, body)
	}

	var personas []PersonaSummary
	if err := json.Unmarshal(body, &personas); err != nil {
		return nil, fmt.Errorf("failed to parse personas response: %w", err)
	}
	return personas, nil
}

// sendDialogue posts one dialogue request and returns the NPC reply.
func sendDialogue(client *http.Client, baseURL string, req *chat.DialogueRequest) (*chat.DialogueResponse, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(baseURL+"/v1/dialogue", "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp.StatusCode, body)
	}

	var dialogueResp chat.DialogueResponse
	if err := json.Unmarshal(body, &dialogueResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &dialogueResp, nil
}

func decodeAPIError(status int, body []byte) *APIError {
	var errorResp ErrorResponse
	if err := json.Unmarshal(body, &errorResp); err != nil || errorResp.Error == "" {
		return &APIError{Status: status, Message: string(body)}
	}
	return &APIError{Status: status, Code: errorResp.Code, Message: errorResp.Error}
}

// describeError turns an API failure into a line for the player.
func describeError(err error, npcName string) string {
	apiErr, ok := err.(*APIError)
	if !ok {
		return "Could not reach the dialogue service: " + err.Error()
	}
	switch apiErr.Code {
	case "VALIDATION_ERROR":
		return "Request rejected: " + apiErr.Message
	case "NOT_FOUND":
		return "No such NPC. Check the npc id."
	case "LLM_RATE_LIMITED":
		return npcName + " needs a moment. Try again shortly."
	case "LLM_UNAVAILABLE":
		return "The language model is unreachable right now."
	case "LLM_ERROR":
		return npcName + " could not find the words. Try again."
	case "INVALID_CONTENT":
		return "This NPC's content is broken. Run the content validator on the server."
	default:
		return apiErr.Error()
	}
}
