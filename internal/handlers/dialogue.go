package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/jwebster45206/npc-dialogue/pkg/apperr"
	"github.com/jwebster45206/npc-dialogue/pkg/chat"
)

// DefaultRequestTimeout bounds a single dialogue call when none is configured.
const DefaultRequestTimeout = 30 * time.Second

// maxRequestBytes caps a dialogue request body or websocket frame.
const maxRequestBytes = 64 << 10

// Replier produces one NPC reply. Implemented by *dialogue.Orchestrator.
type Replier interface {
	GenerateReply(ctx context.Context, req *chat.DialogueRequest) (*chat.DialogueResponse, error)
}

// DialogueHandler handles POST /v1/dialogue
type DialogueHandler struct {
	replier Replier
	timeout time.Duration
	logger  *slog.Logger
}

// NewDialogueHandler creates a new dialogue handler
func NewDialogueHandler(replier Replier, timeout time.Duration, logger *slog.Logger) *DialogueHandler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &DialogueHandler{
		replier: replier,
		timeout: timeout,
		logger:  logger,
	}
}

// ServeHTTP handles HTTP requests for dialogue
func (h *DialogueHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Only allow POST method
	if r.Method != http.MethodPost {
		h.logger.Warn("Method not allowed for dialogue endpoint",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr)
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, h.logger, http.StatusMethodNotAllowed, ErrorResponse{
			Error: "Method not allowed. Only POST is supported.",
		})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)

	var request chat.DialogueRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.logger.Warn("Request body too large", "limit", tooLarge.Limit)
			writeError(w, h.logger, apperr.NewValidationError("Request body too large.", err))
			return
		}
		h.logger.Warn("Invalid request body", "error", err)
		writeError(w, h.logger, apperr.NewValidationError("Invalid request body. Expected a JSON dialogue request.", err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	response, err := h.replier.GenerateReply(ctx, &request)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, response)
}
