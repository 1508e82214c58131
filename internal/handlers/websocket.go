package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jwebster45206/npc-dialogue/pkg/apperr"
	"github.com/jwebster45206/npc-dialogue/pkg/chat"
	"github.com/jwebster45206/npc-dialogue/pkg/requestid"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WSReply is one reply frame. Exactly one of Response or Error is set.
type WSReply struct {
	Response *chat.DialogueResponse `json:"response,omitempty"`
	Error    string                 `json:"error,omitempty"`
	Code     string                 `json:"code,omitempty"`
}

// DialogueSocketHandler serves dialogue over a WebSocket: every text frame
// is a dialogue request answered by exactly one reply frame. A failed
// request produces an error frame and the connection stays open.
type DialogueSocketHandler struct {
	replier Replier
	timeout time.Duration
	logger  *slog.Logger
}

func NewDialogueSocketHandler(replier Replier, timeout time.Duration, logger *slog.Logger) *DialogueSocketHandler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &DialogueSocketHandler{
		replier: replier,
		timeout: timeout,
		logger:  logger,
	}
}

func (h *DialogueSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", "error", err, "remote_addr", r.RemoteAddr)
		return
	}
	defer func() { _ = conn.Close() }()
	conn.SetReadLimit(maxRequestBytes)

	h.logger.Info("WebSocket connected", "remote_addr", r.RemoteAddr)

	connID := requestid.FromContext(r.Context())
	frames := 0
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("WebSocket read failed", "error", err)
			}
			h.logger.Info("WebSocket disconnected", "remote_addr", r.RemoteAddr)
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		frames++
		ctx := r.Context()
		if connID != "" {
			// Each frame is its own request: <connection id>.<frame number>
			ctx = requestid.NewContext(ctx, fmt.Sprintf("%s.%d", connID, frames))
		}
		reply := h.handleFrame(ctx, data)
		if err := conn.WriteJSON(reply); err != nil {
			h.logger.Warn("WebSocket write failed", "error", err)
			return
		}
	}
}

func (h *DialogueSocketHandler) handleFrame(parent context.Context, data []byte) WSReply {
	var request chat.DialogueRequest
	if err := json.Unmarshal(data, &request); err != nil {
		return errorReply(apperr.NewValidationError("Invalid frame. Expected a JSON dialogue request.", err))
	}

	ctx, cancel := context.WithTimeout(parent, h.timeout)
	defer cancel()

	response, err := h.replier.GenerateReply(ctx, &request)
	if err != nil {
		return errorReply(err)
	}
	return WSReply{Response: response}
}

func errorReply(err error) WSReply {
	status, code := statusForError(err)
	return WSReply{Error: publicMessage(err, status), Code: code}
}
