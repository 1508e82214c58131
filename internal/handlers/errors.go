package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/npc-dialogue/pkg/apperr"
)

// ErrorResponse is the body of every non-2xx JSON reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// statusForError maps an error kind to an HTTP status and API code.
func statusForError(err error) (int, string) {
	var appErr *apperr.AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}

	switch appErr.Type {
	case apperr.ErrorTypeValidation:
		return http.StatusBadRequest, appErr.Code
	case apperr.ErrorTypeNotFound:
		return http.StatusNotFound, appErr.Code
	case apperr.ErrorTypeService:
		switch appErr.Cause {
		case apperr.CauseRateLimited:
			return http.StatusTooManyRequests, appErr.Code
		case apperr.CauseNetwork:
			return http.StatusServiceUnavailable, appErr.Code
		default:
			return http.StatusBadGateway, appErr.Code
		}
	default:
		return http.StatusInternalServerError, appErr.Code
	}
}

// publicMessage hides internal failure details from callers.
func publicMessage(err error, status int) string {
	if status == http.StatusInternalServerError {
		return "Internal server error"
	}
	var appErr *apperr.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Error encoding response", "error", err, "status", status)
	}
}

func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	status, code := statusForError(err)
	writeJSON(w, log, status, ErrorResponse{Error: publicMessage(err, status), Code: code})
}
