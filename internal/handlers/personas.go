package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jwebster45206/npc-dialogue/pkg/storage"
)

// PersonaSummary is the list view of a persona
type PersonaSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

type PersonaHandler struct {
	log     *slog.Logger
	storage storage.Storage
}

func NewPersonaHandler(log *slog.Logger, storage storage.Storage) *PersonaHandler {
	return &PersonaHandler{
		log:     log,
		storage: storage,
	}
}

// ListPersonas handles GET /v1/personas. Personas that fail to load are skipped.
func (h *PersonaHandler) ListPersonas(w http.ResponseWriter, r *http.Request) {
	ids, err := h.storage.ListPersonas(r.Context())
	if err != nil {
		h.log.Error("Failed to list personas", "error", err)
		writeError(w, h.log, err)
		return
	}

	// Initialize as empty slice instead of nil
	personaList := make([]PersonaSummary, 0, len(ids))
	for _, id := range ids {
		persona, err := h.storage.LoadPersona(r.Context(), id)
		if err != nil {
			h.log.Warn("Failed to load persona", "error", err, "id", id)
			continue
		}
		personaList = append(personaList, PersonaSummary{
			ID:   persona.ID,
			Name: persona.Name,
			Role: persona.Role,
		})
	}

	writeJSON(w, h.log, http.StatusOK, personaList)
}

// GetPersona handles GET /v1/personas/{id}
func (h *PersonaHandler) GetPersona(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	persona, err := h.storage.LoadPersona(r.Context(), id)
	if err != nil {
		h.log.Warn("Failed to load persona", "error", err, "id", id)
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, h.log, http.StatusOK, persona)
}
