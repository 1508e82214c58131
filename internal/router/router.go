package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/jwebster45206/npc-dialogue/internal/handlers"
	"github.com/jwebster45206/npc-dialogue/internal/middleware"
	"github.com/jwebster45206/npc-dialogue/pkg/storage"
)

// New wires the HTTP API.
func New(
	replier handlers.Replier,
	store storage.Storage,
	model handlers.ModelInfo,
	requestTimeout time.Duration,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(chimiddleware.Recoverer)

	r.Method(http.MethodGet, "/health", handlers.NewHealthHandler(store, model, logger))

	r.Route("/v1", func(r chi.Router) {
		// The handler answers other methods with 405 itself.
		r.Handle("/dialogue", handlers.NewDialogueHandler(replier, requestTimeout, logger))
		r.Get("/dialogue/ws", handlers.NewDialogueSocketHandler(replier, requestTimeout, logger).ServeHTTP)

		personas := handlers.NewPersonaHandler(logger, store)
		r.Get("/personas", personas.ListPersonas)
		r.Get("/personas/{id}", personas.GetPersona)
	})

	return r
}
