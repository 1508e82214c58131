// Package dialogue produces one NPC reply per request: validate, load the
// persona and lore, compile the prompt, and ask the completion service.
package dialogue

import (
	"context"
	"log/slog"
	"time"

	"github.com/jwebster45206/npc-dialogue/internal/services"
	"github.com/jwebster45206/npc-dialogue/pkg/chat"
	"github.com/jwebster45206/npc-dialogue/pkg/prompts"
	"github.com/jwebster45206/npc-dialogue/pkg/requestid"
	"github.com/jwebster45206/npc-dialogue/pkg/storage"
)

// Orchestrator holds no per-conversation state and is safe for concurrent use.
type Orchestrator struct {
	store  storage.Storage
	llm    services.CompletionService
	logger *slog.Logger
}

func NewOrchestrator(store storage.Storage, llm services.CompletionService, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		store:  store,
		llm:    llm,
		logger: logger,
	}
}

// GenerateReply returns a complete response or an error, never both.
// Errors from storage and the completion service are passed through unchanged.
// The request id already in ctx is reused; one is generated otherwise.
func (o *Orchestrator) GenerateReply(ctx context.Context, req *chat.DialogueRequest) (*chat.DialogueResponse, error) {
	ctx, requestID := requestid.Ensure(ctx)
	log := o.logger.With("request_id", requestID, "npc_id", req.NPCID)
	start := time.Now()

	if err := req.Validate(); err != nil {
		log.Warn("Rejected dialogue request", "error", err)
		return nil, err
	}

	log.Debug("Loading persona")
	persona, err := o.store.LoadPersona(ctx, req.NPCID)
	if err != nil {
		log.Warn("Failed to load persona", "error", err)
		return nil, err
	}

	log.Debug("Loading world lore")
	lore, err := o.store.LoadWorldLore(ctx)
	if err != nil {
		log.Error("Failed to load world lore", "error", err)
		return nil, err
	}

	prompt := prompts.Compile(req, persona, lore)
	log.Debug("Compiled prompt",
		"prompt_length", len(prompt),
		"history_turns", len(req.RecentHistory),
		"world_state_keys", len(req.WorldState))

	text, err := o.llm.Complete(ctx, prompt)
	if err != nil {
		log.Error("Completion failed", "provider", o.llm.Provider(), "error", err)
		return nil, err
	}

	log.Info("Generated NPC reply",
		"provider", o.llm.Provider(),
		"model", o.llm.ModelName(),
		"duration", time.Since(start))

	return &chat.DialogueResponse{
		NPCResponse: text,
		Emotion:     nil,
		Meta: map[string]string{
			chat.MetaModel:     o.llm.ModelName(),
			chat.MetaNPCID:     req.NPCID,
			chat.MetaProvider:  o.llm.Provider(),
			chat.MetaRequestID: requestID,
		},
	}, nil
}
