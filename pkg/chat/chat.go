package chat

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/npc-dialogue/pkg/apperr"
)

// Speaker identifies who said a conversation turn.
type Speaker string

const (
	SpeakerPlayer Speaker = "player"
	SpeakerNPC    Speaker = "npc"
)

// UnmarshalText accepts any casing ("Player", "NPC").
func (s *Speaker) UnmarshalText(text []byte) error {
	*s = Speaker(strings.ToLower(strings.TrimSpace(string(text))))
	return nil
}

func (s Speaker) Valid() bool {
	return s == SpeakerPlayer || s == SpeakerNPC
}

// ConversationTurn is one message in the conversation history.
type ConversationTurn struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

// DialogueRequest represents a request for an NPC reply.
// History and world state are owned by the caller and sent on every call.
type DialogueRequest struct {
	PlayerMessage string             `json:"player_message"`
	PlayerName    string             `json:"player_name"`
	NPCID         string             `json:"npc_id"`
	WorldState    map[string]string  `json:"world_state,omitempty"`
	RecentHistory []ConversationTurn `json:"recent_history,omitempty"` // oldest first
}

// DialogueResponse is the structured NPC reply.
type DialogueResponse struct {
	NPCResponse string            `json:"npc_response"`
	Emotion     *string           `json:"emotion"` // not inferred yet, always nil
	Meta        map[string]string `json:"meta"`
}

// Meta keys set on every DialogueResponse
const (
	MetaModel     = "model"
	MetaNPCID     = "npc_id"
	MetaProvider  = "provider"
	MetaRequestID = "request_id"
)

// Validate rejects requests that cannot produce a prompt.
func (r *DialogueRequest) Validate() error {
	if strings.TrimSpace(r.PlayerMessage) == "" {
		return apperr.NewValidationError("player_message cannot be empty", nil)
	}
	if strings.TrimSpace(r.PlayerName) == "" {
		return apperr.NewValidationError("player_name cannot be empty", nil)
	}
	if strings.TrimSpace(r.NPCID) == "" {
		return apperr.NewValidationError("npc_id cannot be empty", nil)
	}
	for i, turn := range r.RecentHistory {
		if !turn.Speaker.Valid() {
			return apperr.NewValidationError(
				fmt.Sprintf("recent_history[%d].speaker must be %q or %q, got %q", i, SpeakerPlayer, SpeakerNPC, turn.Speaker), nil)
		}
	}
	return nil
}
