package storage

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/jwebster45206/npc-dialogue/pkg/actor"
	"github.com/jwebster45206/npc-dialogue/pkg/apperr"
)

// validateID rejects ids that could escape the content directory or key space.
func validateID(npcID string) error {
	if strings.TrimSpace(npcID) == "" {
		return apperr.NewValidationError("npc_id cannot be empty", nil)
	}
	if strings.ContainsAny(npcID, `/\`) || strings.Contains(npcID, "..") {
		return apperr.NewValidationError(fmt.Sprintf("invalid npc_id: %q", npcID), nil)
	}
	for _, r := range npcID {
		if !unicode.IsPrint(r) {
			return apperr.NewValidationError(fmt.Sprintf("invalid npc_id: %q", npcID), nil)
		}
	}
	return nil
}

// decodePersona parses a stored persona document. The storage key is the
// persona's identity and overrides any id inside the document.
func decodePersona(npcID string, data []byte) (*actor.Persona, error) {
	var p actor.Persona
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, apperr.NewInvalidContentError(fmt.Sprintf("failed to parse persona %q", npcID), err)
	}
	p.ID = npcID

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}
