package actor

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/npc-dialogue/pkg/apperr"
)

// Persona describes a non-player character's identity and voice.
// Personas are operator-provided content and are embedded in prompts verbatim.
type Persona struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Role        string `json:"role"`         // e.g. "tavern keeper", "blacksmith"
	Backstory   string `json:"backstory"`
	Personality string `json:"personality"`
	SpeechStyle string `json:"speech_style"`
}

// Validate requires every field to be present so that an incomplete record
// fails when it is loaded, not halfway through a prompt.
func (p *Persona) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"id", p.ID},
		{"name", p.Name},
		{"role", p.Role},
		{"backstory", p.Backstory},
		{"personality", p.Personality},
		{"speech_style", p.SpeechStyle},
	}

	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return apperr.NewInvalidContentError(
			fmt.Sprintf("persona %q is missing required fields: %s", p.ID, strings.Join(missing, ", ")), nil)
	}
	return nil
}
