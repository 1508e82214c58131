package prompts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jwebster45206/npc-dialogue/pkg/actor"
	"github.com/jwebster45206/npc-dialogue/pkg/chat"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Builder constructs the dialogue prompt using a fluent interface.
// It never performs I/O; everything it needs is handed to it.
type Builder struct {
	request      *chat.DialogueRequest
	persona      *actor.Persona
	lore         string
	historyLimit int
}

// New creates a new prompt builder with default settings.
func New() *Builder {
	return &Builder{
		historyLimit: DefaultHistoryLimit,
	}
}

// WithRequest sets the player's request (message, name, world state, history).
func (b *Builder) WithRequest(req *chat.DialogueRequest) *Builder {
	b.request = req
	return b
}

// WithPersona sets the NPC speaking the reply.
func (b *Builder) WithPersona(p *actor.Persona) *Builder {
	b.persona = p
	return b
}

// WithLore sets the world lore text. Empty lore is allowed.
func (b *Builder) WithLore(lore string) *Builder {
	b.lore = lore
	return b
}

// WithHistoryLimit sets the conversation window size.
// A limit of zero or less drops the history entirely.
func (b *Builder) WithHistoryLimit(limit int) *Builder {
	b.historyLimit = limit
	return b
}

// Build returns the final prompt.
func (b *Builder) Build() (string, error) {
	if b.request == nil {
		return "", fmt.Errorf("request is required")
	}
	if b.persona == nil {
		return "", fmt.Errorf("persona is required")
	}

	npcLabel := upper(b.persona.Name)

	prompt := fmt.Sprintf(DialogueTemplate,
		b.persona.Name,
		b.persona.Role,
		b.lore,
		b.persona.Backstory,
		b.persona.Personality,
		b.persona.SpeechStyle,
		b.worldStateBlock(),
		b.historyBlock(npcLabel),
		b.request.PlayerName,
		b.request.PlayerMessage,
		npcLabel,
	)

	return strings.TrimSpace(prompt), nil
}

// historyBlock renders the windowed conversation, oldest first.
func (b *Builder) historyBlock(npcLabel string) string {
	turns := windowHistory(b.request.RecentHistory, b.historyLimit)
	if len(turns) == 0 {
		return NoHistoryPlaceholder
	}

	lines := make([]string, 0, len(turns))
	for _, turn := range turns {
		label := npcLabel
		if turn.Speaker == chat.SpeakerPlayer {
			label = PlayerLabel
		}
		lines = append(lines, label+": "+turn.Text)
	}
	return strings.Join(lines, "\n")
}

// worldStateBlock renders world state as a bulleted list sorted by key.
func (b *Builder) worldStateBlock() string {
	if len(b.request.WorldState) == 0 {
		return NoWorldStatePlaceholder
	}

	keys := make([]string, 0, len(b.request.WorldState))
	for k := range b.request.WorldState {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("- %s: %s", k, b.request.WorldState[k]))
	}
	return strings.Join(lines, "\n")
}

func windowHistory(history []chat.ConversationTurn, limit int) []chat.ConversationTurn {
	if limit <= 0 {
		return nil
	}
	if len(history) <= limit {
		return history
	}
	return history[len(history)-limit:]
}

// upper upper-cases a display name. Casers are stateful, so one is made per call.
func upper(s string) string {
	return cases.Upper(language.Und).String(s)
}

// Compile is a convenience function for the common case: the default
// history window applied to a request, persona and lore.
func Compile(req *chat.DialogueRequest, persona *actor.Persona, lore string) string {
	prompt, _ := New().
		WithRequest(req).
		WithPersona(persona).
		WithLore(lore).
		Build()
	return prompt
}
