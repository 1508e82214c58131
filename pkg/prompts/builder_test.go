package prompts

import (
	"fmt"
	"strings"
	"testing"

	"github.com/jwebster45206/npc-dialogue/pkg/actor"
	"github.com/jwebster45206/npc-dialogue/pkg/chat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPersona() *actor.Persona {
	return &actor.Persona{
		ID:          "tavern_keeper_01",
		Name:        "Mira",
		Role:        "tavern keeper",
		Backstory:   "Mira has run the Ember & Ale for twenty years.",
		Personality: "Warm, observant, protective of her regulars.",
		SpeechStyle: "Plain words, the odd tavern idiom.",
	}
}

// historyLines extracts the rendered RECENT CONVERSATION block.
func historyLines(t *testing.T, prompt string) []string {
	t.Helper()
	start := strings.Index(prompt, "RECENT CONVERSATION:\n")
	end := strings.Index(prompt, "\n\nPLAYER NAME:")
	require.True(t, start >= 0 && end > start, "prompt is missing the conversation block")
	block := prompt[start+len("RECENT CONVERSATION:\n") : end]
	return strings.Split(block, "\n")
}

func alternatingHistory(n int) []chat.ConversationTurn {
	turns := make([]chat.ConversationTurn, 0, n)
	for i := 1; i <= n; i++ {
		speaker := chat.SpeakerPlayer
		if i%2 == 0 {
			speaker = chat.SpeakerNPC
		}
		turns = append(turns, chat.ConversationTurn{Speaker: speaker, Text: fmt.Sprintf("turn %d", i)})
	}
	return turns
}

func TestNew(t *testing.T) {
	builder := New()
	require.NotNil(t, builder)
	assert.Equal(t, DefaultHistoryLimit, builder.historyLimit)
}

func TestBuilder_FluentInterface(t *testing.T) {
	req := &chat.DialogueRequest{PlayerMessage: "Hi", PlayerName: "Ash", NPCID: "x"}
	persona := testPersona()

	builder := New().
		WithRequest(req).
		WithPersona(persona).
		WithLore("lore").
		WithHistoryLimit(2)

	assert.Same(t, req, builder.request)
	assert.Same(t, persona, builder.persona)
	assert.Equal(t, "lore", builder.lore)
	assert.Equal(t, 2, builder.historyLimit)
}

func TestBuilder_Build_RequiresInputs(t *testing.T) {
	_, err := New().WithPersona(testPersona()).Build()
	assert.EqualError(t, err, "request is required")

	_, err = New().WithRequest(&chat.DialogueRequest{}).Build()
	assert.EqualError(t, err, "persona is required")
}

func TestCompile_FirstMessageScenario(t *testing.T) {
	req := &chat.DialogueRequest{
		PlayerMessage: "Hello",
		PlayerName:    "Ash",
		NPCID:         "tavern_keeper_01",
		WorldState:    map[string]string{"time_of_day": "evening"},
	}

	prompt := Compile(req, testPersona(), "Emberfall sits at the edge of the Ashen Wood.")

	assert.Contains(t, prompt, "You are Mira")
	assert.Contains(t, prompt, "- time_of_day: evening")
	assert.Contains(t, prompt, "No prior conversation.")
	assert.Contains(t, prompt, "PLAYER NAME: Ash")
	assert.Contains(t, prompt, "Emberfall sits at the edge of the Ashen Wood.")
	assert.True(t, strings.HasSuffix(prompt, "PLAYER: Hello\nMIRA:"), "prompt ends with %q", prompt[len(prompt)-30:])
	assert.Equal(t, strings.TrimSpace(prompt), prompt)
}

func TestCompile_EmbedsPersonaAndRules(t *testing.T) {
	persona := testPersona()
	prompt := Compile(&chat.DialogueRequest{PlayerMessage: "Hi", PlayerName: "Ash"}, persona, "")

	assert.Contains(t, prompt, "You are Mira, a tavern keeper in the fantasy town of Emberfall.")
	assert.Contains(t, prompt, "NPC BACKSTORY:\n"+persona.Backstory)
	assert.Contains(t, prompt, "PERSONALITY:\n"+persona.Personality)
	assert.Contains(t, prompt, "SPEECH STYLE:\n"+persona.SpeechStyle)
	assert.Contains(t, prompt, "Stay strictly in character as Mira.")
	assert.Contains(t, prompt, "Never mention being an AI")
	assert.Contains(t, prompt, "Keep responses under 3 sentences by default.")
	assert.Contains(t, prompt, "up to 5 sentences")
	assert.Contains(t, prompt, "GAME LORE:\n\n")
}

func TestCompile_HistoryWindow(t *testing.T) {
	for _, n := range []int{1, 2, 5, 6} {
		t.Run(fmt.Sprintf("%d turns kept whole", n), func(t *testing.T) {
			req := &chat.DialogueRequest{PlayerMessage: "Hi", PlayerName: "Ash", RecentHistory: alternatingHistory(n)}
			lines := historyLines(t, Compile(req, testPersona(), ""))

			require.Len(t, lines, n)
			for i, line := range lines {
				assert.True(t, strings.HasSuffix(line, fmt.Sprintf(": turn %d", i+1)), line)
			}
		})
	}
}

func TestCompile_EightTurnsKeepsLastSix(t *testing.T) {
	req := &chat.DialogueRequest{PlayerMessage: "Hi", PlayerName: "Ash", RecentHistory: alternatingHistory(8)}
	prompt := Compile(req, testPersona(), "")
	lines := historyLines(t, prompt)

	assert.Equal(t, []string{
		"PLAYER: turn 3",
		"MIRA: turn 4",
		"PLAYER: turn 5",
		"MIRA: turn 6",
		"PLAYER: turn 7",
		"MIRA: turn 8",
	}, lines)
	assert.NotContains(t, prompt, "turn 1\n")
	assert.NotContains(t, prompt, "turn 2\n")
}

func TestCompile_EmptyHistoryHasNoSpeakerLabels(t *testing.T) {
	req := &chat.DialogueRequest{PlayerMessage: "Hi", PlayerName: "Ash"}
	lines := historyLines(t, Compile(req, testPersona(), ""))

	assert.Equal(t, []string{NoHistoryPlaceholder}, lines)
}

func TestCompile_EmptyWorldState(t *testing.T) {
	req := &chat.DialogueRequest{PlayerMessage: "Hi", PlayerName: "Ash", WorldState: map[string]string{}}
	prompt := Compile(req, testPersona(), "")

	assert.Contains(t, prompt, "CURRENT WORLD STATE:\n"+NoWorldStatePlaceholder)
}

func TestCompile_WorldStateSortedByKey(t *testing.T) {
	req := &chat.DialogueRequest{
		PlayerMessage: "Hi",
		PlayerName:    "Ash",
		WorldState: map[string]string{
			"time_of_day":  "evening",
			"quest_status": "started",
			"weather":      "rain",
		},
	}
	prompt := Compile(req, testPersona(), "")

	assert.Contains(t, prompt, "CURRENT WORLD STATE:\n- quest_status: started\n- time_of_day: evening\n- weather: rain\n")
}

func TestCompile_Deterministic(t *testing.T) {
	req := &chat.DialogueRequest{
		PlayerMessage: "What news?",
		PlayerName:    "Ash",
		WorldState:    map[string]string{"a": "1", "b": "2", "c": "3", "d": "4"},
		RecentHistory: alternatingHistory(9),
	}
	first := Compile(req, testPersona(), "lore")
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Compile(req, testPersona(), "lore"))
	}
}

func TestCompile_UnicodeNameLabel(t *testing.T) {
	persona := testPersona()
	persona.Name = "Ælfrida"
	req := &chat.DialogueRequest{
		PlayerMessage: "Hi",
		PlayerName:    "Ash",
		RecentHistory: []chat.ConversationTurn{{Speaker: chat.SpeakerNPC, Text: "Well met."}},
	}
	prompt := Compile(req, persona, "")

	assert.Contains(t, prompt, "ÆLFRIDA: Well met.")
	assert.True(t, strings.HasSuffix(prompt, "\nÆLFRIDA:"))
}

func TestBuilder_CustomHistoryLimit(t *testing.T) {
	req := &chat.DialogueRequest{PlayerMessage: "Hi", PlayerName: "Ash", RecentHistory: alternatingHistory(5)}

	prompt, err := New().WithRequest(req).WithPersona(testPersona()).WithHistoryLimit(2).Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"MIRA: turn 4", "PLAYER: turn 5"}, historyLines(t, prompt))

	prompt, err = New().WithRequest(req).WithPersona(testPersona()).WithHistoryLimit(0).Build()
	require.NoError(t, err)
	assert.Equal(t, []string{NoHistoryPlaceholder}, historyLines(t, prompt))
}
