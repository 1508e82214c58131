package runner

import (
	"time"

	"github.com/jwebster45206/npc-dialogue/pkg/chat"
)

// ResetHistoryPrompt as a player_message clears the suite's history instead of
// calling the API.
const ResetHistoryPrompt = "RESET_HISTORY"

// TestSuite defines one conversation against a single NPC.
// Can either be a regular test with Steps, or a suite that references other Cases
type TestSuite struct {
	Name        string                  `json:"name"`
	NPCID       string                  `json:"npc_id,omitempty"`
	PlayerName  string                  `json:"player_name,omitempty"`
	WorldState  map[string]string       `json:"world_state,omitempty"`
	SeedHistory []chat.ConversationTurn `json:"seed_history,omitempty"`
	Steps       []TestStep              `json:"steps,omitempty"`
	Cases       []string                `json:"cases,omitempty"`
}

// IsSequence returns true if this is a suite that sequences other cases
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// TestStep sends one player message. WorldState entries override the suite's
// world state from this step on.
type TestStep struct {
	Name          string            `json:"name,omitempty"`
	PlayerMessage string            `json:"player_message"`
	NPCID         string            `json:"npc_id,omitempty"`
	WorldState    map[string]string `json:"world_state,omitempty"`
	Expectations  Expectations      `json:"expect"`
}

// Expectations defines what to check after a test step executes
type Expectations struct {
	// Status defaults to 200; Code is checked only on error replies
	Status *int   `json:"status,omitempty"`
	Code   string `json:"code,omitempty"`

	// Response Analysis
	ResponseContains    []string `json:"response_contains,omitempty"`
	ResponseNotContains []string `json:"response_not_contains,omitempty"`
	ResponseRegex       string   `json:"response_regex,omitempty"`
	ResponseMinLength   *int     `json:"response_min_length,omitempty"`
	ResponseMaxLength   *int     `json:"response_max_length,omitempty"`
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	TestName     string
	StepName     string
	Success      bool
	Error        error
	Duration     time.Duration
	ResponseText string
	IsReset      bool // reset steps do not count toward pass/fail
}

// TestJob represents a test suite to be executed
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Job      TestJob
	Results  []TestResult
	Error    error
	Duration time.Duration
}
