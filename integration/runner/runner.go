package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/jwebster45206/npc-dialogue/pkg/chat"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

const (
	defaultNPCID      = "tavern_keeper_01"
	defaultPlayerName = "Ash"
)

// Runner executes conversation suites against a running dialogue API. The API
// is stateless, so the runner carries history between steps the way a game
// client would.
type Runner struct {
	BaseURL           string
	Client            *http.Client
	Timeout           time.Duration
	Logger            func(format string, args ...interface{})
	ErrorHandlingMode ErrorHandlingMode
	NPCOverride       string // If set, overrides the npc for all suites
}

// NewRunner creates a new test runner
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Client:            &http.Client{Timeout: 60 * time.Second},
		Timeout:           30 * time.Second,
		Logger:            func(string, ...interface{}) {},
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadTestSuite loads a test suite from a JSON file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := json.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse JSON in %s: %w", filename, err)
	}
	return suite, nil
}

// LoadTestSuiteWithExpansion loads a suite, expanding sequences into the
// suites they reference.
func LoadTestSuiteWithExpansion(filename string, casesDir string) ([]TestJob, error) {
	suite, err := LoadTestSuite(filename)
	if err != nil {
		return nil, err
	}

	if !suite.IsSequence() {
		return []TestJob{{
			Name:     suite.Name,
			Suite:    suite,
			CaseFile: filename,
		}}, nil
	}

	var jobs []TestJob
	for _, caseFile := range suite.Cases {
		subJobs, err := LoadTestSuiteWithExpansion(filepath.Join(casesDir, caseFile), casesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}
		jobs = append(jobs, subJobs...)
	}
	return jobs, nil
}

// RunSuite executes a complete test suite
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job:     TestJob{Name: suite.Name, Suite: suite},
		Results: make([]TestResult, 0, len(suite.Steps)),
	}

	conv := newConversation(suite, r.NPCOverride)

	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.Name)
		stepResult := r.runStep(ctx, conv, step)
		stepResult.TestName = suite.Name
		result.Results = append(result.Results, stepResult)

		if !stepResult.Success && r.ErrorHandlingMode == ErrorHandlingExit {
			result.Error = fmt.Errorf("step %d (%s) failed: %w", i+1, step.Name, stepResult.Error)
			break
		}
	}

	if result.Error == nil {
		for _, sr := range result.Results {
			if !sr.Success {
				result.Error = fmt.Errorf("step '%s' failed: %w", sr.StepName, sr.Error)
				break
			}
		}
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

// conversation is the caller-owned state resent on every request.
type conversation struct {
	npcID      string
	playerName string
	world      map[string]string
	seed       []chat.ConversationTurn
	history    []chat.ConversationTurn
}

func newConversation(suite TestSuite, npcOverride string) *conversation {
	c := &conversation{
		npcID:      firstNonEmpty(npcOverride, suite.NPCID, defaultNPCID),
		playerName: firstNonEmpty(suite.PlayerName, defaultPlayerName),
		world:      make(map[string]string),
		seed:       suite.SeedHistory,
	}
	for k, v := range suite.WorldState {
		c.world[k] = v
	}
	c.history = append([]chat.ConversationTurn(nil), c.seed...)
	return c
}

func (c *conversation) request(step TestStep) *chat.DialogueRequest {
	for k, v := range step.WorldState {
		c.world[k] = v
	}
	world := make(map[string]string, len(c.world))
	for k, v := range c.world {
		world[k] = v
	}
	return &chat.DialogueRequest{
		PlayerMessage: step.PlayerMessage,
		PlayerName:    c.playerName,
		NPCID:         firstNonEmpty(step.NPCID, c.npcID),
		WorldState:    world,
		RecentHistory: append([]chat.ConversationTurn(nil), c.history...),
	}
}

func (c *conversation) record(message, reply string) {
	c.history = append(c.history,
		chat.ConversationTurn{Speaker: chat.SpeakerPlayer, Text: message},
		chat.ConversationTurn{Speaker: chat.SpeakerNPC, Text: reply},
	)
}

func (r *Runner) runStep(ctx context.Context, conv *conversation, step TestStep) TestResult {
	start := time.Now()
	result := TestResult{StepName: step.Name}

	if step.PlayerMessage == ResetHistoryPrompt {
		conv.history = append([]chat.ConversationTurn(nil), conv.seed...)
		result.Success = true
		result.IsReset = true
		result.Duration = time.Since(start)
		return result
	}

	stepCtx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	status, body, err := r.postDialogue(stepCtx, conv.request(step))
	result.Duration = time.Since(start)
	if err != nil {
		result.Error = err
		return result
	}

	reply, err := checkExpectations(status, body, step.Expectations)
	result.ResponseText = reply
	if err != nil {
		result.Error = err
		return result
	}

	if status == http.StatusOK {
		conv.record(step.PlayerMessage, reply)
	}
	result.Success = true
	return result
}

func (r *Runner) postDialogue(ctx context.Context, req *chat.DialogueRequest) (int, []byte, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", r.BaseURL+"/v1/dialogue", bytes.NewBuffer(jsonData))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(httpReq)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

// checkExpectations validates one reply and returns the NPC text.
func checkExpectations(status int, body []byte, expect Expectations) (string, error) {
	wantStatus := http.StatusOK
	if expect.Status != nil {
		wantStatus = *expect.Status
	}
	if status != wantStatus {
		return "", fmt.Errorf("expected status %d, got %d: %s", wantStatus, status, string(body))
	}

	if status != http.StatusOK {
		var errResp struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		if err := json.Unmarshal(body, &errResp); err != nil {
			return "", fmt.Errorf("failed to parse error response: %w", err)
		}
		if expect.Code != "" && errResp.Code != expect.Code {
			return "", fmt.Errorf("expected error code %s, got %s (%s)", expect.Code, errResp.Code, errResp.Error)
		}
		return "", nil
	}

	var resp chat.DialogueResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	reply := resp.NPCResponse

	if strings.TrimSpace(reply) == "" {
		return reply, fmt.Errorf("npc_response is empty")
	}
	if resp.Meta[chat.MetaModel] == "" || resp.Meta[chat.MetaNPCID] == "" {
		return reply, fmt.Errorf("meta is missing model or npc_id: %v", resp.Meta)
	}

	lower := strings.ToLower(reply)
	for _, want := range expect.ResponseContains {
		if !strings.Contains(lower, strings.ToLower(want)) {
			return reply, fmt.Errorf("response does not contain %q: %s", want, reply)
		}
	}
	for _, unwanted := range expect.ResponseNotContains {
		if strings.Contains(lower, strings.ToLower(unwanted)) {
			return reply, fmt.Errorf("response contains %q: %s", unwanted, reply)
		}
	}
	if expect.ResponseRegex != "" {
		re, err := regexp.Compile(expect.ResponseRegex)
		if err != nil {
			return reply, fmt.Errorf("invalid response_regex: %w", err)
		}
		if !re.MatchString(reply) {
			return reply, fmt.Errorf("response does not match /%s/: %s", expect.ResponseRegex, reply)
		}
	}
	if expect.ResponseMinLength != nil && len(reply) < *expect.ResponseMinLength {
		return reply, fmt.Errorf("response length %d below minimum %d", len(reply), *expect.ResponseMinLength)
	}
	if expect.ResponseMaxLength != nil && len(reply) > *expect.ResponseMaxLength {
		return reply, fmt.Errorf("response length %d above maximum %d", len(reply), *expect.ResponseMaxLength)
	}
	return reply, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
