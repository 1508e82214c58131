package services

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/jwebster45206/npc-dialogue/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// capturedRequest is what a fake provider saw.
type capturedRequest struct {
	Method  string
	Path    string
	Headers http.Header
	Body    map[string]any
}

type fakeProvider struct {
	server *httptest.Server

	mu       sync.Mutex
	requests []capturedRequest
}

// newFakeProvider starts a server replying with status and body to every request.
func newFakeProvider(t *testing.T, status int, body string) *fakeProvider {
	t.Helper()
	fp := &fakeProvider{}
	fp.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var decoded map[string]any
		_ = json.Unmarshal(raw, &decoded)

		fp.mu.Lock()
		fp.requests = append(fp.requests, capturedRequest{
			Method:  r.Method,
			Path:    r.URL.Path,
			Headers: r.Header.Clone(),
			Body:    decoded,
		})
		fp.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(fp.server.Close)
	return fp
}

func (fp *fakeProvider) URL() string {
	return fp.server.URL
}

func (fp *fakeProvider) lastRequest(t *testing.T) capturedRequest {
	t.Helper()
	fp.mu.Lock()
	defer fp.mu.Unlock()
	require.NotEmpty(t, fp.requests, "provider received no request")
	return fp.requests[len(fp.requests)-1]
}

func (fp *fakeProvider) requestCount() int {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return len(fp.requests)
}

// closedURL returns the address of a server that is no longer listening.
func closedURL() string {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

func assertCause(t *testing.T, err error, want apperr.Cause) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, apperr.IsServiceError(err), "expected a service error, got %v", err)
	cause, ok := apperr.ServiceCause(err)
	require.True(t, ok)
	assert.Equal(t, want, cause, "error: %v", err)
}
