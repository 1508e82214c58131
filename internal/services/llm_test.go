package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jwebster45206/npc-dialogue/pkg/apperr"
	"github.com/stretchr/testify/assert"
)

func TestPostJSON_UnbuildableRequest(t *testing.T) {
	t.Run("bad base url", func(t *testing.T) {
		service := NewOpenAIService("test-api-key", testLogger(), WithBaseURL("http://bad host"))
		_, err := service.Complete(context.Background(), "prompt")
		assertCause(t, err, apperr.CauseUpstream)
	})

	t.Run("unencodable body", func(t *testing.T) {
		_, err := postJSON(context.Background(), http.DefaultClient, "http://localhost", nil, map[string]any{"f": func() {}})
		assertCause(t, err, apperr.CauseUpstream)
	})
}

func TestWithHTTPClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	client := &http.Client{Timeout: 20 * time.Millisecond}
	service := NewVeniceService("test-api-key", testLogger(), WithBaseURL(srv.URL), WithHTTPClient(client))
	assert.Same(t, client, service.opts.httpClient)

	_, err := service.Complete(context.Background(), "prompt")
	assertCause(t, err, apperr.CauseNetwork)
}
