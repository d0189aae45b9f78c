package verify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anatolykoptev/go_clip/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMessagesServer(t *testing.T, handler http.HandlerFunc) *MessagesClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewMessagesClient(engine.Config{
		VerifierAPIBase:    srv.URL + "/",
		VerifierAPIKey:     "secret",
		VerifierModel:      "test-model",
		VerifierAPIVersion: "2023-06-01",
		VerifierMaxTokens:  256,
		Retry:              engine.RetryConfig{MaxRetries: 1, InitialWait: time.Millisecond, MaxWait: time.Millisecond, Multiplier: 1},
	}, nil)
}

func TestMessagesClientRequestShape(t *testing.T) {
	var got messagesRequest
	client := newMessagesServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("content-type"))
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"{\"isEducational\": true}"}]}`))
	})

	text, err := client.Complete(context.Background(), "judge this")
	require.NoError(t, err)
	assert.Equal(t, `{"isEducational": true}`, text)

	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, 256, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "judge this", got.Messages[0].Content)
}

func TestMessagesClientUpstreamError(t *testing.T) {
	client := newMessagesServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"type":"authentication_error"}}`))
	})

	_, err := client.Complete(context.Background(), "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrUpstream)
}

func TestMessagesClientEmptyContent(t *testing.T) {
	client := newMessagesServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":[]}`))
	})

	_, err := client.Complete(context.Background(), "x")
	assert.ErrorIs(t, err, engine.ErrParse)
}

func TestVerifierOverMessagesClient(t *testing.T) {
	client := newMessagesServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"not json at all"}]}`))
	})

	res := New(client).Verify(context.Background(), engine.VideoRecord{ID: "a", Title: "t"})
	assert.Equal(t, FailedResult(), res)
}
