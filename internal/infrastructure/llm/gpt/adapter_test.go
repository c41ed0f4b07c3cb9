package gpt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"stock-advisor/internal/application/port/output"
	"stock-advisor/internal/infrastructure/logger"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestComplete_SendsSingleUserMessage(t *testing.T) {
	var got map[string]any
	var auth string

	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "Thought: look up\nAction: Stock Ticker Search\nAction Input: Infosys"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`))
	})

	cfg := DefaultConfig("sk-test")
	cfg.BaseURL = srv.URL
	cfg.Logger = logger.NewNop()
	a := NewAdapter(cfg)

	out, err := a.Complete(context.Background(), output.CompletionRequest{
		Prompt: "Question: Is Infosys a good investment choice right now?\nThought:",
		Stop:   []string{"\nObservation:"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Thought: look up\nAction: Stock Ticker Search\nAction Input: Infosys", out)
	assert.Equal(t, "Bearer sk-test", auth)
	assert.Equal(t, DefaultModel, got["model"])
	assert.Equal(t, []any{"\nObservation:"}, got["stop"])

	msgs, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 1)
	msg := msgs[0].(map[string]any)
	assert.Equal(t, openai.ChatMessageRoleUser, msg["role"])

	temp, ok := got["temperature"].(float64)
	require.True(t, ok, "temperature must be sent even when zero")
	assert.Less(t, temp, 1e-6)
}

func TestComplete_APIError(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error"}}`))
	})

	cfg := DefaultConfig("sk-bad")
	cfg.BaseURL = srv.URL
	_, err := NewAdapter(cfg).Complete(context.Background(), output.CompletionRequest{Prompt: "hi"})
	require.Error(t, err)

	var apiErr *openai.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.HTTPStatusCode)
}

func TestComplete_NoChoices(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "x", "object": "chat.completion", "choices": []}`))
	})

	cfg := DefaultConfig("sk-test")
	cfg.BaseURL = srv.URL
	_, err := NewAdapter(cfg).Complete(context.Background(), output.CompletionRequest{Prompt: "hi"})
	assert.ErrorContains(t, err, "no choices")
}

func TestFactory(t *testing.T) {
	f := Factory(DefaultConfig(""))

	_, err := f("  ")
	assert.Error(t, err)

	llm, err := f("sk-test")
	require.NoError(t, err)
	assert.NotNil(t, llm)
}

func TestTemperature(t *testing.T) {
	assert.Greater(t, temperature(0), float32(0))
	assert.Equal(t, float32(0.7), temperature(0.7))
}
