package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/code-reviewer/internal/core"
)

func newTestOpenAI(t *testing.T, handler http.HandlerFunc) Generator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	g, err := NewOpenAI(OpenAIOptions{
		APIKey:      "sk-test",
		BaseURL:     srv.URL + "/v1",
		Model:       "gpt-3.5-turbo",
		Instruction: "be a reviewer",
		MaxTokens:   1024,
		Temperature: 0.7,
	})
	require.NoError(t, err)
	return g
}

func TestOpenAIGenerator_Generate(t *testing.T) {
	var body map[string]any
	g := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gpt-3.5-turbo",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "Use a const here."}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`))
	})

	out, err := g.Generate(context.Background(), "var x = 1")
	require.NoError(t, err)
	assert.Equal(t, "Use a const here.", out)

	assert.Equal(t, "gpt-3.5-turbo", body["model"])
	assert.EqualValues(t, 1024, body["max_tokens"])
	assert.InDelta(t, 0.7, body["temperature"], 0.0001)

	messages, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	system := messages[0].(map[string]any)
	user := messages[1].(map[string]any)
	assert.Equal(t, "system", system["role"])
	assert.Equal(t, "be a reviewer", system["content"])
	assert.Equal(t, "user", user["role"])
	assert.Equal(t, "var x = 1", user["content"])
}

func TestOpenAIGenerator_Overloaded(t *testing.T) {
	g := newTestOpenAI(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error": {"message": "The server is overloaded", "type": "server_error"}}`))
	})

	_, err := g.Generate(context.Background(), "var x = 1")
	require.Error(t, err)
	assert.Equal(t, core.FailureOverloaded, Classify(err))
}

func TestOpenAIGenerator_Unauthorized(t *testing.T) {
	g := newTestOpenAI(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error"}}`))
	})

	_, err := g.Generate(context.Background(), "var x = 1")
	require.Error(t, err)
	assert.Equal(t, core.FailureUnauthorized, Classify(err))
}

func TestOpenAIGenerator_NoChoices(t *testing.T) {
	g := newTestOpenAI(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "chatcmpl-2", "object": "chat.completion", "choices": []}`))
	})

	_, err := g.Generate(context.Background(), "var x = 1")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestNewOpenAI_RequiresKey(t *testing.T) {
	_, err := NewOpenAI(OpenAIOptions{Model: "gpt-3.5-turbo"})
	assert.Error(t, err)
}
