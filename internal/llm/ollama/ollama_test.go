package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/llm"
)

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(Config{})
	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Equal(t, DefaultModel, c.Model())
	assert.Equal(t, DefaultTimeout, c.client.Timeout)
	assert.Equal(t, "ollama", c.Name())
}

func TestGenerate_SendsChatRequest(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"role": "assistant", "content": "Nassau and Suffolk."},
		})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL + "/", Model: "llama2"})
	answer, err := c.Generate(context.Background(), llm.Prompt{
		System:      "SYS",
		Context:     "[1] ctx",
		User:        "Where?",
		Temperature: 0.2,
		MaxTokens:   220,
	})
	require.NoError(t, err)
	assert.Equal(t, "Nassau and Suffolk.", answer)

	assert.Equal(t, "llama2", got.Model)
	assert.False(t, got.Stream)
	assert.Equal(t, 0.2, got.Options.Temperature)
	assert.Equal(t, 220, got.Options.NumPredict)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, message{Role: "system", Content: "SYS\n\nCONTEXT:\n[1] ctx"}, got.Messages[0])
	assert.Equal(t, message{Role: "user", Content: "Where?"}, got.Messages[1])
}

func TestGenerate_NonSuccessStatusIsError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewClient(Config{BaseURL: srv.URL}).Generate(context.Background(), llm.Prompt{User: "q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Equal(t, 1, calls, "no retry")
}

func TestGenerate_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := NewClient(Config{BaseURL: srv.URL, Timeout: 20 * time.Millisecond}).
		Generate(context.Background(), llm.Prompt{User: "q"})
	assert.Error(t, err)
}
