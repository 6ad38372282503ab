package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"docqa/internal/llm"
)

// Defaults used when Config leaves a field empty.
const (
	DefaultBaseURL = "http://127.0.0.1:11434"
	DefaultModel   = "mistral"
	DefaultTimeout = 120 * time.Second
)

var _ llm.Generator = (*Client)(nil)

// Client is an Ollama /api/chat client. Failures are returned to the
// caller as-is; requests are never retried.
type Client struct {
	baseURL string
	model   string
	client  *http.Client
}

// Config configures the Ollama client.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// NewClient creates a new chat client using the provided configuration.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

// Name returns the identifier of this generator implementation.
func (c *Client) Name() string { return "ollama" }

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type options struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Stream   bool      `json:"stream"`
	Options  options   `json:"options"`
	Messages []message `json:"messages"`
}

type chatResponse struct {
	Message message `json:"message"`
}

// Generate sends the system instruction and question to Ollama and returns
// the assistant's reply.
func (c *Client) Generate(ctx context.Context, prompt llm.Prompt) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:   c.model,
		Stream:  false,
		Options: options{Temperature: prompt.Temperature, NumPredict: prompt.MaxTokens},
		Messages: []message{
			{Role: "system", Content: prompt.SystemMessage()},
			{Role: "user", Content: prompt.User},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		return "", fmt.Errorf("ollama chat returned %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	return out.Message.Content, nil
}
