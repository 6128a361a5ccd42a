// Package generate calls an OpenAI-compatible chat completions endpoint.
// The endpoint is a collaborator: any failure here is recoverable and the
// pipeline degrades instead of surfacing the error to the asset.
package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redfield/usiop/internal/history"
)

// Config holds parameters for the chat completions client.
type Config struct {
	APIURL    string
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// Client generates responses through an OpenAI-compatible API.
type Client struct {
	cfg  Config
	http *http.Client
}

// New creates a Client with defaults applied.
func New(cfg Config) *Client {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generate sends the composed system instructions, the session's prior
// messages in chronological order, and the new query. The meta map is
// attached to the request for external traceability only; it has no effect
// on behavior.
func (c *Client) Generate(ctx context.Context, systemInstructions string, prior []history.Message, query string, meta map[string]string) (string, error) {
	messages := make([]chatMessage, 0, len(prior)+2)
	messages = append(messages, chatMessage{Role: "system", Content: systemInstructions})
	for _, m := range prior {
		role := "user"
		if m.Role == history.RoleAI {
			role = "assistant"
		}
		messages = append(messages, chatMessage{Role: role, Content: m.Content})
	}
	messages = append(messages, chatMessage{Role: "user", Content: query})

	payload := map[string]any{
		"model":       c.cfg.Model,
		"messages":    messages,
		"max_tokens":  c.cfg.MaxTokens,
		"temperature": 0.3,
	}
	if len(meta) > 0 {
		payload["metadata"] = meta
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("generate: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("generate: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generate: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil || len(result.Choices) == 0 {
		return "", fmt.Errorf("generate: empty completion response")
	}

	text := strings.TrimSpace(result.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("generate: blank completion")
	}
	return text, nil
}
