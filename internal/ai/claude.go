// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/content-engine/pkg/types"
)

// claudeAPIURL is the Claude API endpoint. Package-level var for test substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

const defaultClaudeModel = "claude-sonnet-4-5"

// ClaudeClient calls the Claude Messages API.
type ClaudeClient struct {
	apiKey    string
	url       string
	model     string
	maxTokens int
	client    *http.Client
}

// NewClaudeClient builds a client from cfg.
func NewClaudeClient(cfg types.AIConfig) *ClaudeClient {
	c := &ClaudeClient{
		apiKey:    cfg.APIKey,
		url:       claudeAPIURL,
		model:     cfg.Model,
		maxTokens: maxTokens(cfg),
		client:    httpClient(cfg),
	}
	if cfg.BaseURL != "" {
		c.url = strings.TrimRight(cfg.BaseURL, "/") + "/v1/messages"
	}
	if c.model == "" {
		c.model = defaultClaudeModel
	}
	return c
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	System    string          `json:"system,omitempty"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Complete sends prompt with system as the system prompt and returns the
// concatenated text blocks of the reply.
func (c *ClaudeClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	body, err := json.Marshal(claudeRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    system,
		Messages:  []claudeMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	out, err := withRetry(ctx, func() (string, error) { return c.doRequest(ctx, body) })
	if err != nil {
		return "", fmt.Errorf("claude: %w", err)
	}
	return out, nil
}

func (c *ClaudeClient) doRequest(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", &APIError{Provider: "claude", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", fmt.Errorf("decoding Claude response: %w", err)
	}

	var sb strings.Builder
	for _, block := range cResp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no text content in Claude API response")
	}
	return sb.String(), nil
}
