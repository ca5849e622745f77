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

// openAIBaseURL is the default Chat Completions endpoint root. Package-level
// var for test substitution.
var openAIBaseURL = "https://api.openai.com/v1"

const defaultOpenAIModel = "gpt-4o"

// OpenAIClient calls the OpenAI Chat Completions API, or any compatible
// service when a base URL is configured.
type OpenAIClient struct {
	apiKey    string
	baseURL   string
	model     string
	maxTokens int
	client    *http.Client
}

// NewOpenAIClient builds a client from cfg.
func NewOpenAIClient(cfg types.AIConfig) *OpenAIClient {
	c := &OpenAIClient{
		apiKey:    cfg.APIKey,
		baseURL:   openAIBaseURL,
		model:     cfg.Model,
		maxTokens: maxTokens(cfg),
		client:    httpClient(cfg),
	}
	if cfg.BaseURL != "" {
		c.baseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if c.model == "" {
		c.model = defaultOpenAIModel
	}
	return c
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete sends system and prompt as a two-message chat and returns the
// first choice. It retries once on transient failures.
func (c *OpenAIClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	var messages []chatMessage
	if system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	body, err := json.Marshal(chatRequest{Model: c.model, Messages: messages, MaxTokens: c.maxTokens})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	out, err := withRetry(ctx, func() (string, error) { return c.doRequest(ctx, body) })
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	return out, nil
}

func (c *OpenAIClient) doRequest(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &APIError{Provider: "openai", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("api error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return chatResp.Choices[0].Message.Content, nil
}
