// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ai talks to the text-generation backends and implements the
// generation capabilities used by the pipeline: query expansion,
// engagement scoring, outlining, rewriting and idea generation.
package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pdiddy/content-engine/pkg/types"
)

const (
	defaultMaxTokens = 2048
	defaultTimeout   = 60 * time.Second
	maxAttempts      = 2
)

// Completer sends one system and user prompt pair and returns the reply text.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// APIError is a non-2xx answer from a provider.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: HTTP %d: %s", e.Provider, e.StatusCode, e.Body)
}

// Retryable reports whether the request may succeed if repeated
// (rate limits and server errors).
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode >= http.StatusInternalServerError
}

// backoffBase is the wait before the second attempt. Tests override it.
var backoffBase = 2 * time.Second

// withRetry runs call up to maxAttempts times, retrying only transport
// failures and retryable API errors.
func withRetry(ctx context.Context, call func() (string, error)) (string, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * backoffBase):
			}
		}

		out, err := call()
		if err == nil {
			return out, nil
		}
		lastErr = err

		var ae *APIError
		if errors.As(err, &ae) && !ae.Retryable() {
			return "", err
		}
		if ctx.Err() != nil {
			return "", err
		}
	}
	return "", lastErr
}

// New builds the completer selected by cfg.Provider. The API key must
// already be resolved from secrets.
func New(cfg types.AIConfig, logger *slog.Logger) (Completer, error) {
	switch cfg.Provider {
	case "", types.ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai provider requires an API key")
		}
		return NewOpenAIClient(cfg), nil
	case types.ProviderClaude:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("claude provider requires an API key")
		}
		return NewClaudeClient(cfg), nil
	case types.ProviderStub:
		return &StubClient{}, nil
	}
	return nil, fmt.Errorf("unknown AI provider %q (want openai, claude or stub)", cfg.Provider)
}

func httpClient(cfg types.AIConfig) *http.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

func maxTokens(cfg types.AIConfig) int {
	if cfg.MaxTokens > 0 {
		return cfg.MaxTokens
	}
	return defaultMaxTokens
}
