// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source fetches candidate posts from the configured content
// source: Apify LinkedIn actors, a Mastodon server, or RSS/Atom feeds.
package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/pdiddy/content-engine/internal/httputil"
	"github.com/pdiddy/content-engine/pkg/types"
)

const (
	defaultTimeout   = 120 * time.Second
	defaultUserAgent = "content-engine/0.1"
	maxBodySize      = 10 * 1024 * 1024
)

// Gateway is the content source used by the acquisition engine.
type Gateway interface {
	// SearchByKeyword returns up to limit posts matching query.
	SearchByKeyword(ctx context.Context, query string, limit int) ([]types.CandidateItem, error)

	// FetchByProfiles returns up to limit recent posts from the given profiles.
	FetchByProfiles(ctx context.Context, urls []string, limit int) ([]types.CandidateItem, error)
}

// New builds the gateway selected by cfg.Provider. Tokens must already be
// resolved from secrets.
func New(cfg types.SourceConfig, logger *slog.Logger) (Gateway, error) {
	switch cfg.Provider {
	case "", types.SourceApify:
		if cfg.Apify.Token == "" {
			return nil, fmt.Errorf("apify source requires a token")
		}
		return NewApifyGateway(cfg), nil
	case types.SourceMastodon:
		if cfg.Mastodon.Instance == "" {
			return nil, fmt.Errorf("mastodon source requires an instance URL")
		}
		return NewMastodonGateway(cfg, logger), nil
	case types.SourceFeed:
		return NewFeedGateway(cfg, logger), nil
	}
	return nil, fmt.Errorf("unknown source provider %q (want apify, mastodon or feed)", cfg.Provider)
}

// httpSettings is the HTTP plumbing shared by the gateways.
type httpSettings struct {
	client     *http.Client
	userAgent  string
	maxRetries int
}

func newHTTPSettings(cfg types.HTTPConfig) httpSettings {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	return httpSettings{
		client:     &http.Client{Timeout: timeout},
		userAgent:  ua,
		maxRetries: cfg.MaxRetries,
	}
}

// do sends req with retry on 429/503 and returns the body of a 2xx answer.
func (h httpSettings) do(ctx context.Context, req *http.Request) ([]byte, error) {
	req.Header.Set("User-Agent", h.userAgent)
	resp, err := httputil.DoWithRetry(ctx, h.client, req, h.maxRetries)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP %d from %s: %s", resp.StatusCode, req.URL.Host, truncate(string(body), 200))
	}
	return body, nil
}

// truncate keeps the first n runes of s.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
