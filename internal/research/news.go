// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/pdiddy/content-engine/internal/httputil"
	"github.com/pdiddy/content-engine/pkg/types"
)

// googleNewsURL is the Google News RSS search endpoint. Declared as a var so
// tests can substitute an httptest server.
var googleNewsURL = "https://news.google.com/rss/search"

const (
	defaultLanguage  = "es"
	defaultNewsItems = 3
	defaultTimeout   = 20 * time.Second
	defaultUserAgent = "content-engine/0.1"
)

// LanguageProfile selects a Google News edition.
type LanguageProfile struct {
	Code string // "es"
	HL   string // "es-419"
	GL   string // "US"
	CEID string // "US:es-419"
}

// LanguageProfiles are the supported editions keyed by code.
var LanguageProfiles = map[string]LanguageProfile{
	"en": {Code: "en", HL: "en-CA", GL: "CA", CEID: "CA:en"},
	"fr": {Code: "fr", HL: "fr-CA", GL: "CA", CEID: "CA:fr"},
	"es": {Code: "es", HL: "es-419", GL: "US", CEID: "US:es-419"},
	"pt": {Code: "pt", HL: "pt-BR", GL: "BR", CEID: "BR:pt-419"},
}

// NewsFinder looks up recent headlines for a topic on Google News.
type NewsFinder struct {
	client     *http.Client
	userAgent  string
	maxRetries int
	lang       LanguageProfile
	maxItems   int
}

// NewNewsFinder builds a finder from cfg. Unknown languages fall back to Spanish.
func NewNewsFinder(cfg types.NewsConfig) *NewsFinder {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	lang, ok := LanguageProfiles[strings.ToLower(cfg.Language)]
	if !ok {
		lang = LanguageProfiles[defaultLanguage]
	}
	maxItems := cfg.MaxItems
	if maxItems <= 0 {
		maxItems = defaultNewsItems
	}
	return &NewsFinder{
		client:     &http.Client{Timeout: timeout},
		userAgent:  ua,
		maxRetries: cfg.MaxRetries,
		lang:       lang,
		maxItems:   maxItems,
	}
}

// Find returns up to limit headlines for topic (the configured maximum
// when limit is 0).
func (n *NewsFinder) Find(ctx context.Context, topic string, limit int) ([]types.NewsItem, error) {
	if limit <= 0 {
		limit = n.maxItems
	}
	u := fmt.Sprintf("%s?q=%s&hl=%s&gl=%s&ceid=%s",
		googleNewsURL,
		url.QueryEscape(topic),
		url.QueryEscape(n.lang.HL),
		url.QueryEscape(n.lang.GL),
		url.QueryEscape(n.lang.CEID),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.1")

	resp, err := httputil.DoWithRetry(ctx, n.client, req, n.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("google news: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading google news: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("google news rss http %d: %s", resp.StatusCode, strings.TrimSpace(string(raw[:min(len(raw), 512)])))
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing google news: %w", err)
	}

	out := make([]types.NewsItem, 0, limit)
	for _, it := range feed.Items {
		if len(out) >= limit {
			break
		}
		title, source := splitSource(strings.TrimSpace(it.Title))
		item := types.NewsItem{Title: title, Link: strings.TrimSpace(it.Link), Source: source}
		if it.PublishedParsed != nil {
			item.Published = it.PublishedParsed.UTC()
		}
		out = append(out, item)
	}
	return out, nil
}

// splitSource separates the " - Publisher" suffix Google News appends to titles.
func splitSource(title string) (string, string) {
	i := strings.LastIndex(title, " - ")
	if i <= 0 {
		return title, ""
	}
	return strings.TrimSpace(title[:i]), strings.TrimSpace(title[i+3:])
}
