// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	nurl "net/url"
	"unicode/utf8"

	"github.com/go-shiori/go-readability"
)

const (
	// minArticleLength rejects login walls and empty pages.
	minArticleLength = 100
	maxArticleLength = 15000
)

// ArticleExtractor fetches a web page and extracts its readable text.
type ArticleExtractor struct {
	http httpSettings
}

// Extract returns the main text of the page at url.
func (e *ArticleExtractor) Extract(ctx context.Context, url string) (string, error) {
	parsed, err := nurl.Parse(url)
	if err != nil {
		return "", fmt.Errorf("parsing article URL: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	body, err := e.http.do(ctx, req)
	if err != nil {
		return "", err
	}

	article, err := readability.FromReader(bytes.NewReader(body), parsed)
	if err != nil {
		return "", fmt.Errorf("readability: %w", err)
	}

	text := normalizeText(article.TextContent)
	if n := utf8.RuneCountInString(text); n < minArticleLength {
		return "", fmt.Errorf("extracted article too short (%d chars)", n)
	}
	if utf8.RuneCountInString(text) > maxArticleLength {
		text = string([]rune(text)[:maxArticleLength])
	}
	return text, nil
}
