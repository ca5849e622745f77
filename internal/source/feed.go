// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/pdiddy/content-engine/internal/logging"
	"github.com/pdiddy/content-engine/pkg/types"
)

// FeedGateway treats RSS/Atom feeds as a source. Profiles are feed URLs;
// keyword search filters the items of the configured feeds locally.
type FeedGateway struct {
	http     httpSettings
	feeds    []string
	articles *ArticleExtractor
	logger   *slog.Logger
}

// NewFeedGateway builds the gateway from cfg. With cfg.FetchArticles set,
// items without a body are filled from the linked page.
func NewFeedGateway(cfg types.SourceConfig, logger *slog.Logger) *FeedGateway {
	h := newHTTPSettings(cfg.HTTPConfig)
	g := &FeedGateway{
		http:   h,
		feeds:  cfg.Feeds,
		logger: logging.OrDiscard(logger),
	}
	if cfg.FetchArticles {
		g.articles = &ArticleExtractor{http: h}
	}
	return g
}

// SearchByKeyword returns items of the configured feeds whose title or body
// contains any term of query.
func (g *FeedGateway) SearchByKeyword(ctx context.Context, query string, limit int) ([]types.CandidateItem, error) {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 || len(g.feeds) == 0 {
		return nil, nil
	}
	return g.collect(ctx, g.feeds, limit, func(c types.CandidateItem, title string) bool {
		return matchesAnyKeyword(strings.ToLower(title+" "+c.Text), terms)
	})
}

// FetchByProfiles reads each URL as a feed.
func (g *FeedGateway) FetchByProfiles(ctx context.Context, urls []string, limit int) ([]types.CandidateItem, error) {
	return g.collect(ctx, urls, limit, nil)
}

// collect parses each feed in turn and keeps items accepted by match. A feed
// that fails is logged and skipped; an error is returned only when all fail.
func (g *FeedGateway) collect(ctx context.Context, feeds []string, limit int, match func(types.CandidateItem, string) bool) ([]types.CandidateItem, error) {
	parser := gofeed.NewParser()
	var (
		out     []types.CandidateItem
		lastErr error
		failed  int
	)
	for _, feedURL := range feeds {
		if limit > 0 && len(out) >= limit {
			break
		}
		feed, err := g.fetchFeed(ctx, parser, feedURL)
		if err != nil {
			failed++
			lastErr = err
			g.logger.Warn("feed fetch failed", "feed", feedURL, "error", err)
			continue
		}
		for _, it := range feed.Items {
			if limit > 0 && len(out) >= limit {
				break
			}
			c := feedCandidate(feed, it)
			if match != nil && !match(c, it.Title) {
				continue
			}
			out = append(out, g.withArticle(ctx, c))
		}
	}
	if failed > 0 && failed == len(feeds) {
		return nil, fmt.Errorf("reading feeds: %w", lastErr)
	}
	return out, nil
}

func (g *FeedGateway) fetchFeed(ctx context.Context, parser *gofeed.Parser, feedURL string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.1")
	body, err := g.http.do(ctx, req)
	if err != nil {
		return nil, err
	}
	feed, err := parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}
	return feed, nil
}

// feedCandidate maps a feed item without any network access.
func feedCandidate(feed *gofeed.Feed, it *gofeed.Item) types.CandidateItem {
	text := HTMLToText(firstNonEmpty(it.Content, it.Description))
	link := strings.TrimSpace(it.Link)

	author := feed.Title
	if it.Author != nil && it.Author.Name != "" {
		author = it.Author.Name
	}

	return types.CandidateItem{
		Locator:    firstNonEmpty(link, it.GUID),
		Text:       text,
		AuthorName: strings.TrimSpace(author),
		Engagement: types.Engagement{Comments: slashComments(it)},
	}
}

// withArticle fills an empty body from the linked page when article
// fetching is on. Only items that already passed the keyword match get here.
func (g *FeedGateway) withArticle(ctx context.Context, c types.CandidateItem) types.CandidateItem {
	if c.Text != "" || g.articles == nil || !strings.HasPrefix(c.Locator, "http") {
		return c
	}
	article, err := g.articles.Extract(ctx, c.Locator)
	if err != nil {
		g.logger.Debug("article extraction failed", "url", c.Locator, "error", err)
		return c
	}
	c.Text = article
	return c
}

// slashComments reads the slash:comments extension, 0 when absent.
func slashComments(it *gofeed.Item) int {
	ext, ok := it.Extensions["slash"]["comments"]
	if !ok || len(ext) == 0 {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(ext[0].Value))
	if err != nil {
		return 0
	}
	return n
}

func matchesAnyKeyword(text string, keywords []string) bool {
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if len(k) < 3 {
			continue
		}
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
