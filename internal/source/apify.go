// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/content-engine/pkg/types"
)

// apifyBaseURL is the Apify API root. Declared as a var so tests can
// substitute an httptest server.
var apifyBaseURL = "https://api.apify.com/v2"

// Default LinkedIn actors: keyword post search and profile posts.
const (
	DefaultSearchActor  = "buIWk2uOUzTmcLsuB"
	DefaultProfileActor = "A3cAPGpwBEG8RJwse"
)

// ApifyGateway runs Apify LinkedIn scraper actors synchronously and maps
// their dataset items to candidates.
type ApifyGateway struct {
	http         httpSettings
	baseURL      string
	token        string
	searchActor  string
	profileActor string
}

// NewApifyGateway builds the gateway from cfg.
func NewApifyGateway(cfg types.SourceConfig) *ApifyGateway {
	g := &ApifyGateway{
		http:         newHTTPSettings(cfg.HTTPConfig),
		baseURL:      apifyBaseURL,
		token:        cfg.Apify.Token,
		searchActor:  cfg.Apify.SearchActor,
		profileActor: cfg.Apify.ProfileActor,
	}
	if cfg.Apify.BaseURL != "" {
		g.baseURL = strings.TrimRight(cfg.Apify.BaseURL, "/")
	}
	if g.searchActor == "" {
		g.searchActor = DefaultSearchActor
	}
	if g.profileActor == "" {
		g.profileActor = DefaultProfileActor
	}
	return g
}

type apifySearchInput struct {
	SearchQueries   []string `json:"searchQueries"`
	MaxPosts        int      `json:"maxPosts"`
	MaxReactions    int      `json:"maxReactions"`
	ScrapeComments  bool     `json:"scrapeComments"`
	ScrapeReactions bool     `json:"scrapeReactions"`
	SortBy          string   `json:"sortBy"`
}

type apifyProfileInput struct {
	TargetURLs        []string `json:"targetUrls"`
	MaxPosts          int      `json:"maxPosts"`
	MaxComments       int      `json:"maxComments"`
	MaxReactions      int      `json:"maxReactions"`
	PostedLimit       string   `json:"postedLimit"`
	IncludeReposts    bool     `json:"includeReposts"`
	IncludeQuotePosts bool     `json:"includeQuotePosts"`
	ScrapeComments    bool     `json:"scrapeComments"`
	ScrapeReactions   bool     `json:"scrapeReactions"`
}

type apifyAuthor struct {
	Name string `json:"name"`
}

// apifyItem covers the field spellings used by the LinkedIn actors.
type apifyItem struct {
	URL           string          `json:"url"`
	PostURL       string          `json:"postUrl"`
	Text          string          `json:"text"`
	Author        json.RawMessage `json:"author"`
	AuthorName    string          `json:"authorName"`
	LikesCount    *int            `json:"likesCount"`
	NumLikes      *int            `json:"numLikes"`
	CommentsCount *int            `json:"commentsCount"`
	NumComments   *int            `json:"numComments"`
	SharesCount   *int            `json:"sharesCount"`
	NumShares     *int            `json:"numShares"`
}

// SearchByKeyword runs the search actor for query.
func (g *ApifyGateway) SearchByKeyword(ctx context.Context, query string, limit int) ([]types.CandidateItem, error) {
	return g.run(ctx, g.searchActor, apifySearchInput{
		SearchQueries:   []string{query},
		MaxPosts:        limit,
		MaxReactions:    5,
		ScrapeComments:  true,
		ScrapeReactions: true,
		SortBy:          "relevance",
	}, limit)
}

// FetchByProfiles runs the profile actor over urls, limited to the last week.
func (g *ApifyGateway) FetchByProfiles(ctx context.Context, urls []string, limit int) ([]types.CandidateItem, error) {
	if len(urls) == 0 {
		return nil, nil
	}
	return g.run(ctx, g.profileActor, apifyProfileInput{
		TargetURLs:        urls,
		MaxPosts:          limit,
		MaxComments:       5,
		MaxReactions:      5,
		PostedLimit:       "week",
		IncludeReposts:    true,
		IncludeQuotePosts: true,
		ScrapeComments:    true,
		ScrapeReactions:   true,
	}, limit)
}

func (g *ApifyGateway) run(ctx context.Context, actor string, input any, limit int) ([]types.CandidateItem, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("encoding actor input: %w", err)
	}

	// The token travels in a header: transport errors quote the URL.
	reqURL := fmt.Sprintf("%s/acts/%s/run-sync-get-dataset-items", g.baseURL, url.PathEscape(actor))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.token)

	data, err := g.http.do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("apify actor %s: %w", actor, err)
	}

	var items []apifyItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parsing apify dataset: %w", err)
	}

	out := make([]types.CandidateItem, 0, len(items))
	for _, it := range items {
		out = append(out, it.candidate())
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (it apifyItem) candidate() types.CandidateItem {
	c := types.CandidateItem{
		Locator:    firstNonEmpty(it.URL, it.PostURL),
		Text:       strings.TrimSpace(it.Text),
		AuthorName: it.AuthorName,
		Engagement: types.Engagement{
			Likes:    derefOr(it.LikesCount, it.NumLikes),
			Comments: derefOr(it.CommentsCount, it.NumComments),
		},
	}
	if name := it.authorName(); name != "" {
		c.AuthorName = name
	}
	if s := firstPtr(it.SharesCount, it.NumShares); s != nil {
		v := *s
		c.Engagement.Shares = &v
	}
	return c
}

// authorName reads author as either {"name": ...} or a plain string.
func (it apifyItem) authorName() string {
	if len(it.Author) == 0 {
		return ""
	}
	var obj apifyAuthor
	if err := json.Unmarshal(it.Author, &obj); err == nil {
		return obj.Name
	}
	var name string
	if err := json.Unmarshal(it.Author, &name); err == nil {
		return name
	}
	return ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func firstPtr(ptrs ...*int) *int {
	for _, p := range ptrs {
		if p != nil {
			return p
		}
	}
	return nil
}

func derefOr(ptrs ...*int) int {
	if p := firstPtr(ptrs...); p != nil {
		return *p
	}
	return 0
}
