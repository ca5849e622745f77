// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/content-engine/internal/logging"
	"github.com/pdiddy/content-engine/pkg/types"
)

// mastodonPageLimit is the largest page the statuses endpoints serve.
const mastodonPageLimit = 40

// MastodonGateway reads public statuses from a Mastodon server. Keyword
// search needs an access token on most servers; profile timelines do not.
type MastodonGateway struct {
	http     httpSettings
	instance string
	token    string
	logger   *slog.Logger
}

// NewMastodonGateway builds the gateway from cfg.
func NewMastodonGateway(cfg types.SourceConfig, logger *slog.Logger) *MastodonGateway {
	return &MastodonGateway{
		http:     newHTTPSettings(cfg.HTTPConfig),
		instance: strings.TrimRight(cfg.Mastodon.Instance, "/"),
		token:    cfg.Mastodon.AccessToken,
		logger:   logging.OrDiscard(logger),
	}
}

type mastodonAccount struct {
	ID          string `json:"id"`
	Acct        string `json:"acct"`
	DisplayName string `json:"display_name"`
	Username    string `json:"username"`
}

type mastodonStatus struct {
	ID              string          `json:"id"`
	URL             string          `json:"url"`
	URI             string          `json:"uri"`
	Content         string          `json:"content"`
	Account         mastodonAccount `json:"account"`
	FavouritesCount int             `json:"favourites_count"`
	RepliesCount    int             `json:"replies_count"`
	ReblogsCount    int             `json:"reblogs_count"`
	Reblog          *mastodonStatus `json:"reblog"`
}

// SearchByKeyword searches statuses matching query.
func (g *MastodonGateway) SearchByKeyword(ctx context.Context, query string, limit int) ([]types.CandidateItem, error) {
	params := url.Values{
		"q":     {query},
		"type":  {"statuses"},
		"limit": {strconv.Itoa(pageLimit(limit))},
	}
	var resp struct {
		Statuses []mastodonStatus `json:"statuses"`
	}
	if err := g.getJSON(ctx, "/api/v2/search?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("mastodon search: %w", err)
	}
	return toCandidates(resp.Statuses, limit), nil
}

// FetchByProfiles reads the recent statuses of each profile
// (https://host/@user). A profile that cannot be resolved is logged and
// skipped; an error is returned only when every profile fails.
func (g *MastodonGateway) FetchByProfiles(ctx context.Context, urls []string, limit int) ([]types.CandidateItem, error) {
	var (
		out     []types.CandidateItem
		lastErr error
		failed  int
	)
	for _, profile := range urls {
		if limit > 0 && len(out) >= limit {
			break
		}
		statuses, err := g.profileStatuses(ctx, profile, limit-len(out))
		if err != nil {
			failed++
			lastErr = err
			g.logger.Warn("mastodon profile fetch failed", "profile", profile, "error", err)
			continue
		}
		out = append(out, toCandidates(statuses, limit-len(out))...)
	}
	if failed > 0 && failed == len(urls) {
		return nil, fmt.Errorf("mastodon profiles: %w", lastErr)
	}
	return out, nil
}

func (g *MastodonGateway) profileStatuses(ctx context.Context, profile string, limit int) ([]mastodonStatus, error) {
	acct, err := accountHandle(profile)
	if err != nil {
		return nil, err
	}

	var account mastodonAccount
	if err := g.getJSON(ctx, "/api/v1/accounts/lookup?"+url.Values{"acct": {acct}}.Encode(), &account); err != nil {
		return nil, fmt.Errorf("looking up %s: %w", acct, err)
	}

	params := url.Values{
		"limit":           {strconv.Itoa(pageLimit(limit))},
		"exclude_replies": {"true"},
	}
	var statuses []mastodonStatus
	path := "/api/v1/accounts/" + url.PathEscape(account.ID) + "/statuses?" + params.Encode()
	if err := g.getJSON(ctx, path, &statuses); err != nil {
		return nil, fmt.Errorf("statuses of %s: %w", acct, err)
	}
	return statuses, nil
}

func (g *MastodonGateway) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.instance+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}
	body, err := g.http.do(ctx, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// accountHandle turns https://host/@user, @user@host or user into the acct
// form accepted by the lookup endpoint.
func accountHandle(profile string) (string, error) {
	profile = strings.TrimSpace(profile)
	if strings.HasPrefix(profile, "http://") || strings.HasPrefix(profile, "https://") {
		u, err := url.Parse(profile)
		if err != nil {
			return "", fmt.Errorf("parsing profile URL: %w", err)
		}
		path := strings.Trim(u.Path, "/")
		if !strings.HasPrefix(path, "@") || strings.Contains(path, "/") {
			return "", fmt.Errorf("not a profile URL: %s", profile)
		}
		return strings.TrimPrefix(path, "@") + "@" + u.Host, nil
	}
	handle := strings.TrimPrefix(profile, "@")
	if handle == "" {
		return "", fmt.Errorf("empty profile")
	}
	return handle, nil
}

func toCandidates(statuses []mastodonStatus, limit int) []types.CandidateItem {
	out := make([]types.CandidateItem, 0, len(statuses))
	for _, st := range statuses {
		if limit > 0 && len(out) >= limit {
			break
		}
		if st.Reblog != nil {
			st = *st.Reblog
		}
		shares := st.ReblogsCount
		name := st.Account.DisplayName
		if name == "" {
			name = st.Account.Username
		}
		out = append(out, types.CandidateItem{
			Locator:    firstNonEmpty(st.URL, st.URI),
			Text:       HTMLToText(st.Content),
			AuthorName: name,
			Engagement: types.Engagement{
				Likes:    st.FavouritesCount,
				Comments: st.RepliesCount,
				Shares:   &shares,
			},
		})
	}
	return out
}

func pageLimit(limit int) int {
	if limit <= 0 || limit > mastodonPageLimit {
		return mastodonPageLimit
	}
	return limit
}
