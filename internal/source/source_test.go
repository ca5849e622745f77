// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/content-engine/pkg/types"
)

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "ña...", truncate("ñandú", 2))
	assert.Equal(t, "ñandú", truncate("ñandú", 5))

	got := truncate(strings.Repeat("é", 300), 201)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 204, utf8.RuneCountInString(got))
}

// --- Apify ---

func TestApifySearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/acts/"+DefaultSearchActor+"/run-sync-get-dataset-items", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Empty(t, r.URL.RawQuery, "the token never goes in the URL")

		var in apifySearchInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, []string{"liderazgo"}, in.SearchQueries)
		assert.Equal(t, 10, in.MaxPosts)
		assert.Equal(t, "relevance", in.SortBy)

		w.Write([]byte(`[
			{"url":"https://li/1","text":" hola ","author":{"name":"Ana"},"likesCount":12,"commentsCount":3,"sharesCount":1},
			{"postUrl":"https://li/2","text":"otro","authorName":"Luis","numLikes":5,"numComments":2},
			{"url":"https://li/3","text":"tercero","author":"Eva"}
		]`))
	}))
	defer srv.Close()

	g := NewApifyGateway(types.SourceConfig{Apify: types.ApifyConfig{Token: "tok", BaseURL: srv.URL}})
	got, err := g.SearchByKeyword(context.Background(), "liderazgo", 10)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "https://li/1", got[0].Locator)
	assert.Equal(t, "hola", got[0].Text)
	assert.Equal(t, "Ana", got[0].AuthorName)
	assert.Equal(t, 12, got[0].Engagement.Likes)
	require.NotNil(t, got[0].Engagement.Shares)
	assert.Equal(t, 1, *got[0].Engagement.Shares)

	assert.Equal(t, "https://li/2", got[1].Locator)
	assert.Equal(t, "Luis", got[1].AuthorName)
	assert.Equal(t, types.Engagement{Likes: 5, Comments: 2}, got[1].Engagement)

	assert.Equal(t, "Eva", got[2].AuthorName)
}

func TestApifyProfiles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/acts/custom-actor/")
		var in apifyProfileInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, []string{"https://linkedin.com/in/a"}, in.TargetURLs)
		assert.Equal(t, "week", in.PostedLimit)
		assert.True(t, in.IncludeReposts)
		w.Write([]byte(`[{"url":"u1","text":"a"},{"url":"u2","text":"b"},{"url":"u3","text":"c"}]`))
	}))
	defer srv.Close()

	cfg := types.SourceConfig{Apify: types.ApifyConfig{Token: "t", BaseURL: srv.URL, ProfileActor: "custom-actor"}}
	got, err := NewApifyGateway(cfg).FetchByProfiles(context.Background(), []string{"https://linkedin.com/in/a"}, 2)
	require.NoError(t, err)
	assert.Len(t, got, 2, "limit is applied to the dataset")

	got, err = NewApifyGateway(cfg).FetchByProfiles(context.Background(), nil, 2)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestApifyError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":"quota"}`))
	}))
	defer srv.Close()

	g := NewApifyGateway(types.SourceConfig{Apify: types.ApifyConfig{Token: "t", BaseURL: srv.URL}})
	_, err := g.SearchByKeyword(context.Background(), "x", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 402")
}

func TestApifyErrorsDoNotExposeToken(t *testing.T) {
	const token = "apify_api_s3cr3t"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"bad input"}`))
	}))
	defer srv.Close()

	tests := []struct {
		name    string
		baseURL string
	}{
		{"http error", srv.URL},
		{"connection refused", "http://127.0.0.1:1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewApifyGateway(types.SourceConfig{Apify: types.ApifyConfig{Token: token, BaseURL: tt.baseURL}})
			_, err := g.SearchByKeyword(context.Background(), "liderazgo", 5)
			require.Error(t, err)
			assert.NotContains(t, err.Error(), token)

			_, err = g.FetchByProfiles(context.Background(), []string{"https://linkedin.com/in/a"}, 5)
			require.Error(t, err)
			assert.NotContains(t, err.Error(), token)
		})
	}
}

// --- Mastodon ---

func TestMastodonSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/search", r.URL.Path)
		assert.Equal(t, "statuses", r.URL.Query().Get("type"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Write([]byte(`{"statuses":[{
			"url":"https://m.example/@ana/1",
			"content":"<p>Primer párrafo</p><p>Segundo<br>línea</p>",
			"account":{"display_name":"Ana","username":"ana"},
			"favourites_count":20,"replies_count":4,"reblogs_count":2
		}]}`))
	}))
	defer srv.Close()

	g := NewMastodonGateway(types.SourceConfig{Mastodon: types.MastodonConfig{Instance: srv.URL + "/", AccessToken: "secret"}}, nil)
	got, err := g.SearchByKeyword(context.Background(), "liderazgo", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "https://m.example/@ana/1", got[0].Locator)
	assert.Equal(t, "Primer párrafo\n\nSegundo\nlínea", got[0].Text)
	assert.Equal(t, "Ana", got[0].AuthorName)
	assert.Equal(t, 20, got[0].Engagement.Likes)
	assert.Equal(t, 4, got[0].Engagement.Comments)
	assert.Equal(t, 2, got[0].Engagement.SharesOrZero())
}

func TestMastodonProfiles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/accounts/lookup":
			if r.URL.Query().Get("acct") != "ana@m.example" {
				http.NotFound(w, r)
				return
			}
			w.Write([]byte(`{"id":"42","acct":"ana"}`))
		case "/api/v1/accounts/42/statuses":
			w.Write([]byte(`[
				{"url":"u1","content":"uno","account":{"username":"ana"}},
				{"url":"u2","content":"","reblog":{"url":"orig","content":"impulsado","account":{"display_name":"Otro"},"favourites_count":9}}
			]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	g := NewMastodonGateway(types.SourceConfig{Mastodon: types.MastodonConfig{Instance: srv.URL}}, nil)
	got, err := g.FetchByProfiles(context.Background(), []string{"https://m.example/@ana", "https://m.example/@nadie"}, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "ana", got[0].AuthorName)
	assert.Equal(t, "orig", got[1].Locator)
	assert.Equal(t, "impulsado", got[1].Text)
	assert.Equal(t, 9, got[1].Engagement.Likes)

	_, err = g.FetchByProfiles(context.Background(), []string{"https://m.example/@nadie"}, 10)
	assert.Error(t, err, "every profile failing is an error")
}

func TestAccountHandle(t *testing.T) {
	tests := []struct {
		in, want string
		wantErr  bool
	}{
		{"https://mastodon.social/@ana", "ana@mastodon.social", false},
		{"https://mastodon.social/@ana/", "ana@mastodon.social", false},
		{"@ana@fosstodon.org", "ana@fosstodon.org", false},
		{"ana", "ana", false},
		{"https://mastodon.social/about", "", true},
		{"@", "", true},
	}
	for _, tt := range tests {
		got, err := accountHandle(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

// --- Feeds ---

const testRSS = `<?xml version="1.0"?>
<rss version="2.0" xmlns:slash="http://purl.org/rss/1.0/modules/slash/">
<channel><title>Blog de Ana</title>
<item><title>Liderazgo remoto</title><link>https://blog/1</link>
<description>&lt;p&gt;Cómo liderar equipos&lt;/p&gt;</description><slash:comments>7</slash:comments></item>
<item><title>Recetas</title><link>https://blog/2</link><description>Pasta al pesto</description></item>
<item><title>Sin cuerpo</title><link>%s/article</link></item>
</channel></rss>`

func feedServer(t *testing.T) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/feed":
			w.Write([]byte(strings.Replace(testRSS, "%s", srv.URL, 1)))
		case "/article":
			w.Write([]byte(`<html><head><title>Artículo</title></head><body><article><h1>Artículo</h1><p>` +
				strings.Repeat("El trabajo remoto exige confianza y comunicación clara entre las personas. ", 8) +
				`</p></article></body></html>`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFeedProfiles(t *testing.T) {
	srv := feedServer(t)
	g := NewFeedGateway(types.SourceConfig{}, nil)

	got, err := g.FetchByProfiles(context.Background(), []string{srv.URL + "/feed"}, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "https://blog/1", got[0].Locator)
	assert.Equal(t, "Cómo liderar equipos", got[0].Text)
	assert.Equal(t, 7, got[0].Engagement.Comments)
	assert.Equal(t, "Blog de Ana", got[0].AuthorName)
	assert.Empty(t, got[2].Text, "article fetching is off by default")
}

func TestFeedFetchesArticles(t *testing.T) {
	srv := feedServer(t)
	g := NewFeedGateway(types.SourceConfig{FetchArticles: true}, nil)

	got, err := g.FetchByProfiles(context.Background(), []string{srv.URL + "/feed"}, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Contains(t, got[2].Text, "confianza y comunicación")
}

func TestFeedSearchFiltersByKeyword(t *testing.T) {
	srv := feedServer(t)
	g := NewFeedGateway(types.SourceConfig{Feeds: []string{srv.URL + "/feed", srv.URL + "/missing"}}, nil)

	got, err := g.SearchByKeyword(context.Background(), "liderar de", 10)
	require.NoError(t, err)
	require.Len(t, got, 1, "short terms are ignored")
	assert.Equal(t, "https://blog/1", got[0].Locator)

	got, err = g.SearchByKeyword(context.Background(), "  ", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFeedSearchFetchesArticlesOnlyForMatches(t *testing.T) {
	var articleHits int32
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/feed":
			w.Write([]byte(`<?xml version="1.0"?><rss version="2.0"><channel><title>Blog</title>
<item><title>Liderazgo sin cuerpo</title><link>` + srv.URL + `/article/1</link></item>
<item><title>Recetas sin cuerpo</title><link>` + srv.URL + `/article/2</link></item>
</channel></rss>`))
		default:
			atomic.AddInt32(&articleHits, 1)
			w.Write([]byte(`<html><head><title>Equipos</title></head><body><article><h1>Equipos</h1><p>` +
				strings.Repeat("Un equipo necesita liderazgo claro y objetivos compartidos por todos. ", 8) +
				`</p></article></body></html>`))
		}
	}))
	defer srv.Close()

	g := NewFeedGateway(types.SourceConfig{Feeds: []string{srv.URL + "/feed"}, FetchArticles: true}, nil)
	got, err := g.SearchByKeyword(context.Background(), "liderazgo", 10)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, srv.URL+"/article/1", got[0].Locator)
	assert.Contains(t, got[0].Text, "objetivos compartidos")
	assert.Equal(t, int32(1), atomic.LoadInt32(&articleHits), "non-matching items are never fetched")
}

func TestFeedAllFailing(t *testing.T) {
	srv := feedServer(t)
	_, err := NewFeedGateway(types.SourceConfig{}, nil).FetchByProfiles(context.Background(), []string{srv.URL + "/missing"}, 5)
	assert.Error(t, err)
}

// --- text ---

func TestHTMLToText(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"plain", "  hola mundo ", "hola mundo"},
		{"paragraphs", "<p>uno</p><p>dos</p>", "uno\n\ndos"},
		{"break", "uno<br/>dos", "uno\ndos"},
		{"entities", "<p>a &amp; b</p>", "a & b"},
		{"script dropped", "<p>texto</p><script>alert(1)</script>", "texto"},
		{"spaces collapsed", "<p>mucho    espacio</p>", "mucho espacio"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTMLToText(tt.in))
		})
	}
}

// --- factory ---

func TestNew(t *testing.T) {
	g, err := New(types.SourceConfig{Apify: types.ApifyConfig{Token: "t"}}, nil)
	require.NoError(t, err)
	assert.IsType(t, &ApifyGateway{}, g)

	_, err = New(types.SourceConfig{}, nil)
	assert.Error(t, err, "apify without token")

	g, err = New(types.SourceConfig{Provider: types.SourceMastodon, Mastodon: types.MastodonConfig{Instance: "https://m"}}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MastodonGateway{}, g)

	g, err = New(types.SourceConfig{Provider: types.SourceFeed}, nil)
	require.NoError(t, err)
	assert.IsType(t, &FeedGateway{}, g)

	_, err = New(types.SourceConfig{Provider: "twitter"}, nil)
	assert.Error(t, err)
}
