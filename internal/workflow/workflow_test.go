// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/content-engine/internal/history"
	"github.com/pdiddy/content-engine/pkg/types"
)

const spanishText = "Hoy aprendí que el liderazgo de un equipo es más difícil de lo que parece"

// --- fakes ---

type fakeSource struct {
	items    []types.CandidateItem
	err      error
	queries  []string
	profiles [][]string
}

func (f *fakeSource) SearchByKeyword(_ context.Context, query string, limit int) ([]types.CandidateItem, error) {
	f.queries = append(f.queries, query)
	return f.items, f.err
}

func (f *fakeSource) FetchByProfiles(_ context.Context, urls []string, limit int) ([]types.CandidateItem, error) {
	f.profiles = append(f.profiles, urls)
	return f.items, f.err
}

func (f *fakeSource) calls() int { return len(f.queries) + len(f.profiles) }

type fakeGen struct {
	indices     []int
	scoreErr    error
	failRewrite string
	expanded    int
}

func (g *fakeGen) ExpandQuery(context.Context, string, string) ([]string, error) {
	g.expanded++
	return []string{"variante"}, nil
}

func (g *fakeGen) ScoreEngagement(context.Context, []types.CandidateItem) ([]int, error) {
	return g.indices, g.scoreErr
}

func (g *fakeGen) Outline(_ context.Context, text string) (string, error) {
	return "outline", nil
}

func (g *fakeGen) Rewrite(_ context.Context, _, original, _ string) (string, error) {
	if g.failRewrite != "" && strings.Contains(original, g.failRewrite) {
		return "", errors.New("rewrite failed")
	}
	return "draft: " + original, nil
}

func item(id string, likes, comments int) types.CandidateItem {
	return types.CandidateItem{
		Locator:    "https://li/" + id,
		Text:       fmt.Sprintf("%s (%s)", spanishText, id),
		AuthorName: "Ana",
		Engagement: types.Engagement{Likes: likes, Comments: comments},
	}
}

func acme() types.Tenant {
	return types.Tenant{
		ID:       "acme",
		Persona:  &types.PersonaProfile{Keywords: []string{" liderazgo ", ""}, CustomInstructions: "Escribe como Marta."},
		Creators: []types.Creator{{Name: "Ana", URL: "https://linkedin.com/in/ana"}},
	}
}

func testStore(t *testing.T) *history.Store {
	t.Helper()
	s, err := history.NewStore(types.StoreConfig{Dir: t.TempDir()}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// --- tests ---

func TestRunPreconditions(t *testing.T) {
	noPersona := acme()
	noPersona.Persona = nil
	noKeywords := acme()
	noKeywords.Persona = &types.PersonaProfile{Keywords: []string{"  "}}
	noCreators := acme()
	noCreators.Creators = []types.Creator{{Name: "sin url"}}

	tests := []struct {
		name   string
		tenant types.Tenant
		mode   types.SourceMode
		quota  int
		want   error
	}{
		{"unknown mode", acme(), "tiktok", 3, ErrUnknownSourceMode},
		{"zero quota", acme(), types.SourceTopic, 0, ErrInvalidQuota},
		{"quota too large", acme(), types.SourceTopic, MaxQuota + 1, ErrInvalidQuota},
		{"no persona", noPersona, types.SourceTopic, 3, ErrNoPersona},
		{"no keywords", noKeywords, types.SourceTopic, 3, ErrNoKeywords},
		{"no creators", noCreators, types.SourceCreator, 3, ErrNoCreators},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{}
			gen := &fakeGen{}
			_, err := NewRunner(src, gen, testStore(t), nil).Run(context.Background(), tt.tenant, tt.mode, tt.quota)
			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, src.calls(), "no gateway call before preconditions pass")
			assert.Zero(t, gen.expanded)
		})
	}
}

func TestRunEndToEnd(t *testing.T) {
	store := testStore(t)
	src := &fakeSource{items: []types.CandidateItem{
		item("a", 12, 0), item("b", 3, 0), item("c", 40, 1), item("d", 1, 6),
	}}
	gen := &fakeGen{indices: []int{1, 0}}
	ctx := context.Background()

	res, err := NewRunner(src, gen, store, nil).Run(ctx, acme(), types.SourceTopic, 3)
	require.NoError(t, err)

	// b fails quality; a, c, d fill the quota on the first attempt.
	assert.Equal(t, 3, res.Acquired)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, []string{"liderazgo"}, src.queries)
	assert.Equal(t, 2, res.Selected)
	require.Equal(t, 2, res.Count)

	// Sorted by score the bucket is c(45), d(31), a(12); indices [1,0] pick d then c.
	assert.Equal(t, "https://li/d", res.Processed[0].Locator)
	assert.Equal(t, "https://li/c", res.Processed[1].Locator)
	assert.True(t, strings.HasPrefix(res.Processed[0].Generated, "draft: "))

	records, err := store.List(ctx, history.Query{Tenant: "acme"})
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, rec := range records {
		assert.Equal(t, types.StatusDrafted, rec.Status)
		assert.Equal(t, types.SourceTopic, rec.SourceMode)
	}

	// A second run sees the persisted drafts as historical duplicates.
	res, err = NewRunner(src, gen, store, nil).Run(ctx, acme(), types.SourceTopic, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Acquired, "only the unpersisted candidate a remains")
}

func TestRunCreatorModeWithFallbackAndFailure(t *testing.T) {
	store := testStore(t)
	src := &fakeSource{items: []types.CandidateItem{item("a", 30, 0), item("b", 50, 0)}}
	gen := &fakeGen{scoreErr: errors.New("openai: HTTP 500"), failRewrite: "(b)"}

	res, err := NewRunner(src, gen, store, nil).Run(context.Background(), acme(), types.SourceCreator, 2)
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"https://linkedin.com/in/ana"}}, src.profiles)
	assert.Equal(t, 2, res.Selected, "fallback ranking keeps both")
	require.Equal(t, 1, res.Count, "b fails rewrite and is dropped")
	assert.Equal(t, "https://li/a", res.Processed[0].Locator)
	assert.Zero(t, gen.expanded, "creator mode never expands")
}

func TestRunUnderFillIsNotAnError(t *testing.T) {
	src := &fakeSource{err: errors.New("apify: HTTP 502")}
	gen := &fakeGen{}
	res, err := NewRunner(src, gen, testStore(t), nil).Run(context.Background(), acme(), types.SourceTopic, 3)
	require.NoError(t, err)

	assert.Zero(t, res.Count)
	assert.Empty(t, res.Processed)
	assert.Equal(t, 5, res.Attempts)
	// The first attempt uses the keyword; expansion then prepends the variant.
	assert.Equal(t, []string{"liderazgo", "liderazgo", "variante", "liderazgo", "variante"}, src.queries)
	assert.Equal(t, 1, gen.expanded)
}
