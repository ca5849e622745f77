// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package draft

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/content-engine/internal/funnel"
	"github.com/pdiddy/content-engine/pkg/types"
)

// --- fakes ---

type rewriteCall struct {
	outline, original, instructions string
}

type fakeWriter struct {
	failOutline map[string]bool // original text → fail
	failRewrite map[string]bool
	outlines    []string
	rewrites    []rewriteCall
}

func (w *fakeWriter) Outline(_ context.Context, text string) (string, error) {
	w.outlines = append(w.outlines, text)
	if w.failOutline[text] {
		return "", errors.New("outline: HTTP 500")
	}
	return "OUTLINE(" + text + ")", nil
}

func (w *fakeWriter) Rewrite(_ context.Context, outline, original, instructions string) (string, error) {
	w.rewrites = append(w.rewrites, rewriteCall{outline, original, instructions})
	if w.failRewrite[original] {
		return "", errors.New("rewrite: context length exceeded")
	}
	return "REWRITE(" + original + ")", nil
}

type memStore struct {
	records []*types.PersistedRecord
	err     error
}

func (m *memStore) Insert(_ context.Context, rec *types.PersistedRecord) error {
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, rec)
	return nil
}

func candidate(id, text string) types.CandidateItem {
	shares := 3
	return types.CandidateItem{
		Locator:    "https://example.com/" + id,
		Text:       text,
		AuthorName: "Autor " + id,
		Engagement: types.Engagement{Likes: 40, Comments: 6, Shares: &shares},
	}
}

func request() Request {
	return Request{
		Tenant:  "acme",
		Mode:    types.SourceTopic,
		Persona: types.PersonaProfile{Tone: "cercano", CustomInstructions: "Escribe como Marta."},
	}
}

// --- tests ---

func TestProcessPartialFailure(t *testing.T) {
	w := &fakeWriter{failRewrite: map[string]bool{"dos": true}}
	store := &memStore{}
	p := NewPipeline(w, store, nil)

	got, summary := p.Process(context.Background(), request(), []types.CandidateItem{
		candidate("1", "uno"), candidate("2", "dos"), candidate("3", "tres"),
	})

	require.Len(t, got, 2)
	assert.Equal(t, "https://example.com/1", got[0].Locator)
	assert.Equal(t, "https://example.com/3", got[1].Locator)
	assert.Equal(t, "REWRITE(tres)", got[1].Generated)
	assert.Len(t, store.records, 2)
	assert.Equal(t, Summary{Generated: 2, Failed: 1}, summary)
	assert.Len(t, w.outlines, 3, "later candidates still run after a failure")
}

func TestProcessOutlineFailureSkipsRewrite(t *testing.T) {
	w := &fakeWriter{failOutline: map[string]bool{"uno": true}}
	store := &memStore{}

	got, summary := NewPipeline(w, store, nil).Process(context.Background(), request(),
		[]types.CandidateItem{candidate("1", "uno")})

	assert.Empty(t, got)
	assert.Empty(t, w.rewrites)
	assert.Empty(t, store.records)
	assert.Equal(t, 1, summary.Failed)
}

func TestProcessSkipsEmptyText(t *testing.T) {
	w := &fakeWriter{}
	store := &memStore{}

	got, summary := NewPipeline(w, store, nil).Process(context.Background(), request(),
		[]types.CandidateItem{candidate("1", ""), candidate("2", "  \n"), candidate("3", "tres")})

	assert.Len(t, got, 1)
	assert.Equal(t, []string{"tres"}, w.outlines)
	assert.Equal(t, Summary{Generated: 1, Skipped: 2}, summary)
}

func TestProcessPersistsRecord(t *testing.T) {
	w := &fakeWriter{}
	store := &memStore{}
	p := NewPipeline(w, store, nil)
	fixed := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	c := candidate("1", "  texto original  ")
	got, _ := p.Process(context.Background(), request(), []types.CandidateItem{c})

	require.Len(t, store.records, 1)
	rec := store.records[0]
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, got[0].ID, rec.ID)
	assert.Equal(t, "acme", rec.Tenant)
	assert.Equal(t, types.SourceTopic, rec.SourceMode)
	assert.Equal(t, types.KindDraft, rec.Kind)
	assert.Equal(t, types.StatusDrafted, rec.Status)
	assert.Equal(t, c.Locator, rec.Locator)
	assert.Equal(t, "Autor 1", rec.Author)
	assert.Equal(t, funnel.Fingerprint(c.Text), rec.Fingerprint)
	assert.Equal(t, "OUTLINE(  texto original  )", rec.Draft.Outline)
	assert.Equal(t, "REWRITE(  texto original  )", rec.Draft.Rewritten)
	assert.Equal(t, c.Engagement, rec.Engagement)
	assert.Equal(t, fixed, rec.CreatedAt)
}

func TestProcessInstructions(t *testing.T) {
	w := &fakeWriter{}
	p := NewPipeline(w, &memStore{}, nil)

	p.Process(context.Background(), request(), []types.CandidateItem{candidate("1", "uno")})
	req := request()
	req.Persona.CustomInstructions = ""
	p.Process(context.Background(), req, []types.CandidateItem{candidate("2", "dos")})

	require.Len(t, w.rewrites, 2)
	assert.Equal(t, "Escribe como Marta.", w.rewrites[0].instructions)
	assert.Equal(t, DefaultInstructions, w.rewrites[1].instructions)
	assert.Equal(t, "OUTLINE(uno)", w.rewrites[0].outline)
	assert.Equal(t, "uno", w.rewrites[0].original)
}

func TestProcessInsertFailureDropsCandidate(t *testing.T) {
	store := &memStore{err: errors.New("disk full")}
	got, summary := NewPipeline(&fakeWriter{}, store, nil).Process(context.Background(), request(),
		[]types.CandidateItem{candidate("1", "uno")})

	assert.Empty(t, got)
	assert.Equal(t, 1, summary.Failed)
}

func TestProcessCancelled(t *testing.T) {
	w := &fakeWriter{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, _ := NewPipeline(w, &memStore{}, nil).Process(ctx, request(), []types.CandidateItem{candidate("1", "uno")})

	assert.Empty(t, got)
	assert.Empty(t, w.outlines)
}

func TestStepError(t *testing.T) {
	cause := errors.New("timeout")
	err := error(&StepError{Step: StepRewrite, Err: cause})

	assert.ErrorIs(t, err, cause)
	var se *StepError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StepRewrite, se.Step)
	assert.Equal(t, "step rewrite: timeout", err.Error())
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "corto", Excerpt("corto"))

	exact := strings.Repeat("é", 200)
	assert.Equal(t, exact, Excerpt(exact))

	long := strings.Repeat("é", 250)
	got := Excerpt(long)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, 203, len([]rune(got)))
}
