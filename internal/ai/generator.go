// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/content-engine/internal/logging"
	"github.com/pdiddy/content-engine/pkg/types"
)

const (
	// MaxExpansions caps the query variants returned by ExpandQuery.
	MaxExpansions = 4

	// DefaultIdeas is the number of ideas requested per researched post.
	DefaultIdeas = 5

	scoreTextLen = 200
	maxSelected  = 5
)

// ErrEmptyResponse is returned when the model answers with no text.
var ErrEmptyResponse = errors.New("empty model response")

// Generator implements the generation capabilities on top of a Completer.
type Generator struct {
	c      Completer
	logger *slog.Logger
}

// NewGenerator wraps c.
func NewGenerator(c Completer, logger *slog.Logger) *Generator {
	return &Generator{c: c, logger: logging.OrDiscard(logger)}
}

// ExpandQuery asks for up to MaxExpansions alternative search queries for
// seed, steered by hint. Blank variants and repeats of seed are dropped.
func (g *Generator) ExpandQuery(ctx context.Context, seed, hint string) ([]string, error) {
	prompt, err := render(expandPromptTmpl, struct {
		Seed, Hint string
		Max        int
	}{seed, hint, MaxExpansions})
	if err != nil {
		return nil, fmt.Errorf("rendering expand prompt: %w", err)
	}

	raw, err := g.c.Complete(ctx, expandSystem, prompt)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Queries []string `json:"queries"`
	}
	if err := decodeJSON(raw, &resp); err != nil {
		return nil, fmt.Errorf("parsing expansion: %w", err)
	}

	seen := map[string]bool{strings.ToLower(strings.TrimSpace(seed)): true}
	var out []string
	for _, q := range resp.Queries {
		q = strings.TrimSpace(q)
		key := strings.ToLower(q)
		if q == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, q)
		if len(out) == MaxExpansions {
			break
		}
	}
	g.logger.Debug("query expanded", "seed", seed, "variants", out)
	return out, nil
}

type scoredPost struct {
	Index    int    `json:"index"`
	Text     string `json:"text"`
	Likes    int    `json:"likes"`
	Comments int    `json:"comments"`
	Shares   int    `json:"shares"`
}

// ScoreEngagement returns the indices of the high-engagement candidates as
// judged by the model. An empty list is a valid answer.
func (g *Generator) ScoreEngagement(ctx context.Context, candidates []types.CandidateItem) ([]int, error) {
	posts := make([]scoredPost, len(candidates))
	for i, c := range candidates {
		posts[i] = scoredPost{
			Index:    i,
			Text:     truncateRunes(c.Text, scoreTextLen),
			Likes:    c.Engagement.Likes,
			Comments: c.Engagement.Comments,
			Shares:   c.Engagement.SharesOrZero(),
		}
	}
	postsJSON, err := json.MarshalIndent(posts, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding posts: %w", err)
	}

	prompt, err := render(scorePromptTmpl, struct {
		Posts string
		Max   int
	}{string(postsJSON), maxSelected})
	if err != nil {
		return nil, fmt.Errorf("rendering score prompt: %w", err)
	}

	raw, err := g.c.Complete(ctx, scoreSystem, prompt)
	if err != nil {
		return nil, err
	}
	var resp struct {
		HighEngagement []int `json:"high_engagement_indices"`
		Indices        []int `json:"indices"`
	}
	if err := decodeJSON(raw, &resp); err != nil {
		return nil, fmt.Errorf("parsing scores: %w", err)
	}
	switch {
	case resp.HighEngagement != nil:
		return resp.HighEngagement, nil
	case resp.Indices != nil:
		return resp.Indices, nil
	}
	return nil, fmt.Errorf("parsing scores: no indices in %q", truncateRunes(raw, 120))
}

// Outline produces the strategic outline of text.
func (g *Generator) Outline(ctx context.Context, text string) (string, error) {
	prompt, err := render(outlinePromptTmpl, struct{ Text string }{text})
	if err != nil {
		return "", fmt.Errorf("rendering outline prompt: %w", err)
	}
	return g.completeText(ctx, outlineSystem, prompt)
}

// Rewrite produces the final post from outline and original, using
// instructions as the system prompt.
func (g *Generator) Rewrite(ctx context.Context, outline, original, instructions string) (string, error) {
	prompt, err := render(rewritePromptTmpl, struct{ Outline, Original string }{outline, original})
	if err != nil {
		return "", fmt.Errorf("rendering rewrite prompt: %w", err)
	}
	return g.completeText(ctx, instructions, prompt)
}

// Ideas asks for count content ideas derived from post and the related news.
func (g *Generator) Ideas(ctx context.Context, post string, news []types.NewsItem, count int) ([]types.Idea, error) {
	if count <= 0 {
		count = DefaultIdeas
	}
	research, err := json.Marshal(struct {
		News []types.NewsItem `json:"news"`
	}{news})
	if err != nil {
		return nil, fmt.Errorf("encoding research: %w", err)
	}
	prompt, err := render(ideasPromptTmpl, struct {
		Post, Research string
		Count          int
	}{post, string(research), count})
	if err != nil {
		return nil, fmt.Errorf("rendering ideas prompt: %w", err)
	}

	raw, err := g.c.Complete(ctx, ideasSystem, prompt)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Ideas []types.Idea `json:"ideas"`
	}
	if err := decodeJSON(raw, &resp); err != nil {
		return nil, fmt.Errorf("parsing ideas: %w", err)
	}
	if len(resp.Ideas) > count {
		resp.Ideas = resp.Ideas[:count]
	}
	return resp.Ideas, nil
}

func (g *Generator) completeText(ctx context.Context, system, prompt string) (string, error) {
	raw, err := g.c.Complete(ctx, system, prompt)
	if err != nil {
		return "", err
	}
	out := strings.TrimSpace(raw)
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}

// decodeJSON unmarshals a model answer, tolerating Markdown code fences and
// prose around the JSON object.
func decodeJSON(raw string, v any) error {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ErrEmptyResponse
	}
	if strings.HasPrefix(s, "```") {
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	if start, end := strings.IndexByte(s, '{'), strings.LastIndexByte(s, '}'); start >= 0 && end > start {
		s = s[start : end+1]
	}
	return json.Unmarshal([]byte(s), v)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
