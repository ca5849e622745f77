// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package research turns the top posts on a topic into content-idea notes:
// each post is paired with recent headlines and sent to the generator for
// ideas, and the result is stored as a research record.
package research

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/content-engine/internal/funnel"
	"github.com/pdiddy/content-engine/internal/logging"
	"github.com/pdiddy/content-engine/pkg/types"
)

const (
	DefaultPosts = 5
	DefaultIdeas = 5
)

// ErrNoTopic is returned when Run is called without a topic.
var ErrNoTopic = errors.New("research topic is empty")

// Searcher finds posts for a topic.
type Searcher interface {
	SearchByKeyword(ctx context.Context, query string, limit int) ([]types.CandidateItem, error)
}

// NewsSource finds headlines for a topic.
type NewsSource interface {
	Find(ctx context.Context, topic string, limit int) ([]types.NewsItem, error)
}

// IdeaGenerator proposes content ideas from a post and its news context.
type IdeaGenerator interface {
	Ideas(ctx context.Context, post string, news []types.NewsItem, count int) ([]types.Idea, error)
}

// Inserter persists research notes.
type Inserter interface {
	Insert(ctx context.Context, rec *types.PersistedRecord) error
}

// Summary holds counts from one research run.
type Summary struct {
	Saved   int
	Skipped int
	Failed  int
}

// Result is the outcome of a research run.
type Result struct {
	Topic   string
	News    []types.NewsItem
	Records []types.PersistedRecord
	Summary Summary
}

// Researcher runs the research workflow.
type Researcher struct {
	source Searcher
	news   NewsSource
	gen    IdeaGenerator
	store  Inserter
	logger *slog.Logger
	now    func() time.Time

	// Posts and Ideas override the per-run defaults.
	Posts int
	Ideas int
}

// New wires a researcher. news may be nil, in which case ideas are
// generated without headlines.
func New(source Searcher, news NewsSource, gen IdeaGenerator, store Inserter, logger *slog.Logger) *Researcher {
	return &Researcher{
		source: source,
		news:   news,
		gen:    gen,
		store:  store,
		logger: logging.OrDiscard(logger),
		now:    time.Now,
		Posts:  DefaultPosts,
		Ideas:  DefaultIdeas,
	}
}

// Run researches topic for tenant. Headlines are fetched once per topic and
// shared by every post; a post whose ideas or insert fail is logged and
// skipped.
func (r *Researcher) Run(ctx context.Context, tenant, topic string) (Result, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return Result{}, ErrNoTopic
	}
	res := Result{Topic: topic}

	posts, err := r.source.SearchByKeyword(ctx, topic, r.Posts)
	if err != nil {
		return res, fmt.Errorf("searching posts for %q: %w", topic, err)
	}
	if len(posts) > r.Posts {
		posts = posts[:r.Posts]
	}

	if r.news != nil && len(posts) > 0 {
		res.News, err = r.news.Find(ctx, topic, 0)
		if err != nil {
			r.logger.Warn("news lookup failed, continuing without headlines", "topic", topic, "error", err)
			res.News = nil
		}
	}

	for _, post := range posts {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		if strings.TrimSpace(post.Text) == "" {
			res.Summary.Skipped++
			continue
		}

		rec, err := r.researchPost(ctx, tenant, topic, post, res.News)
		if err != nil {
			res.Summary.Failed++
			r.logger.Error("research failed for post", "locator", post.Locator, "error", err)
			continue
		}
		res.Summary.Saved++
		res.Records = append(res.Records, *rec)
	}

	r.logger.Info("research complete", "topic", topic, "posts", len(posts),
		"saved", res.Summary.Saved, "failed", res.Summary.Failed)
	return res, nil
}

func (r *Researcher) researchPost(ctx context.Context, tenant, topic string, post types.CandidateItem, news []types.NewsItem) (*types.PersistedRecord, error) {
	ideas, err := r.gen.Ideas(ctx, post.Text, news, r.Ideas)
	if err != nil {
		return nil, fmt.Errorf("generating ideas: %w", err)
	}

	now := r.now().UTC()
	rec := &types.PersistedRecord{
		ID:           uuid.NewString(),
		Tenant:       tenant,
		SourceMode:   types.SourceTopic,
		Kind:         types.KindResearch,
		Status:       types.StatusIdea,
		Locator:      post.Locator,
		Author:       post.AuthorName,
		OriginalText: post.Text,
		Fingerprint:  funnel.Fingerprint(post.Text),
		Engagement:   post.Engagement,
		Meta: map[string]any{
			"topic": topic,
			"news":  news,
			"ideas": ideas,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.store.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("saving research note: %w", err)
	}
	return rec, nil
}
