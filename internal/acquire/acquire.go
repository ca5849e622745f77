// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package acquire fills a bucket of filtered candidates up to a quota by
// calling the source gateway repeatedly, widening the query set when the
// first attempt comes back empty.
package acquire

import (
	"context"
	"log/slog"
	"sort"

	"github.com/pdiddy/content-engine/internal/funnel"
	"github.com/pdiddy/content-engine/internal/logging"
	"github.com/pdiddy/content-engine/pkg/types"
)

// overFetch is the multiple of the quota requested from the source per
// attempt, so that enough items survive filtering.
const overFetch = 2

// commentWeight is how many likes a comment is worth in the final ranking.
const commentWeight = 5

// ExpansionHint steers query expansion toward high-engagement content.
const ExpansionHint = "prioriza temas y formulaciones que generan muchos comentarios y reacciones"

// Source abstracts the external content source.
type Source interface {
	SearchByKeyword(ctx context.Context, query string, limit int) ([]types.CandidateItem, error)
	FetchByProfiles(ctx context.Context, urls []string, limit int) ([]types.CandidateItem, error)
}

// Expander produces variant search queries from a seed keyword.
type Expander interface {
	ExpandQuery(ctx context.Context, seed, hint string) ([]string, error)
}

// Filter decides whether a raw item joins the bucket.
type Filter interface {
	Evaluate(ctx context.Context, item types.CandidateItem, seen funnel.SeenSet, attempt int) funnel.Verdict
}

// Engine drives a Session to completion.
type Engine struct {
	source   Source
	expander Expander
	filter   Filter
	logger   *slog.Logger
}

// NewEngine wires the engine. expander may be nil to disable expansion.
func NewEngine(source Source, expander Expander, filter Filter, logger *slog.Logger) *Engine {
	return &Engine{
		source:   source,
		expander: expander,
		filter:   filter,
		logger:   logging.OrDiscard(logger),
	}
}

// StepReport describes a single attempt.
type StepReport struct {
	Attempt  int
	Query    string
	Fetched  int
	Accepted int
	Err      error
}

// Step performs one attempt against s: optional expansion, one source call,
// and filtering of the returned items. It always advances s.Attempt by one.
// A source failure is recorded in the report and treated as zero items.
func (e *Engine) Step(ctx context.Context, s *Session) StepReport {
	if s.Mode == types.SourceTopic && s.Attempt == 1 && len(s.Bucket) == 0 && !s.Expanded {
		e.expand(ctx, s)
	}

	report := StepReport{Attempt: s.Attempt}
	limit := overFetch * s.Quota

	var items []types.CandidateItem
	var err error
	switch s.Mode {
	case types.SourceCreator:
		items, err = e.source.FetchByProfiles(ctx, s.Profiles, limit)
	default:
		report.Query = s.CurrentQuery()
		items, err = e.source.SearchByKeyword(ctx, report.Query, limit)
	}
	if err != nil {
		report.Err = err
		s.Stats.SourceErrors++
		e.logger.Warn("source call failed, continuing",
			"attempt", s.Attempt, "query", report.Query, "error", err)
		items = nil
	}
	report.Fetched = len(items)
	s.Stats.Fetched += len(items)

	for _, it := range items {
		if s.Full() {
			break
		}
		v := e.filter.Evaluate(ctx, it, s.Seen, s.Attempt)
		if !v.Accepted {
			s.Stats.Rejected[v.Reason]++
			e.logger.Debug("candidate rejected", "locator", it.Locator, "reason", v.Reason)
			continue
		}
		s.accept(it)
		report.Accepted++
	}

	e.logger.Info("acquisition attempt",
		"attempt", s.Attempt+1, "query", report.Query,
		"fetched", report.Fetched, "accepted", report.Accepted,
		"bucket", len(s.Bucket), "quota", s.Quota)

	s.Attempt++
	return report
}

// expand asks for variant queries seeded by the first original keyword and
// prepends them. Failure leaves the sequence untouched.
func (e *Engine) expand(ctx context.Context, s *Session) {
	s.Expanded = true
	if e.expander == nil || len(s.Queries) == 0 {
		return
	}
	// Expansion runs at most once, so the head is still the first keyword.
	seed := s.Queries[0]
	variants, err := e.expander.ExpandQuery(ctx, seed, ExpansionHint)
	if err != nil {
		e.logger.Warn("query expansion failed, keeping original queries", "seed", seed, "error", err)
		return
	}
	added := s.prependQueries(variants)
	s.Stats.ExpansionUsed = added > 0
	e.logger.Info("queries expanded", "seed", seed, "added", added)
}

// Fill runs attempts until the session is done or ctx is cancelled, then
// returns the bucket sorted by engagement score. An under-filled or empty
// bucket is a valid result.
func (e *Engine) Fill(ctx context.Context, s *Session) []types.CandidateItem {
	for !s.Done() {
		if ctx.Err() != nil {
			e.logger.Warn("acquisition cancelled", "attempt", s.Attempt, "error", ctx.Err())
			break
		}
		e.Step(ctx, s)
	}
	SortByScore(s.Bucket)
	return s.Bucket
}

// Score ranks a candidate: likes plus comments weighted five to one.
func Score(c types.CandidateItem) int {
	return c.Engagement.Likes + commentWeight*c.Engagement.Comments
}

// SortByScore orders items by descending Score, keeping acceptance order on ties.
func SortByScore(items []types.CandidateItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return Score(items[i]) > Score(items[j])
	})
}
