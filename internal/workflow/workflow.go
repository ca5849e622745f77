// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package workflow runs one acquisition and generation pass for a tenant:
// fill a bucket of filtered candidates, pick the high-engagement ones, and
// turn each into a persisted draft.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pdiddy/content-engine/internal/acquire"
	"github.com/pdiddy/content-engine/internal/draft"
	"github.com/pdiddy/content-engine/internal/funnel"
	"github.com/pdiddy/content-engine/internal/logging"
	"github.com/pdiddy/content-engine/internal/rank"
	"github.com/pdiddy/content-engine/pkg/types"
)

// MaxQuota bounds the number of drafts requested in one run.
const MaxQuota = 50

// Precondition errors, returned before any gateway call.
var (
	ErrNoKeywords        = errors.New("no keywords configured for topic mode")
	ErrNoCreators        = errors.New("no creators configured for creator mode")
	ErrNoPersona         = errors.New("no persona profile configured")
	ErrInvalidQuota      = errors.New("quota must be between 1 and 50")
	ErrUnknownSourceMode = errors.New("unknown source mode")
)

// Generator is the generation capability used across the run.
type Generator interface {
	acquire.Expander
	rank.Scorer
	draft.Writer
}

// Store is the historical store: dedup lookups and draft persistence.
type Store interface {
	funnel.History
	draft.Inserter
}

// Runner wires the pipeline stages for repeated runs.
type Runner struct {
	source acquire.Source
	gen    Generator
	store  Store
	logger *slog.Logger
}

// NewRunner returns a runner over the given gateways.
func NewRunner(source acquire.Source, gen Generator, store Store, logger *slog.Logger) *Runner {
	return &Runner{
		source: source,
		gen:    gen,
		store:  store,
		logger: logging.OrDiscard(logger),
	}
}

// Run acquires candidates for tenant in mode, selects the best of them and
// generates up to quota drafts (never more than rank.MaxSelected). Fewer
// drafts than requested is not an error.
func (r *Runner) Run(ctx context.Context, tenant types.Tenant, mode types.SourceMode, quota int) (types.RunResult, error) {
	session, err := r.newSession(tenant, mode, quota)
	if err != nil {
		return types.RunResult{}, err
	}
	logger := r.logger.With("tenant", tenant.ID, "mode", string(mode))

	filter := funnel.New(r.store, tenant.ID, logger)
	bucket := acquire.NewEngine(r.source, r.gen, filter, logger).Fill(ctx, session)
	logger.Info("acquisition finished", "acquired", len(bucket), "attempts", session.Attempt,
		"fetched", session.Stats.Fetched, "source_errors", session.Stats.SourceErrors)

	selected := rank.NewEvaluator(r.gen, logger).Select(ctx, bucket)

	pipeline := draft.NewPipeline(r.gen, r.store, logger)
	processed, summary := pipeline.Process(ctx, draft.Request{
		Tenant:  tenant.ID,
		Mode:    mode,
		Persona: *tenant.Persona,
	}, selected)
	logger.Info("generation finished", "generated", summary.Generated,
		"skipped", summary.Skipped, "failed", summary.Failed)

	return types.RunResult{
		Processed: processed,
		Count:     len(processed),
		Acquired:  len(bucket),
		Selected:  len(selected),
		Attempts:  session.Attempt,
	}, nil
}

// newSession checks the run preconditions and builds the acquisition session.
func (r *Runner) newSession(tenant types.Tenant, mode types.SourceMode, quota int) (*acquire.Session, error) {
	if mode != types.SourceTopic && mode != types.SourceCreator {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSourceMode, mode)
	}
	if quota < 1 || quota > MaxQuota {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidQuota, quota)
	}
	if tenant.Persona == nil {
		return nil, fmt.Errorf("tenant %s: %w", tenant.ID, ErrNoPersona)
	}

	if mode == types.SourceCreator {
		urls := tenant.CreatorURLs()
		if len(urls) == 0 {
			return nil, fmt.Errorf("tenant %s: %w", tenant.ID, ErrNoCreators)
		}
		return acquire.NewCreatorSession(urls, quota), nil
	}

	keywords := cleanKeywords(tenant.Keywords())
	if len(keywords) == 0 {
		return nil, fmt.Errorf("tenant %s: %w", tenant.ID, ErrNoKeywords)
	}
	return acquire.NewTopicSession(keywords, quota), nil
}

func cleanKeywords(in []string) []string {
	var out []string
	for _, k := range in {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}
