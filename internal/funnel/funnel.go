// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package funnel reduces raw source items to accepted candidates through an
// ordered chain of predicates. Cheap local checks run first; the historical
// lookup is the only step that performs I/O. The first rejection wins and
// the remaining predicates are skipped.
package funnel

import (
	"context"
	"log/slog"

	"github.com/pdiddy/content-engine/internal/logging"
	"github.com/pdiddy/content-engine/pkg/types"
)

// Reason explains why a candidate was rejected.
type Reason string

const (
	ReasonMissingLocator      Reason = "missing_locator"
	ReasonDuplicateSession    Reason = "duplicate_session"
	ReasonLowQuality          Reason = "low_quality"
	ReasonEmptyContent        Reason = "empty_content"
	ReasonDuplicateHistorical Reason = "duplicate_historical"
	ReasonInvalidLanguage     Reason = "invalid_language"
	ReasonExcludedTheme       Reason = "excluded_theme"
)

// Verdict is the outcome of running one item through the funnel.
type Verdict struct {
	Accepted bool
	Reason   Reason

	// Fingerprint is set once the fingerprint step has run.
	Fingerprint string
}

// SeenSet holds the locators seen during one acquisition session.
type SeenSet map[string]struct{}

// Has reports whether locator was already seen.
func (s SeenSet) Has(locator string) bool {
	_, ok := s[locator]
	return ok
}

// Add marks locator as seen.
func (s SeenSet) Add(locator string) {
	s[locator] = struct{}{}
}

// History looks up persisted records by fingerprint. Implementations return
// a nil record and nil error when nothing matches.
type History interface {
	FindByFingerprint(ctx context.Context, tenant, fingerprint string) (*types.PersistedRecord, error)
}

// Funnel evaluates candidates for one tenant.
type Funnel struct {
	history History
	tenant  string
	logger  *slog.Logger
}

// New returns a funnel that checks historical duplicates in the given
// tenant scope. A nil history disables the historical check.
func New(history History, tenant string, logger *slog.Logger) *Funnel {
	return &Funnel{history: history, tenant: tenant, logger: logging.OrDiscard(logger)}
}

// evaluation carries per-item state through the predicate chain.
type evaluation struct {
	item        types.CandidateItem
	seen        SeenSet
	attempt     int
	fingerprint string
}

// step returns a non-empty Reason to reject.
type step func(ctx context.Context, ev *evaluation) Reason

// Evaluate runs item through the predicates in order. attempt is the
// zero-based acquisition attempt, which controls the quality threshold.
// The session set is only written by the historical check; accepted items
// are recorded by the caller.
func (f *Funnel) Evaluate(ctx context.Context, item types.CandidateItem, seen SeenSet, attempt int) Verdict {
	ev := &evaluation{item: item, seen: seen, attempt: attempt}

	steps := []step{
		checkLocator,
		checkSession,
		checkQuality,
		checkFingerprint,
		f.checkHistory,
		checkLanguage,
		checkTheme,
	}
	for _, s := range steps {
		if reason := s(ctx, ev); reason != "" {
			return Verdict{Reason: reason, Fingerprint: ev.fingerprint}
		}
	}
	return Verdict{Accepted: true, Fingerprint: ev.fingerprint}
}

func checkLocator(_ context.Context, ev *evaluation) Reason {
	if ev.item.Locator == "" {
		return ReasonMissingLocator
	}
	return ""
}

func checkSession(_ context.Context, ev *evaluation) Reason {
	if ev.seen.Has(ev.item.Locator) {
		return ReasonDuplicateSession
	}
	return ""
}

func checkQuality(_ context.Context, ev *evaluation) Reason {
	if !MeetsQuality(ev.item.Engagement, ev.attempt) {
		return ReasonLowQuality
	}
	return ""
}

func checkFingerprint(_ context.Context, ev *evaluation) Reason {
	ev.fingerprint = Fingerprint(ev.item.Text)
	if ev.fingerprint == "" {
		return ReasonEmptyContent
	}
	return ""
}

// checkHistory rejects items already persisted for the tenant. A failed
// lookup is logged and the item is let through.
func (f *Funnel) checkHistory(ctx context.Context, ev *evaluation) Reason {
	if f.history == nil {
		return ""
	}
	rec, err := f.history.FindByFingerprint(ctx, f.tenant, ev.fingerprint)
	if err != nil {
		f.logger.Warn("historical lookup failed, accepting candidate",
			"locator", ev.item.Locator, "error", err)
		return ""
	}
	if rec != nil {
		ev.seen.Add(ev.item.Locator)
		return ReasonDuplicateHistorical
	}
	return ""
}

func checkLanguage(_ context.Context, ev *evaluation) Reason {
	if !ValidLanguage(ev.item.Text) {
		return ReasonInvalidLanguage
	}
	return ""
}

func checkTheme(_ context.Context, ev *evaluation) Reason {
	if ExcludedTheme(ev.item.Text, ev.item.AuthorName) {
		return ReasonExcludedTheme
	}
	return ""
}
