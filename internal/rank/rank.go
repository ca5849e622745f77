// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank selects the high-engagement subset of acquired candidates
// that goes on to generation.
package rank

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/pdiddy/content-engine/internal/logging"
	"github.com/pdiddy/content-engine/pkg/types"
)

// MaxSelected is the most candidates the evaluator returns.
const MaxSelected = 5

// ErrNoValidIndices is reported when the scorer answered with indices but
// none of them refer to a candidate.
var ErrNoValidIndices = errors.New("scorer returned no valid indices")

// Scorer judges engagement holistically and returns the zero-based indices
// of the high-engagement candidates, best first.
type Scorer interface {
	ScoreEngagement(ctx context.Context, candidates []types.CandidateItem) ([]int, error)
}

// Evaluator picks at most MaxSelected candidates.
type Evaluator struct {
	scorer Scorer
	logger *slog.Logger
}

// NewEvaluator returns an evaluator. A nil scorer always uses the fallback.
func NewEvaluator(scorer Scorer, logger *slog.Logger) *Evaluator {
	return &Evaluator{scorer: scorer, logger: logging.OrDiscard(logger)}
}

// Select returns the chosen candidates in the scorer's order. If the
// scorer fails or its answer is unusable, Select falls back to the top
// candidates by likes plus comments. An empty result means nothing met the
// bar and is not an error.
func (e *Evaluator) Select(ctx context.Context, candidates []types.CandidateItem) []types.CandidateItem {
	if len(candidates) == 0 {
		return nil
	}
	if e.scorer == nil {
		return Fallback(candidates)
	}

	indices, err := e.scorer.ScoreEngagement(ctx, candidates)
	if err == nil {
		var picked []types.CandidateItem
		picked, err = pick(candidates, indices)
		if err == nil {
			e.logger.Info("engagement scored", "candidates", len(candidates), "selected", len(picked))
			return picked
		}
	}

	e.logger.Warn("engagement scoring failed, using fallback ranking", "error", err)
	return Fallback(candidates)
}

// pick maps indices back to candidates, dropping out-of-range and repeated
// indices and capping the result at MaxSelected.
func pick(candidates []types.CandidateItem, indices []int) ([]types.CandidateItem, error) {
	seen := make(map[int]bool, len(indices))
	picked := make([]types.CandidateItem, 0, MaxSelected)
	for _, i := range indices {
		if i < 0 || i >= len(candidates) || seen[i] {
			continue
		}
		seen[i] = true
		picked = append(picked, candidates[i])
		if len(picked) == MaxSelected {
			break
		}
	}
	if len(indices) > 0 && len(picked) == 0 {
		return nil, ErrNoValidIndices
	}
	return picked, nil
}

// Fallback sorts a copy of candidates by likes plus comments, descending,
// keeping input order on ties, and returns the top MaxSelected.
func Fallback(candidates []types.CandidateItem) []types.CandidateItem {
	sorted := append([]types.CandidateItem(nil), candidates...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return simpleScore(sorted[i]) > simpleScore(sorted[j])
	})
	if len(sorted) > MaxSelected {
		sorted = sorted[:MaxSelected]
	}
	return sorted
}

func simpleScore(c types.CandidateItem) int {
	return c.Engagement.Likes + c.Engagement.Comments
}
