// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package funnel

import (
	"strings"

	"github.com/pdiddy/content-engine/pkg/types"
)

const (
	strictLikes    = 10
	relaxedLikes   = 5
	relaxAfter     = 2
	minComments    = 2
	FingerprintLen = 500
)

// QualityThreshold returns the minimum like count for the given zero-based
// attempt. The bar drops once the run has struggled for more than two
// attempts.
func QualityThreshold(attempt int) int {
	if attempt > relaxAfter {
		return relaxedLikes
	}
	return strictLikes
}

// MeetsQuality accepts an item with enough likes for the attempt or at least
// two comments.
func MeetsQuality(e types.Engagement, attempt int) bool {
	return e.Likes >= QualityThreshold(attempt) || e.Comments >= minComments
}

// Fingerprint normalizes text into the exact-match dedup key: surrounding
// whitespace is trimmed and the result truncated to FingerprintLen runes.
func Fingerprint(text string) string {
	fp := strings.TrimSpace(text)
	r := []rune(fp)
	if len(r) > FingerprintLen {
		fp = string(r[:FingerprintLen])
	}
	return fp
}
