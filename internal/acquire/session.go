// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"strings"

	"github.com/pdiddy/content-engine/internal/funnel"
	"github.com/pdiddy/content-engine/pkg/types"
)

// MaxAttempts bounds the number of source calls in one session.
const MaxAttempts = 5

// Session is the mutable state of one bucket-filling run. It is created at
// run start, advanced by Engine.Step, and discarded at run end.
type Session struct {
	Mode        types.SourceMode
	Quota       int
	MaxAttempts int

	// Attempt is the number of attempts already made (zero-based index of
	// the next attempt).
	Attempt int

	// Queries is the query sequence cycled through in topic mode. Expansion
	// prepends variants; the original keywords are never removed.
	Queries []string

	// Profiles are the creator profile URLs fetched in creator mode.
	Profiles []string

	// Bucket holds accepted candidates in acceptance order, never more than Quota.
	Bucket []types.CandidateItem

	// Seen holds every locator accepted or found in history during the session.
	Seen funnel.SeenSet

	// Expanded records whether query expansion has been attempted.
	Expanded bool

	Stats Stats
}

// Stats counts what happened to raw items over a session.
type Stats struct {
	Fetched       int
	Accepted      int
	Rejected      map[funnel.Reason]int
	SourceErrors  int
	ExpansionUsed bool
}

// NewTopicSession starts a keyword-search session. The first keyword is the
// seed for query expansion.
func NewTopicSession(keywords []string, quota int) *Session {
	return newSession(types.SourceTopic, quota, append([]string(nil), keywords...), nil)
}

// NewCreatorSession starts a session over a fixed list of creator profiles.
func NewCreatorSession(profiles []string, quota int) *Session {
	return newSession(types.SourceCreator, quota, nil, append([]string(nil), profiles...))
}

func newSession(mode types.SourceMode, quota int, queries, profiles []string) *Session {
	return &Session{
		Mode:        mode,
		Quota:       quota,
		MaxAttempts: MaxAttempts,
		Queries:     queries,
		Profiles:    profiles,
		Seen:        funnel.SeenSet{},
		Stats:       Stats{Rejected: map[funnel.Reason]int{}},
	}
}

// Full reports whether the bucket has reached the quota.
func (s *Session) Full() bool {
	return len(s.Bucket) >= s.Quota
}

// Done reports whether the session should stop: the bucket is full or the
// attempts are exhausted.
func (s *Session) Done() bool {
	return s.Full() || s.Attempt >= s.MaxAttempts
}

// CurrentQuery returns the query for the next attempt, cycling through the
// sequence by attempt number.
func (s *Session) CurrentQuery() string {
	if len(s.Queries) == 0 {
		return ""
	}
	return s.Queries[s.Attempt%len(s.Queries)]
}

// accept appends item to the bucket and records its locator.
func (s *Session) accept(item types.CandidateItem) {
	s.Bucket = append(s.Bucket, item)
	s.Seen.Add(item.Locator)
	s.Stats.Accepted++
}

// prependQueries puts variants in front of the sequence, skipping blanks and
// queries already present.
func (s *Session) prependQueries(variants []string) int {
	existing := make(map[string]bool, len(s.Queries))
	for _, q := range s.Queries {
		existing[q] = true
	}
	var fresh []string
	for _, v := range variants {
		v = strings.TrimSpace(v)
		if v == "" || existing[v] {
			continue
		}
		existing[v] = true
		fresh = append(fresh, v)
	}
	s.Queries = append(fresh, s.Queries...)
	return len(fresh)
}
