// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
	"time"
)

// SourceMode selects where candidates come from: keyword search or a fixed
// list of monitored creator profiles.
type SourceMode string

const (
	SourceTopic   SourceMode = "topic"
	SourceCreator SourceMode = "creator"
)

// ParseSourceMode accepts "topic"/"keywords" and "creator"/"creators".
func ParseSourceMode(s string) (SourceMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "topic", "keywords", "keyword":
		return SourceTopic, nil
	case "creator", "creators":
		return SourceCreator, nil
	}
	return "", fmt.Errorf("unknown source mode %q (want topic or creator)", s)
}

// Engagement is the likes/comments/shares snapshot of a post.
type Engagement struct {
	Likes    int  `json:"likes" yaml:"likes"`
	Comments int  `json:"comments" yaml:"comments"`
	Shares   *int `json:"shares,omitempty" yaml:"shares,omitempty"`
}

// SharesOrZero returns the share count, or 0 when the source did not report one.
func (e Engagement) SharesOrZero() int {
	if e.Shares == nil {
		return 0
	}
	return *e.Shares
}

// CandidateItem is a post returned by a source gateway. It is not modified
// after it is fetched.
type CandidateItem struct {
	// Locator uniquely identifies the post, usually its URL.
	Locator string `json:"locator" yaml:"locator"`

	// Text is the post body as plain text.
	Text string `json:"text" yaml:"text"`

	// AuthorName is the display name of the post author, if known.
	AuthorName string `json:"author_name,omitempty" yaml:"author_name,omitempty"`

	Engagement Engagement `json:"engagement" yaml:"engagement"`
}

// PersonaProfile is the tenant voice used to condition rewrites.
type PersonaProfile struct {
	Tone               string   `json:"tone" yaml:"tone"`
	Keywords           []string `json:"keywords" yaml:"keywords"`
	CustomInstructions string   `json:"custom_instructions" yaml:"custom_instructions"`
}

// GeneratedDraft is the output of the outline and rewrite steps for one candidate.
type GeneratedDraft struct {
	Outline   string `json:"outline" yaml:"outline"`
	Rewritten string `json:"rewritten" yaml:"rewritten"`
}

// DraftStatus tracks a persisted record through review.
type DraftStatus string

const (
	StatusIdea      DraftStatus = "idea"
	StatusDrafted   DraftStatus = "drafted"
	StatusApproved  DraftStatus = "approved"
	StatusPosted    DraftStatus = "posted"
	StatusDiscarded DraftStatus = "discarded"
)

// ValidDraftStatus reports whether s is a known status.
func ValidDraftStatus(s DraftStatus) bool {
	switch s {
	case StatusIdea, StatusDrafted, StatusApproved, StatusPosted, StatusDiscarded:
		return true
	}
	return false
}

// RecordKind distinguishes generated drafts from research notes.
type RecordKind string

const (
	KindDraft    RecordKind = "draft"
	KindResearch RecordKind = "research"
)

// PersistedRecord is a stored draft or research note. The Fingerprint is the
// dedup key compared against new candidates.
type PersistedRecord struct {
	ID           string         `json:"id" yaml:"id"`
	Tenant       string         `json:"tenant" yaml:"tenant"`
	SourceMode   SourceMode     `json:"source_mode" yaml:"source_mode"`
	Kind         RecordKind     `json:"kind" yaml:"kind"`
	Status       DraftStatus    `json:"status" yaml:"status"`
	Locator      string         `json:"locator" yaml:"locator"`
	Author       string         `json:"author,omitempty" yaml:"author,omitempty"`
	OriginalText string         `json:"original_text" yaml:"original_text"`
	Fingerprint  string         `json:"-" yaml:"-"`
	Draft        GeneratedDraft `json:"draft" yaml:"draft"`
	Engagement   Engagement     `json:"engagement" yaml:"engagement"`
	Meta         map[string]any `json:"meta,omitempty" yaml:"meta,omitempty"`
	CreatedAt    time.Time      `json:"created_at" yaml:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at" yaml:"updated_at"`
}

// ProcessedDraft is what a run reports back for each persisted draft.
type ProcessedDraft struct {
	ID        string `json:"id"`
	Locator   string `json:"locator"`
	Original  string `json:"original"`
	Generated string `json:"generated"`
}

// RunResult summarizes one acquisition and generation run.
type RunResult struct {
	Processed []ProcessedDraft `json:"processed"`
	Count     int              `json:"count"`

	// Acquired is the number of candidates that survived the funnel.
	Acquired int `json:"acquired"`

	// Selected is the number of candidates the evaluator passed to generation.
	Selected int `json:"selected"`

	// Attempts is the number of source queries the bucket filler issued.
	Attempts int `json:"attempts"`
}
