// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Creator is a monitored profile used in creator mode.
type Creator struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// Schedule is the daily trigger configuration of a tenant.
type Schedule struct {
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Time is the local time of day in HH:MM (24h) format.
	Time string `json:"time" yaml:"time"`

	// Timezone is an IANA zone name (default UTC).
	Timezone string `json:"timezone,omitempty" yaml:"timezone,omitempty"`

	// Source is the source mode used for scheduled runs.
	Source SourceMode `json:"source" yaml:"source"`

	// Count is the quota requested for each scheduled run.
	Count int `json:"count" yaml:"count"`
}

// Tenant groups the persona, creators and schedule of one account.
type Tenant struct {
	ID       string          `json:"id" yaml:"id"`
	Name     string          `json:"name,omitempty" yaml:"name,omitempty"`
	Persona  *PersonaProfile `json:"persona,omitempty" yaml:"persona,omitempty"`
	Creators []Creator       `json:"creators,omitempty" yaml:"creators,omitempty"`
	Schedule Schedule        `json:"schedule" yaml:"schedule"`
}

// Keywords returns the persona keywords, or nil when no persona is set.
func (t Tenant) Keywords() []string {
	if t.Persona == nil {
		return nil
	}
	return t.Persona.Keywords
}

// CreatorURLs returns the non-empty creator profile URLs.
func (t Tenant) CreatorURLs() []string {
	urls := make([]string, 0, len(t.Creators))
	for _, c := range t.Creators {
		if c.URL != "" {
			urls = append(urls, c.URL)
		}
	}
	return urls
}

// ExecutionStatus is the outcome of a run recorded in the execution log.
type ExecutionStatus string

const (
	ExecutionSuccess ExecutionStatus = "success"
	ExecutionFailed  ExecutionStatus = "failed"
)

// Execution is one entry in the execution log.
type Execution struct {
	ID             string          `json:"id" yaml:"id"`
	Tenant         string          `json:"tenant" yaml:"tenant"`
	Trigger        string          `json:"trigger" yaml:"trigger"`
	SourceMode     SourceMode      `json:"source_mode" yaml:"source_mode"`
	Status         ExecutionStatus `json:"status" yaml:"status"`
	PostsGenerated int             `json:"posts_generated" yaml:"posts_generated"`
	ErrorMessage   string          `json:"error_message,omitempty" yaml:"error_message,omitempty"`
	StartedAt      time.Time       `json:"started_at" yaml:"started_at"`
	FinishedAt     time.Time       `json:"finished_at" yaml:"finished_at"`
}
