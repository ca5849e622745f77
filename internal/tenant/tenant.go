// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tenant loads the tenant definitions: persona, monitored creators
// and daily schedule for each account.
package tenant

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/content-engine/pkg/types"
)

// DefaultCount is the scheduled quota when a schedule sets none.
const DefaultCount = 3

// ErrNotFound is returned by Find for an unknown tenant id.
var ErrNotFound = errors.New("tenant not found")

// File is the on-disk layout of tenants.yaml.
type File struct {
	Tenants []types.Tenant `yaml:"tenants"`
}

// Registry holds the loaded tenants in file order.
type Registry struct {
	tenants []types.Tenant
}

// Load reads and validates the tenants file at path.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tenants file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a tenants document.
func Parse(data []byte) (*Registry, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing tenants file: %w", err)
	}

	seen := make(map[string]bool, len(f.Tenants))
	for i := range f.Tenants {
		t := &f.Tenants[i]
		t.ID = strings.TrimSpace(t.ID)
		if t.ID == "" {
			return nil, fmt.Errorf("tenant %d: missing id", i+1)
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("tenant %s: duplicate id", t.ID)
		}
		seen[t.ID] = true
		if err := normalizeSchedule(&t.Schedule); err != nil {
			return nil, fmt.Errorf("tenant %s: %w", t.ID, err)
		}
	}
	return &Registry{tenants: f.Tenants}, nil
}

func normalizeSchedule(s *types.Schedule) error {
	if s.Timezone == "" {
		s.Timezone = "UTC"
	}
	if s.Source == "" {
		s.Source = types.SourceTopic
	}
	if s.Count <= 0 {
		s.Count = DefaultCount
	}
	mode, err := types.ParseSourceMode(string(s.Source))
	if err != nil {
		return fmt.Errorf("schedule: %w", err)
	}
	s.Source = mode
	if _, err := time.LoadLocation(s.Timezone); err != nil {
		return fmt.Errorf("schedule: timezone %q: %w", s.Timezone, err)
	}
	if !s.Enabled && s.Time == "" {
		return nil
	}
	if _, _, err := ParseClock(s.Time); err != nil {
		return fmt.Errorf("schedule: %w", err)
	}
	return nil
}

// ParseClock parses an HH:MM 24-hour time of day.
func ParseClock(v string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", strings.TrimSpace(v))
	if err != nil {
		return 0, 0, fmt.Errorf("time %q is not HH:MM", v)
	}
	return t.Hour(), t.Minute(), nil
}

// All returns every tenant in file order.
func (r *Registry) All() []types.Tenant {
	return append([]types.Tenant(nil), r.tenants...)
}

// Find returns the tenant with the given id.
func (r *Registry) Find(id string) (types.Tenant, error) {
	for _, t := range r.tenants {
		if t.ID == id {
			return t, nil
		}
	}
	return types.Tenant{}, fmt.Errorf("%s: %w", id, ErrNotFound)
}

// Scheduled returns the tenants with an enabled schedule.
func (r *Registry) Scheduled() []types.Tenant {
	var out []types.Tenant
	for _, t := range r.tenants {
		if t.Schedule.Enabled {
			out = append(out, t)
		}
	}
	return out
}
