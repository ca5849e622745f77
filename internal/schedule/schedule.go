// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package schedule triggers the daily run of each tenant at its configured
// local time and keeps the execution log.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/pdiddy/content-engine/internal/logging"
	"github.com/pdiddy/content-engine/internal/tenant"
	"github.com/pdiddy/content-engine/pkg/types"
)

// Execution triggers.
const (
	TriggerScheduled = "scheduled"
	TriggerManual    = "manual"
)

// ErrNothingScheduled is returned by Loop when no tenant has an enabled schedule.
var ErrNothingScheduled = errors.New("no tenant has an enabled schedule")

// Workflow runs one acquisition and generation pass.
type Workflow interface {
	Run(ctx context.Context, t types.Tenant, mode types.SourceMode, quota int) (types.RunResult, error)
}

// Recorder appends to the execution log.
type Recorder interface {
	RecordExecution(ctx context.Context, e *types.Execution) error
}

// Entry is the next planned run of a tenant.
type Entry struct {
	Tenant types.Tenant
	At     time.Time
}

// NextRun returns the first occurrence of clock (HH:MM) in timezone that is
// strictly after now. On days where the local time does not exist, the
// time is normalized forward as time.Date does.
func NextRun(clock, timezone string, now time.Time) (time.Time, error) {
	hour, minute, err := tenant.ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	if timezone == "" {
		timezone = "UTC"
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("timezone %q: %w", timezone, err)
	}

	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	if !next.After(now) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, hour, minute, 0, 0, loc)
	}
	return next, nil
}

// Plan returns the next run of every enabled tenant, earliest first.
func Plan(tenants []types.Tenant, now time.Time) ([]Entry, error) {
	var entries []Entry
	for _, t := range tenants {
		if !t.Schedule.Enabled {
			continue
		}
		at, err := NextRun(t.Schedule.Time, t.Schedule.Timezone, now)
		if err != nil {
			return nil, fmt.Errorf("tenant %s: %w", t.ID, err)
		}
		entries = append(entries, Entry{Tenant: t, At: at})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].At.Before(entries[j].At)
	})
	return entries, nil
}

// Scheduler runs the workflow for tenants and records each execution.
type Scheduler struct {
	workflow Workflow
	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
}

// New returns a scheduler. recorder may be nil to skip the execution log.
func New(workflow Workflow, recorder Recorder, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		workflow: workflow,
		recorder: recorder,
		logger:   logging.OrDiscard(logger),
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// Execute runs the workflow once for t and records the outcome: success
// with the number of drafts generated, or failed with the error message.
// A failure to record is logged and does not change the returned result.
func (s *Scheduler) Execute(ctx context.Context, t types.Tenant, mode types.SourceMode, quota int, trigger string) (types.RunResult, error) {
	started := s.now()
	res, runErr := s.workflow.Run(ctx, t, mode, quota)

	e := &types.Execution{
		Tenant:         t.ID,
		Trigger:        trigger,
		SourceMode:     mode,
		Status:         types.ExecutionSuccess,
		PostsGenerated: res.Count,
		StartedAt:      started,
		FinishedAt:     s.now(),
	}
	if runErr != nil {
		e.Status = types.ExecutionFailed
		e.ErrorMessage = runErr.Error()
	}

	if s.recorder != nil {
		// The log entry is written even when the run was cancelled.
		if err := s.recorder.RecordExecution(context.WithoutCancel(ctx), e); err != nil {
			s.logger.Warn("recording execution failed", "tenant", t.ID, "error", err)
		}
	}
	return res, runErr
}

// Loop waits for the earliest planned run, executes every tenant due at
// that instant, and repeats until ctx is cancelled. Run failures are
// recorded and never stop the loop.
func (s *Scheduler) Loop(ctx context.Context, tenants []types.Tenant) error {
	for {
		plan, err := Plan(tenants, s.now())
		if err != nil {
			return err
		}
		if len(plan) == 0 {
			return ErrNothingScheduled
		}

		next := plan[0].At
		wait := next.Sub(s.now())
		s.logger.Info("waiting for next run", "tenant", plan[0].Tenant.ID,
			"at", next.Format(time.RFC3339), "in", wait.Round(time.Second).String())
		if err := s.sleep(ctx, wait); err != nil {
			return err
		}

		for _, entry := range plan {
			if !entry.At.Equal(next) {
				break
			}
			t := entry.Tenant
			res, err := s.Execute(ctx, t, t.Schedule.Source, t.Schedule.Count, TriggerScheduled)
			if err != nil {
				s.logger.Error("scheduled run failed", "tenant", t.ID, "error", err)
				continue
			}
			s.logger.Info("scheduled run finished", "tenant", t.ID, "drafts", res.Count)
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
