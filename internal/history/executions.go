// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/pdiddy/content-engine/pkg/types"
)

var executionColumns = []string{
	"id", "tenant", "trigger", "source_mode", "status",
	"posts_generated", "error_message", "started_at", "finished_at",
}

// RecordExecution appends e to the execution log, assigning an id if needed.
func (s *Store) RecordExecution(ctx context.Context, e *types.Execution) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.FinishedAt.IsZero() {
		e.FinishedAt = s.now().UTC()
	}
	if e.StartedAt.IsZero() {
		e.StartedAt = e.FinishedAt
	}

	query, args, err := sq.Insert("executions").
		Columns(executionColumns...).
		Values(
			e.ID, e.Tenant, e.Trigger, string(e.SourceMode), string(e.Status),
			e.PostsGenerated, e.ErrorMessage,
			e.StartedAt.UTC().Format(timeLayout), e.FinishedAt.UTC().Format(timeLayout),
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("building execution insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("recording execution: %w", err)
	}
	return nil
}

// ListExecutions returns the most recent executions, optionally limited to
// one tenant.
func (s *Store) ListExecutions(ctx context.Context, tenant string, limit int) ([]types.Execution, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	sel := sq.Select(executionColumns...).From("executions")
	if tenant != "" {
		sel = sel.Where(sq.Eq{"tenant": tenant})
	}
	query, args, err := sel.OrderBy("started_at DESC").Limit(uint64(limit)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building executions query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing executions: %w", err)
	}
	defer rows.Close()

	var out []types.Execution
	for rows.Next() {
		var (
			e                 types.Execution
			mode, status      string
			errMsg            sql.NullString
			started, finished string
		)
		if err := rows.Scan(&e.ID, &e.Tenant, &e.Trigger, &mode, &status,
			&e.PostsGenerated, &errMsg, &started, &finished); err != nil {
			return nil, fmt.Errorf("scanning execution: %w", err)
		}
		e.SourceMode = types.SourceMode(mode)
		e.Status = types.ExecutionStatus(status)
		e.ErrorMessage = errMsg.String
		if e.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("decoding started_at of %s: %w", e.ID, err)
		}
		if e.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
			return nil, fmt.Errorf("decoding finished_at of %s: %w", e.ID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
