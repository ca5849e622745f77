// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/pdiddy/content-engine/pkg/types"
)

const defaultLimit = 50

// Query filters List and the exports. Zero values match everything.
type Query struct {
	Tenant string
	Status types.DraftStatus
	Mode   types.SourceMode
	Kind   types.RecordKind

	// Search matches text in the original post or the generated draft.
	Search string

	// Limit caps the number of records (default 50).
	Limit int
}

// List returns records matching q, newest first.
func (s *Store) List(ctx context.Context, q Query) ([]types.PersistedRecord, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	sel := sq.Select(recordColumns...).From("drafts")
	if q.Tenant != "" {
		sel = sel.Where(sq.Eq{"tenant": q.Tenant})
	}
	if q.Status != "" {
		sel = sel.Where(sq.Eq{"status": string(q.Status)})
	}
	if q.Mode != "" {
		sel = sel.Where(sq.Eq{"source_mode": string(q.Mode)})
	}
	if q.Kind != "" {
		sel = sel.Where(sq.Eq{"kind": string(q.Kind)})
	}
	if term := strings.TrimSpace(q.Search); term != "" {
		if s.fts {
			sel = sel.Where("rowid IN (SELECT rowid FROM drafts_fts WHERE drafts_fts MATCH ?)", ftsPhrase(term))
		} else {
			like := "%" + term + "%"
			sel = sel.Where(sq.Or{sq.Like{"original_text": like}, sq.Like{"generated": like}})
		}
	}
	sel = sel.OrderBy("created_at DESC", "rowid DESC").Limit(uint64(limit))

	query, args, err := sel.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building list query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	var records []types.PersistedRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// ftsPhrase quotes term so FTS5 treats it as a phrase rather than query syntax.
func ftsPhrase(term string) string {
	return `"` + strings.ReplaceAll(term, `"`, `""`) + `"`
}
