// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists generated drafts, research notes and the
// execution log in SQLite, and answers the exact-fingerprint lookups used
// for historical deduplication.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/content-engine/internal/funnel"
	"github.com/pdiddy/content-engine/internal/logging"
	"github.com/pdiddy/content-engine/pkg/types"
)

const (
	dbFile     = "content.db"
	defaultDir = "data"
	// Fixed width so text ordering matches time ordering.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("record not found")

// recordColumns lists the drafts columns in scan order.
var recordColumns = []string{
	"id", "tenant", "source_mode", "kind", "status", "locator", "author",
	"original_text", "fingerprint", "outline", "generated",
	"likes", "comments", "shares", "meta", "created_at", "updated_at",
}

// Store manages the content SQLite database.
type Store struct {
	db     *sql.DB
	dir    string
	fts    bool
	logger *slog.Logger
	now    func() time.Time
}

// NewStore opens or creates the database at cfg.Dir/content.db and creates
// the schema if it does not exist.
func NewStore(cfg types.StoreConfig, logger *slog.Logger) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = defaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:     db,
		dir:    dir,
		logger: logging.OrDiscard(logger),
		now:    time.Now,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dir returns the directory holding the database and exports.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS drafts (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			tenant TEXT NOT NULL,
			source_mode TEXT NOT NULL,
			kind TEXT NOT NULL,
			status TEXT NOT NULL,
			locator TEXT,
			author TEXT,
			original_text TEXT NOT NULL,
			fingerprint TEXT NOT NULL,
			outline TEXT,
			generated TEXT,
			likes INTEGER NOT NULL DEFAULT 0,
			comments INTEGER NOT NULL DEFAULT 0,
			shares INTEGER,
			meta TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		// Not unique: dedup is a pre-insert lookup, so two concurrent runs
		// for one tenant may both insert the same fingerprint.
		`CREATE INDEX IF NOT EXISTS idx_drafts_tenant_fingerprint ON drafts(tenant, fingerprint)`,
		`CREATE INDEX IF NOT EXISTS idx_drafts_status ON drafts(status)`,
		`CREATE TABLE IF NOT EXISTS executions (
			id TEXT PRIMARY KEY,
			tenant TEXT NOT NULL,
			trigger TEXT NOT NULL,
			source_mode TEXT NOT NULL,
			status TEXT NOT NULL,
			posts_generated INTEGER NOT NULL DEFAULT 0,
			error_message TEXT,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_executions_tenant ON executions(tenant, started_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	s.fts = s.createFTS()
	return nil
}

// createFTS sets up full-text search over drafts. SQLite builds without the
// fts5 module fall back to LIKE matching in List.
func (s *Store) createFTS() bool {
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='drafts_fts'`,
	).Scan(&ftsExists); err != nil {
		s.logger.Warn("checking FTS table", "error", err)
		return false
	}
	if ftsExists > 0 {
		return true
	}

	ftsStatements := []string{
		`CREATE VIRTUAL TABLE drafts_fts USING fts5(original_text, generated, content=drafts, content_rowid=rowid)`,
		`CREATE TRIGGER drafts_ai AFTER INSERT ON drafts BEGIN
			INSERT INTO drafts_fts(rowid, original_text, generated) VALUES (new.rowid, new.original_text, new.generated);
		END`,
		`CREATE TRIGGER drafts_ad AFTER DELETE ON drafts BEGIN
			INSERT INTO drafts_fts(drafts_fts, rowid, original_text, generated) VALUES('delete', old.rowid, old.original_text, old.generated);
		END`,
		`CREATE TRIGGER drafts_au AFTER UPDATE ON drafts BEGIN
			INSERT INTO drafts_fts(drafts_fts, rowid, original_text, generated) VALUES('delete', old.rowid, old.original_text, old.generated);
			INSERT INTO drafts_fts(rowid, original_text, generated) VALUES (new.rowid, new.original_text, new.generated);
		END`,
	}
	tx, err := s.db.Begin()
	if err != nil {
		return false
	}
	for _, stmt := range ftsStatements {
		if _, err := tx.Exec(stmt); err != nil {
			tx.Rollback()
			s.logger.Debug("full-text search unavailable, using LIKE matching", "error", err)
			return false
		}
	}
	return tx.Commit() == nil
}

// FindByFingerprint returns a draft of tenant whose fingerprint equals
// fingerprint, or nil when none exists. Research notes are not considered.
func (s *Store) FindByFingerprint(ctx context.Context, tenant, fingerprint string) (*types.PersistedRecord, error) {
	query, args, err := sq.Select(recordColumns...).
		From("drafts").
		Where(sq.Eq{"tenant": tenant, "fingerprint": fingerprint, "kind": string(types.KindDraft)}).
		OrderBy("created_at").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building fingerprint query: %w", err)
	}

	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up fingerprint: %w", err)
	}
	return rec, nil
}

// Insert writes rec. Missing id, fingerprint, status and timestamps are
// filled in and written back to rec.
func (s *Store) Insert(ctx context.Context, rec *types.PersistedRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Fingerprint == "" {
		rec.Fingerprint = funnel.Fingerprint(rec.OriginalText)
	}
	if rec.Kind == "" {
		rec.Kind = types.KindDraft
	}
	if rec.Status == "" {
		rec.Status = types.StatusDrafted
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now().UTC()
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = rec.CreatedAt
	}

	var meta any
	if len(rec.Meta) > 0 {
		data, err := json.Marshal(rec.Meta)
		if err != nil {
			return fmt.Errorf("encoding meta: %w", err)
		}
		meta = string(data)
	}
	var shares any
	if rec.Engagement.Shares != nil {
		shares = *rec.Engagement.Shares
	}

	query, args, err := sq.Insert("drafts").
		Columns(recordColumns...).
		Values(
			rec.ID, rec.Tenant, string(rec.SourceMode), string(rec.Kind), string(rec.Status),
			rec.Locator, rec.Author, rec.OriginalText, rec.Fingerprint,
			rec.Draft.Outline, rec.Draft.Rewritten,
			rec.Engagement.Likes, rec.Engagement.Comments, shares, meta,
			rec.CreatedAt.UTC().Format(timeLayout), rec.UpdatedAt.UTC().Format(timeLayout),
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting record %s: %w", rec.ID, err)
	}
	return nil
}

// Get returns the record with the given id.
func (s *Store) Get(ctx context.Context, id string) (*types.PersistedRecord, error) {
	query, args, err := sq.Select(recordColumns...).From("drafts").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building get: %w", err)
	}
	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading record %s: %w", id, err)
	}
	return rec, nil
}

// UpdateStatus moves a record to status.
func (s *Store) UpdateStatus(ctx context.Context, id string, status types.DraftStatus) error {
	if !types.ValidDraftStatus(status) {
		return fmt.Errorf("invalid status %q", status)
	}
	query, args, err := sq.Update("drafts").
		Set("status", string(status)).
		Set("updated_at", s.now().UTC().Format(timeLayout)).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building status update: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating status of %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating status of %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*types.PersistedRecord, error) {
	var (
		rec                      types.PersistedRecord
		mode, kind, status       string
		locator, author          sql.NullString
		outline, generated, meta sql.NullString
		shares                   sql.NullInt64
		createdAt, updatedAt     string
	)
	if err := row.Scan(
		&rec.ID, &rec.Tenant, &mode, &kind, &status, &locator, &author,
		&rec.OriginalText, &rec.Fingerprint, &outline, &generated,
		&rec.Engagement.Likes, &rec.Engagement.Comments, &shares, &meta,
		&createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	rec.SourceMode = types.SourceMode(mode)
	rec.Kind = types.RecordKind(kind)
	rec.Status = types.DraftStatus(status)
	rec.Locator = locator.String
	rec.Author = author.String
	rec.Draft = types.GeneratedDraft{Outline: outline.String, Rewritten: generated.String}
	if shares.Valid {
		v := int(shares.Int64)
		rec.Engagement.Shares = &v
	}
	if meta.Valid && meta.String != "" {
		if err := json.Unmarshal([]byte(meta.String), &rec.Meta); err != nil {
			return nil, fmt.Errorf("decoding meta of %s: %w", rec.ID, err)
		}
	}
	var err error
	if rec.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("decoding created_at of %s: %w", rec.ID, err)
	}
	if rec.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("decoding updated_at of %s: %w", rec.ID, err)
	}
	return &rec, nil
}
