package ledger

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"whisperarc/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; existing databases with a different version are rejected.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Store is the durable archive ledger backed by SQLite. It is the single
// source of truth for "is this recording already archived" and for the
// incremental run watermark. One writer process at a time is assumed.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the ledger database. Initialization is
// idempotent: opening an already-initialized store only verifies the schema
// version.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.LedgerPath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the location of the backing database file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	err = s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to start over)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}

	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// IsArchived reports whether a ledger entry exists for the source id.
func (s *Store) IsArchived(ctx context.Context, sourceID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM archived_recordings WHERE source_id = ?`, sourceID,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query archived: %w", err)
	}
	return true, nil
}

// RecordArchived upserts the entry for its source id. Re-archiving an id
// silently supersedes the previous entry; a second call never increases the
// archived count.
func (s *Store) RecordArchived(ctx context.Context, entry Entry) error {
	if entry.SourceID == "" {
		return errors.New("entry source id required")
	}
	if entry.FilePath == "" {
		return errors.New("entry file path required")
	}
	archivedAt := entry.ArchivedAt
	if archivedAt.IsZero() {
		archivedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO archived_recordings
         (source_id, recorded_at, mode, duration_ms, file_path, commit_sha, archived_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.SourceID,
		entry.RecordedAt.Format("2006-01-02T15:04:05"),
		entry.Mode,
		entry.DurationMS,
		entry.FilePath,
		nullableString(entry.CommitSHA),
		archivedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record archived: %w", err)
	}
	return nil
}

// Entry fetches the ledger entry for a source id, or nil when absent.
func (s *Store) Entry(ctx context.Context, sourceID string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT source_id, recorded_at, mode, duration_ms, file_path, commit_sha, archived_at
         FROM archived_recordings WHERE source_id = ?`, sourceID)

	var (
		entry       Entry
		recordedRaw sql.NullString
		mode        sql.NullString
		duration    sql.NullInt64
		commitSHA   sql.NullString
		archivedRaw string
	)
	err := row.Scan(&entry.SourceID, &recordedRaw, &mode, &duration, &entry.FilePath, &commitSHA, &archivedRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}

	entry.Mode = mode.String
	entry.DurationMS = duration.Int64
	entry.CommitSHA = commitSHA.String
	if recordedRaw.Valid {
		if recorded, err := parseTimeString(recordedRaw.String); err == nil {
			entry.RecordedAt = recorded
		}
	}
	if archived, err := parseTimeString(archivedRaw); err == nil {
		entry.ArchivedAt = archived
	}
	return &entry, nil
}

// ArchivedCount returns the number of distinct archived recordings.
func (s *Store) ArchivedCount(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM archived_recordings`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count archived: %w", err)
	}
	return count, nil
}

// LastRunTimestamp returns the most recent run_at across all recorded runs,
// or nil when no run has ever completed. This drives the default incremental
// lower bound for the next scan.
func (s *Store) LastRunTimestamp(ctx context.Context) (*time.Time, error) {
	var raw sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT run_at FROM archive_runs ORDER BY run_at DESC LIMIT 1`,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query last run: %w", err)
	}
	if !raw.Valid {
		return nil, nil
	}
	runAt, err := parseTimeString(raw.String)
	if err != nil {
		return nil, fmt.Errorf("parse last run timestamp %q: %w", raw.String, err)
	}
	return &runAt, nil
}

// RecordRun appends one run record. Runs are append-only; the watermark is
// always the maximum run_at.
func (s *Store) RecordRun(ctx context.Context, record RunRecord) error {
	runAt := record.RunAt
	if runAt.IsZero() {
		runAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO archive_runs (run_at, recordings_processed, recordings_archived, recordings_failed)
         VALUES (?, ?, ?, ?)`,
		runAt.Format(time.RFC3339Nano),
		record.RecordingsProcessed,
		record.RecordingsArchived,
		record.RecordingsFailed,
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit run records, most recent first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_at, recordings_processed, recordings_archived, recordings_failed
         FROM archive_runs ORDER BY run_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var (
			raw    string
			record RunRecord
		)
		if err := rows.Scan(&raw, &record.RecordingsProcessed, &record.RecordingsArchived, &record.RecordingsFailed); err != nil {
			return nil, err
		}
		if runAt, err := parseTimeString(raw); err == nil {
			record.RunAt = runAt
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05", value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
