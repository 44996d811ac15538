package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"curator/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema changes.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// ErrRunNotFound indicates the requested sync run does not exist.
var ErrRunNotFound = errors.New("sync run not found")

// Store manages sync-run history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

// Open initializes or connects to the history database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.StateDir, "history.db")
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

// Path returns the database file location.
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
		return fmt.Errorf("%w: database has version %d, expected %d (delete the database to rebuild)",
			ErrSchemaMismatch, version, schemaVersion)
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

// BeginRun records the start of a new sync run and returns it.
func (s *Store) BeginRun(ctx context.Context, trigger Trigger) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		Trigger:   trigger,
		Status:    RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	err := s.execWithRetry(ctx,
		`INSERT INTO sync_runs (id, trigger, status, started_at) VALUES (?, ?, ?, ?)`,
		run.ID, string(run.Trigger), string(run.Status), run.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("insert sync run: %w", err)
	}
	return run, nil
}

// RecordCollection stores the per-collection outcome for a run. Recording
// the same collection twice within a run replaces the earlier result.
func (s *Store) RecordCollection(ctx context.Context, result CollectionResult) error {
	err := s.execWithRetry(ctx,
		`INSERT INTO sync_run_collections
			(run_id, collection_id, collection_name, status, matched, added, removed, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id, collection_id) DO UPDATE SET
			collection_name = excluded.collection_name,
			status = excluded.status,
			matched = excluded.matched,
			added = excluded.added,
			removed = excluded.removed,
			error_message = excluded.error_message`,
		result.RunID, result.CollectionID, result.CollectionName, string(result.Status),
		result.Matched, result.Added, result.Removed, result.ErrorMessage)
	if err != nil {
		return fmt.Errorf("record collection result: %w", err)
	}
	return nil
}

// FinishRun marks a run finished and stores its aggregate totals.
func (s *Store) FinishRun(ctx context.Context, run *Run) error {
	if run == nil {
		return errors.New("run must not be nil")
	}
	finished := time.Now().UTC()
	run.FinishedAt = &finished
	err := s.execWithRetry(ctx,
		`UPDATE sync_runs SET
			status = ?, finished_at = ?, collections_total = ?, collections_failed = ?,
			items_added = ?, items_removed = ?, error_message = ?
		WHERE id = ?`,
		string(run.Status), finished, run.CollectionsTotal, run.CollectionsFailed,
		run.ItemsAdded, run.ItemsRemoved, run.ErrorMessage, run.ID)
	if err != nil {
		return fmt.Errorf("finish sync run: %w", err)
	}
	return nil
}

// GetRun returns a single run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT id, trigger, status, started_at, finished_at, collections_total,
			collections_failed, items_added, items_removed, error_message
		FROM sync_runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get sync run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	ctx = ensureContext(ctx)
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, trigger, status, started_at, finished_at, collections_total,
			collections_failed, items_added, items_removed, error_message
		FROM sync_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list sync runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sync run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sync runs: %w", err)
	}
	return runs, nil
}

// RunCollections returns the per-collection results recorded for a run.
func (s *Store) RunCollections(ctx context.Context, runID string) ([]CollectionResult, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, collection_id, collection_name, status, matched, added, removed, error_message
		FROM sync_run_collections WHERE run_id = ? ORDER BY collection_name`, runID)
	if err != nil {
		return nil, fmt.Errorf("list run collections: %w", err)
	}
	defer rows.Close()

	var results []CollectionResult
	for rows.Next() {
		var result CollectionResult
		var status string
		if err := rows.Scan(&result.RunID, &result.CollectionID, &result.CollectionName,
			&status, &result.Matched, &result.Added, &result.Removed, &result.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scan run collection: %w", err)
		}
		result.Status = CollectionStatus(status)
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run collections: %w", err)
	}
	return results, nil
}

// Prune deletes runs older than the retention window, returning how many
// were removed.
func (s *Store) Prune(ctx context.Context, retain time.Duration) (int64, error) {
	ctx = ensureContext(ctx)
	cutoff := time.Now().UTC().Add(-retain)
	var affected int64
	err := retryOnBusy(ctx, func() error {
		res, execErr := s.db.ExecContext(ctx, "DELETE FROM sync_runs WHERE started_at < ?", cutoff)
		if execErr != nil {
			return execErr
		}
		affected, execErr = res.RowsAffected()
		return execErr
	})
	if err != nil {
		return 0, fmt.Errorf("prune sync runs: %w", err)
	}
	return affected, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run      Run
		trigger  string
		status   string
		finished sql.NullTime
	)
	if err := row.Scan(&run.ID, &trigger, &status, &run.StartedAt, &finished,
		&run.CollectionsTotal, &run.CollectionsFailed, &run.ItemsAdded,
		&run.ItemsRemoved, &run.ErrorMessage); err != nil {
		return nil, err
	}
	run.Trigger = Trigger(trigger)
	run.Status = RunStatus(status)
	if finished.Valid {
		t := finished.Time
		run.FinishedAt = &t
	}
	return &run, nil
}
