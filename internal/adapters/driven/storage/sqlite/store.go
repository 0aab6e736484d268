package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/ledgerline/qbsync-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/ledgerline/qbsync-cli/internal/core/domain"
	"github.com/ledgerline/qbsync-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.RunStore = (*Store)(nil)

// Store is a SQLite-backed run history store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens the history database in the specified data directory.
// If dataDir is empty, defaults to ~/.qbsync/data/history.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".qbsync", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "history.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration; each migration records its own
		// version in schema_migrations
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// SaveRun stores a finished run with its per-record results.
// Runs are immutable once written, so a duplicate ID is an error.
func (s *Store) SaveRun(ctx context.Context, run domain.SyncRun) error {
	if run.ID == "" {
		return domain.ErrInvalidInput
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sync_runs
			(id, kind, started_at, finished_at, total, succeeded, skipped, failed, aborted, abort_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, string(run.Kind), run.StartedAt.UTC(), run.FinishedAt.UTC(),
		run.Total, run.Succeeded, run.Skipped, run.Failed,
		boolToInt(run.Aborted), nullString(run.AbortReason))
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_records (run_id, position, record_key, status, detail, output)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, res := range run.Results {
		if _, err := stmt.ExecContext(ctx, run.ID, i, res.Key, string(res.Status),
			nullString(res.Detail), nullString(res.Output)); err != nil {
			return fmt.Errorf("saving record result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first, without their
// per-record results. A limit of zero or less returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]domain.SyncRun, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as unbounded
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, started_at, finished_at, total, succeeded, skipped, failed, aborted, abort_reason
		FROM sync_runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.SyncRun //nolint:prealloc // size unknown from query
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}

	return runs, nil
}

// GetRun retrieves one run including its per-record results.
func (s *Store) GetRun(ctx context.Context, id string) (*domain.SyncRun, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, kind, started_at, finished_at, total, succeeded, skipped, failed, aborted, abort_reason
		FROM sync_runs WHERE id = ?
	`, id)

	var run domain.SyncRun
	var kind string
	var startedAt, finishedAt sql.NullTime
	var aborted int
	var abortReason sql.NullString

	if err := row.Scan(&run.ID, &kind, &startedAt, &finishedAt,
		&run.Total, &run.Succeeded, &run.Skipped, &run.Failed,
		&aborted, &abortReason); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	run.Kind = domain.RunKind(kind)
	if startedAt.Valid {
		run.StartedAt = startedAt.Time
	}
	if finishedAt.Valid {
		run.FinishedAt = finishedAt.Time
	}
	run.Aborted = aborted == 1
	run.AbortReason = abortReason.String

	results, err := s.loadResults(ctx, id)
	if err != nil {
		return nil, err
	}
	run.Results = results

	return &run, nil
}

// loadResults fetches the per-record results for a run in processing order.
func (s *Store) loadResults(ctx context.Context, runID string) ([]domain.RecordResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT record_key, status, detail, output
		FROM run_records WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying record results: %w", err)
	}
	defer rows.Close()

	var results []domain.RecordResult //nolint:prealloc // size unknown from query
	for rows.Next() {
		var res domain.RecordResult
		var status string
		var detail, output sql.NullString
		if err := rows.Scan(&res.Key, &status, &detail, &output); err != nil {
			return nil, fmt.Errorf("scanning record result: %w", err)
		}
		res.Status = domain.RecordStatus(status)
		res.Detail = detail.String
		res.Output = output.String
		results = append(results, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating record results: %w", err)
	}

	return results, nil
}

// scanRun scans a run row without its per-record results.
func scanRun(rows *sql.Rows) (*domain.SyncRun, error) {
	var run domain.SyncRun
	var kind string
	var startedAt, finishedAt sql.NullTime
	var aborted int
	var abortReason sql.NullString

	if err := rows.Scan(&run.ID, &kind, &startedAt, &finishedAt,
		&run.Total, &run.Succeeded, &run.Skipped, &run.Failed,
		&aborted, &abortReason); err != nil {
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	run.Kind = domain.RunKind(kind)
	if startedAt.Valid {
		run.StartedAt = startedAt.Time
	}
	if finishedAt.Valid {
		run.FinishedAt = finishedAt.Time
	}
	run.Aborted = aborted == 1
	run.AbortReason = abortReason.String

	return &run, nil
}

// nullString returns nil for empty strings, otherwise the string.
func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// boolToInt converts a bool to 1 (true) or 0 (false).
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
