package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/llmprint/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/llmprint/internal/core/domain"
	"github.com/custodia-labs/llmprint/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.RunStore = (*Store)(nil)

// timeLayout is fixed-width so that timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store is the SQLite-backed generation ledger.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the ledger in dataDir.
// If dataDir is empty, defaults to ~/.llmprint/data/ledger.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".llmprint", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "ledger.db")

	// Pragmas in the DSN apply to every pooled connection.
	// WAL lets `runs list` read while a generation run is writing.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

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
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_runs.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

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

// ==================== Runs ====================

// SaveRun stores or updates a run.
func (s *Store) SaveRun(ctx context.Context, run domain.Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, status, corpus_location, metadata_path, planned, saved, failed, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			corpus_location = excluded.corpus_location,
			metadata_path = excluded.metadata_path,
			planned = excluded.planned,
			saved = excluded.saved,
			failed = excluded.failed,
			error = excluded.error,
			finished_at = excluded.finished_at
	`, run.ID,
		string(run.Status),
		nullString(run.CorpusLocation),
		nullString(run.MetadataPath),
		run.Planned,
		run.Saved,
		run.Failed,
		nullString(run.Error),
		run.StartedAt.UTC().Format(timeLayout),
		formatNullableTime(run.FinishedAt))
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (*domain.Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, status, corpus_location, metadata_path, planned, saved, failed, error, started_at, finished_at
		FROM runs WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns runs, most recent first. A non-positive limit returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]domain.Run, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, status, corpus_location, metadata_path, planned, saved, failed, error, started_at, finished_at
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.Run //nolint:prealloc // size unknown from query
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

// ==================== Documents ====================

// SaveRecord stores one document attempt, replacing an earlier record with the same index.
func (s *Store) SaveRecord(ctx context.Context, record domain.DocumentRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO documents (run_id, idx, doc_id, provider, model, genre, ok, error, attempts, duration_ms, chars)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, record.RunID,
		record.Index,
		nullString(record.DocID),
		string(record.Provider),
		record.Model,
		record.Genre,
		boolToInt(record.OK),
		nullString(record.Error),
		record.Attempts,
		record.Duration.Milliseconds(),
		record.Chars)
	if err != nil {
		return fmt.Errorf("saving document record: %w", err)
	}
	return nil
}

// ListRecords returns the attempts of a run ordered by index.
func (s *Store) ListRecords(ctx context.Context, runID string) ([]domain.DocumentRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, idx, doc_id, provider, model, genre, ok, error, attempts, duration_ms, chars
		FROM documents
		WHERE run_id = ?
		ORDER BY idx
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying document records: %w", err)
	}
	defer rows.Close()

	var records []domain.DocumentRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		var (
			r          domain.DocumentRecord
			docID      sql.NullString
			errMsg     sql.NullString
			provider   string
			ok         int
			durationMS int64
		)
		if err := rows.Scan(&r.RunID, &r.Index, &docID, &provider, &r.Model, &r.Genre,
			&ok, &errMsg, &r.Attempts, &durationMS, &r.Chars); err != nil {
			return nil, fmt.Errorf("scanning document record: %w", err)
		}
		r.DocID = docID.String
		r.Error = errMsg.String
		r.Provider = domain.Provider(provider)
		r.OK = ok == 1
		r.Duration = time.Duration(durationMS) * time.Millisecond
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating document records: %w", err)
	}

	return records, nil
}

// ==================== Helper Functions ====================

type scanner interface {
	Scan(dest ...any) error
}

// scanRun scans a run from a *sql.Row or *sql.Rows.
// sql.ErrNoRows is returned unwrapped.
func scanRun(row scanner) (*domain.Run, error) {
	var (
		run                    domain.Run
		status, startedAt      string
		location, metadataPath sql.NullString
		errMsg, finishedAt     sql.NullString
	)

	if err := row.Scan(&run.ID, &status, &location, &metadataPath,
		&run.Planned, &run.Saved, &run.Failed, &errMsg, &startedAt, &finishedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	run.Status = domain.RunStatus(status)
	run.CorpusLocation = location.String
	run.MetadataPath = metadataPath.String
	run.Error = errMsg.String
	if t, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
		run.StartedAt = t
	}
	run.FinishedAt = parseNullableTime(finishedAt)

	return &run, nil
}

// formatNullableTime formats a time with timeLayout, or returns nil for zero time.
func formatNullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(timeLayout)
}

// parseNullableTime parses a nullable RFC3339 string to time.Time.
// Returns zero time if the string is empty or invalid.
func parseNullableTime(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return time.Time{}
	}
	return t
}

// nullString returns nil for empty strings, otherwise the string.
func nullString(s string) any {
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
