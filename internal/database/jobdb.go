package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/jobcrawl/internal/model"
)

// FileName is the database file name inside the database directory.
const FileName = "jobcrawl.db"

// ErrDatabaseNotFound is returned by Open when the database does not
// exist and creation was not requested.
var ErrDatabaseNotFound = errors.New("database not found")

// JobDB provides SQLite-based storage for job records and crawl runs.
//
// Design decision: Records are stored as JSON next to a few indexed
// columns. The record schema is sparse and grows with new extractors;
// a JSON column absorbs new fields without migrations.
type JobDB struct {
	db     *sql.DB
	dbPath string

	// now returns the time stamped on stored rows.
	now func() time.Time
}

// Options configures JobDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if they
	// don't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging so "runs" can read while a
	// crawl writes.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the JobDB in dbDir.
func Open(dbDir string, opts Options) (*JobDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	mode := "rw"
	if opts.CreateIfNotExists {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		mode = "rwc"
	} else if _, err := os.Stat(dbPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s", ErrDatabaseNotFound, dbPath)
		}
		return nil, fmt.Errorf("failed to check database path: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?mode="+mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	jdb := &JobDB{
		db:     db,
		dbPath: dbPath,
		now:    time.Now,
	}

	ctx := context.Background()
	if opts.EnableWAL {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := jdb.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return jdb, nil
}

// Path returns the database file path.
func (j *JobDB) Path() string {
	return j.dbPath
}

// Close closes the database connection.
func (j *JobDB) Close() error {
	return j.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (j *JobDB) createTables(ctx context.Context) error {
	schema := `
	-- Runs store the summary of every crawl
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		base_url TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		pages_visited INTEGER NOT NULL DEFAULT 0,
		links_discovered INTEGER NOT NULL DEFAULT 0,
		links_known INTEGER NOT NULL DEFAULT 0,
		records_produced INTEGER NOT NULL DEFAULT 0,
		records_skipped INTEGER NOT NULL DEFAULT 0,
		reason TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- Jobs store one row per detail page, updated on every sighting
	CREATE TABLE IF NOT EXISTS jobs (
		source_url TEXT PRIMARY KEY,
		title TEXT,
		company TEXT,
		category TEXT,
		location TEXT,
		record_json TEXT NOT NULL,
		first_seen TEXT NOT NULL,
		last_seen TEXT NOT NULL,
		run_id INTEGER REFERENCES runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_jobs_category ON jobs(category);
	CREATE INDEX IF NOT EXISTS idx_jobs_last_seen ON jobs(last_seen);
	`

	_, err := j.db.ExecContext(ctx, schema)
	return err
}

// SaveRecords stores records in one transaction, inserting new detail URLs
// and updating known ones. first_seen is kept on update. runID links the
// rows to a run and may be 0. It returns how many records were new.
func (j *JobDB) SaveRecords(ctx context.Context, runID int64, records []model.JobRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() //nolint:errcheck // no-op after commit

	var run sql.NullInt64
	if runID > 0 {
		run = sql.NullInt64{Int64: runID, Valid: true}
	}
	seen := formatTimestamp(j.now())

	query := `
	INSERT INTO jobs (source_url, title, company, category, location, record_json, first_seen, last_seen, run_id)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(source_url) DO UPDATE SET
		title = excluded.title,
		company = excluded.company,
		category = excluded.category,
		location = excluded.location,
		record_json = excluded.record_json,
		last_seen = excluded.last_seen,
		run_id = excluded.run_id
	`

	added := 0
	for i := range records {
		r := &records[i]
		if r.SourceURL == "" {
			continue
		}

		var exists int
		err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM jobs WHERE source_url = ?", r.SourceURL).Scan(&exists)
		if err != nil {
			return 0, fmt.Errorf("failed to look up job: %w", err)
		}

		data, err := json.Marshal(r)
		if err != nil {
			return 0, fmt.Errorf("failed to serialize record: %w", err)
		}

		if _, err := tx.ExecContext(ctx, query,
			r.SourceURL,
			nullString(r.Title),
			nullString(r.Company),
			nullString(r.Category),
			nullString(r.Location),
			string(data),
			seen,
			seen,
			run,
		); err != nil {
			return 0, fmt.Errorf("failed to save job %s: %w", r.SourceURL, err)
		}
		if exists == 0 {
			added++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit jobs: %w", err)
	}
	return added, nil
}

// KnownURL reports whether a record for the detail URL is stored.
func (j *JobDB) KnownURL(ctx context.Context, url string) (bool, error) {
	var count int
	err := j.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM jobs WHERE source_url = ?", url).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check job: %w", err)
	}
	return count > 0, nil
}

// GetJob returns the stored record for a detail URL, or nil if there is
// none.
func (j *JobDB) GetJob(ctx context.Context, url string) (*model.JobRecord, error) {
	var data string
	err := j.db.QueryRowContext(ctx, "SELECT record_json FROM jobs WHERE source_url = ?", url).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	var rec model.JobRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("failed to parse job: %w", err)
	}
	return &rec, nil
}

// CountJobs returns the number of stored records.
func (j *JobDB) CountJobs(ctx context.Context) (int, error) {
	var count int
	if err := j.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM jobs").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count jobs: %w", err)
	}
	return count, nil
}

// Run is a stored crawl run.
type Run struct {
	// ID is the unique identifier of the run in the database.
	ID int64

	model.CrawlSummary
}

// SaveRun stores a crawl summary and returns its run ID.
func (j *JobDB) SaveRun(ctx context.Context, s model.CrawlSummary) (int64, error) {
	query := `
	INSERT INTO runs (base_url, started_at, finished_at, pages_visited, links_discovered,
		links_known, records_produced, records_skipped, reason)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := j.db.ExecContext(ctx, query,
		s.BaseURL,
		formatTimestamp(s.StartedAt),
		formatTimestamp(s.FinishedAt),
		s.PagesVisited,
		s.LinksDiscovered,
		s.LinksKnown,
		s.RecordsProduced,
		s.RecordsSkipped,
		s.Reason.String(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}
	return result.LastInsertId()
}

// ListRuns returns stored runs, newest first. limit <= 0 returns all runs.
func (j *JobDB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `
	SELECT id, base_url, started_at, finished_at, pages_visited, links_discovered,
		links_known, records_produced, records_skipped, reason
	FROM runs
	ORDER BY started_at DESC, id DESC
	`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r                 Run
			started, finished string
			reason            string
		)
		if err := rows.Scan(
			&r.ID,
			&r.BaseURL,
			&started,
			&finished,
			&r.PagesVisited,
			&r.LinksDiscovered,
			&r.LinksKnown,
			&r.RecordsProduced,
			&r.RecordsSkipped,
			&reason,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartedAt = parseTimestamp(started)
		r.FinishedAt = parseTimestamp(finished)
		r.Reason = model.ParseTerminationReason(reason)
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// formatTimestamp renders a time for storage. The fixed-width UTC form
// sorts chronologically as text.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z")
}

// timestampFormats contains the timestamp formats accepted when reading.
// The order matters: the stored format comes first.
var timestampFormats = []string{
	"2006-01-02T15:04:05.000000000Z",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
}

// parseTimestamp parses a stored timestamp, returning the zero time when
// no format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
