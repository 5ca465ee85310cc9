// Package ledger records task outcomes in a SQLite database so re-runs can
// be audited after the logs are gone: which run produced an icon, from
// which source, and why a title failed.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Status is the terminal state of one task.
type Status string

const (
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Record is one task outcome.
type Record struct {
	ID           int64
	RunID        string
	Platform     string
	Title        string
	Slug         string
	Status       Status
	SourceTag    string
	ErrorMessage string
	CreatedAt    time.Time
}

// Summary aggregates outcomes for one platform.
type Summary struct {
	Platform string
	Done     int
	Failed   int
	Skipped  int
}

// Store manages ledger persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the ledger database under dir and applies
// migrations.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure ledger directory: %w", err)
	}

	dbPath := filepath.Join(dir, "ledger.db")
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
	if err := store.migrate(context.Background()); err != nil {
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

// Append inserts one task outcome and returns its row id.
func (s *Store) Append(ctx context.Context, rec Record) (int64, error) {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO task_records (
            run_id, platform, title, slug, status, source_tag, error_message, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID,
		rec.Platform,
		rec.Title,
		rec.Slug,
		string(rec.Status),
		nullableString(rec.SourceTag),
		nullableString(rec.ErrorMessage),
		createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("insert task record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// RecordsForRun returns every outcome of a run in insertion order.
func (s *Store) RecordsForRun(ctx context.Context, runID string) ([]Record, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, run_id, platform, title, slug, status, source_tag, error_message, created_at
         FROM task_records WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query run records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Summaries aggregates all recorded outcomes per platform, ordered by
// platform name.
func (s *Store) Summaries(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT platform,
                SUM(CASE WHEN status = 'done' THEN 1 ELSE 0 END),
                SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END),
                SUM(CASE WHEN status = 'skipped' THEN 1 ELSE 0 END)
         FROM task_records GROUP BY platform ORDER BY platform`,
	)
	if err != nil {
		return nil, fmt.Errorf("query summaries: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.Platform, &s.Done, &s.Failed, &s.Skipped); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// LatestOutcome reports the most recent record for one title on one
// platform, or false when the title has never been processed.
func (s *Store) LatestOutcome(ctx context.Context, platform, slug string) (Record, bool, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, run_id, platform, title, slug, status, source_tag, error_message, created_at
         FROM task_records WHERE platform = ? AND slug = ? ORDER BY id DESC LIMIT 1`,
		platform, slug,
	)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, err
	}
	return rec, true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		rec       Record
		status    string
		sourceTag sql.NullString
		errMsg    sql.NullString
		createdAt string
	)
	if err := row.Scan(&rec.ID, &rec.RunID, &rec.Platform, &rec.Title, &rec.Slug,
		&status, &sourceTag, &errMsg, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return Record{}, err
		}
		return Record{}, fmt.Errorf("scan task record: %w", err)
	}
	rec.Status = Status(status)
	rec.SourceTag = sourceTag.String
	rec.ErrorMessage = errMsg.String
	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		rec.CreatedAt = ts
	}
	return rec, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
