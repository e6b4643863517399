package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a run ID does not exist.
var ErrNotFound = errors.New("history run not found")

// DefaultLimit is used by List when limit is not positive.
const DefaultLimit = 50

// Run is one recorded suite execution.
type Run struct {
	ID         string    `json:"id"`
	Suite      string    `json:"suite"`
	File       string    `json:"file"`
	Engine     string    `json:"engine"`
	Passed     int       `json:"passed"`
	Failed     int       `json:"failed"`
	Skipped    int       `json:"skipped"`
	DurationMs int64     `json:"durationMs"`
	CreatedAt  time.Time `json:"createdAt"`
	Entries    []Entry   `json:"entries,omitempty"`
}

// Entry is one executed request of a run.
type Entry struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Method           string            `json:"method"`
	URL              string            `json:"url"`
	Headers          map[string]string `json:"headers"`
	Body             string            `json:"body,omitempty"`
	StatusCode       int               `json:"statusCode"`
	TimingMs         int64             `json:"timingMs"`
	Passed           bool              `json:"passed"`
	AssertionsPassed int               `json:"assertionsPassed"`
	AssertionsFailed int               `json:"assertionsFailed"`
	Error            string            `json:"error,omitempty"`
}

// Store persists runs in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, now: time.Now}, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			suite TEXT NOT NULL,
			file TEXT,
			engine TEXT,
			passed INTEGER NOT NULL,
			failed INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			created_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);

		CREATE TABLE IF NOT EXISTS entries (
			id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			name TEXT,
			method TEXT,
			url TEXT,
			headers TEXT,
			body TEXT,
			status_code INTEGER,
			timing_ms INTEGER,
			passed INTEGER NOT NULL,
			assertions_passed INTEGER NOT NULL,
			assertions_failed INTEGER NOT NULL,
			error TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_entries_run ON entries(run_id, position);
	`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create history tables: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// sensitiveHeaders lists headers that are never stored
var sensitiveHeaders = map[string]bool{
	"authorization":       true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"x-auth-token":        true,
	"x-access-token":      true,
	"api-key":             true,
	"bearer":              true,
	"proxy-authorization": true,
}

// FilterSensitiveHeaders returns a copy of headers without credentials.
func FilterSensitiveHeaders(headers map[string]string) map[string]string {
	filtered := make(map[string]string, len(headers))
	for k, v := range headers {
		if !sensitiveHeaders[strings.ToLower(k)] {
			filtered[k] = v
		}
	}
	return filtered
}

// SaveRun stores run and its entries and returns the run ID. Missing IDs and
// timestamps are filled in.
func (s *Store) SaveRun(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, suite, file, engine, passed, failed, skipped, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Suite, run.File, run.Engine, run.Passed, run.Failed, run.Skipped,
		run.DurationMs, run.CreatedAt.UnixMilli())
	if err != nil {
		return "", fmt.Errorf("failed to save run: %w", err)
	}

	for i, e := range run.Entries {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		headersJSON, err := json.Marshal(FilterSensitiveHeaders(e.Headers))
		if err != nil {
			headersJSON = []byte("{}")
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO entries (id, run_id, position, name, method, url, headers, body, status_code,
				timing_ms, passed, assertions_passed, assertions_failed, error)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, run.ID, i, e.Name, e.Method, e.URL, string(headersJSON), e.Body, e.StatusCode,
			e.TimingMs, e.Passed, e.AssertionsPassed, e.AssertionsFailed, e.Error)
		if err != nil {
			return "", fmt.Errorf("failed to save entry %q: %w", e.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}
	return run.ID, nil
}

// List returns the most recent runs, newest first, without entries. A
// non-empty search matches the suite name, file or any entry URL.
func (s *Store) List(ctx context.Context, limit int, search string) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	query := `
		SELECT id, suite, file, engine, passed, failed, skipped, duration_ms, created_at
		FROM runs`
	args := []any{}
	if search != "" {
		pattern := "%" + search + "%"
		query += `
		WHERE suite LIKE ? OR file LIKE ?
			OR id IN (SELECT run_id FROM entries WHERE url LIKE ?)`
		args = append(args, pattern, pattern, pattern)
	}
	query += `
		ORDER BY created_at DESC
		LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var run Run
	var file, engine sql.NullString
	var createdAt int64
	err := row.Scan(&run.ID, &run.Suite, &file, &engine, &run.Passed, &run.Failed, &run.Skipped,
		&run.DurationMs, &createdAt)
	if err != nil {
		return Run{}, err
	}
	run.File = file.String
	run.Engine = engine.String
	run.CreatedAt = time.UnixMilli(createdAt)
	return run, nil
}

// Get returns the run with id and its entries in execution order.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, suite, file, engine, passed, failed, skipped, duration_ms, created_at
		FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, method, url, headers, body, status_code, timing_ms, passed,
			assertions_passed, assertions_failed, error
		FROM entries WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e Entry
		var name, method, url, headersJSON, body, errText sql.NullString
		err := rows.Scan(&e.ID, &name, &method, &url, &headersJSON, &body, &e.StatusCode, &e.TimingMs,
			&e.Passed, &e.AssertionsPassed, &e.AssertionsFailed, &errText)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		e.Name, e.Method, e.URL, e.Body, e.Error = name.String, method.String, url.String, body.String, errText.String
		if headersJSON.String != "" {
			_ = json.Unmarshal([]byte(headersJSON.String), &e.Headers)
		}
		if e.Headers == nil {
			e.Headers = make(map[string]string)
		}
		run.Entries = append(run.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return &run, nil
}

// Delete removes a run and its entries.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Clear removes every run.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM runs`); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}
