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

	_ "modernc.org/sqlite"
)

// Run statuses.
const (
	RunRunning  = "running"
	RunFinished = "finished"
	RunAborted  = "aborted"
)

// Counts tallies item outcomes for one run.
type Counts struct {
	Processed int
	Completed int
	Failed    int
	Skipped   int
	Retried   int
}

// Run is one pipeline invocation.
type Run struct {
	ID         string
	Pipeline   string
	Status     string
	StartedAt  time.Time
	FinishedAt time.Time
	Counts     Counts
	Error      string
}

// ItemEvent is one item outcome within a run.
type ItemEvent struct {
	RunID      string
	ItemKey    string
	Label      string
	Outcome    string
	Reason     string
	Error      string
	Duration   time.Duration
	RecordedAt time.Time
}

// Store manages history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

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

func (s *Store) exec(ctx context.Context, query string, args ...any) error {
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

// Open initializes or connects to the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
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

	store := &Store{db: db, path: path, now: time.Now}
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

// StartRun inserts a running row for runID.
func (s *Store) StartRun(ctx context.Context, runID, pipeline string) error {
	if strings.TrimSpace(runID) == "" {
		return errors.New("run id required")
	}
	return s.exec(ctx,
		`INSERT INTO runs (id, pipeline, status, started_at) VALUES (?, ?, ?, ?)`,
		runID, pipeline, RunRunning, s.now().UTC().Format(time.RFC3339Nano))
}

// RecordItem appends one item outcome.
func (s *Store) RecordItem(ctx context.Context, ev ItemEvent) error {
	recorded := ev.RecordedAt
	if recorded.IsZero() {
		recorded = s.now()
	}
	return s.exec(ctx,
		`INSERT INTO item_events (run_id, item_key, label, outcome, reason, error_message, duration_ms, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.RunID, ev.ItemKey, nullString(ev.Label), ev.Outcome, nullString(ev.Reason), nullString(ev.Error),
		ev.Duration.Milliseconds(), recorded.UTC().Format(time.RFC3339Nano))
}

// FinishRun stores the final counts. A non-empty errMsg marks the run aborted.
func (s *Store) FinishRun(ctx context.Context, runID string, counts Counts, errMsg string) error {
	status := RunFinished
	if errMsg != "" {
		status = RunAborted
	}
	return s.exec(ctx,
		`UPDATE runs SET status = ?, finished_at = ?, processed = ?, completed = ?, failed = ?, skipped = ?, retried = ?, error_message = ?
		 WHERE id = ?`,
		status, s.now().UTC().Format(time.RFC3339Nano),
		counts.Processed, counts.Completed, counts.Failed, counts.Skipped, counts.Retried,
		nullString(errMsg), runID)
}

// ListRuns returns the most recent runs, newest first. An empty pipeline
// lists every pipeline.
func (s *Store) ListRuns(ctx context.Context, pipeline string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT id, pipeline, status, started_at, finished_at, processed, completed, failed, skipped, retried, error_message
		FROM runs`
	args := []any{}
	if pipeline != "" {
		query += " WHERE pipeline = ?"
		args = append(args, pipeline)
	}
	query += " ORDER BY started_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run               Run
			started           string
			finished, errText sql.NullString
		)
		if err := rows.Scan(&run.ID, &run.Pipeline, &run.Status, &started, &finished,
			&run.Counts.Processed, &run.Counts.Completed, &run.Counts.Failed, &run.Counts.Skipped, &run.Counts.Retried,
			&errText); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt = parseTime(started)
		if finished.Valid {
			run.FinishedAt = parseTime(finished.String)
		}
		run.Error = errText.String
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Items returns the events of one run in insertion order.
func (s *Store) Items(ctx context.Context, runID string) ([]ItemEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, item_key, label, outcome, reason, error_message, duration_ms, recorded_at
		 FROM item_events WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var events []ItemEvent
	for rows.Next() {
		var (
			ev                    ItemEvent
			label, reason, errTxt sql.NullString
			durationMS            int64
			recorded              string
		)
		if err := rows.Scan(&ev.RunID, &ev.ItemKey, &label, &ev.Outcome, &reason, &errTxt, &durationMS, &recorded); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		ev.Label = label.String
		ev.Reason = reason.String
		ev.Error = errTxt.String
		ev.Duration = time.Duration(durationMS) * time.Millisecond
		ev.RecordedAt = parseTime(recorded)
		events = append(events, ev)
	}
	return events, rows.Err()
}

func nullString(value string) sql.NullString {
	value = strings.TrimSpace(value)
	return sql.NullString{String: value, Valid: value != ""}
}

func parseTime(value string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return ts
}
