package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"borgtool/internal/services"
)

// Entry is one mutating engine operation.
type Entry struct {
	ID         int64
	SessionID  string
	Repository string
	Action     string
	Target     string
	ExitStatus int
	Error      string
	StartedAt  time.Time
	Duration   time.Duration
}

// Succeeded reports whether the operation completed without error.
func (e Entry) Succeeded() bool {
	return e.ExitStatus == 0 && e.Error == ""
}

// Store persists the operation history in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the journal database and applies migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure journal directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.upgradeSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record appends an entry. A missing session id is taken from ctx.
func (s *Store) Record(ctx context.Context, entry Entry) error {
	if s == nil || s.db == nil {
		return nil
	}
	if entry.SessionID == "" {
		entry.SessionID, _ = services.SessionIDFromContext(ctx)
	}
	if entry.StartedAt.IsZero() {
		entry.StartedAt = time.Now()
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO operations (
            session_id, repository, action, target, exit_status, error_message, started_at, duration_ms
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.SessionID,
		entry.Repository,
		entry.Action,
		nullableString(entry.Target),
		entry.ExitStatus,
		nullableString(entry.Error),
		entry.StartedAt.UTC().Format(time.RFC3339Nano),
		entry.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert operation: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, session_id, repository, action, target, exit_status, error_message, started_at, duration_ms
         FROM operations ORDER BY started_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query operations: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry      Entry
			target     sql.NullString
			errMessage sql.NullString
			startedAt  string
			durationMS int64
		)
		if err := rows.Scan(&entry.ID, &entry.SessionID, &entry.Repository, &entry.Action, &target,
			&entry.ExitStatus, &errMessage, &startedAt, &durationMS); err != nil {
			return nil, fmt.Errorf("scan operation: %w", err)
		}
		entry.Target = target.String
		entry.Error = errMessage.String
		entry.Duration = time.Duration(durationMS) * time.Millisecond
		if ts, parseErr := time.Parse(time.RFC3339Nano, startedAt); parseErr == nil {
			entry.StartedAt = ts
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate operations: %w", err)
	}
	return entries, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
