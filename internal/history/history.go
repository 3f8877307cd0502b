// Package history persists a queryable record of gate decisions in
// SQLite. The hash-chained audit log is the tamper-evident source of
// truth; this store exists for fast filtered queries over the API.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Record is one gate decision as stored and returned by queries.
type Record struct {
	ID        int64     `json:"id"`
	RequestID string    `json:"request_id"`
	SessionID string    `json:"session_id"`
	Command   string    `json:"command"`
	Verdict   string    `json:"verdict"`
	PathOK    bool      `json:"path_ok"`
	Decision  string    `json:"decision"`
	Reason    string    `json:"reason"`
	Outcome   string    `json:"outcome"`
	ExitCode  int       `json:"exit_code"`
	CreatedAt time.Time `json:"created_at"`
}

// Query filters a Recent call. Zero values mean "no filter".
type Query struct {
	SessionID string
	Outcome   string
	Limit     int
}

// Store is a SQLite-backed decision history.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (or creates) the history database and applies migrations.
func Open(dbPath string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("history: create database directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}

	// Single connection for SQLite
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &Store{db: db, logger: logger}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: migration failed: %w", err)
	}
	return store, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS decisions (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		request_id  TEXT NOT NULL,
		session_id  TEXT NOT NULL,
		command     TEXT NOT NULL,
		verdict     TEXT NOT NULL,
		path_ok     INTEGER NOT NULL DEFAULT 1,
		decision    TEXT NOT NULL,
		reason      TEXT,
		outcome     TEXT NOT NULL,
		exit_code   INTEGER DEFAULT 0,
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_decisions_session ON decisions(session_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_decisions_outcome ON decisions(outcome);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append stores one decision record.
func (s *Store) Append(ctx context.Context, r Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO decisions (request_id, session_id, command, verdict, path_ok, decision, reason, outcome, exit_code)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RequestID, r.SessionID, r.Command, r.Verdict, r.PathOK, r.Decision, r.Reason, r.Outcome, r.ExitCode,
	)
	if err != nil {
		return fmt.Errorf("history: append: %w", err)
	}
	return nil
}

// Recent returns the newest records matching the query, newest first.
// A zero or negative limit defaults to 50.
func (s *Store) Recent(ctx context.Context, q Query) ([]Record, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}

	where := "1=1"
	args := []any{}
	if q.SessionID != "" {
		where += " AND session_id = ?"
		args = append(args, q.SessionID)
	}
	if q.Outcome != "" {
		where += " AND outcome = ?"
		args = append(args, q.Outcome)
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, request_id, session_id, command, verdict, path_ok, decision, reason, outcome, exit_code, created_at
		FROM decisions WHERE `+where+`
		ORDER BY id DESC LIMIT ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var reason sql.NullString
		if err := rows.Scan(&r.ID, &r.RequestID, &r.SessionID, &r.Command, &r.Verdict,
			&r.PathOK, &r.Decision, &reason, &r.Outcome, &r.ExitCode, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		r.Reason = reason.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
