// Package history persists completed toolchain invocations so a watch
// session's outcomes survive the process and can be inspected afterwards.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

type Record struct {
	ID         int64
	Reason     string
	Path       string
	ExitCode   int
	SpawnError string
	StartedAt  time.Time
	FinishedAt time.Time
	DurationMs int64
}

func (r Record) Succeeded() bool {
	return r.SpawnError == "" && r.ExitCode == 0
}

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Init(ctx context.Context) error {
	ddl := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS invocations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			reason TEXT NOT NULL,
			path TEXT,
			exit_code INTEGER NOT NULL,
			spawn_error TEXT,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			duration_ms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_invocations_started_at ON invocations(started_at);`,
	}
	for _, stmt := range ddl {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init history schema: %w", err)
		}
	}
	return nil
}

func (s *Store) Record(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO invocations (reason, path, exit_code, spawn_error, started_at, finished_at, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.Reason,
		rec.Path,
		rec.ExitCode,
		rec.SpawnError,
		rec.StartedAt.UTC().Format(time.RFC3339Nano),
		rec.FinishedAt.UTC().Format(time.RFC3339Nano),
		rec.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("record invocation: %w", err)
	}
	return nil
}

// Last returns the most recent invocation, with ok=false on an empty store.
func (s *Store) Last(ctx context.Context) (Record, bool, error) {
	rows, err := s.Recent(ctx, 1)
	if err != nil {
		return Record{}, false, err
	}
	if len(rows) == 0 {
		return Record{}, false, nil
	}
	return rows[0], true, nil
}

// Recent returns up to limit invocations, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, reason, path, exit_code, spawn_error, started_at, finished_at, duration_ms
		 FROM invocations ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query invocations: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var started, finished string
		var path, spawnErr sql.NullString
		if err := rows.Scan(&rec.ID, &rec.Reason, &path, &rec.ExitCode, &spawnErr, &started, &finished, &rec.DurationMs); err != nil {
			return nil, err
		}
		rec.Path = path.String
		rec.SpawnError = spawnErr.String
		rec.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		rec.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
