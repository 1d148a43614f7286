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

// Run is one recorded scan invocation.
type Run struct {
	ID           int64
	RunID        string
	Module       string
	LogPath      string
	ScannedAt    time.Time
	Baseline     bool
	Rotated      bool
	StartOffset  int64
	EndOffset    int64
	TotalMatches int
}

// Store persists scan runs in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open connects to the history database, creating it and its schema when
// missing.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
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

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordRun inserts one scan invocation.
func (s *Store) RecordRun(ctx context.Context, run Run) error {
	if run.ScannedAt.IsZero() {
		run.ScannedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO scan_runs (
            run_id, module, log_path, scanned_at, baseline, rotated,
            start_offset, end_offset, total_matches
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID,
		run.Module,
		run.LogPath,
		run.ScannedAt.UTC().Format(time.RFC3339Nano),
		boolToInt(run.Baseline),
		boolToInt(run.Rotated),
		run.StartOffset,
		run.EndOffset,
		run.TotalMatches,
	)
	if err != nil {
		return fmt.Errorf("insert scan run: %w", err)
	}
	return nil
}

// Recent returns the newest runs, optionally filtered by module, newest first.
func (s *Store) Recent(ctx context.Context, module string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT id, run_id, module, log_path, scanned_at, baseline, rotated,
        start_offset, end_offset, total_matches FROM scan_runs`
	args := []any{}
	if module != "" {
		query += ` WHERE module = ?`
		args = append(args, module)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query scan runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Prune deletes runs recorded before cutoff and returns the deleted count.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(
		ctx,
		`DELETE FROM scan_runs WHERE scanned_at < ?`,
		cutoff.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("prune scan runs: %w", err)
	}
	return res.RowsAffected()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		run        Run
		scannedRaw string
		baseline   int
		rotated    int
	)
	if err := scanner.Scan(
		&run.ID,
		&run.RunID,
		&run.Module,
		&run.LogPath,
		&scannedRaw,
		&baseline,
		&rotated,
		&run.StartOffset,
		&run.EndOffset,
		&run.TotalMatches,
	); err != nil {
		return Run{}, fmt.Errorf("scan run row: %w", err)
	}
	run.Baseline = baseline != 0
	run.Rotated = rotated != 0
	if ts, err := time.Parse(time.RFC3339Nano, scannedRaw); err == nil {
		run.ScannedAt = ts
	}
	return run, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
