package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Storage provides SQLite database access for run history and the ledger.
// It implements the Repository interface.
type Storage struct {
	db     *sql.DB
	now    func() time.Time
	logger *slog.Logger
}

// Compile-time check that Storage implements Repository
var _ Repository = (*Storage)(nil)

// NewStorage creates a new storage instance with SQLite database. Migration
// progress goes to slog.Default().
func NewStorage(dbPath string) (*Storage, error) {
	return NewStorageWithLogger(dbPath, slog.Default())
}

// NewStorageWithLogger is NewStorage logging migration progress to logger
func NewStorageWithLogger(dbPath string, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	db, err := sql.Open("sqlite3", withForeignKeys(dbPath))
	if err != nil {
		return nil, err
	}
	// One writer at a time; also keeps ":memory:" databases on a single connection
	db.SetMaxOpenConns(1)

	// Enable foreign key constraints (SQLite-specific)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Storage{db: db, now: time.Now, logger: logger}

	if err := s.runMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// withForeignKeys asks the driver to enable foreign keys on every connection
func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=on"
	}
	return dsn + "?_foreign_keys=on"
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

// StartRun records the start of a run and returns the run ID
func (s *Storage) StartRun(ctx context.Context, run RunStart) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (source_path, target_path, output_path, started_at, source_count, target_count, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.SourcePath, run.TargetPath, run.OutputPath, s.timestamp(), run.SourceCount, run.TargetCount, RunStatusRunning)
	if err != nil {
		return 0, fmt.Errorf("failed to start run: %w", err)
	}
	return result.LastInsertId()
}

// CompleteRun records how a run ended
func (s *Storage) CompleteRun(ctx context.Context, runID int64, summary RunSummary) error {
	status := summary.Status
	if status == "" {
		status = RunStatusCompleted
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET completed_at = ?, auto_matched = ?, confirmed = ?, sources_deleted = ?,
			added = ?, written = ?, warnings = ?, status = ?, error_message = ?
		WHERE id = ?
	`, s.timestamp(), summary.AutoMatched, summary.Confirmed, summary.SourcesDeleted,
		summary.Added, summary.Written, summary.Warnings, status, summary.ErrorMessage, runID)
	if err != nil {
		return fmt.Errorf("failed to complete run %d: %w", runID, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("run %d: %w", runID, ErrNotFound)
	}
	return nil
}

const runColumns = `id, source_path, target_path, output_path, started_at, completed_at,
	source_count, target_count, auto_matched, confirmed, sources_deleted,
	added, written, warnings, status, error_message`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var completedAt sql.NullString
	err := row.Scan(
		&run.ID, &run.SourcePath, &run.TargetPath, &run.OutputPath, &run.StartedAt, &completedAt,
		&run.SourceCount, &run.TargetCount, &run.AutoMatched, &run.Confirmed, &run.SourcesDeleted,
		&run.Added, &run.Written, &run.Warnings, &run.Status, &run.ErrorMessage,
	)
	if err != nil {
		return nil, err
	}
	run.CompletedAt = completedAt.String
	return &run, nil
}

// ListRuns returns the most recent runs first. A limit of 0 means 50.
func (s *Storage) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetRun retrieves a run by ID
func (s *Storage) GetRun(ctx context.Context, runID int64) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %d: %w", runID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %d: %w", runID, err)
	}
	return run, nil
}

// RecordPair stores one source/ledger pairing for a run
func (s *Storage) RecordPair(ctx context.Context, pair *MatchedPair) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO matched_pairs
		(run_id, phase, source_id, source_date, source_amount, source_description,
		 target_id, target_description, normalized, original_amount)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, pair.RunID, pair.Phase, pair.SourceID, pair.SourceDate, pair.SourceAmount, pair.SourceDescription,
		pair.TargetID, pair.TargetDescription, pair.Normalized, pair.OriginalAmount)
	if err != nil {
		return fmt.Errorf("failed to record pair for run %d: %w", pair.RunID, err)
	}

	pair.ID, err = result.LastInsertId()
	return err
}

// ListPairs returns the pairs recorded for a run in insertion order
func (s *Storage) ListPairs(ctx context.Context, runID int64) ([]MatchedPair, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, phase, source_id, source_date, source_amount, source_description,
			target_id, target_description, normalized, original_amount
		FROM matched_pairs
		WHERE run_id = ?
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pairs for run %d: %w", runID, err)
	}
	defer func() { _ = rows.Close() }()

	pairs := []MatchedPair{}
	for rows.Next() {
		var p MatchedPair
		if err := rows.Scan(
			&p.ID, &p.RunID, &p.Phase, &p.SourceID, &p.SourceDate, &p.SourceAmount, &p.SourceDescription,
			&p.TargetID, &p.TargetDescription, &p.Normalized, &p.OriginalAmount,
		); err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}
