package storage

import (
	"database/sql"
	"fmt"
)

// Migration represents a database schema migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
}

// allMigrations defines all migrations in order
var allMigrations = []Migration{
	{
		Version: 1,
		Name:    "add_runs_table",
		Up:      migration001AddRunsTable,
	},
	{
		Version: 2,
		Name:    "add_matched_pairs_table",
		Up:      migration002AddMatchedPairsTable,
	},
	{
		Version: 3,
		Name:    "add_ledger_entries_table",
		Up:      migration003AddLedgerEntriesTable,
	},
}

// runMigrations executes all pending migrations
func (s *Storage) runMigrations() error {
	if err := s.ensureMigrationsTable(); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := s.getAppliedMigrations()
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	for _, migration := range allMigrations {
		if applied[migration.Version] {
			continue
		}

		s.logger.Info("Running migration", "version", migration.Version, "name", migration.Name)

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Name, err)
		}

		_, err = tx.Exec(`
			INSERT INTO schema_migrations (version, name) VALUES (?, ?)
		`, migration.Version, migration.Name)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// ensureMigrationsTable creates the schema_migrations table
func (s *Storage) ensureMigrationsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

	_, err := s.db.Exec(query)
	return err
}

// getAppliedMigrations returns a set of applied migration versions
func (s *Storage) getAppliedMigrations() (map[int]bool, error) {
	applied := make(map[int]bool)

	rows, err := s.db.Query(`SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}

	return applied, rows.Err()
}

// ================================================================
// MIGRATION FUNCTIONS
// ================================================================

func execAll(tx *sql.Tx, queries []string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

// migration001AddRunsTable creates the runs table
func migration001AddRunsTable(tx *sql.Tx) error {
	return execAll(tx, []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source_path TEXT NOT NULL DEFAULT '',
			target_path TEXT NOT NULL DEFAULT '',
			output_path TEXT NOT NULL DEFAULT '',
			started_at TEXT NOT NULL,
			completed_at TEXT,
			source_count INTEGER NOT NULL DEFAULT 0,
			target_count INTEGER NOT NULL DEFAULT 0,
			auto_matched INTEGER NOT NULL DEFAULT 0,
			confirmed INTEGER NOT NULL DEFAULT 0,
			sources_deleted INTEGER NOT NULL DEFAULT 0,
			added INTEGER NOT NULL DEFAULT 0,
			written INTEGER NOT NULL DEFAULT 0,
			warnings INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'running',
			error_message TEXT NOT NULL DEFAULT ''
		)`,

		`CREATE INDEX IF NOT EXISTS idx_runs_started_at
		 ON runs(started_at)`,
	})
}

// migration002AddMatchedPairsTable creates the matched_pairs table
func migration002AddMatchedPairsTable(tx *sql.Tx) error {
	return execAll(tx, []string{
		`CREATE TABLE IF NOT EXISTS matched_pairs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			phase TEXT NOT NULL,
			source_id TEXT NOT NULL,
			source_date TEXT NOT NULL,
			source_amount TEXT NOT NULL,
			source_description TEXT NOT NULL DEFAULT '',
			target_id TEXT NOT NULL,
			target_description TEXT NOT NULL DEFAULT '',
			normalized BOOLEAN NOT NULL DEFAULT 0,
			original_amount TEXT NOT NULL DEFAULT ''
		)`,

		`CREATE INDEX IF NOT EXISTS idx_matched_pairs_run_id
		 ON matched_pairs(run_id)`,
	})
}

// migration003AddLedgerEntriesTable creates the ledger_entries table
func migration003AddLedgerEntriesTable(tx *sql.Tx) error {
	return execAll(tx, []string{
		`CREATE TABLE IF NOT EXISTS ledger_entries (
			position INTEGER PRIMARY KEY,
			entry_id TEXT NOT NULL UNIQUE,
			date TEXT NOT NULL,
			amount TEXT NOT NULL,
			memo TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'pending'
		)`,
	})
}
