package storage

import (
	"database/sql"
	"fmt"
	"log"
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
		Name:    "initial_schema",
		Up:      migration001InitialSchema,
	},
	{
		Version: 2,
		Name:    "add_pattern_usage_columns",
		Up:      migration002AddPatternUsageColumns,
	},
	{
		Version: 3,
		Name:    "add_reconciliation_indexes",
		Up:      migration003AddReconciliationIndexes,
	},
}

// runMigrations executes all pending migrations
func (s *Storage) runMigrations() error {
	// Ensure migrations table exists
	if err := s.ensureMigrationsTable(); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	// Get applied migrations
	applied, err := s.getAppliedMigrations()
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	// Run pending migrations
	for _, migration := range allMigrations {
		if applied[migration.Version] {
			continue // Already applied
		}

		log.Printf("Running migration %d: %s", migration.Version, migration.Name)

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

// migration001InitialSchema creates the core tables: accounts, scraped
// transactions, matching patterns, confirmed links, pending suggestions.
func migration001InitialSchema(db *sql.Tx) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			type TEXT NOT NULL DEFAULT 'other',
			active BOOLEAN DEFAULT 1,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		// Scraped rows; the scraping collaborator owns the write path.
		`CREATE TABLE IF NOT EXISTS transactions (
			identifier TEXT NOT NULL,
			vendor TEXT NOT NULL,
			name TEXT NOT NULL,
			amount REAL NOT NULL,
			date TIMESTAMP NOT NULL,
			category TEXT,
			PRIMARY KEY (identifier, vendor)
		)`,

		`CREATE TABLE IF NOT EXISTS account_patterns (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			account_id INTEGER NOT NULL,
			pattern TEXT NOT NULL,
			kind TEXT NOT NULL DEFAULT 'substring',
			active BOOLEAN DEFAULT 1,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (account_id, pattern),
			FOREIGN KEY (account_id) REFERENCES accounts(id)
		)`,

		`CREATE TABLE IF NOT EXISTS transaction_links (
			identifier TEXT NOT NULL,
			vendor TEXT NOT NULL,
			account_id INTEGER NOT NULL,
			method TEXT NOT NULL DEFAULT 'manual',
			confidence REAL DEFAULT 1.0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (identifier, vendor),
			FOREIGN KEY (account_id) REFERENCES accounts(id)
		)`,

		`CREATE TABLE IF NOT EXISTS pending_suggestions (
			id TEXT PRIMARY KEY,
			identifier TEXT NOT NULL,
			vendor TEXT NOT NULL,
			name TEXT NOT NULL,
			amount REAL NOT NULL DEFAULT 0,
			date TIMESTAMP,
			suggested_account_id INTEGER,
			confidence REAL NOT NULL DEFAULT 0,
			match_reason TEXT,
			status TEXT NOT NULL DEFAULT 'pending',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			reviewed_at TIMESTAMP,
			UNIQUE (identifier, vendor),
			FOREIGN KEY (suggested_account_id) REFERENCES accounts(id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_transactions_vendor_date
		 ON transactions(vendor, date)`,

		`CREATE INDEX IF NOT EXISTS idx_pending_suggestions_status
		 ON pending_suggestions(status)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}

	return nil
}

// migration002AddPatternUsageColumns adds the learning-signal counters to
// account_patterns: how often a rule matched an approved suggestion, and
// when it last did.
func migration002AddPatternUsageColumns(db *sql.Tx) error {
	queries := []string{
		`ALTER TABLE account_patterns ADD COLUMN match_count INTEGER DEFAULT 0`,
		`ALTER TABLE account_patterns ADD COLUMN last_matched_at TIMESTAMP`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to add usage column: %w", err)
		}
	}

	return nil
}

// migration003AddReconciliationIndexes adds indexes for the repayment and
// link-state queries once those became hot paths.
func migration003AddReconciliationIndexes(db *sql.Tx) error {
	queries := []string{
		`CREATE INDEX IF NOT EXISTS idx_transaction_links_account
		 ON transaction_links(account_id)`,

		`CREATE INDEX IF NOT EXISTS idx_account_patterns_account
		 ON account_patterns(account_id, active)`,

		`CREATE INDEX IF NOT EXISTS idx_transactions_category
		 ON transactions(category)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}
