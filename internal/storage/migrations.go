package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application
// expects. If the database cannot be migrated to this version, it's a
// fatal error.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS accounts (
					id INTEGER PRIMARY KEY,
					code TEXT NOT NULL,
					name TEXT NOT NULL,
					internal_type TEXT NOT NULL DEFAULT 'other'
				)`,

				`CREATE TABLE IF NOT EXISTS partners (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL,
					country_code TEXT
				)`,

				`CREATE TABLE IF NOT EXISTS partner_id_numbers (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					partner_id INTEGER NOT NULL REFERENCES partners(id),
					category TEXT NOT NULL,
					value TEXT NOT NULL
				)`,
				`CREATE INDEX idx_partner_id_numbers_partner
					ON partner_id_numbers(partner_id, category)`,

				`CREATE TABLE IF NOT EXISTS invoices (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					number TEXT NOT NULL,
					date DATETIME,
					partner_id INTEGER REFERENCES partners(id),
					state TEXT NOT NULL DEFAULT 'draft',
					payment_reference TEXT,
					ref TEXT,
					amount_total TEXT NOT NULL DEFAULT '0'
				)`,
				`CREATE INDEX idx_invoices_payment_reference
					ON invoices(payment_reference)`,
				`CREATE INDEX idx_invoices_state ON invoices(state)`,

				`CREATE TABLE IF NOT EXISTS ledger_lines (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					entry_id INTEGER,
					entry_name TEXT,
					name TEXT,
					account_id INTEGER NOT NULL REFERENCES accounts(id),
					partner_id INTEGER,
					payment_reference TEXT,
					ref TEXT,
					date_maturity DATETIME,
					debit TEXT NOT NULL DEFAULT '0',
					credit TEXT NOT NULL DEFAULT '0',
					amount_residual TEXT NOT NULL DEFAULT '0',
					amount_residual_currency TEXT NOT NULL DEFAULT '0',
					amount_currency TEXT NOT NULL DEFAULT '0',
					currency_code TEXT NOT NULL DEFAULT '',
					reconciled INTEGER NOT NULL DEFAULT 0,
					reconcile_entry_id TEXT
				)`,
				`CREATE INDEX idx_ledger_lines_payment_reference
					ON ledger_lines(payment_reference)`,
				`CREATE INDEX idx_ledger_lines_ref ON ledger_lines(ref)`,
				`CREATE INDEX idx_ledger_lines_maturity
					ON ledger_lines(date_maturity)`,
				`CREATE INDEX idx_ledger_lines_open
					ON ledger_lines(reconciled, account_id)`,

				`CREATE TABLE IF NOT EXISTS payment_lines (
					id TEXT PRIMARY KEY,
					hash TEXT UNIQUE NOT NULL,
					statement_id TEXT,
					date DATETIME NOT NULL,
					name TEXT,
					ref TEXT,
					partner_name TEXT,
					partner_id INTEGER,
					amount TEXT NOT NULL DEFAULT '0',
					amount_currency TEXT NOT NULL DEFAULT '0',
					currency_code TEXT NOT NULL DEFAULT '',
					reconciled INTEGER NOT NULL DEFAULT 0
				)`,
				`CREATE INDEX idx_payment_lines_reconciled
					ON payment_lines(reconciled)`,
				`CREATE INDEX idx_payment_lines_statement
					ON payment_lines(statement_id)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("migration 1 failed on %q: %w", query[:40], err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Reconciliation journal entries",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS journal_entries (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					payment_line_id TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS journal_entry_lines (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					entry_id TEXT NOT NULL REFERENCES journal_entries(id),
					name TEXT NOT NULL,
					debit TEXT NOT NULL DEFAULT '0',
					credit TEXT NOT NULL DEFAULT '0',
					source_line_id INTEGER
				)`,
				`CREATE INDEX idx_journal_entry_lines_entry
					ON journal_entry_lines(entry_id)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("migration 2 failed on %q: %w", query[:40], err)
				}
			}
			return nil
		},
	},
}

// Migrate brings the database schema to the latest version.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	current, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= current {
			continue
		}

		slog.Info("Applying migration",
			"version", migration.Version,
			"description", migration.Description)

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration transaction: %w", err)
		}

		if err := migration.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to set schema version %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the database's current schema version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
