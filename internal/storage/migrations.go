package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version the application
// expects. Failing to reach it is fatal.
const ExpectedSchemaVersion = 4

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "User data: profiles, accounts, liabilities, transactions",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS users (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					birth_date DATETIME NOT NULL,
					consent_granted INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS accounts (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					name TEXT NOT NULL,
					type TEXT NOT NULL,
					subtype TEXT,
					available_balance REAL NOT NULL DEFAULT 0,
					current_balance REAL NOT NULL DEFAULT 0,
					credit_limit REAL,
					FOREIGN KEY (user_id) REFERENCES users(id)
				)`,
				`CREATE INDEX idx_accounts_user ON accounts(user_id)`,

				`CREATE TABLE IF NOT EXISTS liabilities (
					account_id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					apr REAL NOT NULL DEFAULT 0,
					minimum_payment REAL NOT NULL DEFAULT 0,
					last_payment_amount REAL NOT NULL DEFAULT 0,
					last_payment_date DATETIME,
					next_payment_due DATETIME,
					statement_balance REAL NOT NULL DEFAULT 0,
					is_overdue INTEGER NOT NULL DEFAULT 0,
					FOREIGN KEY (account_id) REFERENCES accounts(id)
				)`,
				`CREATE INDEX idx_liabilities_user ON liabilities(user_id)`,

				`CREATE TABLE IF NOT EXISTS transactions (
					id TEXT PRIMARY KEY,
					hash TEXT UNIQUE NOT NULL,
					user_id TEXT NOT NULL,
					account_id TEXT,
					date DATETIME NOT NULL,
					name TEXT NOT NULL,
					merchant_name TEXT,
					channel TEXT,
					category_primary TEXT,
					category_detailed TEXT,
					amount REAL NOT NULL,
					pending INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_transactions_user_date ON transactions(user_id, date)`,
				`CREATE INDEX idx_transactions_merchant ON transactions(merchant_name)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Pipeline outputs: signals and persona assignments",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS signals (
					user_id TEXT NOT NULL,
					window_days INTEGER NOT NULL,
					signal_type TEXT NOT NULL,
					value REAL NOT NULL,
					details TEXT NOT NULL,
					computed_at DATETIME NOT NULL,
					PRIMARY KEY (user_id, window_days, signal_type)
				)`,

				`CREATE TABLE IF NOT EXISTS persona_assignments (
					user_id TEXT NOT NULL,
					window_days INTEGER NOT NULL,
					persona_type TEXT NOT NULL,
					priority_rank INTEGER NOT NULL,
					criteria_met TEXT NOT NULL,
					is_primary INTEGER NOT NULL DEFAULT 0,
					assigned_at DATETIME NOT NULL,
					PRIMARY KEY (user_id, window_days, persona_type)
				)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Recommendations with frozen signal snapshots",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS recommendations (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					persona_type TEXT NOT NULL,
					content_type TEXT NOT NULL,
					template_id TEXT NOT NULL,
					window_days INTEGER NOT NULL,
					title TEXT NOT NULL,
					rationale TEXT NOT NULL,
					disclaimer TEXT NOT NULL,
					eligibility_met INTEGER NOT NULL DEFAULT 0,
					status TEXT NOT NULL,
					review_reasons TEXT,
					operator_notes TEXT,
					signal_snapshot TEXT NOT NULL,
					created_at DATETIME NOT NULL
				)`,
				`CREATE INDEX idx_recommendations_user ON recommendations(user_id)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     4,
		Description: "Frozen persona snapshots on recommendations",
		Up: func(tx *sql.Tx) error {
			if _, err := tx.Exec(
				`ALTER TABLE recommendations ADD COLUMN persona_snapshot TEXT NOT NULL DEFAULT '[]'`); err != nil {
				return fmt.Errorf("failed to execute query: %w", err)
			}
			return nil
		},
	},
}

// SchemaVersion returns the highest applied migration version, 0 for a
// fresh database.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_versions'`).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("failed to check schema_versions table: %w", err)
	}
	if exists == 0 {
		return 0, nil
	}

	var current int
	err = s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_versions`).Scan(&current)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return current, nil
}

// Migrate applies all pending migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_versions (
		version INTEGER PRIMARY KEY,
		description TEXT,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("failed to create schema_versions table: %w", err)
	}

	var current int
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_versions`).Scan(&current)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", m.Version, err)
		}

		if err := m.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(`INSERT INTO schema_versions (version, description) VALUES (?, ?)`,
			m.Version, m.Description); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
		}

		slog.Info("Applied migration", "version", m.Version, "description", m.Description)
	}

	return nil
}
