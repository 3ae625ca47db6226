package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
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
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS transactions (
					id TEXT PRIMARY KEY,
					hash TEXT UNIQUE NOT NULL,
					batch_id TEXT NOT NULL,
					date DATETIME NOT NULL,
					description TEXT NOT NULL,
					merchant_name TEXT,
					amount REAL NOT NULL,
					direction TEXT NOT NULL,
					currency TEXT NOT NULL DEFAULT 'INR',
					bank_code TEXT,
					channel TEXT,
					account_ref TEXT,
					external_id TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_transactions_date ON transactions(date)`,
				`CREATE INDEX idx_transactions_merchant ON transactions(merchant_name)`,
				`CREATE INDEX idx_transactions_batch ON transactions(batch_id)`,

				`CREATE TABLE IF NOT EXISTS upload_batches (
					id TEXT PRIMARY KEY,
					source_file TEXT,
					bank_code TEXT,
					status TEXT NOT NULL DEFAULT 'pending',
					message TEXT,
					record_count INTEGER DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					completed_at DATETIME
				)`,

				`CREATE TABLE IF NOT EXISTS categories (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					code TEXT UNIQUE NOT NULL,
					name TEXT NOT NULL,
					description TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					is_active BOOLEAN DEFAULT 1
				)`,
				`CREATE INDEX idx_categories_active ON categories(is_active)`,
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
		Description: "Merchant rules and directory",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS merchant_rules (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					pattern TEXT,
					pattern_type TEXT NOT NULL,
					applies_to TEXT NOT NULL DEFAULT 'merchant',
					category TEXT NOT NULL,
					subcategory TEXT,
					keywords TEXT,
					priority INTEGER DEFAULT 0,
					confidence REAL DEFAULT 0.9,
					use_count INTEGER DEFAULT 0,
					is_active BOOLEAN DEFAULT 1,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_merchant_rules_active ON merchant_rules(is_active)`,
				`CREATE INDEX idx_merchant_rules_type ON merchant_rules(pattern_type)`,

				`CREATE TABLE IF NOT EXISTS merchant_directory (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT UNIQUE NOT NULL,
					category TEXT NOT NULL,
					subcategory TEXT,
					aliases TEXT,
					use_count INTEGER DEFAULT 0,
					is_active BOOLEAN DEFAULT 1,
					last_updated DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_merchant_directory_name ON merchant_directory(name)`,
				`CREATE INDEX idx_merchant_directory_category ON merchant_directory(category)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Categorizations",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS categorizations (
					transaction_hash TEXT PRIMARY KEY,
					category TEXT NOT NULL,
					subcategory TEXT,
					method TEXT NOT NULL,
					rule_id INTEGER,
					confidence REAL DEFAULT 0,
					categorized_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					FOREIGN KEY (transaction_hash) REFERENCES transactions(hash)
				)`,
				`CREATE INDEX idx_categorizations_category ON categorizations(category)`,
				`CREATE INDEX idx_categorizations_method ON categorizations(method)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
	{
		Version:     4,
		Description: "Rule snapshot versioning",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				// Bumped by every rule/directory write so batch categorization
				// can tell which rule set it ran against.
				`CREATE TABLE IF NOT EXISTS rule_versions (
					id INTEGER PRIMARY KEY CHECK (id = 1),
					version INTEGER NOT NULL DEFAULT 0,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`INSERT OR IGNORE INTO rule_versions (id, version) VALUES (1, 0)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
