package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Migration represents a database migration
type Migration struct {
	Version     int
	Name        string
	Description string
	Up          string
	Down        string
}

// MigrationManager handles database migrations
type MigrationManager struct {
	db *sql.DB
}

// NewMigrationManager creates a new migration manager
func NewMigrationManager(db *sql.DB) *MigrationManager {
	return &MigrationManager{db: db}
}

// GetMigrations returns all available migrations
func (m *MigrationManager) GetMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Name:        "initial_schema",
			Description: "Create initial tables for adapters and health records",
			Up: `
				-- Create adapters table
				CREATE TABLE IF NOT EXISTS adapters (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					protocol TEXT NOT NULL,
					active INTEGER NOT NULL DEFAULT 1,
					config TEXT,
					created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
				);

				-- Create health_records table
				CREATE TABLE IF NOT EXISTS health_records (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					adapter_id TEXT NOT NULL,
					healthy INTEGER NOT NULL,
					response_time_ms INTEGER NOT NULL DEFAULT 0,
					error TEXT,
					checked_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
				);
			`,
			Down: `
				DROP TABLE IF EXISTS health_records;
				DROP TABLE IF EXISTS adapters;
			`,
		},
		{
			Version:     2,
			Name:        "add_indexes",
			Description: "Add performance indexes",
			Up: `
				-- Indexes for adapters
				CREATE INDEX IF NOT EXISTS idx_adapters_protocol ON adapters(protocol);
				CREATE INDEX IF NOT EXISTS idx_adapters_active ON adapters(active);

				-- Indexes for health_records
				CREATE INDEX IF NOT EXISTS idx_health_records_adapter ON health_records(adapter_id);
				CREATE INDEX IF NOT EXISTS idx_health_records_checked_at ON health_records(checked_at);
				CREATE INDEX IF NOT EXISTS idx_health_records_adapter_checked ON health_records(adapter_id, checked_at);
			`,
			Down: `
				DROP INDEX IF EXISTS idx_health_records_adapter_checked;
				DROP INDEX IF EXISTS idx_health_records_checked_at;
				DROP INDEX IF EXISTS idx_health_records_adapter;
				DROP INDEX IF EXISTS idx_adapters_active;
				DROP INDEX IF EXISTS idx_adapters_protocol;
			`,
		},

		// Migration 3: durable healthy flag, set on escalation and recovery
		{
			Version:     3,
			Name:        "add_healthy_column",
			Description: "Add healthy flag column to adapters table",
			Up: `
				ALTER TABLE adapters ADD COLUMN healthy INTEGER NOT NULL DEFAULT 1;
				CREATE INDEX IF NOT EXISTS idx_adapters_healthy ON adapters(healthy);
			`,
			Down: `
				DROP INDEX IF EXISTS idx_adapters_healthy;
				-- SQLite doesn't support DROP COLUMN, so we'd need to recreate the table
				-- For now, just leave the column but don't use it
			`,
		},
	}
}

// Migrate runs all pending migrations
func (m *MigrationManager) Migrate(ctx context.Context) error {
	// Ensure schema_migrations table exists
	if err := m.ensureMigrationsTable(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	// Get current version
	currentVersion, err := m.getCurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}

	migrations := m.GetMigrations()

	// Apply pending migrations
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		if err := m.applyMigration(ctx, migration); err != nil {
			return fmt.Errorf("failed to apply migration %d (%s): %w",
				migration.Version, migration.Name, err)
		}
	}

	return nil
}

// Rollback rolls back to a specific version
func (m *MigrationManager) Rollback(ctx context.Context, targetVersion int) error {
	currentVersion, err := m.getCurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}

	if targetVersion >= currentVersion {
		return fmt.Errorf("target version %d is not less than current version %d",
			targetVersion, currentVersion)
	}

	migrations := m.GetMigrations()

	// Apply rollbacks in reverse order
	for i := len(migrations) - 1; i >= 0; i-- {
		migration := migrations[i]
		if migration.Version <= targetVersion {
			break
		}
		if migration.Version > currentVersion {
			continue
		}

		if err := m.rollbackMigration(ctx, migration); err != nil {
			return fmt.Errorf("failed to rollback migration %d (%s): %w",
				migration.Version, migration.Name, err)
		}
	}

	return nil
}

// getCurrentVersion returns the current schema version
func (m *MigrationManager) getCurrentVersion(ctx context.Context) (int, error) {
	var version int
	query := "SELECT COALESCE(MAX(version), 0) FROM schema_migrations"

	err := m.db.QueryRowContext(ctx, query).Scan(&version)
	if err != nil {
		return 0, err
	}

	return version, nil
}

// ensureMigrationsTable creates the schema_migrations table if it doesn't exist
func (m *MigrationManager) ensureMigrationsTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`

	_, err := m.db.ExecContext(ctx, query)
	return err
}

// applyMigration applies a single migration
func (m *MigrationManager) applyMigration(ctx context.Context, migration Migration) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Execute migration SQL
	statements := m.splitSQL(migration.Up)
	for _, stmt := range statements {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute statement: %s: %w", stmt, err)
		}
	}

	// Record migration
	_, err = tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
		migration.Version, migration.Name)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// rollbackMigration rolls back a single migration
func (m *MigrationManager) rollbackMigration(ctx context.Context, migration Migration) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Execute rollback SQL
	statements := m.splitSQL(migration.Down)
	for _, stmt := range statements {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute rollback statement: %s: %w", stmt, err)
		}
	}

	// Remove migration record
	_, err = tx.ExecContext(ctx,
		"DELETE FROM schema_migrations WHERE version = ?", migration.Version)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// splitSQL splits SQL script into individual statements
func (m *MigrationManager) splitSQL(sql string) []string {
	sql = strings.TrimSpace(sql)
	if sql == "" {
		return []string{}
	}

	statements := strings.Split(sql, ";")
	var result []string

	for _, stmt := range statements {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}

		// Remove SQL comments (-- style)
		lines := strings.Split(stmt, "\n")
		var cleanLines []string
		for _, line := range lines {
			line = strings.TrimSpace(line)
			if line != "" && !strings.HasPrefix(line, "--") {
				cleanLines = append(cleanLines, line)
			}
		}

		if len(cleanLines) > 0 {
			cleanStmt := strings.TrimSpace(strings.Join(cleanLines, " "))
			if cleanStmt != "" {
				result = append(result, cleanStmt)
			}
		}
	}

	return result
}

// GetAppliedMigrations returns list of applied migrations
func (m *MigrationManager) GetAppliedMigrations(ctx context.Context) ([]AppliedMigration, error) {
	query := `
		SELECT version, name, applied_at
		FROM schema_migrations
		ORDER BY version
	`

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var migrations []AppliedMigration
	for rows.Next() {
		var migration AppliedMigration
		err := rows.Scan(&migration.Version, &migration.Name, &migration.AppliedAt)
		if err != nil {
			return nil, err
		}
		migrations = append(migrations, migration)
	}

	return migrations, rows.Err()
}

// AppliedMigration represents an applied migration
type AppliedMigration struct {
	Version   int       `json:"version"`
	Name      string    `json:"name"`
	AppliedAt time.Time `json:"applied_at"`
}
