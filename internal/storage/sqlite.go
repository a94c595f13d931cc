package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nexbridge/adaptersentry/pkg/types"
)

// SQLiteStorage implements Storage interface using SQLite
type SQLiteStorage struct {
	db               *sql.DB
	config           *types.SQLiteConfig
	migrationManager *MigrationManager
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(config *types.SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		return nil, fmt.Errorf("SQLite config is required")
	}

	// Ensure directory exists (skip for in-memory database)
	if config.Path != ":memory:" {
		dir := filepath.Dir(config.Path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", config.Path+"?_journal_mode=WAL&_foreign_keys=1&_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(config.MaxConnections)
	db.SetMaxIdleConns(config.MaxConnections / 2)
	db.SetConnMaxLifetime(time.Hour)

	storage := &SQLiteStorage{
		db:               db,
		config:           config,
		migrationManager: NewMigrationManager(db),
	}

	return storage, nil
}

// Initialize initializes the database and runs migrations
func (s *SQLiteStorage) Initialize(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if err := s.migrationManager.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// HealthCheck checks if the database is accessible
func (s *SQLiteStorage) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// UpsertAdapter inserts or updates an adapter. The durable healthy flag
// is left untouched on update, escalation owns it.
func (s *SQLiteStorage) UpsertAdapter(ctx context.Context, adapter *types.MonitoredAdapter) error {
	query := `
		INSERT INTO adapters (id, name, protocol, active, config, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			protocol = excluded.protocol,
			active = excluded.active,
			config = excluded.config,
			updated_at = excluded.updated_at
	`

	now := time.Now()
	if adapter.CreatedAt.IsZero() {
		adapter.CreatedAt = now
	}
	adapter.UpdatedAt = now

	var row SQLiteAdapter
	row.FromAdapter(adapter)

	_, err := s.db.ExecContext(ctx, query,
		row.ID, row.Name, row.Protocol, row.Active, row.Config,
		row.CreatedAt, row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert adapter: %w", err)
	}

	return nil
}

// GetAdapter retrieves an adapter by ID
func (s *SQLiteStorage) GetAdapter(ctx context.Context, adapterID string) (*types.MonitoredAdapter, error) {
	query := `
		SELECT id, name, protocol, active, config, created_at, updated_at
		FROM adapters
		WHERE id = ?
	`

	var row SQLiteAdapter
	err := s.db.QueryRowContext(ctx, query, adapterID).Scan(
		&row.ID, &row.Name, &row.Protocol, &row.Active, &row.Config,
		&row.CreatedAt, &row.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, &AdapterNotFoundError{AdapterID: adapterID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get adapter: %w", err)
	}

	return row.ToAdapter(), nil
}

// GetAdapters retrieves all adapters
func (s *SQLiteStorage) GetAdapters(ctx context.Context) ([]types.MonitoredAdapter, error) {
	query := `
		SELECT id, name, protocol, active, config, created_at, updated_at
		FROM adapters
		ORDER BY id
	`

	return s.queryAdapters(ctx, query)
}

// GetActiveAdapters retrieves all active adapters
func (s *SQLiteStorage) GetActiveAdapters(ctx context.Context) ([]types.MonitoredAdapter, error) {
	query := `
		SELECT id, name, protocol, active, config, created_at, updated_at
		FROM adapters
		WHERE active = 1
		ORDER BY id
	`

	return s.queryAdapters(ctx, query)
}

// DeleteAdapter deletes an adapter and its health records
func (s *SQLiteStorage) DeleteAdapter(ctx context.Context, adapterID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM adapters WHERE id = ?", adapterID)
	if err != nil {
		return fmt.Errorf("failed to delete adapter: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return &AdapterNotFoundError{AdapterID: adapterID}
	}

	_, err = s.db.ExecContext(ctx, "DELETE FROM health_records WHERE adapter_id = ?", adapterID)
	if err != nil {
		return fmt.Errorf("failed to delete adapter health records: %w", err)
	}

	return nil
}

// SetAdapterActive toggles an adapter's active flag
func (s *SQLiteStorage) SetAdapterActive(ctx context.Context, adapterID string, active bool) error {
	query := `
		UPDATE adapters
		SET active = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query, active, adapterID)
	if err != nil {
		return fmt.Errorf("failed to update adapter active flag: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return &AdapterNotFoundError{AdapterID: adapterID}
	}

	return nil
}

// UpdateAdapterHealthFlag sets the durable healthy flag for an adapter
func (s *SQLiteStorage) UpdateAdapterHealthFlag(ctx context.Context, adapterID string, healthy bool) error {
	query := `
		UPDATE adapters
		SET healthy = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query, healthy, adapterID)
	if err != nil {
		return fmt.Errorf("failed to update adapter health flag: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return &AdapterNotFoundError{AdapterID: adapterID}
	}

	return nil
}

// RecordHealthCheck appends a health record for an adapter
func (s *SQLiteStorage) RecordHealthCheck(ctx context.Context, record *types.HealthRecord) error {
	query := `
		INSERT INTO health_records (adapter_id, healthy, response_time_ms, error, checked_at)
		VALUES (?, ?, ?, ?, ?)
	`

	if record.CheckedAt.IsZero() {
		record.CheckedAt = time.Now()
	}

	result, err := s.db.ExecContext(ctx, query,
		record.AdapterID, record.Healthy, record.ResponseTimeMs,
		record.Error, record.CheckedAt)
	if err != nil {
		return fmt.Errorf("failed to save health record: %w", err)
	}

	if record.ID == 0 {
		if id, err := result.LastInsertId(); err == nil {
			record.ID = id
		}
	}

	return nil
}

// GetHealthRecords retrieves the most recent health records for an adapter
func (s *SQLiteStorage) GetHealthRecords(ctx context.Context, adapterID string, limit int) ([]types.HealthRecord, error) {
	query := `
		SELECT id, adapter_id, healthy, response_time_ms, error, checked_at
		FROM health_records
		WHERE adapter_id = ?
		ORDER BY checked_at DESC
		LIMIT ?
	`

	return s.queryHealthRecords(ctx, query, adapterID, limit)
}

// GetHealthRecordsSince retrieves health records for an adapter since a specific time
func (s *SQLiteStorage) GetHealthRecordsSince(ctx context.Context, adapterID string, since time.Time) ([]types.HealthRecord, error) {
	query := `
		SELECT id, adapter_id, healthy, response_time_ms, error, checked_at
		FROM health_records
		WHERE adapter_id = ? AND checked_at >= ?
		ORDER BY checked_at DESC
	`

	return s.queryHealthRecords(ctx, query, adapterID, since)
}

// DeleteOldHealthRecords deletes health records older than the specified time
func (s *SQLiteStorage) DeleteOldHealthRecords(ctx context.Context, before time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM health_records WHERE checked_at < ?", before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old health records: %w", err)
	}

	return result.RowsAffected()
}

// GetStats retrieves storage statistics
func (s *SQLiteStorage) GetStats(ctx context.Context) (*StorageStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM adapters) as total_adapters,
			(SELECT COUNT(*) FROM adapters WHERE active = 1) as active_adapters,
			(SELECT COUNT(*) FROM adapters WHERE healthy = 0) as flagged_unhealthy,
			(SELECT COUNT(*) FROM health_records) as total_records,
			(SELECT COUNT(*) FROM health_records WHERE healthy = 0) as failed_records,
			(SELECT MAX(checked_at) FROM health_records) as last_check_time,
			(SELECT MIN(checked_at) FROM health_records) as oldest_record_time
	`

	var stats SQLiteStats
	var lastCheckStr, oldestRecordStr sql.NullString

	err := s.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalAdapters, &stats.ActiveAdapters, &stats.FlaggedUnhealthy,
		&stats.TotalRecords, &stats.FailedRecords, &lastCheckStr, &oldestRecordStr)
	if err != nil {
		return nil, fmt.Errorf("failed to get storage stats: %w", err)
	}

	if t, ok := parseSQLiteTime(lastCheckStr); ok {
		stats.LastCheckTime = t
	}
	if t, ok := parseSQLiteTime(oldestRecordStr); ok {
		stats.OldestRecordTime = t
	}

	storageStats := stats.ToStorageStats()

	// Get database file size
	if fileInfo, err := os.Stat(s.config.Path); err == nil {
		storageStats.DatabaseSize = fileInfo.Size()
	}

	return storageStats, nil
}

// queryAdapters is a helper method to query adapter rows
func (s *SQLiteStorage) queryAdapters(ctx context.Context, query string, args ...interface{}) ([]types.MonitoredAdapter, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query adapters: %w", err)
	}
	defer rows.Close()

	var adapters []types.MonitoredAdapter
	for rows.Next() {
		var row SQLiteAdapter
		err := rows.Scan(&row.ID, &row.Name, &row.Protocol, &row.Active,
			&row.Config, &row.CreatedAt, &row.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan adapter: %w", err)
		}
		adapters = append(adapters, *row.ToAdapter())
	}

	return adapters, rows.Err()
}

// queryHealthRecords is a helper method to query health record rows
func (s *SQLiteStorage) queryHealthRecords(ctx context.Context, query string, args ...interface{}) ([]types.HealthRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query health records: %w", err)
	}
	defer rows.Close()

	var records []types.HealthRecord
	for rows.Next() {
		var row SQLiteHealthRecord
		var errMsg sql.NullString
		err := rows.Scan(&row.ID, &row.AdapterID, &row.Healthy,
			&row.ResponseTimeMs, &errMsg, &row.CheckedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan health record: %w", err)
		}
		row.Error = errMsg.String
		records = append(records, row.ToHealthRecord())
	}

	return records, rows.Err()
}

// parseSQLiteTime parses the timestamp string formats SQLite emits
func parseSQLiteTime(value sql.NullString) (time.Time, bool) {
	if !value.Valid || value.String == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, value.String); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02 15:04:05", value.String); err == nil {
		return t, true
	}
	return time.Time{}, false
}
