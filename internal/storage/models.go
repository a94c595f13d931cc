package storage

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nexbridge/adaptersentry/pkg/types"
)

// SQLiteAdapter represents an adapter row in SQLite
type SQLiteAdapter struct {
	ID        string     `db:"id"`
	Name      string     `db:"name"`
	Protocol  string     `db:"protocol"`
	Active    bool       `db:"active"`
	Healthy   bool       `db:"healthy"`
	Config    ConfigJSON `db:"config"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
}

// ToAdapter converts SQLiteAdapter to types.MonitoredAdapter
func (a *SQLiteAdapter) ToAdapter() *types.MonitoredAdapter {
	return &types.MonitoredAdapter{
		ID:        a.ID,
		Name:      a.Name,
		Protocol:  types.ProtocolType(a.Protocol),
		Active:    a.Active,
		Config:    map[string]string(a.Config),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// FromAdapter converts types.MonitoredAdapter to SQLiteAdapter
func (a *SQLiteAdapter) FromAdapter(adapter *types.MonitoredAdapter) {
	a.ID = adapter.ID
	a.Name = adapter.Name
	a.Protocol = string(adapter.Protocol)
	a.Active = adapter.Active
	a.Config = ConfigJSON(adapter.Config)
	a.CreatedAt = adapter.CreatedAt
	a.UpdatedAt = adapter.UpdatedAt
}

// SQLiteHealthRecord represents a health record row in SQLite
type SQLiteHealthRecord struct {
	ID             int64     `db:"id"`
	AdapterID      string    `db:"adapter_id"`
	Healthy        bool      `db:"healthy"`
	ResponseTimeMs int64     `db:"response_time_ms"`
	Error          string    `db:"error"`
	CheckedAt      time.Time `db:"checked_at"`
}

// ToHealthRecord converts SQLiteHealthRecord to types.HealthRecord
func (r *SQLiteHealthRecord) ToHealthRecord() types.HealthRecord {
	return types.HealthRecord{
		ID:             r.ID,
		AdapterID:      r.AdapterID,
		Healthy:        r.Healthy,
		ResponseTimeMs: r.ResponseTimeMs,
		Error:          r.Error,
		CheckedAt:      r.CheckedAt,
	}
}

// ConfigJSON handles JSON serialization for adapter connection settings
type ConfigJSON map[string]string

// Value implements driver.Valuer interface for database storage
func (c ConfigJSON) Value() (driver.Value, error) {
	if c == nil {
		return nil, nil
	}

	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal adapter config: %w", err)
	}

	return string(data), nil
}

// Scan implements sql.Scanner interface for database retrieval
func (c *ConfigJSON) Scan(value interface{}) error {
	if value == nil {
		*c = make(map[string]string)
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into ConfigJSON", value)
	}

	if len(data) == 0 {
		*c = make(map[string]string)
		return nil
	}

	var result map[string]string
	if err := json.Unmarshal(data, &result); err != nil {
		return fmt.Errorf("failed to unmarshal adapter config: %w", err)
	}

	*c = ConfigJSON(result)
	return nil
}

// SQLiteStats represents database statistics
type SQLiteStats struct {
	TotalAdapters    int64     `db:"total_adapters"`
	ActiveAdapters   int64     `db:"active_adapters"`
	FlaggedUnhealthy int64     `db:"flagged_unhealthy"`
	TotalRecords     int64     `db:"total_records"`
	FailedRecords    int64     `db:"failed_records"`
	LastCheckTime    time.Time `db:"last_check_time"`
	OldestRecordTime time.Time `db:"oldest_record_time"`
}

// ToStorageStats converts SQLiteStats to StorageStats
func (s *SQLiteStats) ToStorageStats() *StorageStats {
	return &StorageStats{
		TotalAdapters:    s.TotalAdapters,
		ActiveAdapters:   s.ActiveAdapters,
		FlaggedUnhealthy: s.FlaggedUnhealthy,
		TotalRecords:     s.TotalRecords,
		FailedRecords:    s.FailedRecords,
		LastCheckTime:    s.LastCheckTime,
		OldestRecordTime: s.OldestRecordTime,
	}
}
