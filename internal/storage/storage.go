package storage

import (
	"context"
	"time"

	"github.com/nexbridge/adaptersentry/pkg/types"
)

// Storage defines the interface for data persistence operations
type Storage interface {
	// Lifecycle operations
	Initialize(ctx context.Context) error
	Close() error
	HealthCheck(ctx context.Context) error

	// Adapter inventory operations
	UpsertAdapter(ctx context.Context, adapter *types.MonitoredAdapter) error
	GetAdapter(ctx context.Context, adapterID string) (*types.MonitoredAdapter, error)
	GetAdapters(ctx context.Context) ([]types.MonitoredAdapter, error)
	GetActiveAdapters(ctx context.Context) ([]types.MonitoredAdapter, error)
	DeleteAdapter(ctx context.Context, adapterID string) error
	SetAdapterActive(ctx context.Context, adapterID string, active bool) error
	UpdateAdapterHealthFlag(ctx context.Context, adapterID string, healthy bool) error

	// Health record operations
	RecordHealthCheck(ctx context.Context, record *types.HealthRecord) error
	GetHealthRecords(ctx context.Context, adapterID string, limit int) ([]types.HealthRecord, error)
	GetHealthRecordsSince(ctx context.Context, adapterID string, since time.Time) ([]types.HealthRecord, error)
	DeleteOldHealthRecords(ctx context.Context, before time.Time) (int64, error)

	// Statistics operations
	GetStats(ctx context.Context) (*StorageStats, error)
}

// StorageStats represents storage statistics
type StorageStats struct {
	TotalAdapters    int64     `json:"total_adapters"`
	ActiveAdapters   int64     `json:"active_adapters"`
	FlaggedUnhealthy int64     `json:"flagged_unhealthy"`
	TotalRecords     int64     `json:"total_records"`
	FailedRecords    int64     `json:"failed_records"`
	LastCheckTime    time.Time `json:"last_check_time,omitempty"`
	OldestRecordTime time.Time `json:"oldest_record_time,omitempty"`
	DatabaseSize     int64     `json:"database_size_bytes,omitempty"`
}

// Factory creates storage instances based on configuration
type Factory struct{}

// NewFactory creates a new storage factory
func NewFactory() *Factory {
	return &Factory{}
}

// Create creates a storage instance based on configuration
func (f *Factory) Create(config *types.StorageConfig) (Storage, error) {
	switch config.Type {
	case "sqlite":
		return NewSQLiteStorage(&config.SQLite)
	default:
		return nil, &UnsupportedStorageTypeError{Type: config.Type}
	}
}

// Storage errors
type UnsupportedStorageTypeError struct {
	Type string
}

func (e *UnsupportedStorageTypeError) Error() string {
	return "unsupported storage type: " + e.Type
}

type AdapterNotFoundError struct {
	AdapterID string
}

func (e *AdapterNotFoundError) Error() string {
	return "adapter not found: " + e.AdapterID
}

type DuplicateAdapterError struct {
	AdapterID string
}

func (e *DuplicateAdapterError) Error() string {
	return "adapter already exists: " + e.AdapterID
}
