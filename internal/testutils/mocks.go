package testutils

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/nexbridge/adaptersentry/internal/storage"
	"github.com/nexbridge/adaptersentry/pkg/types"
)

// MockAny can be used in mock expectations for any argument
var MockAny = mock.Anything

// MockStorage is a mock implementation of storage.Storage
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Initialize(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStorage) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockStorage) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStorage) UpsertAdapter(ctx context.Context, adapter *types.MonitoredAdapter) error {
	args := m.Called(ctx, adapter)
	return args.Error(0)
}

func (m *MockStorage) GetAdapter(ctx context.Context, adapterID string) (*types.MonitoredAdapter, error) {
	args := m.Called(ctx, adapterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.MonitoredAdapter), args.Error(1)
}

func (m *MockStorage) GetAdapters(ctx context.Context) ([]types.MonitoredAdapter, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.MonitoredAdapter), args.Error(1)
}

func (m *MockStorage) GetActiveAdapters(ctx context.Context) ([]types.MonitoredAdapter, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.MonitoredAdapter), args.Error(1)
}

func (m *MockStorage) DeleteAdapter(ctx context.Context, adapterID string) error {
	args := m.Called(ctx, adapterID)
	return args.Error(0)
}

func (m *MockStorage) SetAdapterActive(ctx context.Context, adapterID string, active bool) error {
	args := m.Called(ctx, adapterID, active)
	return args.Error(0)
}

func (m *MockStorage) UpdateAdapterHealthFlag(ctx context.Context, adapterID string, healthy bool) error {
	args := m.Called(ctx, adapterID, healthy)
	return args.Error(0)
}

func (m *MockStorage) RecordHealthCheck(ctx context.Context, record *types.HealthRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockStorage) GetHealthRecords(ctx context.Context, adapterID string, limit int) ([]types.HealthRecord, error) {
	args := m.Called(ctx, adapterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.HealthRecord), args.Error(1)
}

func (m *MockStorage) GetHealthRecordsSince(ctx context.Context, adapterID string, since time.Time) ([]types.HealthRecord, error) {
	args := m.Called(ctx, adapterID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.HealthRecord), args.Error(1)
}

func (m *MockStorage) DeleteOldHealthRecords(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) GetStats(ctx context.Context) (*storage.StorageStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.StorageStats), args.Error(1)
}

// NewMockStorage creates a new mock storage with common expectations
func NewMockStorage() *MockStorage {
	mock := &MockStorage{}

	// Set up common successful operations - make them optional
	mock.On("Initialize", MockAny).Return(nil).Maybe()
	mock.On("Close").Return(nil).Maybe()
	mock.On("HealthCheck", MockAny).Return(nil).Maybe()

	return mock
}
