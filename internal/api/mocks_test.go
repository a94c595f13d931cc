package api

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/nexbridge/adaptersentry/internal/monitor"
	"github.com/nexbridge/adaptersentry/pkg/types"
)

// MockRuntimeProvider is a mock implementation for RuntimeProvider interface
type MockRuntimeProvider struct {
	mock.Mock
}

func (m *MockRuntimeProvider) Health(ctx context.Context) RuntimeHealthStatus {
	args := m.Called(ctx)
	return args.Get(0).(RuntimeHealthStatus)
}

func (m *MockRuntimeProvider) GetStatus() *RuntimeStatus {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*RuntimeStatus)
}

// NewMockRuntimeProvider creates a new mock runtime provider with default expectations
func NewMockRuntimeProvider() *MockRuntimeProvider {

	// Set up default healthy state - simplified expectations
	mockObj := &MockRuntimeProvider{}
	// Accept any context type
	mockObj.On("Health", mock.Anything).Return(RuntimeHealthStatus{
		Healthy:    true,
		Components: make(map[string]ComponentHealth),
		Checks:     []HealthCheck{},
	}).Maybe() // Make it optional

	mockObj.On("GetStatus").Return(&RuntimeStatus{
		State:      "running",
		StartedAt:  time.Now(),
		Uptime:     time.Minute,
		Version:    "test",
		Components: make(map[string]ComponentStatus),
	})

	return mockObj
}

// stubStatuses is a canned StatusReader for handler tests
type stubStatuses struct {
	statuses map[string]types.AdapterHealthStatus
}

func (s *stubStatuses) Get(adapterID string) (types.AdapterHealthStatus, bool) {
	status, ok := s.statuses[adapterID]
	return status, ok
}

func (s *stubStatuses) List() []types.AdapterHealthStatus {
	out := make([]types.AdapterHealthStatus, 0, len(s.statuses))
	for _, status := range s.statuses {
		out = append(out, status)
	}
	return out
}

// stubScores is a canned ScoreReader for handler tests
type stubScores struct {
	scores map[string]types.HealthScore
}

func (s *stubScores) Score(adapterID string) (types.HealthScore, bool) {
	score, ok := s.scores[adapterID]
	return score, ok
}

func (s *stubScores) ScoreAll() []types.HealthScore {
	out := make([]types.HealthScore, 0, len(s.scores))
	for _, score := range s.scores {
		out = append(out, score)
	}
	return out
}

// stubHistory is a canned HistoryReader for handler tests
type stubHistory struct {
	snapshots map[string][]types.HealthSnapshot
}

func (s *stubHistory) History(adapterID string) []types.HealthSnapshot {
	return s.snapshots[adapterID]
}

// stubAlerts is a canned AlertScanner for handler tests
type stubAlerts struct {
	alerts []types.HealthAlert
}

func (s *stubAlerts) Scan() []types.HealthAlert {
	return s.alerts
}

// stubMonitor records forced checks and returns a canned result
type stubMonitor struct {
	checked []string
	result  types.HealthCheckResult
}

func (s *stubMonitor) CheckAdapterNow(ctx context.Context, adapter types.MonitoredAdapter) types.HealthCheckResult {
	s.checked = append(s.checked, adapter.ID)
	return s.result
}

func (s *stubMonitor) GetStatus() monitor.MonitorStatus {
	return monitor.MonitorStatus{Running: true, AdapterCount: len(s.checked)}
}

func (s *stubMonitor) GetMetrics() monitor.MonitorMetrics {
	return monitor.MonitorMetrics{TotalChecks: int64(len(s.checked))}
}
