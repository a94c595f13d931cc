package api

import (
	"context"
	"net/http"
	"time"

	"github.com/nexbridge/adaptersentry/internal/monitor"
	"github.com/nexbridge/adaptersentry/pkg/types"
)

// RuntimeHealthStatus represents runtime health status
type RuntimeHealthStatus struct {
	Healthy    bool                       `json:"healthy"`
	Components map[string]ComponentHealth `json:"components"`
	Checks     []HealthCheck              `json:"checks"`
}

// ComponentHealth represents individual component health
type ComponentHealth struct {
	Status   string        `json:"status"`
	Duration time.Duration `json:"duration,omitempty"`
}

// HealthCheck represents a health check result
type HealthCheck struct {
	Name     string        `json:"name"`
	Status   string        `json:"status"`
	Duration time.Duration `json:"duration"`
}

// RuntimeStatus represents runtime status
type RuntimeStatus struct {
	State      string                     `json:"state"`
	StartedAt  time.Time                  `json:"started_at"`
	Uptime     time.Duration              `json:"uptime"`
	Version    string                     `json:"version"`
	Components map[string]ComponentStatus `json:"components"`
}

// ComponentStatus represents individual component status
type ComponentStatus struct {
	Name      string        `json:"name"`
	State     string        `json:"state"`
	StartedAt time.Time     `json:"started_at"`
	Uptime    time.Duration `json:"uptime"`
	Health    string        `json:"health"`
}

// RuntimeProvider interface for runtime operations
type RuntimeProvider interface {
	Health(ctx context.Context) RuntimeHealthStatus
	GetStatus() *RuntimeStatus
}

// StatusReader exposes the in-memory health registry to the API
type StatusReader interface {
	Get(adapterID string) (types.AdapterHealthStatus, bool)
	List() []types.AdapterHealthStatus
}

// ScoreReader exposes computed health scores to the API
type ScoreReader interface {
	Score(adapterID string) (types.HealthScore, bool)
	ScoreAll() []types.HealthScore
}

// HistoryReader exposes retained score snapshots to the API
type HistoryReader interface {
	History(adapterID string) []types.HealthSnapshot
}

// AlertScanner derives the current alert set on demand
type AlertScanner interface {
	Scan() []types.HealthAlert
}

// HealthMonitor is the monitoring engine surface the API drives
type HealthMonitor interface {
	CheckAdapterNow(ctx context.Context, adapter types.MonitoredAdapter) types.HealthCheckResult
	GetStatus() monitor.MonitorStatus
	GetMetrics() monitor.MonitorMetrics
}

// Components bundles the monitoring subsystems the API exposes
type Components struct {
	Statuses StatusReader
	Scores   ScoreReader
	History  HistoryReader
	Alerts   AlertScanner
	Monitor  HealthMonitor
	Metrics  http.Handler
}
