package types

import (
	"time"
)

// HealthCheckResult is the ephemeral outcome of a single protocol check.
// It is produced once per check, applied to the registry, and never stored
// by reference.
type HealthCheckResult struct {
	Healthy        bool   `json:"healthy"`
	ResponseTimeMs int64  `json:"response_time_ms"`
	ErrorMessage   string `json:"error_message,omitempty"`
}

// AdapterHealthStatus is the mutable per-adapter record owned by the health
// registry. It is mutated exclusively through the registry's mark operations.
type AdapterHealthStatus struct {
	AdapterID   string       `json:"adapter_id"`
	AdapterName string       `json:"adapter_name"`
	Protocol    ProtocolType `json:"protocol"`

	Healthy             bool      `json:"healthy"`
	Active              bool      `json:"active"`
	LastCheckTime       time.Time `json:"last_check_time,omitempty"`
	LastSuccessTime     time.Time `json:"last_success_time,omitempty"`
	LastError           string    `json:"last_error,omitempty"`
	ConsecutiveFailures int64     `json:"consecutive_failures"`
	TotalChecks         int64     `json:"total_checks"`
	FailedChecks        int64     `json:"failed_checks"`
	TotalResponseTimeMs int64     `json:"total_response_time_ms"`
}

// MeanResponseTimeMs returns the average response time across all checks
func (s *AdapterHealthStatus) MeanResponseTimeMs() float64 {
	if s.TotalChecks == 0 {
		return 0
	}
	return float64(s.TotalResponseTimeMs) / float64(s.TotalChecks)
}

// ErrorRatePercent returns the failed-check ratio as a percentage
func (s *AdapterHealthStatus) ErrorRatePercent() float64 {
	if s.TotalChecks == 0 {
		return 0
	}
	return float64(s.FailedChecks) / float64(s.TotalChecks) * 100.0
}

// HealthStatusLabel is the banded classification of an overall score
type HealthStatusLabel string

const (
	StatusHealthy  HealthStatusLabel = "HEALTHY"
	StatusWarning  HealthStatusLabel = "WARNING"
	StatusCritical HealthStatusLabel = "CRITICAL"
)

// StatusForScore maps an overall score onto its status band.
// Bands are total and non-overlapping: >=80 HEALTHY, >=60 WARNING, else CRITICAL.
func StatusForScore(score float64) HealthStatusLabel {
	switch {
	case score >= 80:
		return StatusHealthy
	case score >= 60:
		return StatusWarning
	default:
		return StatusCritical
	}
}

// Sub-score weights for the overall health score
const (
	WeightConnection  = 0.30
	WeightPerformance = 0.25
	WeightError       = 0.25
	WeightResource    = 0.10
	WeightSLA         = 0.10
)

// HealthScore is the weighted composite computed by the scoring engine.
// It is overwritten whole on each recomputation, never partially updated.
type HealthScore struct {
	AdapterID        string            `json:"adapter_id"`
	ConnectionScore  float64           `json:"connection_score"`
	PerformanceScore float64           `json:"performance_score"`
	ErrorScore       float64           `json:"error_score"`
	ResourceScore    float64           `json:"resource_score"`
	SLAScore         float64           `json:"sla_score"`
	OverallScore     float64           `json:"overall_score"`
	Status           HealthStatusLabel `json:"status"`
	CalculatedAt     time.Time         `json:"calculated_at"`
}

// HealthSnapshot is an immutable (timestamp, score, status) sample retained
// for trend display and pruned after 24 hours.
type HealthSnapshot struct {
	Timestamp time.Time         `json:"timestamp"`
	Score     int               `json:"score"`
	Status    HealthStatusLabel `json:"status"`
}

// AlertSeverity orders alert conditions for presentation
type AlertSeverity int

const (
	SeverityInfo AlertSeverity = iota
	SeverityWarning
	SeverityCritical
)

func (s AlertSeverity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityWarning:
		return "warning"
	default:
		return "info"
	}
}

// HealthAlert is derived fresh on each alert query from current registry and
// scoring state; it is never mutated after creation.
type HealthAlert struct {
	ID        string        `json:"id"`
	AdapterID string        `json:"adapter_id"`
	AlertType string        `json:"alert_type"`
	Message   string        `json:"message"`
	Severity  AlertSeverity `json:"severity"`
	Timestamp time.Time     `json:"timestamp"`
}

// HealthRecord is the durable form of a check outcome written by the
// escalation handler.
type HealthRecord struct {
	ID             int64     `db:"id" json:"id"`
	AdapterID      string    `db:"adapter_id" json:"adapter_id"`
	Healthy        bool      `db:"healthy" json:"healthy"`
	ResponseTimeMs int64     `db:"response_time_ms" json:"response_time_ms"`
	Error          string    `db:"error" json:"error,omitempty"`
	CheckedAt      time.Time `db:"checked_at" json:"checked_at"`
}

// PoolStatistics reports pooled-connection counts for one adapter
type PoolStatistics struct {
	TotalActive int64 `json:"total_active"`
	TotalPooled int64 `json:"total_pooled"`
}

// Utilization returns active/pooled, or zero when nothing is pooled
func (p PoolStatistics) Utilization() float64 {
	if p.TotalPooled == 0 {
		return 0
	}
	return float64(p.TotalActive) / float64(p.TotalPooled)
}

// SLAComplianceReport is one compliance measurement for an adapter type
type SLAComplianceReport struct {
	AdapterType            ProtocolType `yaml:"adapter_type" json:"adapter_type"`
	SuccessRate            float64      `yaml:"success_rate" json:"success_rate"`
	ResponseTimeCompliance float64      `yaml:"response_time_compliance" json:"response_time_compliance"`
}
