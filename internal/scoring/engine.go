package scoring

import (
	"sync"
	"time"

	"github.com/nexbridge/adaptersentry/pkg/types"
)

// StatusSource reads current adapter health statuses from the registry
type StatusSource interface {
	Get(adapterID string) (types.AdapterHealthStatus, bool)
	List() []types.AdapterHealthStatus
}

// MetricsSource reads last-known metric gauges
type MetricsSource interface {
	QueueDepth(adapterID string) (int64, bool)
}

// PoolSource reads pooled-connection statistics
type PoolSource interface {
	GetPoolStatistics(adapterID string) types.PoolStatistics
}

// SLASource reads compliance reports
type SLASource interface {
	GetAllComplianceReports() []types.SLAComplianceReport
}

// Engine reduces registry state and external metrics into the weighted
// 0-100 health score. Scoring never fails: a missing input always takes its
// documented fallback instead of producing an error.
type Engine struct {
	statuses StatusSource
	metrics  MetricsSource
	pools    PoolSource
	sla      SLASource

	mu     sync.RWMutex
	cached map[string]types.HealthScore
	now    func() time.Time
}

// NewEngine creates a scoring engine over the given collaborators
func NewEngine(statuses StatusSource, metrics MetricsSource, pools PoolSource, sla SLASource) *Engine {
	return &Engine{
		statuses: statuses,
		metrics:  metrics,
		pools:    pools,
		sla:      sla,
		cached:   make(map[string]types.HealthScore),
		now:      time.Now,
	}
}

// Score computes and caches the current health score for one adapter
func (e *Engine) Score(adapterID string) (types.HealthScore, bool) {
	status, ok := e.statuses.Get(adapterID)
	if !ok {
		return types.HealthScore{}, false
	}

	score := e.compute(status)

	e.mu.Lock()
	e.cached[adapterID] = score
	e.mu.Unlock()

	return score, true
}

// ScoreAll recomputes scores for every monitored adapter
func (e *Engine) ScoreAll() []types.HealthScore {
	statuses := e.statuses.List()
	scores := make([]types.HealthScore, 0, len(statuses))

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, status := range statuses {
		score := e.compute(status)
		e.cached[status.AdapterID] = score
		scores = append(scores, score)
	}
	return scores
}

// Cached returns the last computed score without recomputation
func (e *Engine) Cached(adapterID string) (types.HealthScore, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	score, ok := e.cached[adapterID]
	return score, ok
}

func (e *Engine) compute(status types.AdapterHealthStatus) types.HealthScore {
	now := e.now()

	score := types.HealthScore{
		AdapterID:        status.AdapterID,
		ConnectionScore:  e.connectionScore(status, now),
		PerformanceScore: performanceScore(status.MeanResponseTimeMs()),
		ErrorScore:       errorScore(status.ErrorRatePercent()),
		ResourceScore:    e.resourceScore(status),
		SLAScore:         e.slaScore(status.Protocol),
		CalculatedAt:     now,
	}

	overall := types.WeightConnection*score.ConnectionScore +
		types.WeightPerformance*score.PerformanceScore +
		types.WeightError*score.ErrorScore +
		types.WeightResource*score.ResourceScore +
		types.WeightSLA*score.SLAScore

	score.OverallScore = clamp(overall)
	score.Status = types.StatusForScore(score.OverallScore)
	return score
}

// connectionScore bands on how recently the adapter was checked, falling
// back to last-successful-connection recency when checks have gone quiet.
func (e *Engine) connectionScore(status types.AdapterHealthStatus, now time.Time) float64 {
	if !status.LastCheckTime.IsZero() {
		age := now.Sub(status.LastCheckTime)
		if age < 5*time.Minute {
			return 100
		}
		if age < 15*time.Minute {
			return 80
		}
	}

	if !status.LastSuccessTime.IsZero() {
		age := now.Sub(status.LastSuccessTime)
		switch {
		case age < time.Hour:
			return 90
		case age < 6*time.Hour:
			return 70
		case age < 24*time.Hour:
			return 50
		}
	}

	return 20
}

func performanceScore(meanResponseMs float64) float64 {
	switch {
	case meanResponseMs <= 100:
		return 100
	case meanResponseMs <= 500:
		return 80
	case meanResponseMs <= 1000:
		return 60
	case meanResponseMs <= 5000:
		return 40
	default:
		return 20
	}
}

func errorScore(errorRatePercent float64) float64 {
	switch {
	case errorRatePercent <= 0.1:
		return 100
	case errorRatePercent <= 1:
		return 80
	case errorRatePercent <= 5:
		return 60
	case errorRatePercent <= 10:
		return 40
	default:
		return 20
	}
}

// resourceScore bands queue depth for queue-backed adapters and pool
// utilization for connection-pool adapters; everything else takes the
// neutral default of 80.
func (e *Engine) resourceScore(status types.AdapterHealthStatus) float64 {
	if status.Protocol == types.ProtocolMessageQueue && e.metrics != nil {
		if depth, ok := e.metrics.QueueDepth(status.AdapterID); ok {
			switch {
			case depth < 100:
				return 100
			case depth < 1000:
				return 80
			case depth < 10000:
				return 60
			default:
				return 40
			}
		}
	}

	if e.pools != nil {
		stats := e.pools.GetPoolStatistics(status.AdapterID)
		if stats.TotalPooled > 0 {
			utilization := stats.Utilization()
			switch {
			case utilization < 0.5:
				return 100
			case utilization < 0.7:
				return 80
			case utilization < 0.9:
				return 60
			default:
				return 40
			}
		}
	}

	return 80
}

// slaScore averages success rate and response-time compliance across the
// reports matching the adapter's type; 100 when none are defined.
func (e *Engine) slaScore(protocol types.ProtocolType) float64 {
	if e.sla == nil {
		return 100
	}

	var sum float64
	var count int
	for _, report := range e.sla.GetAllComplianceReports() {
		if report.AdapterType != protocol {
			continue
		}
		sum += (report.SuccessRate + report.ResponseTimeCompliance) / 2
		count++
	}

	if count == 0 {
		return 100
	}
	return clamp(sum / float64(count))
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
