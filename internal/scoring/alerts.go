package scoring

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/nexbridge/adaptersentry/pkg/types"
)

// Alert condition thresholds
const (
	alertErrorRatePercent  = 10.0
	alertMeanResponseMs    = 5000.0
	alertPoolUtilization   = 0.8
	alertSLAScore          = 80.0
)

// Alerter derives alerts on demand from current registry state and scores.
// Nothing is persisted; each scan builds the list fresh.
type Alerter struct {
	statuses StatusSource
	engine   *Engine
	pools    PoolSource
	now      func() time.Time
}

// NewAlerter creates an alerter over the given sources
func NewAlerter(statuses StatusSource, engine *Engine, pools PoolSource) *Alerter {
	return &Alerter{
		statuses: statuses,
		engine:   engine,
		pools:    pools,
		now:      time.Now,
	}
}

// Scan evaluates every adapter against the alert conditions and returns one
// alert per triggered condition, sorted by severity descending then
// timestamp descending.
func (a *Alerter) Scan() []types.HealthAlert {
	now := a.now()
	var alerts []types.HealthAlert

	emit := func(adapterID, alertType, message string, severity types.AlertSeverity) {
		alerts = append(alerts, types.HealthAlert{
			ID:        uuid.NewString(),
			AdapterID: adapterID,
			AlertType: alertType,
			Message:   message,
			Severity:  severity,
			Timestamp: now,
		})
	}

	for _, status := range a.statuses.List() {
		if !status.Active {
			emit(status.AdapterID, "ADAPTER_INACTIVE",
				fmt.Sprintf("adapter %s is inactive", status.AdapterName),
				types.SeverityWarning)
		}

		if rate := status.ErrorRatePercent(); rate > alertErrorRatePercent {
			emit(status.AdapterID, "HIGH_ERROR_RATE",
				fmt.Sprintf("error rate %.1f%% exceeds %.0f%%", rate, alertErrorRatePercent),
				types.SeverityCritical)
		}

		if mean := status.MeanResponseTimeMs(); mean > alertMeanResponseMs {
			emit(status.AdapterID, "SLOW_RESPONSE",
				fmt.Sprintf("mean response time %.0fms exceeds %.0fms", mean, alertMeanResponseMs),
				types.SeverityWarning)
		}

		if a.pools != nil {
			stats := a.pools.GetPoolStatistics(status.AdapterID)
			if stats.TotalPooled > 0 && stats.Utilization() > alertPoolUtilization {
				emit(status.AdapterID, "HIGH_RESOURCE_UTILIZATION",
					fmt.Sprintf("pool utilization %.0f%% exceeds %.0f%%",
						stats.Utilization()*100, alertPoolUtilization*100),
					types.SeverityWarning)
			}
		}

		if score, ok := a.engine.Score(status.AdapterID); ok && score.SLAScore < alertSLAScore {
			emit(status.AdapterID, "SLA_BREACH",
				fmt.Sprintf("SLA score %.0f below %.0f", score.SLAScore, alertSLAScore),
				types.SeverityCritical)
		}
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		if alerts[i].Severity != alerts[j].Severity {
			return alerts[i].Severity > alerts[j].Severity
		}
		return alerts[i].Timestamp.After(alerts[j].Timestamp)
	})
	return alerts
}
