package checker

import (
	"context"
	"fmt"
	"time"

	"github.com/nexbridge/adaptersentry/pkg/logger"
	"github.com/nexbridge/adaptersentry/pkg/types"
)

// CheckFunc probes one adapter's external endpoint. Implementations are
// stateless with respect to the adapter: they read only the passed config,
// cap themselves at the supplied timeout, and convert every failure into an
// unhealthy result instead of returning an error.
type CheckFunc func(ctx context.Context, adapter types.MonitoredAdapter, timeout time.Duration) types.HealthCheckResult

// PoolStatsProvider reports pooled-connection counts for the generic check
type PoolStatsProvider interface {
	GetPoolStatistics(adapterID string) types.PoolStatistics
}

// PoolReporter receives connection lifecycle events from the strategies that
// open real connections, so pool utilization reflects check activity
type PoolReporter interface {
	SetPooled(adapterID string, pooled int64)
	ConnectionOpened(adapterID string)
	ConnectionClosed(adapterID string)
}

// PoolTracker is the full pool surface the default strategy set needs
type PoolTracker interface {
	PoolStatsProvider
	PoolReporter
}

// Dispatcher selects the check strategy by protocol type and guarantees the
// caller a structured result: a missing strategy falls back to the generic
// check, and a panicking strategy is converted into an unhealthy result.
type Dispatcher struct {
	strategies map[types.ProtocolType]CheckFunc
	fallback   CheckFunc
	timeout    time.Duration
	logger     *logger.Entry
}

// NewDispatcher creates a dispatcher with the default per-check timeout.
// Strategies are registered separately so adding a protocol never touches
// the dispatch path.
func NewDispatcher(timeout time.Duration, fallback CheckFunc, parentLogger *logger.Entry) *Dispatcher {
	return &Dispatcher{
		strategies: make(map[types.ProtocolType]CheckFunc),
		fallback:   fallback,
		timeout:    timeout,
		logger: parentLogger.WithFields(logger.Fields{
			"component": "checker",
			"module":    "dispatcher",
		}),
	}
}

// Register installs the check strategy for a protocol type
func (d *Dispatcher) Register(protocol types.ProtocolType, fn CheckFunc) {
	d.strategies[protocol] = fn
}

// Registered reports whether a protocol has a dedicated strategy
func (d *Dispatcher) Registered(protocol types.ProtocolType) bool {
	_, ok := d.strategies[protocol]
	return ok
}

// Check runs the adapter's strategy under the per-check timeout. It never
// returns an error and never panics: any failure mode, including a strategy
// implementation bug, yields an unhealthy result carrying the elapsed time.
func (d *Dispatcher) Check(ctx context.Context, adapter types.MonitoredAdapter) (result types.HealthCheckResult) {
	start := time.Now()

	defer func() {
		if rec := recover(); rec != nil {
			d.logger.WithAdapter(adapter.ID).WithFields(logger.Fields{
				"operation": "check",
				"panic":     fmt.Sprintf("%v", rec),
			}).Error("Check strategy panicked")
			result = unhealthySince(start, fmt.Sprintf("health check panicked: %v", rec))
		}
	}()

	fn, ok := d.strategies[adapter.Protocol]
	if !ok {
		d.logger.WithAdapter(adapter.ID).WithFields(logger.Fields{
			"operation": "check",
			"protocol":  string(adapter.Protocol),
		}).Debug("No strategy for protocol, using generic check")
		fn = d.fallback
	}

	checkCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	result = fn(checkCtx, adapter, d.timeout)
	return result
}

// Timeout returns the per-check timeout the dispatcher enforces
func (d *Dispatcher) Timeout() time.Duration {
	return d.timeout
}

// healthySince builds a healthy result stamped with the elapsed time
func healthySince(start time.Time) types.HealthCheckResult {
	return types.HealthCheckResult{
		Healthy:        true,
		ResponseTimeMs: time.Since(start).Milliseconds(),
	}
}

// unhealthySince builds an unhealthy result stamped with the elapsed time
func unhealthySince(start time.Time, message string) types.HealthCheckResult {
	return types.HealthCheckResult{
		Healthy:        false,
		ResponseTimeMs: time.Since(start).Milliseconds(),
		ErrorMessage:   message,
	}
}
