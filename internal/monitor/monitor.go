package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/nexbridge/adaptersentry/internal/checker"
	"github.com/nexbridge/adaptersentry/internal/metrics"
	"github.com/nexbridge/adaptersentry/internal/pool"
	"github.com/nexbridge/adaptersentry/internal/registry"
	"github.com/nexbridge/adaptersentry/internal/scoring"
	"github.com/nexbridge/adaptersentry/pkg/logger"
	"github.com/nexbridge/adaptersentry/pkg/types"
)

// AdapterSource supplies the monitored adapter inventory
type AdapterSource interface {
	// GetAdapters returns every configured adapter, active or not
	GetAdapters(ctx context.Context) ([]types.MonitoredAdapter, error)
	// GetAdapter returns one adapter's current configuration
	GetAdapter(ctx context.Context, adapterID string) (*types.MonitoredAdapter, error)
}

// RecordSink persists check outcomes. Sink failures never fail a check,
// they are logged and swallowed.
type RecordSink interface {
	RecordHealthCheck(ctx context.Context, record *types.HealthRecord) error
	UpdateAdapterHealthFlag(ctx context.Context, adapterID string, healthy bool) error
	DeleteOldHealthRecords(ctx context.Context, before time.Time) (int64, error)
}

// QueueDepthProvider reads broker queue depth for message-queue adapters
type QueueDepthProvider interface {
	QueueDepth(ctx context.Context, adapter types.MonitoredAdapter) (int64, bool)
}

// MonitorStatus represents the current status of the monitor
type MonitorStatus struct {
	Running       bool      `json:"running"`
	StartTime     time.Time `json:"start_time,omitempty"`
	LastSweepTime time.Time `json:"last_sweep_time,omitempty"`
	AdapterCount  int       `json:"adapter_count"`
	WorkerLimit   int       `json:"worker_limit"`
}

// MonitorMetrics represents monitoring performance counters
type MonitorMetrics struct {
	TotalSweeps      int64         `json:"total_sweeps"`
	TotalChecks      int64         `json:"total_checks"`
	FailedChecks     int64         `json:"failed_checks"`
	StaleResults     int64         `json:"stale_results"`
	AbandonedBatches int64         `json:"abandoned_batches"`
	Escalations      int64         `json:"escalations"`
	Uptime           time.Duration `json:"uptime"`
}

// GetDefaultMonitorConfig returns default monitoring configuration
func GetDefaultMonitorConfig() types.MonitorConfig {
	return types.MonitorConfig{
		CheckInterval:     30 * time.Second,
		CheckTimeout:      10 * time.Second,
		BatchTimeout:      20 * time.Second,
		FailureThreshold:  3,
		MaxWorkers:        10,
		AggregateInterval: 60 * time.Second,
		SnapshotInterval:  5 * time.Minute,
		SnapshotRetention: 24 * time.Hour,
		RecordRetention:   7 * 24 * time.Hour,
		EscalationPolicy:  types.EscalateWhileAbove,
	}
}

// normalizeConfig fills unset fields with defaults
func normalizeConfig(config types.MonitorConfig) types.MonitorConfig {
	defaults := GetDefaultMonitorConfig()

	if config.CheckInterval <= 0 {
		config.CheckInterval = defaults.CheckInterval
	}
	if config.CheckTimeout <= 0 {
		config.CheckTimeout = defaults.CheckTimeout
	}
	if config.BatchTimeout <= 0 {
		config.BatchTimeout = 2 * config.CheckTimeout
	}
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = defaults.FailureThreshold
	}
	if config.MaxWorkers <= 0 {
		config.MaxWorkers = defaults.MaxWorkers
	}
	if config.AggregateInterval <= 0 {
		config.AggregateInterval = defaults.AggregateInterval
	}
	if config.SnapshotInterval <= 0 {
		config.SnapshotInterval = defaults.SnapshotInterval
	}
	if config.SnapshotRetention <= 0 {
		config.SnapshotRetention = defaults.SnapshotRetention
	}
	if config.RecordRetention <= 0 {
		config.RecordRetention = defaults.RecordRetention
	}
	if config.EscalationPolicy == "" {
		config.EscalationPolicy = defaults.EscalationPolicy
	}
	return config
}

// Monitor drives the periodic health sweep over all configured adapters
// and the aggregate and snapshot ticks derived from it.
type Monitor struct {
	config     types.MonitorConfig
	adapters   AdapterSource
	records    RecordSink
	registry   *registry.HealthRegistry
	dispatcher *checker.Dispatcher
	depths     QueueDepthProvider
	pools      *pool.Manager
	observer   *metrics.Registry
	engine     *scoring.Engine
	snapshots  *scoring.SnapshotStore
	escalator  *Escalator
	sem        *semaphore.Weighted
	logger     *logger.Entry

	mu            sync.RWMutex
	running       bool
	startTime     time.Time
	lastSweepTime time.Time
	known         map[string]types.MonitoredAdapter
	metrics       MonitorMetrics
	runCtx        context.Context
	runCancel     context.CancelFunc
	stopChan      chan struct{}
}

// NewMonitor creates a monitor over the given collaborators. The record
// sink and queue-depth provider may be nil.
func NewMonitor(config types.MonitorConfig, adapters AdapterSource, records RecordSink,
	healthRegistry *registry.HealthRegistry, dispatcher *checker.Dispatcher,
	depths QueueDepthProvider, pools *pool.Manager, observer *metrics.Registry,
	engine *scoring.Engine, snapshots *scoring.SnapshotStore, parentLogger *logger.Entry) *Monitor {

	config = normalizeConfig(config)

	entry := parentLogger.WithFields(logger.Fields{
		"component": "monitor",
	})

	return &Monitor{
		config:     config,
		adapters:   adapters,
		records:    records,
		registry:   healthRegistry,
		dispatcher: dispatcher,
		depths:     depths,
		pools:      pools,
		observer:   observer,
		engine:     engine,
		snapshots:  snapshots,
		escalator:  NewEscalator(config.FailureThreshold, config.EscalationPolicy, records, entry),
		sem:        semaphore.NewWeighted(int64(config.MaxWorkers)),
		logger:     entry,
		known:      make(map[string]types.MonitoredAdapter),
		stopChan:   make(chan struct{}),
	}
}

// Start begins the monitoring loops
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return fmt.Errorf("monitor is already running")
	}

	m.logger.WithFields(logger.Fields{
		"operation":         "start",
		"check_interval":    m.config.CheckInterval.String(),
		"check_timeout":     m.config.CheckTimeout.String(),
		"batch_timeout":     m.config.BatchTimeout.String(),
		"max_workers":       m.config.MaxWorkers,
		"failure_threshold": m.config.FailureThreshold,
		"escalation_policy": m.config.EscalationPolicy,
	}).Info("Starting monitor")

	m.running = true
	m.startTime = time.Now()
	m.runCtx, m.runCancel = context.WithCancel(context.Background())

	go m.run(ctx)

	return nil
}

// Stop gracefully stops the monitoring loops. Checks already in flight
// are cancelled.
func (m *Monitor) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return nil
	}

	m.logger.WithFields(logger.Fields{
		"operation": "stop",
	}).Info("Stopping monitor")

	m.running = false
	m.runCancel()
	close(m.stopChan)

	m.logger.Info("Monitor stopped")
	return nil
}

// run is the main monitoring loop
func (m *Monitor) run(ctx context.Context) {
	m.logger.Info("Monitor main loop started")

	checkTicker := time.NewTicker(m.config.CheckInterval)
	defer checkTicker.Stop()
	aggregateTicker := time.NewTicker(m.config.AggregateInterval)
	defer aggregateTicker.Stop()
	snapshotTicker := time.NewTicker(m.config.SnapshotInterval)
	defer snapshotTicker.Stop()

	// Prime state before the first tick fires
	m.runSweep(ctx)

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Monitor stopped due to context cancellation")
			return
		case <-m.stopChan:
			return
		case <-checkTicker.C:
			m.runSweep(ctx)
		case <-aggregateTicker.C:
			m.runAggregate(ctx)
		case <-snapshotTicker.C:
			m.runSnapshot(ctx)
		}
	}
}

// GetStatus returns the current status of the monitor
func (m *Monitor) GetStatus() MonitorStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return MonitorStatus{
		Running:       m.running,
		StartTime:     m.startTime,
		LastSweepTime: m.lastSweepTime,
		AdapterCount:  len(m.known),
		WorkerLimit:   m.config.MaxWorkers,
	}
}

// GetMetrics returns monitoring counters
func (m *Monitor) GetMetrics() MonitorMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	metrics := m.metrics
	metrics.Escalations = m.escalator.Count()
	if m.running {
		metrics.Uptime = time.Since(m.startTime)
	}
	return metrics
}

// Config returns the normalized monitor configuration
func (m *Monitor) Config() types.MonitorConfig {
	return m.config
}

// knownAdapter returns the adapter seen on the last sweep
func (m *Monitor) knownAdapter(adapterID string) (types.MonitoredAdapter, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	adapter, ok := m.known[adapterID]
	return adapter, ok
}
