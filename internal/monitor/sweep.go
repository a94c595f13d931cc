package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/nexbridge/adaptersentry/pkg/logger"
	"github.com/nexbridge/adaptersentry/pkg/types"
)

// runSweep checks every active adapter once, fanning out across the
// worker limit. The sweep waits up to the batch timeout for results and
// then moves on. Late checks keep running on the monitor's own context,
// their results are applied if no newer sweep has superseded them.
func (m *Monitor) runSweep(ctx context.Context) {
	sweepStart := time.Now()

	adapters, err := m.adapters.GetAdapters(ctx)
	if err != nil {
		m.logger.WithError(err).WithFields(logger.Fields{
			"operation": "sweep",
		}).Error("Failed to load adapter inventory")
		return
	}

	m.reconcile(adapters)

	var wg sync.WaitGroup
	checked := 0
	for _, adapter := range adapters {
		m.registry.Ensure(adapter)

		if !adapter.Active {
			m.registry.MarkInactive(adapter.ID)
			continue
		}

		seq := m.registry.NextSeq(adapter.ID)

		if err := m.sem.Acquire(ctx, 1); err != nil {
			m.logger.WithError(err).WithFields(logger.Fields{
				"operation": "sweep",
				"adapter":   adapter.ID,
			}).Warn("Sweep interrupted while waiting for a worker slot")
			break
		}

		checked++
		wg.Add(1)
		go func(adapter types.MonitoredAdapter, seq uint64) {
			defer wg.Done()
			defer m.sem.Release(1)
			// Run on the monitor's context so an abandoned batch does
			// not cancel the check mid-flight.
			m.checkOne(m.runCtx, adapter, seq)
		}(adapter, seq)
	}

	batchDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(batchDone)
	}()

	abandoned := false
	select {
	case <-batchDone:
	case <-time.After(m.config.BatchTimeout):
		abandoned = true
		m.logger.WithFields(logger.Fields{
			"operation":     "sweep",
			"batch_timeout": m.config.BatchTimeout.String(),
			"check_count":   checked,
		}).Warn("Sweep batch timed out, abandoning wait")
	case <-ctx.Done():
		return
	}

	m.mu.Lock()
	m.lastSweepTime = sweepStart
	m.metrics.TotalSweeps++
	if abandoned {
		m.metrics.AbandonedBatches++
	}
	m.mu.Unlock()

	m.logger.WithFields(logger.Fields{
		"operation":   "sweep",
		"adapters":    len(adapters),
		"check_count": checked,
		"abandoned":   abandoned,
		"duration":    time.Since(sweepStart).String(),
	}).Debug("Sweep completed")
}

// reconcile refreshes the known-adapter cache and drops state for
// adapters removed from the inventory
func (m *Monitor) reconcile(adapters []types.MonitoredAdapter) {
	current := make(map[string]types.MonitoredAdapter, len(adapters))
	for _, adapter := range adapters {
		current[adapter.ID] = adapter
	}

	m.mu.Lock()
	previous := m.known
	m.known = current
	m.mu.Unlock()

	for adapterID := range previous {
		if _, ok := current[adapterID]; ok {
			continue
		}
		m.registry.Remove(adapterID)
		m.observer.ForgetAdapter(adapterID)
		m.snapshots.Remove(adapterID)
		m.pools.Forget(adapterID)
		m.escalator.Forget(adapterID)

		m.logger.WithFields(logger.Fields{
			"operation": "reconcile",
			"adapter":   adapterID,
		}).Info("Adapter removed from inventory, dropping monitoring state")
	}
}

// checkOne runs a single check and applies its outcome. The adapter is
// re-read first so a deactivation or config change between the fan-out
// and the unit running is honored.
func (m *Monitor) checkOne(ctx context.Context, adapter types.MonitoredAdapter, seq uint64) {
	if current, err := m.adapters.GetAdapter(ctx, adapter.ID); err == nil && current != nil {
		adapter = *current
	}

	if !adapter.Active {
		m.registry.MarkInactive(adapter.ID)
		return
	}

	result := m.dispatcher.Check(ctx, adapter)

	applied := m.registry.ApplyResult(adapter.ID, seq, result)

	m.mu.Lock()
	m.metrics.TotalChecks++
	if !result.Healthy {
		m.metrics.FailedChecks++
	}
	if !applied {
		m.metrics.StaleResults++
	}
	m.mu.Unlock()

	if !applied {
		m.logger.WithFields(logger.Fields{
			"operation": "check",
			"adapter":   adapter.ID,
			"seq":       seq,
		}).Debug("Discarding stale check result")
		return
	}

	m.observer.ObserveCheck(adapter.ID, adapter.Protocol, result.Healthy, result.ResponseTimeMs)
	m.persist(ctx, adapter, result)

	if status, ok := m.registry.Get(adapter.ID); ok {
		m.escalator.Observe(ctx, status)
	}
}

// persist writes the check outcome to the record sink, if one is wired
func (m *Monitor) persist(ctx context.Context, adapter types.MonitoredAdapter, result types.HealthCheckResult) {
	if m.records == nil {
		return
	}

	record := &types.HealthRecord{
		AdapterID:      adapter.ID,
		Healthy:        result.Healthy,
		ResponseTimeMs: result.ResponseTimeMs,
		Error:          result.ErrorMessage,
		CheckedAt:      time.Now(),
	}
	if err := m.records.RecordHealthCheck(ctx, record); err != nil {
		m.logger.WithError(err).WithFields(logger.Fields{
			"operation": "persist",
			"adapter":   adapter.ID,
		}).Error("Failed to store health record")
	}
}

// CheckAdapterNow runs an immediate check for one adapter, outside the
// sweep cadence, and applies the result like any other check.
func (m *Monitor) CheckAdapterNow(ctx context.Context, adapter types.MonitoredAdapter) types.HealthCheckResult {
	m.logger.WithFields(logger.Fields{
		"operation": "force_check",
		"adapter":   adapter.ID,
		"protocol":  adapter.Protocol,
	}).Info("Running on-demand health check")

	m.registry.Ensure(adapter)

	if !adapter.Active {
		m.registry.MarkInactive(adapter.ID)
		return types.HealthCheckResult{Healthy: false, ErrorMessage: "adapter is inactive"}
	}

	seq := m.registry.NextSeq(adapter.ID)
	result := m.dispatcher.Check(ctx, adapter)

	if m.registry.ApplyResult(adapter.ID, seq, result) {
		m.observer.ObserveCheck(adapter.ID, adapter.Protocol, result.Healthy, result.ResponseTimeMs)
		m.persist(ctx, adapter, result)
		if status, ok := m.registry.Get(adapter.ID); ok {
			m.escalator.Observe(ctx, status)
		}
	}

	return result
}

// runAggregate refreshes the resource-level gauges that feed scoring:
// broker queue depths and connection pool statistics
func (m *Monitor) runAggregate(ctx context.Context) {
	for _, status := range m.registry.List() {
		if !status.Active {
			continue
		}

		switch status.Protocol {
		case types.ProtocolMessageQueue:
			adapter, ok := m.knownAdapter(status.AdapterID)
			if !ok || m.depths == nil {
				continue
			}
			if depth, ok := m.depths.QueueDepth(ctx, adapter); ok {
				m.observer.SetQueueDepth(status.AdapterID, depth)
			}
		case types.ProtocolDatabase, types.ProtocolGeneric:
			m.observer.SetPoolStats(status.AdapterID, m.pools.GetPoolStatistics(status.AdapterID))
		}
	}

	m.logger.WithFields(logger.Fields{
		"operation": "aggregate",
	}).Debug("Aggregate tick completed")
}

// runSnapshot scores every adapter, captures the snapshots, and prunes
// expired history and durable records
func (m *Monitor) runSnapshot(ctx context.Context) {
	scores := m.engine.ScoreAll()
	m.snapshots.Capture(scores)

	for _, score := range scores {
		m.observer.SetHealthScore(score.AdapterID, score.OverallScore)
	}

	if m.records != nil {
		cutoff := time.Now().Add(-m.config.RecordRetention)
		removed, err := m.records.DeleteOldHealthRecords(ctx, cutoff)
		if err != nil {
			m.logger.WithError(err).WithFields(logger.Fields{
				"operation": "snapshot",
			}).Error("Failed to prune old health records")
		} else if removed > 0 {
			m.logger.WithFields(logger.Fields{
				"operation": "snapshot",
				"removed":   removed,
			}).Debug("Pruned old health records")
		}
	}

	m.logger.WithFields(logger.Fields{
		"operation": "snapshot",
		"scored":    len(scores),
	}).Debug("Snapshot tick completed")
}
