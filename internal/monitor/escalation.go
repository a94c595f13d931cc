package monitor

import (
	"context"
	"sync"

	"github.com/nexbridge/adaptersentry/pkg/logger"
	"github.com/nexbridge/adaptersentry/pkg/types"
)

// Escalator raises adapter failure streaks to operator attention once
// they reach the configured threshold.
//
// Two policies are supported. With EscalateOnCross an adapter escalates
// once, on the check that brings its streak to exactly the threshold.
// With EscalateWhileAbove every failed check at or beyond the threshold
// escalates again, so a persistently down adapter keeps surfacing.
type Escalator struct {
	threshold int64
	policy    string
	records   RecordSink
	logger    *logger.Entry

	mu        sync.Mutex
	escalated map[string]bool
	count     int64
}

// NewEscalator creates an escalator. The record sink may be nil.
func NewEscalator(threshold int64, policy string, records RecordSink, parentLogger *logger.Entry) *Escalator {
	return &Escalator{
		threshold: threshold,
		policy:    policy,
		records:   records,
		logger: parentLogger.WithFields(logger.Fields{
			"module": "escalator",
		}),
		escalated: make(map[string]bool),
	}
}

// Observe inspects an adapter's status after an applied check outcome
// and escalates or clears as the streak dictates. Returns true when an
// escalation fired.
func (e *Escalator) Observe(ctx context.Context, status types.AdapterHealthStatus) bool {
	if status.Healthy {
		e.clear(ctx, status)
		return false
	}

	if status.ConsecutiveFailures < e.threshold {
		return false
	}

	fire := status.ConsecutiveFailures == e.threshold || e.policy == types.EscalateWhileAbove

	e.mu.Lock()
	alreadyEscalated := e.escalated[status.AdapterID]
	if fire {
		e.escalated[status.AdapterID] = true
		e.count++
	}
	e.mu.Unlock()

	if !fire {
		return false
	}

	e.logger.WithFields(logger.Fields{
		"operation":            "escalate",
		"adapter":              status.AdapterID,
		"protocol":             status.Protocol,
		"consecutive_failures": status.ConsecutiveFailures,
		"threshold":            e.threshold,
		"last_error":           status.LastError,
	}).Error("Adapter failure streak reached escalation threshold")

	if e.records != nil && !alreadyEscalated {
		if err := e.records.UpdateAdapterHealthFlag(ctx, status.AdapterID, false); err != nil {
			e.logger.WithError(err).WithFields(logger.Fields{
				"operation": "escalate",
				"adapter":   status.AdapterID,
			}).Error("Failed to flag adapter unhealthy in storage")
		}
	}

	return true
}

// clear resets escalation state once the adapter recovers
func (e *Escalator) clear(ctx context.Context, status types.AdapterHealthStatus) {
	e.mu.Lock()
	wasEscalated := e.escalated[status.AdapterID]
	delete(e.escalated, status.AdapterID)
	e.mu.Unlock()

	if !wasEscalated {
		return
	}

	e.logger.WithFields(logger.Fields{
		"operation": "recover",
		"adapter":   status.AdapterID,
		"protocol":  status.Protocol,
	}).Info("Adapter recovered after escalation")

	if e.records != nil {
		if err := e.records.UpdateAdapterHealthFlag(ctx, status.AdapterID, true); err != nil {
			e.logger.WithError(err).WithFields(logger.Fields{
				"operation": "recover",
				"adapter":   status.AdapterID,
			}).Error("Failed to flag adapter healthy in storage")
		}
	}
}

// Forget drops escalation state for a removed adapter
func (e *Escalator) Forget(adapterID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.escalated, adapterID)
}

// Escalated reports whether an adapter is currently escalated
func (e *Escalator) Escalated(adapterID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.escalated[adapterID]
}

// Count returns the total number of escalations fired
func (e *Escalator) Count() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.count
}
