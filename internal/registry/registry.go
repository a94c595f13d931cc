package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/nexbridge/adaptersentry/pkg/logger"
	"github.com/nexbridge/adaptersentry/pkg/types"
)

// HealthRegistry is the concurrent store of per-adapter health status.
// Each adapter's record carries its own lock; there is no cross-adapter
// locking, so dashboard reads never contend with another adapter's update.
type HealthRegistry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	logger  *logger.Entry
}

// entry pairs a status record with its lock and the sequence gate used to
// drop late results from abandoned checks.
type entry struct {
	mu         sync.Mutex
	status     types.AdapterHealthStatus
	issuedSeq  uint64
	appliedSeq uint64
}

// NewHealthRegistry creates an empty registry
func NewHealthRegistry(parentLogger *logger.Entry) *HealthRegistry {
	return &HealthRegistry{
		entries: make(map[string]*entry),
		logger: parentLogger.WithFields(logger.Fields{
			"component": "registry",
		}),
	}
}

// Ensure creates the record for an adapter if it is not yet monitored and
// refreshes its name, protocol and active flag from the latest snapshot.
func (r *HealthRegistry) Ensure(adapter types.MonitoredAdapter) {
	r.mu.Lock()
	e, ok := r.entries[adapter.ID]
	if !ok {
		e = &entry{
			status: types.AdapterHealthStatus{
				AdapterID: adapter.ID,
			},
		}
		r.entries[adapter.ID] = e
		r.logger.WithAdapter(adapter.ID).WithOperation("ensure").Debug("Adapter loaded into monitoring")
	}
	r.mu.Unlock()

	e.mu.Lock()
	e.status.AdapterName = adapter.Name
	e.status.Protocol = adapter.Protocol
	e.status.Active = adapter.Active
	e.mu.Unlock()
}

// Remove unloads an adapter from monitoring. This is the only way a record
// is ever deleted.
func (r *HealthRegistry) Remove(adapterID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[adapterID]; ok {
		delete(r.entries, adapterID)
		r.logger.WithAdapter(adapterID).WithOperation("remove").Info("Adapter unloaded from monitoring")
	}
}

// NextSeq issues the sequence number for an adapter's next check. Results
// are applied in sequence order; a result that arrives after a newer one has
// been applied is dropped.
func (r *HealthRegistry) NextSeq(adapterID string) uint64 {
	e := r.get(adapterID)
	if e == nil {
		return 0
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.issuedSeq++
	return e.issuedSeq
}

// MarkHealthy records a successful check: clears the error, resets the
// consecutive-failure count and accumulates response time.
func (r *HealthRegistry) MarkHealthy(adapterID string, responseTimeMs int64) {
	r.apply(adapterID, 0, func(s *types.AdapterHealthStatus) {
		now := time.Now()
		s.Healthy = true
		s.LastError = ""
		s.ConsecutiveFailures = 0
		s.TotalChecks++
		s.TotalResponseTimeMs += responseTimeMs
		s.LastCheckTime = now
		s.LastSuccessTime = now
	})
}

// MarkUnhealthy records a failed check
func (r *HealthRegistry) MarkUnhealthy(adapterID string, errMsg string) {
	r.apply(adapterID, 0, func(s *types.AdapterHealthStatus) {
		s.Healthy = false
		s.LastError = errMsg
		s.ConsecutiveFailures++
		s.TotalChecks++
		s.FailedChecks++
		s.LastCheckTime = time.Now()
	})
}

// MarkInactive flags an adapter whose active flag was cleared in the
// adapter store. Counters are not touched.
func (r *HealthRegistry) MarkInactive(adapterID string) {
	r.apply(adapterID, 0, func(s *types.AdapterHealthStatus) {
		s.Active = false
		s.Healthy = false
	})
}

// ApplyResult applies a check result issued under seq. Results superseded by
// a newer applied sequence are dropped; seq 0 bypasses the gate (force
// checks that never reserved a sequence).
func (r *HealthRegistry) ApplyResult(adapterID string, seq uint64, result types.HealthCheckResult) bool {
	applied := false
	mutate := func(s *types.AdapterHealthStatus) {
		applied = true
		now := time.Now()
		s.LastCheckTime = now
		s.TotalChecks++
		if result.Healthy {
			s.Healthy = true
			s.LastError = ""
			s.ConsecutiveFailures = 0
			s.TotalResponseTimeMs += result.ResponseTimeMs
			s.LastSuccessTime = now
		} else {
			s.Healthy = false
			s.LastError = result.ErrorMessage
			s.ConsecutiveFailures++
			s.FailedChecks++
		}
	}
	r.apply(adapterID, seq, mutate)
	return applied
}

// Get returns a copy of an adapter's current status
func (r *HealthRegistry) Get(adapterID string) (types.AdapterHealthStatus, bool) {
	e := r.get(adapterID)
	if e == nil {
		return types.AdapterHealthStatus{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status, true
}

// List returns copies of all current statuses sorted by adapter id
func (r *HealthRegistry) List() []types.AdapterHealthStatus {
	r.mu.RLock()
	entries := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	statuses := make([]types.AdapterHealthStatus, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		statuses = append(statuses, e.status)
		e.mu.Unlock()
	}

	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].AdapterID < statuses[j].AdapterID
	})
	return statuses
}

// Size returns the number of monitored adapters
func (r *HealthRegistry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func (r *HealthRegistry) get(adapterID string) *entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[adapterID]
}

func (r *HealthRegistry) apply(adapterID string, seq uint64, mutate func(*types.AdapterHealthStatus)) {
	e := r.get(adapterID)
	if e == nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if seq > 0 {
		if seq <= e.appliedSeq {
			r.logger.WithAdapter(adapterID).WithFields(logger.Fields{
				"operation":   "apply",
				"seq":         seq,
				"applied_seq": e.appliedSeq,
			}).Debug("Dropping stale check result")
			return
		}
		e.appliedSeq = seq
	}

	mutate(&e.status)
}
