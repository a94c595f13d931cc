package pool

import (
	"sync"

	"github.com/nexbridge/adaptersentry/pkg/types"
)

// Manager tracks pooled-connection counts per adapter. Connection-owning
// components report opens, closes and pool sizing; the scoring engine and
// the generic check only ever read the snapshot.
type Manager struct {
	mu    sync.RWMutex
	stats map[string]*counters
}

type counters struct {
	active int64
	pooled int64
}

// NewManager creates an empty pool manager
func NewManager() *Manager {
	return &Manager{
		stats: make(map[string]*counters),
	}
}

// SetPooled records the configured pool size for an adapter
func (m *Manager) SetPooled(adapterID string, pooled int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entry(adapterID).pooled = pooled
}

// ConnectionOpened records one more active connection for an adapter
func (m *Manager) ConnectionOpened(adapterID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entry(adapterID).active++
}

// ConnectionClosed records one less active connection for an adapter
func (m *Manager) ConnectionClosed(adapterID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.entry(adapterID)
	if c.active > 0 {
		c.active--
	}
}

// GetPoolStatistics returns the current counts for an adapter. Unknown
// adapters report zero statistics rather than an error.
func (m *Manager) GetPoolStatistics(adapterID string) types.PoolStatistics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.stats[adapterID]
	if !ok {
		return types.PoolStatistics{}
	}
	return types.PoolStatistics{
		TotalActive: c.active,
		TotalPooled: c.pooled,
	}
}

// Forget drops an adapter's counters when it is unloaded
func (m *Manager) Forget(adapterID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stats, adapterID)
}

// entry must be called with the lock held
func (m *Manager) entry(adapterID string) *counters {
	c, ok := m.stats[adapterID]
	if !ok {
		c = &counters{}
		m.stats[adapterID] = c
	}
	return c
}
