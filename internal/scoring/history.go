package scoring

import (
	"sync"
	"time"

	"github.com/nexbridge/adaptersentry/pkg/types"
)

// SnapshotStore retains per-adapter (timestamp, score, status) samples for
// trend display. Appends and pruning are per adapter; there is no
// cross-adapter contention.
type SnapshotStore struct {
	mu        sync.RWMutex
	history   map[string][]types.HealthSnapshot
	retention time.Duration
	now       func() time.Time
}

// NewSnapshotStore creates a store with the given retention window
func NewSnapshotStore(retention time.Duration) *SnapshotStore {
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	return &SnapshotStore{
		history:   make(map[string][]types.HealthSnapshot),
		retention: retention,
		now:       time.Now,
	}
}

// Capture appends one sample per score and prunes expired entries in the
// same cycle.
func (s *SnapshotStore) Capture(scores []types.HealthScore) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, score := range scores {
		s.history[score.AdapterID] = append(s.history[score.AdapterID], types.HealthSnapshot{
			Timestamp: now,
			Score:     int(score.OverallScore),
			Status:    score.Status,
		})
	}
	s.pruneLocked(now)
}

// Prune drops entries older than the retention window. Running it twice in
// a row with no new appends retains the identical set.
func (s *SnapshotStore) Prune() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(s.now())
}

func (s *SnapshotStore) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.retention)
	for adapterID, snapshots := range s.history {
		// Snapshots are appended in time order; find the first retained one
		idx := 0
		for idx < len(snapshots) && !snapshots[idx].Timestamp.After(cutoff) {
			idx++
		}
		if idx == 0 {
			continue
		}
		if idx == len(snapshots) {
			delete(s.history, adapterID)
			continue
		}
		retained := make([]types.HealthSnapshot, len(snapshots)-idx)
		copy(retained, snapshots[idx:])
		s.history[adapterID] = retained
	}
}

// History returns a copy of an adapter's retained samples, oldest first
func (s *SnapshotStore) History(adapterID string) []types.HealthSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshots := s.history[adapterID]
	out := make([]types.HealthSnapshot, len(snapshots))
	copy(out, snapshots)
	return out
}

// Remove drops an adapter's history when it is unloaded
func (s *SnapshotStore) Remove(adapterID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.history, adapterID)
}
