package registry

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexbridge/adaptersentry/pkg/logger"
	"github.com/nexbridge/adaptersentry/pkg/types"
)

func newTestRegistry() *HealthRegistry {
	return NewHealthRegistry(logger.GetDefaultLogger().WithComponent("test"))
}

func testAdapter(id string) types.MonitoredAdapter {
	return types.MonitoredAdapter{
		ID:       id,
		Name:     "adapter-" + id,
		Protocol: types.ProtocolHTTP,
		Active:   true,
	}
}

func TestHealthRegistry_MarkHealthy(t *testing.T) {
	r := newTestRegistry()
	r.Ensure(testAdapter("a1"))

	r.MarkHealthy("a1", 50)

	status, ok := r.Get("a1")
	require.True(t, ok)
	assert.True(t, status.Healthy)
	assert.Empty(t, status.LastError)
	assert.EqualValues(t, 0, status.ConsecutiveFailures)
	assert.EqualValues(t, 1, status.TotalChecks)
	assert.EqualValues(t, 50, status.TotalResponseTimeMs)
	assert.False(t, status.LastCheckTime.IsZero())
}

func TestHealthRegistry_MarkUnhealthy(t *testing.T) {
	r := newTestRegistry()
	r.Ensure(testAdapter("a1"))

	r.MarkUnhealthy("a1", "connection refused")
	r.MarkUnhealthy("a1", "connection refused")

	status, ok := r.Get("a1")
	require.True(t, ok)
	assert.False(t, status.Healthy)
	assert.Equal(t, "connection refused", status.LastError)
	assert.EqualValues(t, 2, status.ConsecutiveFailures)
	assert.EqualValues(t, 2, status.TotalChecks)
	assert.EqualValues(t, 2, status.FailedChecks)
}

func TestHealthRegistry_MarkHealthyResetsConsecutiveFailures(t *testing.T) {
	r := newTestRegistry()
	r.Ensure(testAdapter("a1"))

	for i := 0; i < 7; i++ {
		r.MarkUnhealthy("a1", "timeout")
	}
	status, _ := r.Get("a1")
	assert.EqualValues(t, 7, status.ConsecutiveFailures)

	r.MarkHealthy("a1", 10)

	status, _ = r.Get("a1")
	assert.EqualValues(t, 0, status.ConsecutiveFailures)
	assert.True(t, status.Healthy)
}

func TestHealthRegistry_MarkInactive(t *testing.T) {
	r := newTestRegistry()
	r.Ensure(testAdapter("a1"))
	r.MarkHealthy("a1", 10)

	r.MarkInactive("a1")

	status, _ := r.Get("a1")
	assert.False(t, status.Active)
	assert.False(t, status.Healthy)
	// Counters must not move
	assert.EqualValues(t, 1, status.TotalChecks)
	assert.EqualValues(t, 0, status.FailedChecks)
}

// Invariants must hold after any mark sequence: failedChecks <= totalChecks
// and 0 <= consecutiveFailures <= totalChecks.
func TestHealthRegistry_InvariantsUnderRandomSequences(t *testing.T) {
	r := newTestRegistry()
	r.Ensure(testAdapter("a1"))

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		if rng.Intn(2) == 0 {
			r.MarkHealthy("a1", int64(rng.Intn(500)))
		} else {
			r.MarkUnhealthy("a1", "boom")
		}

		status, _ := r.Get("a1")
		require.LessOrEqual(t, status.FailedChecks, status.TotalChecks)
		require.GreaterOrEqual(t, status.ConsecutiveFailures, int64(0))
		require.LessOrEqual(t, status.ConsecutiveFailures, status.TotalChecks)
	}
}

func TestHealthRegistry_SequenceGateDropsStaleResults(t *testing.T) {
	r := newTestRegistry()
	r.Ensure(testAdapter("a1"))

	oldSeq := r.NextSeq("a1")
	newSeq := r.NextSeq("a1")

	applied := r.ApplyResult("a1", newSeq, types.HealthCheckResult{Healthy: true, ResponseTimeMs: 20})
	assert.True(t, applied)

	// A slow check dispatched earlier finishes late; its result must not
	// overwrite the newer state.
	applied = r.ApplyResult("a1", oldSeq, types.HealthCheckResult{Healthy: false, ErrorMessage: "stale"})
	assert.False(t, applied)

	status, _ := r.Get("a1")
	assert.True(t, status.Healthy)
	assert.Empty(t, status.LastError)
	assert.EqualValues(t, 1, status.TotalChecks)
}

func TestHealthRegistry_RemoveUnloadsAdapter(t *testing.T) {
	r := newTestRegistry()
	r.Ensure(testAdapter("a1"))
	r.Ensure(testAdapter("a2"))
	assert.Equal(t, 2, r.Size())

	r.Remove("a1")

	_, ok := r.Get("a1")
	assert.False(t, ok)
	assert.Equal(t, 1, r.Size())
}

func TestHealthRegistry_UnknownAdapterIsIgnored(t *testing.T) {
	r := newTestRegistry()

	// Marks against unknown ids must be no-ops, not panics
	r.MarkHealthy("ghost", 10)
	r.MarkUnhealthy("ghost", "nope")
	r.MarkInactive("ghost")

	_, ok := r.Get("ghost")
	assert.False(t, ok)
}

func TestHealthRegistry_ConcurrentMarks(t *testing.T) {
	r := newTestRegistry()
	ids := []string{"a1", "a2", "a3", "a4"}
	for _, id := range ids {
		r.Ensure(testAdapter(id))
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		for w := 0; w < 4; w++ {
			wg.Add(1)
			go func(id string, w int) {
				defer wg.Done()
				for i := 0; i < 100; i++ {
					if i%2 == 0 {
						r.MarkHealthy(id, 10)
					} else {
						r.MarkUnhealthy(id, "err")
					}
					// Concurrent reads must be safe
					r.Get(id)
					r.List()
				}
			}(id, w)
		}
	}
	wg.Wait()

	for _, id := range ids {
		status, ok := r.Get(id)
		require.True(t, ok)
		assert.EqualValues(t, 400, status.TotalChecks)
		assert.EqualValues(t, 200, status.FailedChecks)
	}
}

func TestHealthRegistry_ListSorted(t *testing.T) {
	r := newTestRegistry()
	r.Ensure(testAdapter("c"))
	r.Ensure(testAdapter("a"))
	r.Ensure(testAdapter("b"))

	list := r.List()
	require.Len(t, list, 3)
	assert.Equal(t, "a", list[0].AdapterID)
	assert.Equal(t, "b", list[1].AdapterID)
	assert.Equal(t, "c", list[2].AdapterID)
}
