package checker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexbridge/adaptersentry/internal/pool"
	"github.com/nexbridge/adaptersentry/pkg/logger"
	"github.com/nexbridge/adaptersentry/pkg/types"
)

func testLogger() *logger.Entry {
	return logger.GetDefaultLogger().WithComponent("test")
}

func adapterWith(protocol types.ProtocolType, config map[string]string) types.MonitoredAdapter {
	return types.MonitoredAdapter{
		ID:       "test-adapter",
		Name:     "Test Adapter",
		Protocol: protocol,
		Active:   true,
		Config:   config,
	}
}

func TestHTTPCheck_Healthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	check := NewHTTPCheck()
	result := check.Check(context.Background(), adapterWith(types.ProtocolHTTP, map[string]string{
		"endpoint":    server.URL,
		"health_path": "/health",
	}), 5*time.Second)

	assert.True(t, result.Healthy)
	assert.Empty(t, result.ErrorMessage)
	assert.GreaterOrEqual(t, result.ResponseTimeMs, int64(0))
}

func TestHTTPCheck_UnhealthyStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	check := NewHTTPCheck()
	result := check.Check(context.Background(), adapterWith(types.ProtocolHTTP, map[string]string{
		"endpoint": server.URL,
	}), 5*time.Second)

	assert.False(t, result.Healthy)
	assert.Contains(t, result.ErrorMessage, "503")
}

func TestHTTPCheck_BasicAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "svc" || pass != "s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	check := NewHTTPCheck()
	result := check.Check(context.Background(), adapterWith(types.ProtocolHTTP, map[string]string{
		"endpoint": server.URL,
		"username": "svc",
		"password": "s3cret",
	}), 5*time.Second)

	assert.True(t, result.Healthy)
}

func TestHTTPCheck_MissingEndpoint(t *testing.T) {
	check := NewHTTPCheck()
	result := check.Check(context.Background(), adapterWith(types.ProtocolHTTP, nil), 5*time.Second)

	assert.False(t, result.Healthy)
	assert.Contains(t, result.ErrorMessage, "no endpoint configured")
}

func TestHTTPCheck_ConnectionRefused(t *testing.T) {
	check := NewHTTPCheck()
	result := check.Check(context.Background(), adapterWith(types.ProtocolHTTP, map[string]string{
		"endpoint": "http://127.0.0.1:1", // nothing listens here
	}), 2*time.Second)

	assert.False(t, result.Healthy)
	assert.NotEmpty(t, result.ErrorMessage)
}

func TestFilesystemCheck_Healthy(t *testing.T) {
	dir := t.TempDir()

	check := NewFilesystemCheck()
	result := check.Check(context.Background(), adapterWith(types.ProtocolFilesystem, map[string]string{
		"directory": dir,
		"mode":      "READ",
	}), 5*time.Second)

	assert.True(t, result.Healthy)
}

func TestFilesystemCheck_WriteMode(t *testing.T) {
	dir := t.TempDir()

	check := NewFilesystemCheck()
	result := check.Check(context.Background(), adapterWith(types.ProtocolFilesystem, map[string]string{
		"directory": dir,
		"mode":      "WRITE",
	}), 5*time.Second)

	assert.True(t, result.Healthy)

	// Probe file must be cleaned up
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFilesystemCheck_MissingDirectory(t *testing.T) {
	check := NewFilesystemCheck()
	result := check.Check(context.Background(), adapterWith(types.ProtocolFilesystem, map[string]string{
		"directory": filepath.Join(t.TempDir(), "nope"),
	}), 5*time.Second)

	assert.False(t, result.Healthy)
	assert.Contains(t, result.ErrorMessage, "does not exist")
}

func TestFilesystemCheck_NotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	check := NewFilesystemCheck()
	result := check.Check(context.Background(), adapterWith(types.ProtocolFilesystem, map[string]string{
		"directory": file,
	}), 5*time.Second)

	assert.False(t, result.Healthy)
	assert.Contains(t, result.ErrorMessage, "not a directory")
}

func TestDatabaseCheck_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "check.db")

	check := NewDatabaseCheck(nil)
	result := check.Check(context.Background(), adapterWith(types.ProtocolDatabase, map[string]string{
		"driver": "sqlite3",
		"url":    path,
	}), 5*time.Second)

	assert.True(t, result.Healthy)
}

func TestDatabaseCheck_MissingConfig(t *testing.T) {
	check := NewDatabaseCheck(nil)
	result := check.Check(context.Background(), adapterWith(types.ProtocolDatabase, nil), 5*time.Second)

	assert.False(t, result.Healthy)
	assert.Contains(t, result.ErrorMessage, "required")
}

func TestDatabaseCheck_ReportsPoolActivity(t *testing.T) {
	pools := pool.NewManager()
	check := NewDatabaseCheck(pools)

	adapter := adapterWith(types.ProtocolDatabase, map[string]string{
		"driver":    "sqlite3",
		"url":       filepath.Join(t.TempDir(), "pooled.db"),
		"pool_size": "5",
	})
	result := check.Check(context.Background(), adapter, 5*time.Second)
	require.True(t, result.Healthy)

	stats := pools.GetPoolStatistics(adapter.ID)
	assert.EqualValues(t, 5, stats.TotalPooled)
	assert.EqualValues(t, 0, stats.TotalActive, "check connection must be released")
}

type reporterRecorder struct {
	pooled int64
	opened int
	closed int
}

func (r *reporterRecorder) SetPooled(adapterID string, pooled int64) { r.pooled = pooled }
func (r *reporterRecorder) ConnectionOpened(adapterID string)        { r.opened++ }
func (r *reporterRecorder) ConnectionClosed(adapterID string)        { r.closed++ }

func TestDatabaseCheck_PairsOpenAndClose(t *testing.T) {
	recorder := &reporterRecorder{}
	check := NewDatabaseCheck(recorder)

	check.Check(context.Background(), adapterWith(types.ProtocolDatabase, map[string]string{
		"driver": "sqlite3",
		"url":    filepath.Join(t.TempDir(), "paired.db"),
	}), 5*time.Second)

	assert.EqualValues(t, 1, recorder.pooled, "pool size defaults to one connection")
	assert.Equal(t, 1, recorder.opened)
	assert.Equal(t, 1, recorder.closed)
}

func TestSOAPCheck_WSDLFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	check := NewSOAPCheck()
	result := check.Check(context.Background(), adapterWith(types.ProtocolSOAP, map[string]string{
		"wsdl_url": server.URL + "/service?wsdl",
	}), 5*time.Second)

	assert.True(t, result.Healthy)
}

func TestSOAPCheck_FaultIsReachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// SOAP fault: the service is reachable even though it rejects the call
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	check := NewSOAPCheck()
	result := check.Check(context.Background(), adapterWith(types.ProtocolSOAP, map[string]string{
		"endpoint": server.URL,
	}), 5*time.Second)

	assert.True(t, result.Healthy)
}

func TestSOAPCheck_MissingConfig(t *testing.T) {
	check := NewSOAPCheck()
	result := check.Check(context.Background(), adapterWith(types.ProtocolSOAP, nil), 5*time.Second)

	assert.False(t, result.Healthy)
}

func TestQueueCheck_MissingConfigDoesNotConnect(t *testing.T) {
	check := NewQueueCheck(types.RedisConfig{})

	// No host at all
	result := check.Check(context.Background(), adapterWith(types.ProtocolMessageQueue, nil), time.Second)
	assert.False(t, result.Healthy)
	assert.Contains(t, result.ErrorMessage, "no host configured")

	// Host but no queue manager: still refused before any dial
	result = check.Check(context.Background(), adapterWith(types.ProtocolMessageQueue, map[string]string{
		"host": "127.0.0.1",
	}), time.Second)
	assert.False(t, result.Healthy)
	assert.Contains(t, result.ErrorMessage, "no queue_manager configured")
}

func TestFTPCheck_MissingHost(t *testing.T) {
	check := NewFTPCheck(nil)
	result := check.Check(context.Background(), adapterWith(types.ProtocolFTP, nil), time.Second)

	assert.False(t, result.Healthy)
	assert.Contains(t, result.ErrorMessage, "no host configured")
}

func TestSFTPCheck_MissingConfig(t *testing.T) {
	check := NewSFTPCheck(nil)

	result := check.Check(context.Background(), adapterWith(types.ProtocolSFTP, nil), time.Second)
	assert.False(t, result.Healthy)

	result = check.Check(context.Background(), adapterWith(types.ProtocolSFTP, map[string]string{
		"host": "127.0.0.1",
	}), time.Second)
	assert.False(t, result.Healthy)
	assert.Contains(t, result.ErrorMessage, "no username configured")
}

type fakePools struct {
	stats types.PoolStatistics
}

func (f *fakePools) GetPoolStatistics(adapterID string) types.PoolStatistics {
	return f.stats
}

func TestGenericCheck_DefaultHealthy(t *testing.T) {
	check := NewGenericCheck(&fakePools{})
	result := check.Check(context.Background(), adapterWith(types.ProtocolGeneric, nil), time.Second)

	assert.True(t, result.Healthy)
}

func TestDispatcher_FallsBackToGeneric(t *testing.T) {
	d := NewDispatcher(time.Second, NewGenericCheck(nil).Check, testLogger())

	// Unknown protocol, no registered strategies at all
	result := d.Check(context.Background(), adapterWith(types.ProtocolType("avian-carrier"), nil))
	assert.True(t, result.Healthy)
}

func TestDispatcher_RecoversFromPanic(t *testing.T) {
	d := NewDispatcher(time.Second, NewGenericCheck(nil).Check, testLogger())
	d.Register(types.ProtocolHTTP, func(ctx context.Context, adapter types.MonitoredAdapter, timeout time.Duration) types.HealthCheckResult {
		panic("strategy bug")
	})

	result := d.Check(context.Background(), adapterWith(types.ProtocolHTTP, nil))

	assert.False(t, result.Healthy)
	assert.Contains(t, result.ErrorMessage, "strategy bug")
}

func TestDispatcher_EnforcesTimeout(t *testing.T) {
	d := NewDispatcher(50*time.Millisecond, NewGenericCheck(nil).Check, testLogger())
	d.Register(types.ProtocolHTTP, func(ctx context.Context, adapter types.MonitoredAdapter, timeout time.Duration) types.HealthCheckResult {
		start := time.Now()
		<-ctx.Done()
		return types.HealthCheckResult{
			Healthy:        false,
			ResponseTimeMs: time.Since(start).Milliseconds(),
			ErrorMessage:   ctx.Err().Error(),
		}
	})

	start := time.Now()
	result := d.Check(context.Background(), adapterWith(types.ProtocolHTTP, nil))

	assert.False(t, result.Healthy)
	assert.Less(t, time.Since(start), time.Second)
	assert.Contains(t, result.ErrorMessage, "deadline")
}

func TestDefaultDispatcher_CoversKnownProtocols(t *testing.T) {
	d := NewDefaultDispatcher(time.Second, types.RedisConfig{}, nil, testLogger())

	for _, protocol := range types.KnownProtocols() {
		assert.True(t, d.Registered(protocol), "missing strategy for %s", protocol)
	}
}
