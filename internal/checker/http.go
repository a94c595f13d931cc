package checker

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/nexbridge/adaptersentry/pkg/types"
)

// Config keys recognized by the HTTP check
const (
	cfgEndpoint   = "endpoint"
	cfgHealthPath = "health_path"
	cfgMethod     = "method"
	cfgUsername   = "username"
	cfgPassword   = "password"
)

// HTTPCheck probes REST endpoints. A small per-endpoint limiter keeps
// force-checks and scheduled checks from hammering the same host.
type HTTPCheck struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewHTTPCheck creates the HTTP/REST check strategy
func NewHTTPCheck() *HTTPCheck {
	return &HTTPCheck{
		limiters: make(map[string]*rate.Limiter),
	}
}

// Check issues a GET/HEAD (or configured method) against endpoint+healthPath.
// Any 2xx status is healthy; everything else is unhealthy with the status or
// network error message.
func (c *HTTPCheck) Check(ctx context.Context, adapter types.MonitoredAdapter, timeout time.Duration) types.HealthCheckResult {
	start := time.Now()

	endpoint := adapter.ConfigValue(cfgEndpoint, "")
	if endpoint == "" {
		return unhealthySince(start, "no endpoint configured")
	}

	url := strings.TrimSuffix(endpoint, "/") + adapter.ConfigValue(cfgHealthPath, "")
	method := strings.ToUpper(adapter.ConfigValue(cfgMethod, http.MethodGet))

	if err := c.limiter(endpoint).Wait(ctx); err != nil {
		return unhealthySince(start, fmt.Sprintf("request pacing aborted: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return unhealthySince(start, fmt.Sprintf("invalid endpoint %s: %v", url, err))
	}

	if adapter.HasConfig(cfgUsername) {
		req.SetBasicAuth(adapter.ConfigValue(cfgUsername, ""), adapter.ConfigValue(cfgPassword, ""))
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return unhealthySince(start, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return healthySince(start)
	}
	return unhealthySince(start, fmt.Sprintf("unexpected status %d", resp.StatusCode))
}

func (c *HTTPCheck) limiter(endpoint string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	lim, ok := c.limiters[endpoint]
	if !ok {
		// 5 req/sec with a burst covering one batch fan-out
		lim = rate.NewLimiter(rate.Limit(5.0), 10)
		c.limiters[endpoint] = lim
	}
	return lim
}
