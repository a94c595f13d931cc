package checker

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/nexbridge/adaptersentry/pkg/types"
)

// Config keys recognized by the message-queue check
const (
	cfgQueueManager = "queue_manager"
	cfgDestination  = "destination"
)

// QueueCheck proves reachability of a queue broker. Host and queue-manager
// identifiers must be present before any connection is attempted; when a
// destination is configured its depth is read to prove consumability.
type QueueCheck struct {
	defaults types.RedisConfig
}

// NewQueueCheck creates the message-queue check strategy. The global broker
// settings fill in credentials the adapter config leaves out.
func NewQueueCheck(defaults types.RedisConfig) *QueueCheck {
	return &QueueCheck{defaults: defaults}
}

func (c *QueueCheck) Check(ctx context.Context, adapter types.MonitoredAdapter, timeout time.Duration) types.HealthCheckResult {
	start := time.Now()

	host := adapter.ConfigValue(cfgHost, "")
	if host == "" {
		return unhealthySince(start, "no host configured")
	}
	if !adapter.HasConfig(cfgQueueManager) {
		return unhealthySince(start, "no queue_manager configured")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(host, adapter.ConfigValue(cfgPort, "6379")),
		Password:     adapter.ConfigValue(cfgPassword, c.defaults.Password),
		DB:           c.defaults.DB,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})
	defer client.Close()

	if err := client.Ping(ctx).Err(); err != nil {
		return unhealthySince(start, fmt.Sprintf("broker unreachable: %v", err))
	}

	// Open a consumer view of the destination and close it straight away:
	// LLen proves the destination is addressable without draining it.
	if dest := adapter.ConfigValue(cfgDestination, ""); dest != "" {
		if err := client.LLen(ctx, dest).Err(); err != nil {
			return unhealthySince(start, fmt.Sprintf("destination %s not consumable: %v", dest, err))
		}
	}

	return healthySince(start)
}

// QueueDepth reads the current depth of an adapter's configured destination.
// Used by the aggregate tick to feed the resource gauge; returns false when
// the adapter has no destination or the broker cannot be reached.
func (c *QueueCheck) QueueDepth(ctx context.Context, adapter types.MonitoredAdapter) (int64, bool) {
	host := adapter.ConfigValue(cfgHost, "")
	dest := adapter.ConfigValue(cfgDestination, "")
	if host == "" || dest == "" {
		return 0, false
	}

	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(host, adapter.ConfigValue(cfgPort, "6379")),
		Password: adapter.ConfigValue(cfgPassword, c.defaults.Password),
		DB:       c.defaults.DB,
	})
	defer client.Close()

	depth, err := client.LLen(ctx, dest).Result()
	if err != nil {
		return 0, false
	}
	return depth, true
}
