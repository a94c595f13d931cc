package checker

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	// Drivers the database check can validate against. The sqlite driver is
	// shared with the storage layer.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/nexbridge/adaptersentry/pkg/types"
)

// Config keys recognized by the database check
const (
	cfgDriver          = "driver"
	cfgURL             = "url"
	cfgValidationQuery = "validation_query"
	cfgPoolSize        = "pool_size"
)

const defaultValidationQuery = "SELECT 1"

// DatabaseCheck validates relational endpoints by opening a transient
// connection and running the configured validation query. Connection
// lifecycle is reported to the pool tracker so utilization scoring sees
// the adapter's pool.
type DatabaseCheck struct {
	pools PoolReporter
}

// NewDatabaseCheck creates the database check strategy. The reporter may
// be nil.
func NewDatabaseCheck(pools PoolReporter) *DatabaseCheck {
	return &DatabaseCheck{pools: pools}
}

// Check opens a short-lived connection and runs the validation query under
// the supplied timeout. The connection is never pooled: each check proves a
// full connect-validate-close round trip.
func (c *DatabaseCheck) Check(ctx context.Context, adapter types.MonitoredAdapter, timeout time.Duration) types.HealthCheckResult {
	start := time.Now()

	driver := adapter.ConfigValue(cfgDriver, "")
	dsn := adapter.ConfigValue(cfgURL, "")
	if driver == "" || dsn == "" {
		return unhealthySince(start, "database driver and url are required")
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return unhealthySince(start, fmt.Sprintf("failed to open connection: %v", err))
	}
	defer db.Close()

	if c.pools != nil {
		if pooled, err := strconv.ParseInt(adapter.ConfigValue(cfgPoolSize, "1"), 10, 64); err == nil && pooled > 0 {
			c.pools.SetPooled(adapter.ID, pooled)
		}
		c.pools.ConnectionOpened(adapter.ID)
		defer c.pools.ConnectionClosed(adapter.ID)
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(timeout)

	query := adapter.ConfigValue(cfgValidationQuery, defaultValidationQuery)

	var result interface{}
	row := db.QueryRowContext(ctx, query)
	if err := row.Scan(&result); err != nil && err != sql.ErrNoRows {
		return unhealthySince(start, fmt.Sprintf("validation query failed: %v", err))
	}

	return healthySince(start)
}
