package checker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nexbridge/adaptersentry/pkg/types"
)

// Config keys recognized by the filesystem check
const (
	cfgDirectory = "directory"
	cfgMode      = "mode" // READ or WRITE
)

// FilesystemCheck verifies that a drop directory exists and carries the
// permission implied by the configured mode.
type FilesystemCheck struct{}

// NewFilesystemCheck creates the filesystem check strategy
func NewFilesystemCheck() *FilesystemCheck {
	return &FilesystemCheck{}
}

// Check stats the configured directory and probes READ by opening it and
// WRITE by creating and removing a probe file.
func (c *FilesystemCheck) Check(ctx context.Context, adapter types.MonitoredAdapter, timeout time.Duration) types.HealthCheckResult {
	start := time.Now()

	dir := adapter.ConfigValue(cfgDirectory, "")
	if dir == "" {
		return unhealthySince(start, "no directory configured")
	}

	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return unhealthySince(start, fmt.Sprintf("directory %s does not exist", dir))
	}
	if err != nil {
		return unhealthySince(start, fmt.Sprintf("cannot access directory %s: %v", dir, err))
	}
	if !info.IsDir() {
		return unhealthySince(start, fmt.Sprintf("%s is not a directory", dir))
	}

	mode := strings.ToUpper(adapter.ConfigValue(cfgMode, "READ"))
	switch mode {
	case "WRITE":
		probe := filepath.Join(dir, fmt.Sprintf(".healthcheck-%d", time.Now().UnixNano()))
		f, err := os.Create(probe)
		if err != nil {
			return unhealthySince(start, fmt.Sprintf("no write permission on %s: %v", dir, err))
		}
		f.Close()
		os.Remove(probe)
	default:
		f, err := os.Open(dir)
		if err != nil {
			return unhealthySince(start, fmt.Sprintf("no read permission on %s: %v", dir, err))
		}
		f.Close()
	}

	return healthySince(start)
}
