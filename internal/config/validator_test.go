package config

import (
	"strings"
	"testing"
	"time"

	"github.com/nexbridge/adaptersentry/pkg/types"
)

func validTestConfig() *types.Config {
	return &types.Config{
		App: types.AppConfig{
			Name:      "adaptersentry",
			LogLevel:  "info",
			LogFormat: "json",
			DataDir:   "./data",
		},
		Monitor: types.MonitorConfig{
			CheckInterval:    30 * time.Second,
			CheckTimeout:     10 * time.Second,
			BatchTimeout:     60 * time.Second,
			FailureThreshold: 3,
			MaxWorkers:       10,
			EscalationPolicy: types.EscalateWhileAbove,
		},
		Storage: types.StorageConfig{
			Type: "sqlite",
			SQLite: types.SQLiteConfig{
				Path:              "./data/test.db",
				MaxConnections:    10,
				ConnectionTimeout: 30 * time.Second,
			},
		},
		Server: types.ServerConfig{
			Port: 8080,
		},
		Security: types.SecurityConfig{
			AllowedEnvVars: []string{"*_PASSWORD"},
		},
		Adapters: []types.MonitoredAdapter{
			{
				ID:       "orders-api",
				Name:     "Orders API",
				Protocol: types.ProtocolHTTP,
				Active:   true,
				Config:   map[string]string{"endpoint": "https://orders.example.com/health"},
			},
		},
	}
}

func TestValidator_ValidConfig(t *testing.T) {
	validator := NewValidator()

	if err := validator.Validate(validTestConfig()); err != nil {
		t.Errorf("Valid configuration should pass: %v", err)
	}
}

func TestValidator_InvalidConfigs(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*types.Config)
		wantErr string
	}{
		{
			name:    "Missing app name",
			mutate:  func(c *types.Config) { c.App.Name = "" },
			wantErr: "app.name",
		},
		{
			name:    "Invalid log level",
			mutate:  func(c *types.Config) { c.App.LogLevel = "verbose" },
			wantErr: "app.log_level",
		},
		{
			name:    "Zero check interval",
			mutate:  func(c *types.Config) { c.Monitor.CheckInterval = 0 },
			wantErr: "monitor.check_interval",
		},
		{
			name:    "Batch timeout shorter than check timeout",
			mutate:  func(c *types.Config) { c.Monitor.BatchTimeout = 5 * time.Second },
			wantErr: "monitor.batch_timeout",
		},
		{
			name:    "Zero failure threshold",
			mutate:  func(c *types.Config) { c.Monitor.FailureThreshold = 0 },
			wantErr: "monitor.failure_threshold",
		},
		{
			name:    "Unknown escalation policy",
			mutate:  func(c *types.Config) { c.Monitor.EscalationPolicy = "sometimes" },
			wantErr: "monitor.escalation_policy",
		},
		{
			name:    "Missing sqlite path",
			mutate:  func(c *types.Config) { c.Storage.SQLite.Path = "" },
			wantErr: "storage.sqlite.path",
		},
		{
			name:    "Invalid server port",
			mutate:  func(c *types.Config) { c.Server.Port = 70000 },
			wantErr: "server.port",
		},
		{
			name:    "Missing adapter id",
			mutate:  func(c *types.Config) { c.Adapters[0].ID = "" },
			wantErr: "adapters[0].id",
		},
		{
			name: "Duplicate adapter ids",
			mutate: func(c *types.Config) {
				c.Adapters = append(c.Adapters, c.Adapters[0])
			},
			wantErr: "adapters[1].id",
		},
		{
			name:    "Unknown protocol",
			mutate:  func(c *types.Config) { c.Adapters[0].Protocol = "carrier-pigeon" },
			wantErr: "adapters[0].protocol",
		},
		{
			name: "HTTP adapter without endpoint",
			mutate: func(c *types.Config) {
				c.Adapters[0].Config = map[string]string{}
			},
			wantErr: "adapters[0].config",
		},
		{
			name: "HTTP adapter with bad endpoint scheme",
			mutate: func(c *types.Config) {
				c.Adapters[0].Config["endpoint"] = "ftp://orders.example.com"
			},
			wantErr: "adapters[0].config",
		},
		{
			name: "Database adapter without url",
			mutate: func(c *types.Config) {
				c.Adapters[0].Protocol = types.ProtocolDatabase
				c.Adapters[0].Config = map[string]string{"driver": "postgres"}
			},
			wantErr: "adapters[0].config",
		},
		{
			name: "SFTP adapter without host",
			mutate: func(c *types.Config) {
				c.Adapters[0].Protocol = types.ProtocolSFTP
				c.Adapters[0].Config = map[string]string{"username": "svc"}
			},
			wantErr: "adapters[0].config",
		},
		{
			name: "SLA success rate out of range",
			mutate: func(c *types.Config) {
				c.SLA = []types.SLAComplianceReport{{AdapterType: types.ProtocolHTTP, SuccessRate: 120}}
			},
			wantErr: "sla[0].success_rate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validTestConfig()
			tt.mutate(config)

			validator := NewValidator()
			err := validator.Validate(config)
			if err == nil {
				t.Fatal("Expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error mentioning %q, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidator_GenericProtocolNeedsNoConfig(t *testing.T) {
	config := validTestConfig()
	config.Adapters[0].Protocol = types.ProtocolGeneric
	config.Adapters[0].Config = nil

	validator := NewValidator()
	if err := validator.Validate(config); err != nil {
		t.Errorf("Generic adapters should not require protocol config: %v", err)
	}
}
