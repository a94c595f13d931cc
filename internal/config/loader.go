package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nexbridge/adaptersentry/pkg/types"
	"github.com/nexbridge/adaptersentry/pkg/utils"
)

// Loader handles configuration loading and processing
type Loader struct {
	envExpander *utils.EnvExpander
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadFromFile loads configuration from a YAML file
func (l *Loader) LoadFromFile(filePath string) (*types.Config, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open configuration file: %w", err)
	}
	defer file.Close()

	return l.LoadFromReader(file)
}

// LoadFromReader loads configuration from an io.Reader
func (l *Loader) LoadFromReader(reader io.Reader) (*types.Config, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}

	return l.LoadFromBytes(content)
}

// LoadFromBytes loads configuration from byte slice
func (l *Loader) LoadFromBytes(content []byte) (*types.Config, error) {
	// Parse YAML into raw map first
	var rawConfig map[string]interface{}
	if err := yaml.Unmarshal(content, &rawConfig); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Get security config first to set up environment variable expansion
	securityConfig, err := l.extractSecurityConfig(rawConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to extract security configuration: %w", err)
	}

	// Create environment expander with allowed variables
	l.envExpander = utils.NewEnvExpander(securityConfig.AllowedEnvVars)

	// Expand environment variables, adapter credentials included
	expandedConfig, err := l.envExpander.ExpandMap(rawConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to expand environment variables: %w", err)
	}

	// Marshal back to YAML and unmarshal into typed structure
	expandedBytes, err := yaml.Marshal(expandedConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal expanded configuration: %w", err)
	}

	var config types.Config
	if err := yaml.Unmarshal(expandedBytes, &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	// Apply defaults
	l.applyDefaults(&config)

	return &config, nil
}

// extractSecurityConfig extracts security configuration before environment expansion
func (l *Loader) extractSecurityConfig(rawConfig map[string]interface{}) (*types.SecurityConfig, error) {
	// Default security config
	securityConfig := &types.SecurityConfig{
		AllowedEnvVars: defaultAllowedEnvVars(),
		RequireHTTPS:   true,
	}

	// Override with configuration if present
	if securityRaw, exists := rawConfig["security"]; exists {
		securityBytes, err := yaml.Marshal(securityRaw)
		if err != nil {
			return nil, err
		}

		if err := yaml.Unmarshal(securityBytes, securityConfig); err != nil {
			return nil, err
		}
	}

	return securityConfig, nil
}

// defaultAllowedEnvVars lists the credential variables adapter configs
// may reference out of the box
func defaultAllowedEnvVars() []string {
	return []string{
		"DB_PASSWORD",
		"FTP_PASSWORD",
		"REDIS_PASSWORD",
		"*_PASSWORD",
		"*_TOKEN",
	}
}

// applyDefaults applies default values to configuration
func (l *Loader) applyDefaults(config *types.Config) {
	// App defaults
	if config.App.Name == "" {
		config.App.Name = "adaptersentry"
	}
	if config.App.LogLevel == "" {
		config.App.LogLevel = "info"
	}
	if config.App.LogFormat == "" {
		config.App.LogFormat = "json"
	}
	if config.App.DataDir == "" {
		config.App.DataDir = "./data"
	}

	// Monitor defaults
	if config.Monitor.CheckInterval == 0 {
		config.Monitor.CheckInterval = 30 * time.Second
	}
	if config.Monitor.CheckTimeout == 0 {
		config.Monitor.CheckTimeout = 10 * time.Second
	}
	if config.Monitor.BatchTimeout == 0 {
		config.Monitor.BatchTimeout = 2 * config.Monitor.CheckTimeout
	}
	if config.Monitor.FailureThreshold == 0 {
		config.Monitor.FailureThreshold = 3
	}
	if config.Monitor.MaxWorkers == 0 {
		config.Monitor.MaxWorkers = 10
	}
	if config.Monitor.AggregateInterval == 0 {
		config.Monitor.AggregateInterval = 60 * time.Second
	}
	if config.Monitor.SnapshotInterval == 0 {
		config.Monitor.SnapshotInterval = 5 * time.Minute
	}
	if config.Monitor.SnapshotRetention == 0 {
		config.Monitor.SnapshotRetention = 24 * time.Hour
	}
	if config.Monitor.RecordRetention == 0 {
		config.Monitor.RecordRetention = 7 * 24 * time.Hour
	}
	if config.Monitor.EscalationPolicy == "" {
		config.Monitor.EscalationPolicy = types.EscalateWhileAbove
	}

	// Storage defaults
	if config.Storage.Type == "" {
		config.Storage.Type = "sqlite"
	}
	if config.Storage.SQLite.Path == "" {
		config.Storage.SQLite.Path = filepath.Join(config.App.DataDir, "adaptersentry.db")
	}
	if config.Storage.SQLite.MaxConnections == 0 {
		config.Storage.SQLite.MaxConnections = 10
	}
	if config.Storage.SQLite.ConnectionTimeout == 0 {
		config.Storage.SQLite.ConnectionTimeout = 30 * time.Second
	}

	// Server defaults
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}

	// Redis defaults
	if config.Redis.Addr == "" {
		config.Redis.Addr = "localhost:6379"
	}

	// Security defaults
	if len(config.Security.AllowedEnvVars) == 0 {
		config.Security.AllowedEnvVars = defaultAllowedEnvVars()
	}

	// Adapter defaults
	for i := range config.Adapters {
		adapter := &config.Adapters[i]
		if adapter.Name == "" {
			adapter.Name = adapter.ID
		}
		if adapter.Config == nil {
			adapter.Config = make(map[string]string)
		}
	}
}

// LoadWithDefaults loads configuration with fallback to defaults
func (l *Loader) LoadWithDefaults(filePath string) (*types.Config, error) {
	// Try to load from file first
	if filePath != "" {
		if config, err := l.LoadFromFile(filePath); err == nil {
			return config, nil
		}
	}

	// Fallback to minimal default configuration
	defaultConfig := &types.Config{}
	l.applyDefaults(defaultConfig)

	return defaultConfig, nil
}

// Validate validates loaded configuration
func (l *Loader) Validate(config *types.Config) error {
	validator := NewValidator()
	return validator.Validate(config)
}
