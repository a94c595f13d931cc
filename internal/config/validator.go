package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/nexbridge/adaptersentry/pkg/types"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string `json:"field"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}

	var messages []string
	for _, err := range e {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

// Validator validates configuration
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{
		errors: make(ValidationErrors, 0),
	}
}

// Validate validates the entire configuration
func (v *Validator) Validate(config *types.Config) error {
	v.errors = v.errors[:0] // Reset errors

	v.validateApp(&config.App)
	v.validateMonitor(&config.Monitor)
	v.validateStorage(&config.Storage)
	v.validateServer(&config.Server)
	v.validateSecurity(&config.Security)
	v.validateSLA(config.SLA)
	v.validateAdapters(config.Adapters)

	if len(v.errors) > 0 {
		return v.errors
	}

	return nil
}

// validateApp validates app configuration
func (v *Validator) validateApp(app *types.AppConfig) {
	if app.Name == "" {
		v.addError("app.name", app.Name, "application name is required")
	}

	if app.LogLevel != "" {
		validLevels := []string{"debug", "info", "warn", "error"}
		if !v.contains(validLevels, app.LogLevel) {
			v.addError("app.log_level", app.LogLevel, "invalid log level")
		}
	}

	if app.LogFormat != "" {
		validFormats := []string{"json", "text"}
		if !v.contains(validFormats, app.LogFormat) {
			v.addError("app.log_format", app.LogFormat, "invalid log format")
		}
	}

	if app.DataDir == "" {
		v.addError("app.data_dir", app.DataDir, "data directory is required")
	}
}

// validateMonitor validates monitoring configuration
func (v *Validator) validateMonitor(monitor *types.MonitorConfig) {
	if monitor.CheckInterval <= 0 {
		v.addError("monitor.check_interval", monitor.CheckInterval.String(), "check interval must be positive")
	}

	if monitor.CheckTimeout <= 0 {
		v.addError("monitor.check_timeout", monitor.CheckTimeout.String(), "check timeout must be positive")
	}

	if monitor.BatchTimeout > 0 && monitor.BatchTimeout < monitor.CheckTimeout {
		v.addError("monitor.batch_timeout", monitor.BatchTimeout.String(),
			"batch timeout must not be shorter than the check timeout")
	}

	if monitor.FailureThreshold <= 0 {
		v.addError("monitor.failure_threshold", fmt.Sprintf("%d", monitor.FailureThreshold), "failure threshold must be positive")
	}

	if monitor.MaxWorkers <= 0 {
		v.addError("monitor.max_workers", fmt.Sprintf("%d", monitor.MaxWorkers), "max workers must be positive")
	}

	if monitor.EscalationPolicy != "" &&
		monitor.EscalationPolicy != types.EscalateOnCross &&
		monitor.EscalationPolicy != types.EscalateWhileAbove {
		v.addError("monitor.escalation_policy", monitor.EscalationPolicy,
			"invalid escalation policy, must be 'on-cross' or 'while-above'")
	}
}

// validateStorage validates storage configuration
func (v *Validator) validateStorage(storage *types.StorageConfig) {
	if storage.Type == "" {
		v.addError("storage.type", storage.Type, "storage type is required")
	}

	if storage.Type == "sqlite" {
		v.validateSQLite(&storage.SQLite)
	}
}

// validateSQLite validates SQLite configuration
func (v *Validator) validateSQLite(sqlite *types.SQLiteConfig) {
	if sqlite.Path == "" {
		v.addError("storage.sqlite.path", sqlite.Path, "SQLite database path is required")
	}

	if sqlite.MaxConnections <= 0 {
		v.addError("storage.sqlite.max_connections", fmt.Sprintf("%d", sqlite.MaxConnections), "max connections must be positive")
	}

	if sqlite.ConnectionTimeout <= 0 {
		v.addError("storage.sqlite.connection_timeout", sqlite.ConnectionTimeout.String(), "connection timeout must be positive")
	}
}

// validateServer validates the API server configuration
func (v *Validator) validateServer(server *types.ServerConfig) {
	if server.Port <= 0 || server.Port > 65535 {
		v.addError("server.port", fmt.Sprintf("%d", server.Port), "invalid port number")
	}
}

// validateSecurity validates security configuration
func (v *Validator) validateSecurity(security *types.SecurityConfig) {
	if len(security.AllowedEnvVars) == 0 {
		v.addError("security.allowed_env_vars", "[]", "at least one allowed environment variable is required")
	}
}

// validateSLA validates SLA compliance targets
func (v *Validator) validateSLA(reports []types.SLAComplianceReport) {
	for i, report := range reports {
		prefix := fmt.Sprintf("sla[%d]", i)

		if report.AdapterType == "" {
			v.addError(prefix+".adapter_type", "", "adapter type is required")
		}
		if report.SuccessRate < 0 || report.SuccessRate > 100 {
			v.addError(prefix+".success_rate", fmt.Sprintf("%.1f", report.SuccessRate), "success rate must be between 0 and 100")
		}
		if report.ResponseTimeCompliance < 0 || report.ResponseTimeCompliance > 100 {
			v.addError(prefix+".response_time_compliance", fmt.Sprintf("%.1f", report.ResponseTimeCompliance), "response time compliance must be between 0 and 100")
		}
	}
}

// validateAdapters validates adapter configurations
func (v *Validator) validateAdapters(adapters []types.MonitoredAdapter) {
	ids := make(map[string]bool)

	for i, adapter := range adapters {
		prefix := fmt.Sprintf("adapters[%d]", i)

		// Validate unique IDs
		if adapter.ID == "" {
			v.addError(prefix+".id", adapter.ID, "adapter id is required")
		} else if ids[adapter.ID] {
			v.addError(prefix+".id", adapter.ID, "adapter id must be unique")
		} else {
			ids[adapter.ID] = true
		}

		// Validate protocol
		if !v.knownProtocol(adapter.Protocol) {
			v.addError(prefix+".protocol", string(adapter.Protocol),
				"unknown protocol, unchecked adapters should use 'generic'")
		}

		// Protocol-specific required settings
		switch adapter.Protocol {
		case types.ProtocolHTTP, types.ProtocolSOAP:
			endpoint := adapter.Config["endpoint"]
			if adapter.Protocol == types.ProtocolSOAP {
				endpoint = adapter.Config["wsdl_url"]
			}
			if endpoint == "" {
				v.addError(prefix+".config", "", "endpoint is required for this protocol")
			} else if err := v.validateURL(endpoint); err != nil {
				v.addError(prefix+".config", endpoint, err.Error())
			}
		case types.ProtocolDatabase:
			if adapter.Config["url"] == "" {
				v.addError(prefix+".config", "", "database url is required")
			}
		case types.ProtocolFilesystem:
			if adapter.Config["directory"] == "" {
				v.addError(prefix+".config", "", "directory is required")
			}
		case types.ProtocolFTP, types.ProtocolSFTP:
			if adapter.Config["host"] == "" {
				v.addError(prefix+".config", "", "host is required")
			}
		}
	}
}

// validateURL validates endpoint URL format
func (v *Validator) validateURL(endpoint string) error {
	endpoint = strings.TrimSpace(endpoint)

	parsedURL, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}

	if parsedURL.Scheme != "https" && parsedURL.Scheme != "http" {
		return fmt.Errorf("URL scheme must be http or https")
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("URL must have a host")
	}

	return nil
}

// knownProtocol reports whether the protocol has a check strategy
func (v *Validator) knownProtocol(protocol types.ProtocolType) bool {
	for _, known := range types.KnownProtocols() {
		if protocol == known {
			return true
		}
	}
	return false
}

// addError adds a validation error
func (v *Validator) addError(field, value, message string) {
	v.errors = append(v.errors, ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	})
}

// contains checks if a slice contains a string
func (v *Validator) contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
