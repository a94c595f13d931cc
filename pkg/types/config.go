package types

import (
	"time"
)

// Config represents the main application configuration
type Config struct {
	App      AppConfig             `yaml:"app" json:"app"`
	Monitor  MonitorConfig         `yaml:"monitor" json:"monitor"`
	Storage  StorageConfig         `yaml:"storage" json:"storage"`
	Server   ServerConfig          `yaml:"server" json:"server"`
	Redis    RedisConfig           `yaml:"redis" json:"redis"`
	Security SecurityConfig        `yaml:"security" json:"security"`
	SLA      []SLAComplianceReport `yaml:"sla,omitempty" json:"sla,omitempty"`
	Adapters []MonitoredAdapter    `yaml:"adapters,omitempty" json:"adapters,omitempty"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name            string        `yaml:"name" json:"name"`
	LogLevel        string        `yaml:"log_level" json:"log_level"`
	LogFormat       string        `yaml:"log_format" json:"log_format"`
	LogFile         string        `yaml:"log_file" json:"log_file,omitempty"`
	LogFileRotation LogFileConfig `yaml:"log_file_rotation" json:"log_file_rotation,omitempty"`
	DataDir         string        `yaml:"data_dir" json:"data_dir"`
}

// LogFileConfig represents log file rotation configuration
type LogFileConfig struct {
	MaxSize    int  `yaml:"max_size" json:"max_size"`       // MB
	MaxBackups int  `yaml:"max_backups" json:"max_backups"` // number of backup files
	MaxAge     int  `yaml:"max_age" json:"max_age"`         // days
	Compress   bool `yaml:"compress" json:"compress"`       // compress rotated files
}

// MonitorConfig represents health-monitoring configuration
type MonitorConfig struct {
	CheckInterval     time.Duration `yaml:"check_interval" json:"check_interval"`
	CheckTimeout      time.Duration `yaml:"check_timeout" json:"check_timeout"`
	BatchTimeout      time.Duration `yaml:"batch_timeout" json:"batch_timeout"`
	FailureThreshold  int64         `yaml:"failure_threshold" json:"failure_threshold"`
	MaxWorkers        int           `yaml:"max_workers" json:"max_workers"`
	AggregateInterval time.Duration `yaml:"aggregate_interval" json:"aggregate_interval"`
	SnapshotInterval  time.Duration `yaml:"snapshot_interval" json:"snapshot_interval"`
	SnapshotRetention time.Duration `yaml:"snapshot_retention" json:"snapshot_retention"`
	RecordRetention   time.Duration `yaml:"record_retention" json:"record_retention"`
	EscalationPolicy  string        `yaml:"escalation_policy" json:"escalation_policy"` // on-cross, while-above
}

// Escalation policy values
const (
	EscalateOnCross    = "on-cross"
	EscalateWhileAbove = "while-above"
)

// StorageConfig represents storage configuration
type StorageConfig struct {
	Type   string       `yaml:"type" json:"type"`
	SQLite SQLiteConfig `yaml:"sqlite" json:"sqlite"`
}

// SQLiteConfig represents SQLite-specific configuration
type SQLiteConfig struct {
	Path              string        `yaml:"path" json:"path"`
	MaxConnections    int           `yaml:"max_connections" json:"max_connections"`
	ConnectionTimeout time.Duration `yaml:"connection_timeout" json:"connection_timeout"`
}

// ServerConfig represents the HTTP API server configuration
type ServerConfig struct {
	Port int `yaml:"port" json:"port"`
}

// RedisConfig represents the message-queue broker connection used by
// queue-backed adapter checks
type RedisConfig struct {
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"-"`
	DB       int    `yaml:"db" json:"db"`
}

// SecurityConfig represents security-related configuration
type SecurityConfig struct {
	AllowedEnvVars []string `yaml:"allowed_env_vars" json:"allowed_env_vars"`
	RequireHTTPS   bool     `yaml:"require_https" json:"require_https"`
}
