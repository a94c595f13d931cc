package types

import (
	"time"
)

// ProtocolType identifies the wire protocol an adapter bridges to
type ProtocolType string

const (
	ProtocolHTTP         ProtocolType = "http"
	ProtocolDatabase     ProtocolType = "database"
	ProtocolFilesystem   ProtocolType = "filesystem"
	ProtocolFTP          ProtocolType = "ftp"
	ProtocolSFTP         ProtocolType = "sftp"
	ProtocolMessageQueue ProtocolType = "message_queue"
	ProtocolSOAP         ProtocolType = "soap"
	ProtocolGeneric      ProtocolType = "generic"
)

// MonitoredAdapter represents a configured connector to an external system.
// The monitoring engine only reads adapters; they are created and updated
// through the adapter store.
type MonitoredAdapter struct {
	ID       string            `yaml:"id" json:"id"`
	Name     string            `yaml:"name" json:"name"`
	Protocol ProtocolType      `yaml:"protocol" json:"protocol"`
	Active   bool              `yaml:"active" json:"active"`
	Config   map[string]string `yaml:"config" json:"config"`

	CreatedAt time.Time `yaml:"-" json:"created_at,omitempty"`
	UpdatedAt time.Time `yaml:"-" json:"updated_at,omitempty"`
}

// ConfigValue returns a configuration value with a fallback default
func (a *MonitoredAdapter) ConfigValue(key, def string) string {
	if a.Config == nil {
		return def
	}
	if v, ok := a.Config[key]; ok && v != "" {
		return v
	}
	return def
}

// HasConfig reports whether a non-empty configuration value is present
func (a *MonitoredAdapter) HasConfig(key string) bool {
	if a.Config == nil {
		return false
	}
	v, ok := a.Config[key]
	return ok && v != ""
}

// IsValid checks that the adapter carries the minimum identifying fields
func (a *MonitoredAdapter) IsValid() bool {
	return a.ID != "" && a.Name != "" && a.Protocol != ""
}

// KnownProtocols lists the protocol families with a dedicated check strategy
func KnownProtocols() []ProtocolType {
	return []ProtocolType{
		ProtocolHTTP,
		ProtocolDatabase,
		ProtocolFilesystem,
		ProtocolFTP,
		ProtocolSFTP,
		ProtocolMessageQueue,
		ProtocolSOAP,
		ProtocolGeneric,
	}
}
