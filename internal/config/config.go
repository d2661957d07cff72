package config

import (
	"encoding/json"
	"fmt"
)

// Config is the main vela configuration.
type Config struct {
	// MCP capability servers
	MCPServers []MCPServerConfig `json:"mcp_servers" mapstructure:"mcp_servers"`

	// Tool call authorization
	ToolCallPermission string           `json:"tool_call_permission,omitempty" mapstructure:"tool_call_permission"` // always, never, ask; empty means always
	ToolPermissions    *ToolPermissions `json:"tool_permissions,omitempty" mapstructure:"tool_permissions"`
	VerboseToolCalls   bool             `json:"verbose_tool_calls" mapstructure:"verbose_tool_calls"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// Data directory
	DataDir string `json:"data_dir" mapstructure:"data_dir"`

	// Path of the persisted conversation grant list
	GrantsPath string `json:"grants_path" mapstructure:"grants_path"`
}

// MCPServerConfig describes one external capability server. Entries are
// loaded once and immutable for the lifetime of the process.
type MCPServerConfig struct {
	Name        string            `json:"name" mapstructure:"name"`
	Command     string            `json:"command" mapstructure:"command"`
	Args        []string          `json:"args,omitempty" mapstructure:"args"`
	Env         map[string]string `json:"env,omitempty" mapstructure:"env"`
	Enabled     bool              `json:"enabled" mapstructure:"enabled"`
	Trusted     bool              `json:"trusted" mapstructure:"trusted"`
	Description string            `json:"description,omitempty" mapstructure:"description"`
}

// ToolPermissions holds the ordered glob pattern lists a tool call is
// evaluated against. Denied wins over allowed regardless of list order.
type ToolPermissions struct {
	Denied  []string `json:"denied,omitempty" mapstructure:"denied"`
	Allowed []string `json:"allowed,omitempty" mapstructure:"allowed"`
	Ask     []string `json:"ask,omitempty" mapstructure:"ask"`
}

// Clone returns a deep copy so snapshots never alias store-owned slices.
func (tp *ToolPermissions) Clone() *ToolPermissions {
	if tp == nil {
		return nil
	}
	clone := &ToolPermissions{}
	clone.Denied = append(clone.Denied, tp.Denied...)
	clone.Allowed = append(clone.Allowed, tp.Allowed...)
	clone.Ask = append(clone.Ask, tp.Ask...)
	return clone
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level   string `json:"level" mapstructure:"level"`
	File    string `json:"file" mapstructure:"file"`
	Console bool   `json:"console" mapstructure:"console"`
	Pretty  bool   `json:"pretty" mapstructure:"pretty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		MCPServers: []MCPServerConfig{},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
		},
	}
}

// String returns a JSON representation of the config.
func (c *Config) String() string {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}
