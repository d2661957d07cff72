package config

import (
	"fmt"
	"strings"
)

// Validate checks the configuration for mistakes that would otherwise only
// surface at runtime.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.MCPServers))
	for i, server := range c.MCPServers {
		if err := validateServer(server); err != nil {
			return fmt.Errorf("mcp_servers[%d]: %w", i, err)
		}
		if seen[server.Name] {
			return fmt.Errorf("mcp_servers[%d]: duplicate server name %q", i, server.Name)
		}
		seen[server.Name] = true
	}

	switch strings.ToLower(c.ToolCallPermission) {
	case "", "always", "never", "ask":
	default:
		return fmt.Errorf("tool_call_permission must be one of always, never, ask; got %q", c.ToolCallPermission)
	}

	return nil
}

func validateServer(server MCPServerConfig) error {
	if server.Name == "" {
		return fmt.Errorf("server name is required")
	}
	// The namespaced tool identifier splits on the first "__", so server
	// names containing it would be unroutable.
	if strings.Contains(server.Name, "__") {
		return fmt.Errorf("server name %q must not contain \"__\"", server.Name)
	}
	if server.Command == "" {
		return fmt.Errorf("server %q: command is required", server.Name)
	}
	return nil
}
