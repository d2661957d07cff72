package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		MCPServers: []MCPServerConfig{
			{Name: "files", Command: "files-server", Enabled: true},
			{Name: "my_server", Command: "other-server"},
		},
		ToolCallPermission: "ask",
	}
}

func TestValidate_Valid(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_EmptyConfig(t *testing.T) {
	assert.NoError(t, (&Config{}).Validate())
}

func TestValidate_ServerNameRequired(t *testing.T) {
	cfg := validConfig()
	cfg.MCPServers[0].Name = ""

	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
}

func TestValidate_ServerNameRejectsDoubleUnderscore(t *testing.T) {
	cfg := validConfig()
	cfg.MCPServers[0].Name = "bad__name"

	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), `must not contain "__"`)
}

func TestValidate_ServerCommandRequired(t *testing.T) {
	cfg := validConfig()
	cfg.MCPServers[1].Command = ""

	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "command is required")
}

func TestValidate_DuplicateServerNames(t *testing.T) {
	cfg := validConfig()
	cfg.MCPServers = append(cfg.MCPServers, MCPServerConfig{Name: "files", Command: "dup"})

	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate server name")
}

func TestValidate_Posture(t *testing.T) {
	for _, posture := range []string{"", "always", "never", "ask", "Always"} {
		cfg := validConfig()
		cfg.ToolCallPermission = posture
		assert.NoError(t, cfg.Validate(), posture)
	}

	cfg := validConfig()
	cfg.ToolCallPermission = "sometimes"
	assert.Error(t, cfg.Validate())
}

func TestToolPermissions_Clone(t *testing.T) {
	original := &ToolPermissions{
		Denied:  []string{"mcp__shell__*"},
		Allowed: []string{"mcp__files__read"},
		Ask:     []string{"mcp__web__*"},
	}

	clone := original.Clone()
	require.NotNil(t, clone)
	assert.Equal(t, original, clone)

	clone.Denied[0] = "changed"
	assert.Equal(t, "mcp__shell__*", original.Denied[0])

	assert.Nil(t, (*ToolPermissions)(nil).Clone())
}
