package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harun/vela/internal/config"
)

// Transport establishes a session against one capability server. The wire
// protocol itself is the SDK's concern; implementations only decide how the
// channel is created, so non-subprocess transports can be added without
// touching the registry or the permission gate.
type Transport interface {
	Connect(ctx context.Context) (Session, error)
}

// Session is the duplex channel to a running capability server.
type Session interface {
	ListTools(ctx context.Context) ([]ToolInfo, error)
	CallTool(ctx context.Context, name string, args map[string]any) (any, error)
	Close() error
}

// ToolInfo is one catalogue entry as reported by the server.
type ToolInfo struct {
	Name        string
	Description string
	InputSchema json.RawMessage
}

// StdioTransport launches the configured command as a subprocess and speaks
// MCP over its standard streams.
type StdioTransport struct {
	cfg config.MCPServerConfig
}

// NewStdioTransport creates a transport for a configured server.
func NewStdioTransport(cfg config.MCPServerConfig) *StdioTransport {
	return &StdioTransport{cfg: cfg}
}

// Connect spawns the subprocess and performs the protocol handshake.
func (t *StdioTransport) Connect(ctx context.Context) (Session, error) {
	cmd := exec.Command(t.cfg.Command, t.cfg.Args...)
	cmd.Env = os.Environ()
	for key, value := range t.cfg.Env {
		cmd.Env = append(cmd.Env, key+"="+value)
	}

	client := sdk.NewClient(&sdk.Implementation{
		Name:    "vela",
		Version: "0.1.0",
	}, nil)

	session, err := client.Connect(ctx, &sdk.CommandTransport{Command: cmd}, nil)
	if err != nil {
		return nil, fmt.Errorf("handshake failed: %w", err)
	}

	return &sdkSession{session: session}, nil
}

// sdkSession adapts the SDK client session to the Session interface.
type sdkSession struct {
	session *sdk.ClientSession
}

func (s *sdkSession) ListTools(ctx context.Context) ([]ToolInfo, error) {
	result, err := s.session.ListTools(ctx, nil)
	if err != nil {
		return nil, err
	}

	infos := make([]ToolInfo, 0, len(result.Tools))
	for _, t := range result.Tools {
		var raw json.RawMessage
		if t.InputSchema != nil {
			raw, err = json.Marshal(t.InputSchema)
			if err != nil {
				return nil, fmt.Errorf("failed to encode schema of tool %q: %w", t.Name, err)
			}
		}
		infos = append(infos, ToolInfo{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: raw,
		})
	}
	return infos, nil
}

func (s *sdkSession) CallTool(ctx context.Context, name string, args map[string]any) (any, error) {
	result, err := s.session.CallTool(ctx, &sdk.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		return nil, err
	}

	// Hand the result back as a generic JSON value; any richer envelope
	// convention belongs to typed wrappers layered on top.
	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tool result: %w", err)
	}
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("failed to decode tool result: %w", err)
	}
	return value, nil
}

func (s *sdkSession) Close() error {
	return s.session.Close()
}
