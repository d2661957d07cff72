package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/harun/vela/internal/config"
	"github.com/harun/vela/pkg/tool"
)

// State is the lifecycle phase of a Connection.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateDisconnecting
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnecting:
		return "disconnecting"
	default:
		return "unknown"
	}
}

// Conn is the minimal capability-connection contract the registry routes
// across. Connection implements it for subprocess servers; other transports
// can provide their own implementation.
type Conn interface {
	Name() string
	Description() string
	Enabled() bool
	Connected() bool
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Tools() []tool.FunctionDeclaration
	Call(ctx context.Context, toolName string, args any) (any, error)
}

// Connection manages the lifecycle of one external capability server:
// connect, discover, call, disconnect. Lifecycle operations on the same
// connection never interleave; operations on different connections are
// independent.
type Connection struct {
	cfg       config.MCPServerConfig
	transport Transport

	// lifecycleMu serializes Connect/Disconnect end to end, including
	// their suspension points. stateMu guards the fields below and is
	// only held for short, non-blocking sections.
	lifecycleMu sync.Mutex
	stateMu     sync.RWMutex
	state       State
	tools       []tool.FunctionDeclaration
	session     Session
}

// NewConnection creates a connection over the stdio transport.
func NewConnection(cfg config.MCPServerConfig) *Connection {
	return NewConnectionWithTransport(cfg, NewStdioTransport(cfg))
}

// NewConnectionWithTransport creates a connection over a caller-supplied
// transport.
func NewConnectionWithTransport(cfg config.MCPServerConfig, transport Transport) *Connection {
	return &Connection{
		cfg:       cfg,
		transport: transport,
	}
}

// Name returns the configured server name.
func (c *Connection) Name() string { return c.cfg.Name }

// Description returns the configured server description.
func (c *Connection) Description() string { return c.cfg.Description }

// Enabled reports whether the server should be auto-connected at startup.
func (c *Connection) Enabled() bool { return c.cfg.Enabled }

// Connected reports whether the connection currently holds a live session.
func (c *Connection) Connected() bool {
	return c.State() == StateConnected
}

// State returns the current lifecycle state.
func (c *Connection) State() State {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.state
}

// Tools returns the discovered tool catalogue. It is non-empty only while
// connected.
func (c *Connection) Tools() []tool.FunctionDeclaration {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()

	tools := make([]tool.FunctionDeclaration, len(c.tools))
	copy(tools, c.tools)
	return tools
}

// Connect launches the server subprocess, performs the handshake and
// discovers its tool catalogue. It is idempotent when already connected.
// Launch or handshake failure leaves the connection disconnected.
func (c *Connection) Connect(ctx context.Context) error {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	if c.State() == StateConnected {
		return nil
	}
	c.setState(StateConnecting)

	log.Info().Str("server", c.cfg.Name).Msg("Connecting to MCP server")

	session, err := c.transport.Connect(ctx)
	if err != nil {
		c.setState(StateDisconnected)
		return &ConnectionError{Server: c.cfg.Name, Err: err}
	}

	tools := c.discoverTools(ctx, session)

	c.stateMu.Lock()
	c.session = session
	c.tools = tools
	c.state = StateConnected
	c.stateMu.Unlock()

	log.Info().
		Str("server", c.cfg.Name).
		Int("tools", len(tools)).
		Msg("MCP server connected")

	return nil
}

// discoverTools fetches the catalogue and converts each entry. A tool whose
// schema fails conversion is logged and skipped; it never aborts the
// connect. A failed catalogue fetch yields an empty catalogue.
func (c *Connection) discoverTools(ctx context.Context, session Session) []tool.FunctionDeclaration {
	infos, err := session.ListTools(ctx)
	if err != nil {
		log.Warn().
			Err(err).
			Str("server", c.cfg.Name).
			Msg("Failed to list tools from MCP server")
		return nil
	}

	tools := make([]tool.FunctionDeclaration, 0, len(infos))
	for _, info := range infos {
		decl, err := toolToFunction(c.cfg.Name, info)
		if err != nil {
			log.Warn().
				Err(err).
				Str("server", c.cfg.Name).
				Str("tool", info.Name).
				Msg("Skipping MCP tool with unconvertible schema")
			continue
		}
		tools = append(tools, decl)
	}
	return tools
}

// Call performs exactly one round trip for the named tool. Arguments must be
// a JSON object or null; the shape is checked before any process
// interaction. A provider-reported failure surfaces as a CallError.
func (c *Connection) Call(ctx context.Context, toolName string, args any) (any, error) {
	argsMap, err := argumentsMap(args)
	if err != nil {
		return nil, err
	}

	c.stateMu.RLock()
	state := c.state
	session := c.session
	c.stateMu.RUnlock()

	if state != StateConnected || session == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotConnected, c.cfg.Name)
	}

	result, err := session.CallTool(ctx, toolName, argsMap)
	if err != nil {
		return nil, &CallError{Server: c.cfg.Name, Tool: toolName, Err: err}
	}
	return result, nil
}

// Disconnect requests a graceful shutdown and clears local state. It is
// idempotent, and it always completes regardless of the remote outcome.
func (c *Connection) Disconnect(ctx context.Context) error {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	c.stateMu.Lock()
	if c.state == StateDisconnected {
		c.stateMu.Unlock()
		return nil
	}
	c.state = StateDisconnecting
	session := c.session
	c.session = nil
	c.tools = nil
	c.stateMu.Unlock()

	log.Info().Str("server", c.cfg.Name).Msg("Disconnecting from MCP server")

	if session != nil {
		if err := session.Close(); err != nil {
			log.Warn().
				Err(err).
				Str("server", c.cfg.Name).
				Msg("Error during MCP server shutdown")
		}
	}

	c.setState(StateDisconnected)
	return nil
}

func (c *Connection) setState(state State) {
	c.stateMu.Lock()
	c.state = state
	c.stateMu.Unlock()
}

// argumentsMap normalizes tool arguments. Accepted shapes: nil, a decoded
// JSON object, or raw JSON encoding an object or null. Everything else is
// an InvalidArguments failure.
func argumentsMap(args any) (map[string]any, error) {
	switch v := args.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return v, nil
	case json.RawMessage:
		return rawArgumentsMap(v)
	case []byte:
		return rawArgumentsMap(v)
	default:
		return nil, fmt.Errorf("%w: got %T", ErrInvalidArguments, args)
	}
}

func rawArgumentsMap(raw []byte) (map[string]any, error) {
	var value any
	if len(raw) == 0 {
		return nil, nil
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	switch v := value.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return v, nil
	default:
		return nil, fmt.Errorf("%w: got %T", ErrInvalidArguments, value)
	}
}
