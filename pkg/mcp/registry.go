package mcp

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/harun/vela/internal/config"
	"github.com/harun/vela/pkg/tool"
)

// Registry owns the set of named capability connections, aggregates their
// discovered tools and routes calls by namespaced identifier.
type Registry struct {
	// mu is exclusive only during registration; lookups share it.
	mu    sync.RWMutex
	conns map[string]Conn
}

// ServerStatus is one row of the server listing.
type ServerStatus struct {
	Name        string
	Connected   bool
	Description string
}

// NewRegistry creates a registry with one stdio connection per configured
// server.
func NewRegistry(servers []config.MCPServerConfig) *Registry {
	r := &Registry{
		conns: make(map[string]Conn, len(servers)),
	}
	for _, cfg := range servers {
		r.conns[cfg.Name] = NewConnection(cfg)
	}
	return r
}

// Register adds a connection for a non-default transport. It fails on a
// duplicate name.
func (r *Registry) Register(conn Conn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.conns[conn.Name()]; exists {
		return fmt.Errorf("mcp server %q already registered", conn.Name())
	}
	r.conns[conn.Name()] = conn
	return nil
}

func (r *Registry) conn(name string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[name]
	return conn, ok
}

// Connect connects the named server.
func (r *Registry) Connect(ctx context.Context, name string) error {
	conn, ok := r.conn(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrServerNotFound, name)
	}
	return conn.Connect(ctx)
}

// Disconnect disconnects the named server.
func (r *Registry) Disconnect(ctx context.Context, name string) error {
	conn, ok := r.conn(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrServerNotFound, name)
	}
	return conn.Disconnect(ctx)
}

// ConnectAll connects every enabled server concurrently. A failing server is
// logged and does not abort its siblings; partial success is expected.
func (r *Registry) ConnectAll(ctx context.Context) {
	var wg sync.WaitGroup
	for _, conn := range r.connections() {
		if !conn.Enabled() {
			continue
		}
		wg.Add(1)
		go func(conn Conn) {
			defer wg.Done()
			if err := conn.Connect(ctx); err != nil {
				log.Warn().
					Err(err).
					Str("server", conn.Name()).
					Msg("Failed to connect to MCP server")
			}
		}(conn)
	}
	wg.Wait()
}

// DisconnectAll disconnects every connection.
func (r *Registry) DisconnectAll(ctx context.Context) {
	var wg sync.WaitGroup
	for _, conn := range r.connections() {
		wg.Add(1)
		go func(conn Conn) {
			defer wg.Done()
			if err := conn.Disconnect(ctx); err != nil {
				log.Warn().
					Err(err).
					Str("server", conn.Name()).
					Msg("Failed to disconnect MCP server")
			}
		}(conn)
	}
	wg.Wait()
}

// Tools aggregates the catalogues of all currently connected servers.
func (r *Registry) Tools() []tool.FunctionDeclaration {
	var tools []tool.FunctionDeclaration
	for _, conn := range r.connections() {
		if conn.Connected() {
			tools = append(tools, conn.Tools()...)
		}
	}
	return tools
}

// ServerTools returns the catalogue of one named server.
func (r *Registry) ServerTools(name string) ([]tool.FunctionDeclaration, error) {
	conn, ok := r.conn(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrServerNotFound, name)
	}
	return conn.Tools(), nil
}

// Dispatch parses a namespaced identifier, locates the owning connection and
// forwards the call. The result is passed through unvalidated.
func (r *Registry) Dispatch(ctx context.Context, name string, args any) (any, error) {
	server, toolName, err := ParseToolName(name)
	if err != nil {
		return nil, err
	}

	conn, ok := r.conn(server)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrServerNotFound, server)
	}

	return conn.Call(ctx, toolName, args)
}

// Servers lists all configured servers sorted by name for deterministic
// presentation.
func (r *Registry) Servers() []ServerStatus {
	conns := r.connections()

	statuses := make([]ServerStatus, 0, len(conns))
	for _, conn := range conns {
		statuses = append(statuses, ServerStatus{
			Name:        conn.Name(),
			Connected:   conn.Connected(),
			Description: conn.Description(),
		})
	}
	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Name < statuses[j].Name
	})
	return statuses
}

func (r *Registry) connections() []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]Conn, 0, len(r.conns))
	for _, conn := range r.conns {
		conns = append(conns, conn)
	}
	return conns
}
