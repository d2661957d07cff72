// Package mcp connects vela to external capability servers speaking the
// Model Context Protocol and exposes their tools through the shared
// function-calling types.
//
// Invariants:
// - A connection's tool catalogue is non-empty only while connected.
// - Lifecycle operations on one connection never interleave.
// - Namespaced identifiers are "mcp__<server>__<tool>" with both segments
//   non-empty; the server/tool boundary is the first "__" after the prefix.
//
// Usage:
//
//	registry := mcp.NewRegistry(cfg.MCPServers)
//	registry.ConnectAll(ctx)
//	result, err := registry.Dispatch(ctx, "mcp__files__read_file", map[string]any{"path": "/tmp/x"})
package mcp
