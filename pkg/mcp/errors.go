package mcp

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected is returned when a call reaches a server that has no
	// live session.
	ErrNotConnected = errors.New("mcp server not connected")

	// ErrServerNotFound is returned when a name does not match any
	// configured server.
	ErrServerNotFound = errors.New("mcp server not found")

	// ErrMalformedName is returned for namespaced tool identifiers that do
	// not parse as "mcp__<server>__<tool>" with both segments non-empty.
	ErrMalformedName = errors.New("malformed mcp tool name")

	// ErrInvalidArguments is returned before any process interaction when
	// tool arguments are neither a JSON object nor null.
	ErrInvalidArguments = errors.New("tool arguments must be a JSON object or null")
)

// ConnectionError reports a failed connect attempt against a named server.
type ConnectionError struct {
	Server string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to mcp server %q: %v", e.Server, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// CallError wraps a provider-reported failure for one tool round trip.
type CallError struct {
	Server string
	Tool   string
	Err    error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("tool %q on mcp server %q failed: %v", e.Tool, e.Server, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

// SchemaError marks a single discovered tool whose schema failed conversion.
// It fails that tool's registration only; the connection itself proceeds.
type SchemaError struct {
	Tool string
	Err  error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("failed to convert schema for mcp tool %q: %v", e.Tool, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }
