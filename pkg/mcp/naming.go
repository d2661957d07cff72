package mcp

import (
	"fmt"
	"strings"
)

// ToolPrefix marks namespaced mcp tool identifiers. The format is
// "mcp__<server>__<tool>"; the double underscore lets server names contain
// single underscores without ambiguity. Server names must not themselves
// contain "__" (rejected at config validation).
const ToolPrefix = "mcp__"

const nameSeparator = "__"

// ToolName builds the namespaced identifier for a server/tool pair.
// Both segments must be non-empty.
func ToolName(server, toolName string) (string, error) {
	if server == "" || toolName == "" {
		return "", fmt.Errorf("%w: server=%q tool=%q", ErrMalformedName, server, toolName)
	}
	return ToolPrefix + server + nameSeparator + toolName, nil
}

// ParseToolName splits a namespaced identifier into server and tool segments.
// The boundary is the first "__" after the prefix.
func ParseToolName(name string) (server, toolName string, err error) {
	rest, ok := strings.CutPrefix(name, ToolPrefix)
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedName, name)
	}
	server, toolName, ok = strings.Cut(rest, nameSeparator)
	if !ok || server == "" || toolName == "" {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedName, name)
	}
	return server, toolName, nil
}

// IsTool reports whether a tool name targets an mcp server.
func IsTool(name string) bool {
	return strings.HasPrefix(name, ToolPrefix)
}

// ServerName extracts the server segment from a namespaced identifier.
// It returns false for anything that does not parse.
func ServerName(name string) (string, bool) {
	server, _, err := ParseToolName(name)
	if err != nil {
		return "", false
	}
	return server, true
}
