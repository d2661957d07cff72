// Package schemaconv converts provider-declared JSON schemas into the
// internal parameter schema shared by all tool backends.
package schemaconv

import (
	"bytes"
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/harun/vela/pkg/tool"
)

// MaxDepth bounds schema recursion. Well-formed schemas are shallow; anything
// deeper is treated as adversarial input.
const MaxDepth = 32

// rawSchema mirrors the subset of JSON Schema the internal representation
// understands. Properties decode through an ordered map so declaration order
// survives the round trip.
type rawSchema struct {
	Type        string                                          `json:"type"`
	Description string                                          `json:"description"`
	Properties  *orderedmap.OrderedMap[string, json.RawMessage] `json:"properties"`
	Required    []string                                        `json:"required"`
	Items       json.RawMessage                                 `json:"items"`
	AnyOf       []json.RawMessage                               `json:"anyOf"`
	Enum        []any                                           `json:"enum"`
	Default     json.RawMessage                                 `json:"default"`
}

// Convert maps a provider-declared schema document onto the internal
// representation. Empty or JSON-null input converts to an empty schema.
// Absent fields stay unset; nothing is defaulted on behalf of the provider.
func Convert(raw json.RawMessage) (*tool.JSONSchema, error) {
	return convert(raw, 0)
}

func convert(raw json.RawMessage, depth int) (*tool.JSONSchema, error) {
	if depth > MaxDepth {
		return nil, fmt.Errorf("schema nesting exceeds %d levels", MaxDepth)
	}
	if isJSONNull(raw) {
		return &tool.JSONSchema{}, nil
	}

	var rs rawSchema
	if err := json.Unmarshal(raw, &rs); err != nil {
		return nil, fmt.Errorf("schema is not a JSON object: %w", err)
	}

	out := &tool.JSONSchema{
		Type:        rs.Type,
		Description: rs.Description,
		Required:    rs.Required,
	}

	if !isJSONNull(rs.Default) {
		var def any
		if err := json.Unmarshal(rs.Default, &def); err != nil {
			return nil, fmt.Errorf("default: %w", err)
		}
		out.Default = def
	}

	if rs.Properties != nil {
		converted := orderedmap.New[string, *tool.JSONSchema]()
		for pair := rs.Properties.Oldest(); pair != nil; pair = pair.Next() {
			child, err := convert(pair.Value, depth+1)
			if err != nil {
				return nil, fmt.Errorf("property %q: %w", pair.Key, err)
			}
			converted.Set(pair.Key, child)
		}
		out.Properties = converted
	}

	if !isJSONNull(rs.Items) {
		child, err := convert(rs.Items, depth+1)
		if err != nil {
			return nil, fmt.Errorf("items: %w", err)
		}
		out.Items = child
	}

	if rs.AnyOf != nil {
		alts := make([]*tool.JSONSchema, 0, len(rs.AnyOf))
		for i, alt := range rs.AnyOf {
			child, err := convert(alt, depth+1)
			if err != nil {
				return nil, fmt.Errorf("anyOf[%d]: %w", i, err)
			}
			alts = append(alts, child)
		}
		out.AnyOf = alts
	}

	if rs.Enum != nil {
		values := make([]string, 0, len(rs.Enum))
		for _, e := range rs.Enum {
			if v, ok := e.(string); ok {
				values = append(values, v)
			}
		}
		out.Enum = values
	}

	return out, nil
}

func isJSONNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
