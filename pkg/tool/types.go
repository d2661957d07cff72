// Package tool defines the function-calling types shared by every tool
// backend: the call emitted by the model, the declaration advertised to it,
// and the parameter schema both sides agree on.
package tool

import (
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Call is a single tool invocation produced by the model.
// It is immutable once created.
type Call struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
	ID        string          `json:"id,omitempty"`
}

// FunctionDeclaration describes one callable tool as advertised to the model.
// Declarations are built once at discovery time and never mutated afterward.
type FunctionDeclaration struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  *JSONSchema `json:"parameters,omitempty"`
	// Agent marks declarations that belong to an agent definition rather
	// than a plain tool.
	Agent bool `json:"agent,omitempty"`
}

// JSONSchema is the internal parameter schema representation. Absent fields
// stay unset; nothing is defaulted on behalf of the provider. Properties keep
// their declaration order because it affects generated prompts.
type JSONSchema struct {
	Type        string                                      `json:"type,omitempty"`
	Description string                                      `json:"description,omitempty"`
	Properties  *orderedmap.OrderedMap[string, *JSONSchema] `json:"properties,omitempty"`
	Items       *JSONSchema                                 `json:"items,omitempty"`
	AnyOf       []*JSONSchema                               `json:"anyOf,omitempty"`
	Enum        []string                                    `json:"enum,omitempty"`
	Default     any                                         `json:"default,omitempty"`
	Required    []string                                    `json:"required,omitempty"`
}

// PropertyNames returns the property names in declaration order.
func (s *JSONSchema) PropertyNames() []string {
	if s == nil || s.Properties == nil {
		return nil
	}
	names := make([]string, 0, s.Properties.Len())
	for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Property returns the schema for a named property, or nil if absent.
func (s *JSONSchema) Property(name string) *JSONSchema {
	if s == nil || s.Properties == nil {
		return nil
	}
	prop, ok := s.Properties.Get(name)
	if !ok {
		return nil
	}
	return prop
}
