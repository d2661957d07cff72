package mcp

import (
	"github.com/harun/vela/pkg/schemaconv"
	"github.com/harun/vela/pkg/tool"
)

// toolToFunction converts one discovered catalogue entry into the internal
// function declaration, namespacing its name with the server. A conversion
// failure fails this single tool only.
func toolToFunction(server string, info ToolInfo) (tool.FunctionDeclaration, error) {
	name, err := ToolName(server, info.Name)
	if err != nil {
		return tool.FunctionDeclaration{}, &SchemaError{Tool: info.Name, Err: err}
	}

	params, err := schemaconv.Convert(info.InputSchema)
	if err != nil {
		return tool.FunctionDeclaration{}, &SchemaError{Tool: info.Name, Err: err}
	}

	return tool.FunctionDeclaration{
		Name:        name,
		Description: info.Description,
		Parameters:  params,
	}, nil
}
