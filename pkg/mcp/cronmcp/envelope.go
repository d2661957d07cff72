package cronmcp

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// envelope is the response convention cron MCP servers use for every tool.
type envelope struct {
	Tool   string          `json:"tool"`
	OK     bool            `json:"ok"`
	Status string          `json:"status"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *envelopeError  `json:"error,omitempty"`
}

type envelopeError struct {
	Message string `json:"message"`
}

func (e *envelope) errorMessage() string {
	if e.Error != nil && e.Error.Message != "" {
		return e.Error.Message
	}
	return fmt.Sprintf("status %q", e.Status)
}

// envelopeSchema guards against servers that drift from the convention; a
// malformed envelope is rejected before any field is interpreted.
var envelopeSchema = gojsonschema.NewStringLoader(`{
	"type": "object",
	"required": ["tool", "ok", "status"],
	"properties": {
		"tool": {"type": "string"},
		"ok": {"type": "boolean"},
		"status": {"type": "string"},
		"error": {
			"type": "object",
			"properties": {"message": {"type": "string"}}
		}
	}
}`)

// parseEnvelope accepts either a bare envelope object or a CallToolResult
// shape whose first content block carries the envelope as JSON text.
func parseEnvelope(raw any) (*envelope, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("unencodable tool result: %w", err)
	}

	var probe struct {
		Tool    *string `json:"tool"`
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("unrecognized tool result shape: %w", err)
	}

	// Bare envelope.
	if probe.Tool != nil {
		return decodeEnvelope(data)
	}

	// Envelope serialized into the first content block.
	if len(probe.Content) > 0 {
		text := strings.TrimSpace(probe.Content[0].Text)
		if text == "" {
			return nil, fmt.Errorf("empty content in tool result")
		}
		return decodeEnvelope([]byte(text))
	}

	return nil, fmt.Errorf("unrecognized tool result shape")
}

func decodeEnvelope(data []byte) (*envelope, error) {
	validation, err := gojsonschema.Validate(envelopeSchema, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid tool envelope: %w", err)
	}
	if !validation.Valid() {
		var reasons []string
		for _, desc := range validation.Errors() {
			reasons = append(reasons, desc.String())
		}
		return nil, fmt.Errorf("invalid tool envelope: %s", strings.Join(reasons, "; "))
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode tool envelope: %w", err)
	}
	return &env, nil
}
