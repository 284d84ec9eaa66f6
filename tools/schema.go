package tools

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// ToolDefinition couples a tool's advertised schema with its local handler.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  *jsonschema.Schema
	Function    func(input json.RawMessage) (string, error)
}

// GenerateSchema derives a flat JSON Schema object from a Go struct type.
// Fields marked omitempty are optional; everything else is required.
func GenerateSchema[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)
	schema.Version = ""
	return schema
}
