// Package tools defines tool contracts and implementations.
//
// Includes:
//   - ToolDefinition: name, description, JSON parameter schema, handler.
//   - GenerateSchema[T](): derive JSON Schema from Go structs.
//   - File tools: create_file, move_file, edit_file.
//   - Handlers accept the raw argument JSON from a tool-call request and
//     return a string result or an error; they never touch paths outside
//     the sandbox roots.
package tools
