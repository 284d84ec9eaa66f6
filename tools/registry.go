package tools

// Registry returns all tool definitions wired for the chat session, in
// the order they are advertised to the model.
func Registry() []ToolDefinition {
	return []ToolDefinition{CreateFileDefinition, MoveFileDefinition, EditFileDefinition}
}

// ByName builds a name -> definition lookup table from defs. Built once
// at startup; unknown names are a plain map miss.
func ByName(defs []ToolDefinition) map[string]ToolDefinition {
	m := make(map[string]ToolDefinition, len(defs))
	for _, d := range defs {
		m[d.Name] = d
	}
	return m
}
