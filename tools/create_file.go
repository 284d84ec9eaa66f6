package tools

import (
	"encoding/json"
	"fmt"

	"github.com/petasbytes/chat-cli/internal/fsops"
)

type CreateFileInput struct {
	Path    string `json:"path" jsonschema_description:"Relative path of the file to create."`
	Content string `json:"content" jsonschema_description:"Full text content to write into the new file."`
}

var CreateFileDefinition = ToolDefinition{
	Name:        "create_file",
	Description: "Create a new text file at a relative path within the workspace, writing the given content. Fails if a file already exists at that path.",
	Parameters:  CreateFileInputSchema,
	Function:    CreateFile,
}

var CreateFileInputSchema = GenerateSchema[CreateFileInput]()

func CreateFile(input json.RawMessage) (string, error) {
	var in CreateFileInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", err
	}
	if in.Path == "" {
		return "", fmt.Errorf("path is required")
	}

	exists, err := fsops.Exists(in.Path)
	if err != nil {
		return "", err
	}
	if exists {
		return "", fmt.Errorf("file %s already exists; use edit_file to modify it", in.Path)
	}

	if err := fsops.WriteFile(in.Path, in.Content); err != nil {
		return "", err
	}
	return fmt.Sprintf("Successfully created file %s", in.Path), nil
}
