package tools

import (
	"encoding/json"
	"fmt"

	"github.com/petasbytes/chat-cli/internal/fsops"
)

type MoveFileInput struct {
	Source      string `json:"source" jsonschema_description:"Relative path of the existing file to move."`
	Destination string `json:"destination" jsonschema_description:"Relative path to move the file to."`
}

var MoveFileDefinition = ToolDefinition{
	Name:        "move_file",
	Description: "Move or rename a file within the workspace. Both paths are relative; parent directories for the destination are created as needed.",
	Parameters:  MoveFileInputSchema,
	Function:    MoveFile,
}

var MoveFileInputSchema = GenerateSchema[MoveFileInput]()

func MoveFile(input json.RawMessage) (string, error) {
	var in MoveFileInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", err
	}
	if in.Source == "" || in.Destination == "" {
		return "", fmt.Errorf("source and destination are required")
	}
	if in.Source == in.Destination {
		return "", fmt.Errorf("source and destination are the same path")
	}

	if err := fsops.MoveFile(in.Source, in.Destination); err != nil {
		return "", err
	}
	return fmt.Sprintf("Successfully moved %s to %s", in.Source, in.Destination), nil
}
