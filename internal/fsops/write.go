package fsops

import (
	"os"
	"path/filepath"

	"github.com/petasbytes/chat-cli/internal/safety"
)

// WriteFile writes content to a file addressed by a relative path under the sandbox write root.
// It validates the path via safety and creates parent directories as needed.
func WriteFile(relPath, content string) error {
	_, writeRoot, err := getRoots()
	if err != nil {
		return err
	}

	absPath, err := safety.ValidateWritePath(writeRoot, relPath)
	if err != nil {
		return err // propagate ToolError unchanged
	}

	dir := filepath.Dir(absPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	return os.WriteFile(absPath, []byte(content), 0o644)
}

// Exists reports whether a relative path names an existing regular file
// under the read root. Policy violations propagate as errors.
func Exists(relPath string) (bool, error) {
	readRoot, _, err := getRoots()
	if err != nil {
		return false, err
	}
	absPath, err := safety.ValidateRelPath(readRoot, relPath)
	if err != nil {
		return false, err
	}
	fi, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return fi.Mode().IsRegular(), nil
}
