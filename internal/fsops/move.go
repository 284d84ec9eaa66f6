package fsops

import (
	"os"
	"path/filepath"

	"github.com/petasbytes/chat-cli/internal/safety"
)

// MoveFile renames a file from one relative path to another, both under
// the sandbox write root. The source must be an existing regular file;
// parent directories for the destination are created as needed.
func MoveFile(srcRel, dstRel string) error {
	_, writeRoot, err := getRoots()
	if err != nil {
		return err
	}

	absSrc, err := safety.ValidateWritePath(writeRoot, srcRel)
	if err != nil {
		return err
	}
	absDst, err := safety.ValidateWritePath(writeRoot, dstRel)
	if err != nil {
		return err
	}

	fi, err := os.Stat(absSrc)
	if err != nil {
		return err
	}
	if fi.IsDir() {
		return safety.ToolError{Code: "ERR_NOT_A_FILE", Message: "source path is a directory"}
	}

	if err := os.MkdirAll(filepath.Dir(absDst), 0o755); err != nil {
		return err
	}
	return os.Rename(absSrc, absDst)
}
