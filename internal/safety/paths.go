// Package safety provides helpers for sandboxed file access.
package safety

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ToolError is a machine-readable error body for surfacing back to the model as JSON.
type ToolError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error returns a compact, single-line JSON string to keep tool result payloads small.
func (e ToolError) Error() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// InitSandboxRoot resolves absolute sandbox roots for read and write operations.
func InitSandboxRoot(readRoot, writeRoot string) (absRead string, absWrite string, err error) {
	// Default readRoot to CWD when empty
	if readRoot == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", "", fmt.Errorf("getwd: %w", err)
		}
		readRoot = cwd
	}

	// Default writeRoot to readRoot when empty
	if writeRoot == "" {
		writeRoot = readRoot
	}

	readRoot, err = filepath.Abs(readRoot)
	if err != nil {
		return "", "", fmt.Errorf("abs(readRoot): %w", err)
	}
	writeRoot, err = filepath.Abs(writeRoot)
	if err != nil {
		return "", "", fmt.Errorf("abs(writeRoot): %w", err)
	}

	// Resolve symlinks where possible so future boundary checks are reliable.
	// If EvalSymlinks fails (e.g., non-existent), fall back to the absolute path as-is.
	if r, err := filepath.EvalSymlinks(readRoot); err == nil {
		readRoot = r
	}
	if w, err := filepath.EvalSymlinks(writeRoot); err == nil {
		writeRoot = w
	}

	return readRoot, writeRoot, nil
}

// resolveInsideRoot resolves relPath against absRoot and returns the
// candidate absolute path plus its root-relative slash form. It rejects
// absolute inputs, parent traversal, and symlink escapes.
func resolveInsideRoot(absRoot, relPath string) (string, string, error) {
	if filepath.IsAbs(relPath) {
		return "", "", ToolError{Code: "ERR_PATH_OUTSIDE_SANDBOX", Message: "absolute paths are not allowed"}
	}

	cleaned := filepath.Clean(relPath)
	if cleaned == "" {
		cleaned = "."
	}

	candidate := filepath.Join(absRoot, cleaned)

	// Best-effort symlink resolution.
	// 1) Resolve the whole candidate if it exists.
	// 2) Otherwise, resolve the deepest existing ancestor (the parent dir)
	//    and rejoin the final segment. This reveals escapes via a symlinked parent.
	if resolved, err := filepath.EvalSymlinks(candidate); err == nil {
		candidate = resolved
	} else {
		parent := filepath.Dir(candidate)
		if resolvedParent, err2 := filepath.EvalSymlinks(parent); err2 == nil {
			candidate = filepath.Join(resolvedParent, filepath.Base(candidate))
		}
	}

	// Boundary check using filepath.Rel (robust against partial prefix matches)
	rel, err := filepath.Rel(absRoot, candidate)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", "", ToolError{Code: "ERR_PATH_OUTSIDE_SANDBOX", Message: "requested path resolves outside the sandbox root"}
	}

	return candidate, filepath.ToSlash(rel), nil
}

func underDir(rel, dir string) bool {
	return rel == dir || strings.HasPrefix(rel, dir+"/")
}

// ValidateRelPath resolves relPath for reading and denies reads under
// .git/ and .chat/. On violation, returns a ToolError.
func ValidateRelPath(absRoot, relPath string) (string, error) {
	candidate, rel, err := resolveInsideRoot(absRoot, relPath)
	if err != nil {
		return "", err
	}
	if underDir(rel, ".git") || underDir(rel, ".chat") {
		return "", ToolError{Code: "ERR_DENIED_READ", Message: "reads under .git/ or .chat/ are not allowed"}
	}
	return candidate, nil
}

// deniedWriteBasenames are never writable at any depth.
var deniedWriteBasenames = map[string]struct{}{
	"go.mod": {},
	"go.sum": {},
	".env":   {},
}

// ValidateWritePath resolves relPath for writing and denies writes under
// .git/ and .chat/ as well as writes to protected basenames at any depth.
// On violation, returns a ToolError.
func ValidateWritePath(absRoot, relPath string) (string, error) {
	candidate, rel, err := resolveInsideRoot(absRoot, relPath)
	if err != nil {
		return "", err
	}
	if underDir(rel, ".git") || underDir(rel, ".chat") {
		return "", ToolError{Code: "ERR_DENIED_WRITE", Message: "writes under .git/ or .chat/ are not allowed"}
	}
	if _, blocked := deniedWriteBasenames[filepath.Base(rel)]; blocked {
		return "", ToolError{Code: "ERR_DENIED_WRITE", Message: fmt.Sprintf("writes to %s are not allowed", filepath.Base(rel))}
	}
	return candidate, nil
}
