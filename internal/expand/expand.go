// Package expand substitutes inline @path file references with the
// referenced file's contents before the text is sent to the model.
package expand

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// refPattern matches a marker character followed by a non-whitespace
// path, terminated by whitespace or end of string.
var refPattern = regexp.MustCompile(`@(\S+)`)

// Warning describes one reference that could not be expanded. The turn
// proceeds with the token left as-is; warnings are for display only.
type Warning struct {
	Ref    string
	Reason string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Ref, w.Reason)
}

// Expand scans text for @path references and replaces each with a
// delimited block holding the file's literal contents. References that
// do not resolve to an existing regular file are left untouched and
// reported as warnings. Expand never fails: every error becomes a
// warning, and the returned text is never shorter than the input.
//
// Each occurrence is expanded independently; the same file referenced
// twice is read twice.
func Expand(text string) (string, []Warning) {
	matches := refPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, nil
	}

	var warnings []Warning
	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		path := text[m[2]:m[3]]

		b.WriteString(text[last:start])
		last = end

		content, warn := readReference(path)
		if warn != nil {
			warnings = append(warnings, *warn)
			b.WriteString(text[start:end]) // token left unmodified
			continue
		}
		fmt.Fprintf(&b, "\n--- Content from %s ---\n%s\n--- End of %s ---\n", path, content, path)
	}
	b.WriteString(text[last:])
	return b.String(), warnings
}

// readReference resolves and reads one referenced path. It supports
// home-directory expansion and both relative and absolute forms.
func readReference(path string) (string, *Warning) {
	resolved := path
	if resolved == "~" || strings.HasPrefix(resolved, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", &Warning{Ref: path, Reason: "cannot resolve home directory"}
		}
		resolved = filepath.Join(home, strings.TrimPrefix(resolved, "~"))
	}

	fi, err := os.Stat(resolved)
	if err != nil || !fi.Mode().IsRegular() {
		return "", &Warning{Ref: path, Reason: "not found"}
	}

	b, err := os.ReadFile(resolved)
	if err != nil {
		return "", &Warning{Ref: path, Reason: err.Error()}
	}
	return string(b), nil
}
