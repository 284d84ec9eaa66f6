package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/petasbytes/chat-cli/internal/expand"
	"github.com/petasbytes/chat-cli/internal/responses"
)

func TestConsoleObserver_ToolDispatch(t *testing.T) {
	var buf bytes.Buffer
	obs := newConsoleObserver(&buf)

	obs.ToolDispatch("edit_file", map[string]any{"path": "notes.txt"})

	out := buf.String()
	if !strings.Contains(out, "edit_file") || !strings.Contains(out, "notes.txt") {
		t.Fatalf("dispatch line missing tool or args: %q", out)
	}
}

func TestConsoleObserver_ToolResult_SilentOnSuccess(t *testing.T) {
	var buf bytes.Buffer
	obs := newConsoleObserver(&buf)

	obs.ToolResult("edit_file", "Successfully edited", false)
	if buf.Len() != 0 {
		t.Fatalf("expected no output for success, got %q", buf.String())
	}

	obs.ToolResult("edit_file", "file not found", true)
	if !strings.Contains(buf.String(), "edit_file") {
		t.Fatalf("failure line missing tool name: %q", buf.String())
	}
}

func TestConsoleObserver_ExpandWarning(t *testing.T) {
	var buf bytes.Buffer
	obs := newConsoleObserver(&buf)

	obs.ExpandWarning(expand.Warning{Ref: "missing.txt", Reason: "not found"})

	out := buf.String()
	if !strings.Contains(out, "@missing.txt") || !strings.Contains(out, "not found") {
		t.Fatalf("warning line incomplete: %q", out)
	}
}

func TestConsoleObserver_SearchSources(t *testing.T) {
	var buf bytes.Buffer
	obs := newConsoleObserver(&buf)

	obs.SearchSources([]responses.Source{
		{Title: "Example", URL: "https://example.com"},
		{URL: "https://bare.example"},
	})

	out := buf.String()
	for _, want := range []string{"sources:", "Example", "https://example.com", "https://bare.example"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
}
