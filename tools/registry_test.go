package tools_test

import (
	"testing"

	"github.com/petasbytes/chat-cli/tools"
)

func TestRegistry_ToolCount(t *testing.T) {
	defs := tools.Registry()
	wantCount := 3 // create_file, move_file, edit_file
	if len(defs) != wantCount {
		t.Fatalf("unexpected number of tools: got %d want %d", len(defs), wantCount)
	}
}

func TestRegistry_ToolNames(t *testing.T) {
	defs := tools.Registry()
	want := map[string]struct{}{
		"create_file": {},
		"move_file":   {},
		"edit_file":   {},
	}

	// Unexpected names detected
	for _, d := range defs {
		if _, ok := want[d.Name]; !ok {
			t.Fatalf("unexpected tool in registry: %q", d.Name)
		}
	}

	// Missing expected names
	got := map[string]struct{}{}
	for _, d := range defs {
		got[d.Name] = struct{}{}
	}
	for name := range want {
		if _, ok := got[name]; !ok {
			t.Errorf("missing expected tool: %q", name)
		}
	}

	if t.Failed() {
		t.FailNow()
	}
}

func TestByName_Lookup(t *testing.T) {
	m := tools.ByName(tools.Registry())
	if len(m) != 3 {
		t.Fatalf("unexpected map size: %d", len(m))
	}
	d, ok := m["edit_file"]
	if !ok || d.Function == nil {
		t.Fatalf("edit_file missing or without handler")
	}
	if _, ok := m["delete_universe"]; ok {
		t.Fatal("unexpected entry for unregistered name")
	}
}

func TestRegistry_SchemasHaveRequiredParams(t *testing.T) {
	required := map[string][]string{
		"create_file": {"path", "content"},
		"move_file":   {"source", "destination"},
		"edit_file":   {"path", "old_str", "new_str"},
	}
	for _, d := range tools.Registry() {
		want := required[d.Name]
		if d.Parameters == nil {
			t.Fatalf("%s: nil parameter schema", d.Name)
		}
		got := map[string]struct{}{}
		for _, r := range d.Parameters.Required {
			got[r] = struct{}{}
		}
		for _, r := range want {
			if _, ok := got[r]; !ok {
				t.Errorf("%s: required param %q missing from schema", d.Name, r)
			}
		}
	}
}
