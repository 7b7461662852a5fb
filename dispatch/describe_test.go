package dispatch

import (
	"strings"
	"testing"

	"go.bytecodealliance.org/wit"
)

func TestKebab(t *testing.T) {
	tests := map[string]string{
		"create":             "create",
		"getPreset":          "get-preset",
		"GetNumberOfHandles": "get-number-of-handles",
		"objref_host":        "objref-host",
		"v2Value":            "v2-value",
	}
	for in, want := range tests {
		if got := kebab(in); got != want {
			t.Errorf("kebab(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCommand_Signature(t *testing.T) {
	set := DefaultSet()
	tests := map[string]string{
		"create":    "func(preset: f64) -> u32",
		"count":     "func() -> u64",
		"compute":   "func(handle: u32, factor: f64) -> f64",
		"getPreset": "func(handle: u32) -> f64",
		"delete":    "func(handle: u32)",
	}
	for name, want := range tests {
		c, ok := set.Lookup(name)
		if !ok {
			t.Fatalf("command %q missing", name)
		}
		if got := c.Signature(); got != want {
			t.Errorf("%s: got %q, want %q", name, got, want)
		}
	}

	multi := Command{
		Name:    "split",
		Params:  []Param{{Name: "value", Type: wit.F64{}}},
		Results: []Param{{Name: "whole", Type: wit.S64{}}, {Name: "fracPart", Type: wit.F64{}}},
	}
	if got, want := multi.Signature(), "func(value: f64) -> (whole: s64, frac-part: f64)"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSet_WIT(t *testing.T) {
	out := DefaultSet().WIT("objref")

	if !strings.HasPrefix(out, "interface objref {\n") {
		t.Fatalf("unexpected header:\n%s", out)
	}
	for _, line := range []string{
		"    /// keyword: create, aliases: New\n    create: func(preset: f64) -> u32;",
		"    /// keyword: getPreset, aliases: GetPreset\n    get-preset: func(handle: u32) -> f64;",
		"    delete: func(handle: u32);",
	} {
		if !strings.Contains(out, line) {
			t.Errorf("missing %q in:\n%s", line, out)
		}
	}
	if !strings.HasSuffix(out, "}\n") {
		t.Errorf("unterminated interface:\n%s", out)
	}
}

func TestNewSet_Rejects(t *testing.T) {
	noop := func(*Exec) ([]Value, error) { return nil, nil }
	tests := []struct {
		name string
		cmds []Command
	}{
		{"empty name", []Command{{Run: noop}}},
		{"no handler", []Command{{Name: "a"}}},
		{"duplicate name", []Command{{Name: "a", Run: noop}, {Name: "a", Run: noop}}},
		{"alias clash", []Command{{Name: "a", Run: noop}, {Name: "b", Aliases: []string{"a"}, Run: noop}}},
		{"empty alias", []Command{{Name: "a", Aliases: []string{""}, Run: noop}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSet(tt.cmds...); err == nil {
				t.Error("expected error")
			}
		})
	}
}
