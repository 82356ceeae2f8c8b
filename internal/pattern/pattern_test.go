package pattern

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestPermissionPatterns(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantName   string
		wantFields map[string]string
	}{
		{
			name:     "bash prompt",
			input:    "Allow Bash command?",
			wantName: "bash",
		},
		{
			name:       "bash with command",
			input:      "Allow Bash (npm install) to run?",
			wantName:   "bash",
			wantFields: map[string]string{"command": "npm install"},
		},
		{
			name:       "edit with file",
			input:      "Allow Edit main.go?",
			wantName:   "file",
			wantFields: map[string]string{"tool": "edit", "file": "main.go"},
		},
		{
			name:       "mcp tool",
			input:      "Allow MCP server-github to access the repo?",
			wantName:   "tool",
			wantFields: map[string]string{"tool": "server-github"},
		},
		{
			name:     "generic confirm",
			input:    "Confirm deletion of 3 files?",
			wantName: "generic",
		},
		{
			name:     "bracketed yes no",
			input:    "Overwrite? [y/N]",
			wantName: "yes-no",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := FirstMatch(tt.input, Permission)
			if !ok {
				t.Fatalf("FirstMatch(%q) = no match, want %q", tt.input, tt.wantName)
			}
			if m.Name != tt.wantName {
				t.Errorf("FirstMatch(%q).Name = %q, want %q", tt.input, m.Name, tt.wantName)
			}
			if tt.wantFields != nil && !reflect.DeepEqual(m.Fields, tt.wantFields) {
				t.Errorf("FirstMatch(%q).Fields = %v, want %v", tt.input, m.Fields, tt.wantFields)
			}
		})
	}
}

func TestErrorPatternsExtractMessage(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		subtype string
	}{
		{"Error: boom", "boom", "error"},
		{"build failed: exit status 1", "exit status 1", "failed"},
		{"Unhandled exception: nil pointer", "nil pointer", "unhandled"},
		{"API Error: rate limited", "rate limited", "error"},
	}

	for _, tt := range tests {
		m, ok := FirstMatch(tt.input, Error)
		if !ok {
			t.Errorf("FirstMatch(%q) = no match", tt.input)
			continue
		}
		if m.Name != tt.subtype {
			t.Errorf("FirstMatch(%q).Name = %q, want %q", tt.input, m.Name, tt.subtype)
		}
		if got := m.Fields["message"]; got != tt.want {
			t.Errorf("FirstMatch(%q) message = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestWorkingPatterns(t *testing.T) {
	inputs := []string{
		"Thinking...",
		"⠋ compiling",
		"partial response▊",
		"⏺ Bash(ls -la)",
	}
	for _, input := range inputs {
		if !HasAny(input, Working) {
			t.Errorf("HasAny(%q, Working) = false, want true", input)
		}
	}

	if HasAny("plain output", Working) {
		t.Error("HasAny(plain output, Working) = true, want false")
	}
}

func TestMenuOptions(t *testing.T) {
	tests := []struct {
		name  string
		input string
		tail  int
		want  []string
	}{
		{
			name:  "numbered menu",
			input: "Choose an option:\n1. foo\n2. bar\n3. baz",
			tail:  15,
			want:  []string{"foo", "bar", "baz"},
		},
		{
			name:  "selector glyph",
			input: "❯ 1. Yes\n  2. No, keep planning",
			tail:  15,
			want:  []string{"Yes", "No, keep planning"},
		},
		{
			name:  "lettered fallback",
			input: "a) first\nb) second",
			tail:  15,
			want:  []string{"first", "second"},
		},
		{
			name:  "numbered wins over lettered",
			input: "a) old\n1. new\n2. newer",
			tail:  15,
			want:  []string{"new", "newer"},
		},
		{
			name:  "stale lines above tail ignored",
			input: "1. stale\n2. stale\nline\nline\nline\nline",
			tail:  4,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MenuOptions(tt.input, tt.tail)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MenuOptions() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDistinctCount(t *testing.T) {
	if got := DistinctCount([]string{"foo", "foo ", "bar"}); got != 2 {
		t.Errorf("DistinctCount = %d, want 2", got)
	}
	if got := DistinctCount(nil); got != 0 {
		t.Errorf("DistinctCount(nil) = %d, want 0", got)
	}
}

func TestStripANSI(t *testing.T) {
	input := "\x1b[31mError:\x1b[0m boom"
	want := "Error: boom"
	if got := StripANSI(input); got != want {
		t.Errorf("StripANSI(%q) = %q, want %q", input, got, want)
	}
}

func TestLastLines(t *testing.T) {
	got := LastLines("a\nb\nc\nd", 2)
	if !reflect.DeepEqual(got, []string{"c", "d"}) {
		t.Errorf("LastLines = %v, want [c d]", got)
	}

	got = LastLines("a\nb", 10)
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("LastLines = %v, want [a b]", got)
	}
}

func TestLastNonEmptyLines(t *testing.T) {
	got := LastNonEmptyLines("a\n\n  \nb\n\nc\n", 2)
	if !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Errorf("LastNonEmptyLines = %v, want [b c]", got)
	}
}

func TestPlanFileExtraction(t *testing.T) {
	m, ok := FirstMatch("Plan saved to docs/plan.md", PlanFile)
	if !ok {
		t.Fatal("FirstMatch(plan) = no match")
	}
	if got := m.Fields["path"]; got != "docs/plan.md" {
		t.Errorf("plan path = %q, want docs/plan.md", got)
	}
}

func TestLoadExtensions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "patterns.yaml")
	content := `error:
  - name: panic
    pattern: '(?im)^panic:\s*(.+)$'
    field: message
working:
  - name: broken
    pattern: '([invalid'
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cat, err := LoadExtensions(path)
	if err != nil {
		t.Fatalf("LoadExtensions() error = %v", err)
	}

	m, ok := FirstMatch("panic: runtime error", cat.Error)
	if !ok {
		t.Fatal("extension pattern did not match")
	}
	if m.Name != "panic" {
		t.Errorf("match name = %q, want panic", m.Name)
	}
	if got := m.Fields["message"]; got != "runtime error" {
		t.Errorf("extension message = %q, want runtime error", got)
	}

	// Invalid regex is skipped, built-ins untouched.
	if len(cat.Working) != len(Working) {
		t.Errorf("Working patterns = %d, want %d (invalid extension skipped)", len(cat.Working), len(Working))
	}
}

func TestLoadExtensionsMissingFile(t *testing.T) {
	cat, err := LoadExtensions("/nonexistent/patterns.yaml")
	if err == nil {
		t.Error("LoadExtensions(missing) error = nil, want error")
	}
	// Defaults are still usable.
	if len(cat.Permission) == 0 {
		t.Error("catalog missing built-in permission patterns")
	}
}
