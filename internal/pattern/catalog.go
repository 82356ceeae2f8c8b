package pattern

import (
	"regexp"
	"strings"
)

// Permission patterns detect prompts that uniquely require human action.
// Tool-specific phrasings come first so the subtype name is as precise as
// possible; the generic forms catch everything else.
var Permission = []SignalPattern{
	compile(CategoryPermission, "bash",
		`(?i)allow bash(?: command)?(?:\s*\(([^)\n]*)\))?[^?\n]*\?`,
		func(m []string) map[string]string {
			if m[1] == "" {
				return nil
			}
			return map[string]string{"command": strings.TrimSpace(m[1])}
		}),
	compile(CategoryPermission, "file",
		`(?i)allow (edit|write|read)(?:\s*\(([^)\n]*)\)|\s+(\S+))?[^?\n]*\?`,
		func(m []string) map[string]string {
			fields := map[string]string{"tool": strings.ToLower(m[1])}
			if m[2] != "" {
				fields["file"] = strings.TrimSpace(m[2])
			} else if m[3] != "" {
				fields["file"] = strings.TrimSpace(m[3])
			}
			return fields
		}),
	compile(CategoryPermission, "tool",
		`(?i)allow (?:mcp|tool)(?:\s+(\S+))?[^?\n]*\?`,
		func(m []string) map[string]string {
			if m[1] == "" {
				return nil
			}
			return map[string]string{"tool": strings.TrimSpace(m[1])}
		}),
	compile(CategoryPermission, "generic",
		`(?i)\b(?:allow|confirm|approve)\b[^?\n]*\?`, nil),
	compile(CategoryPermission, "yes-no",
		`(?i)\[y(?:es)?/no?\]|\(y(?:es)?/no?\)`, nil),
}

// Question patterns detect an active prompt offering choices.
// Menu-option extraction is handled separately by MenuOptions so that only
// the tail of the window is scanned; older numbered lines are stale history.
var Question = []SignalPattern{
	compile(CategoryQuestion, "plan-approval",
		`(?i)would you like to proceed`, nil),
	compile(CategoryQuestion, "menu-numbered",
		`(?m)^\s*(?:❯\s*)?\d+[.)]\s+\S`, nil),
	compile(CategoryQuestion, "menu-lettered",
		`(?m)^\s*(?:❯\s*)?[a-z][.)]\s+\S`, nil),
	compile(CategoryQuestion, "yes-no",
		`(?im)^\s*(?:❯\s*)?yes\s*/\s*no\s*$`, nil),
}

// Error patterns capture the trailing message text as the "message" field.
var Error = []SignalPattern{
	compile(CategoryError, "error",
		`(?im)\berror:\s*(.+?)\s*$`, messageField),
	compile(CategoryError, "failed",
		`(?im)\bfailed:\s*(.+?)\s*$`, messageField),
	compile(CategoryError, "unhandled",
		`(?im)\b(?:uncaught|unhandled)\s+(?:exception|rejection|error)\b[:\s]*(.*?)\s*$`, messageField),
	compile(CategoryError, "exception",
		`(?im)\bexception\b[:\s]+(.+?)\s*$`, messageField),
	compile(CategoryError, "api-error",
		`(?im)\bapi error:\s*(.+?)\s*$`, messageField),
}

func messageField(m []string) map[string]string {
	if m[1] == "" {
		return nil
	}
	return map[string]string{"message": strings.TrimSpace(m[1])}
}

// ToolUse patterns detect tool invocations with a captured target.
var ToolUse = []SignalPattern{
	compile(CategoryToolUse, "run",
		`(?im)\brun(?:ning)?[:(]\s*(.+?)\)?\s*(?:…|\.{3})?\s*$`, targetField),
	compile(CategoryToolUse, "read",
		`(?im)\breading[:\s]\s*(\S+)`, targetField),
	compile(CategoryToolUse, "write",
		`(?im)\bwriting[:\s]\s*(\S+)`, targetField),
	compile(CategoryToolUse, "edit",
		`(?im)\bediting[:\s]\s*(\S+)`, targetField),
	compile(CategoryToolUse, "search",
		`(?im)\bsearching(?:\s+for)?[:\s]\s*(.+?)\s*$`, targetField),
}

func targetField(m []string) map[string]string {
	if m[1] == "" {
		return nil
	}
	return map[string]string{"target": strings.TrimSpace(m[1])}
}

// Working patterns detect active progress.
var Working = []SignalPattern{
	compile(CategoryWorking, "thinking",
		`(?i)\b(?:thinking|pondering|processing|analyzing|working)(?:…|\.{3})`, nil),
	compile(CategoryWorking, "spinner",
		`[⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏]`, nil),
	compile(CategoryWorking, "cursor",
		`[▊▌█]\s*$`, nil),
	compile(CategoryWorking, "tool-icon",
		`(?m)^[⏺✢✳✶✻✽]\s+\S`, nil),
}

// Completion patterns detect explicit task-finished markers.
var Completion = []SignalPattern{
	compile(CategoryCompletion, "checkmark", `[✓✔☑]`, nil),
	compile(CategoryCompletion, "success", `(?i)\bsuccessfully\b`, nil),
	compile(CategoryCompletion, "done",
		`(?im)\b(?:completed|done|finished)[.!]?\s*$`, nil),
}

// Idle patterns detect a session waiting at its prompt with nothing pending.
var Idle = []SignalPattern{
	compile(CategoryIdle, "prompt", `(?m)^\s*(?:>|❯|\$)\s*$`, nil),
	compile(CategoryIdle, "status-idle", `(?im)^\s*[●○]?\s*idle\b.*$`, nil),
	compile(CategoryIdle, "input-footer",
		`(?im)^\s*(?:enter|input|type|provide)\b[^:\n]*:\s*$`, nil),
}

// PlanFile patterns extract a plan document path as the "path" field.
var PlanFile = []SignalPattern{
	compile(CategoryPlanFile, "path",
		`(?i)\bplan(?:\s+(?:file|document))?\s*(?:saved|written|created)?\s*(?:to|at|:)\s*(\S+\.md)\b`,
		func(m []string) map[string]string {
			return map[string]string{"path": strings.TrimSpace(m[1])}
		}),
}

// TrailingPrompt matches a prompt glyph at the very end of a line.
// The classifier uses it as a softer idle fallback than the Idle patterns.
var TrailingPrompt = regexp.MustCompile(`(?:>|❯|\$)\s*$`)

var (
	numberedOption = regexp.MustCompile(`^\s*(?:❯\s*)?(\d+)[.)]\s+(.+?)\s*$`)
	letteredOption = regexp.MustCompile(`^\s*(?:❯\s*)?([a-z])[.)]\s+(.+?)\s*$`)
)

// MenuOptions scans the last n lines of text for an option menu and returns
// the option labels in display order. Numbered menus take precedence over
// lettered ones. Lines above the scanned tail are ignored: numbered lines in
// older output are history, not an active menu.
func MenuOptions(text string, n int) []string {
	lines := LastLines(text, n)

	var numbered []string
	var lettered []string
	for _, line := range lines {
		if m := numberedOption.FindStringSubmatch(line); m != nil {
			numbered = append(numbered, m[2])
			continue
		}
		if m := letteredOption.FindStringSubmatch(line); m != nil {
			lettered = append(lettered, m[2])
		}
	}

	if len(numbered) > 0 {
		return numbered
	}
	return lettered
}

// DistinctCount returns the number of distinct option labels.
// A live menu must offer at least two distinct choices; a single repeated
// label is noise.
func DistinctCount(options []string) int {
	seen := make(map[string]struct{}, len(options))
	for _, opt := range options {
		seen[strings.TrimSpace(opt)] = struct{}{}
	}
	return len(seen)
}
