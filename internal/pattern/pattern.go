// Package pattern declares the catalog of textual signatures used to infer
// what an interactive AI coding agent is doing from its terminal output.
// Each category groups ordered SignalPatterns; matching is attempted against
// ANSI-stripped text and is stateless and side-effect-free.
package pattern

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Category identifies the kind of signal a pattern detects.
type Category int

const (
	// CategoryPermission detects prompts that require explicit human approval.
	// Highest priority: a pending permission always wins over other matches.
	CategoryPermission Category = iota

	// CategoryQuestion detects multiple-choice menus, yes/no footers, and
	// plan-approval prompts.
	CategoryQuestion

	// CategoryError detects error and failure messages with a trailing detail.
	CategoryError

	// CategoryToolUse detects tool invocations (run/read/write/edit/search)
	// with a captured target.
	CategoryToolUse

	// CategoryWorking detects active-progress markers: thinking ellipses,
	// spinner glyphs, streaming cursors, tool-icon activity lines.
	CategoryWorking

	// CategoryCompletion detects checkmarks and completion phrasings.
	CategoryCompletion

	// CategoryIdle detects a bare prompt, an idle status-bar marker, or a
	// generic input footer.
	CategoryIdle

	// CategoryPlanFile extracts a plan document path for downstream
	// consumption. It is not a state by itself.
	CategoryPlanFile
)

// String returns a human-readable name for the category.
func (c Category) String() string {
	switch c {
	case CategoryPermission:
		return "permission"
	case CategoryQuestion:
		return "question"
	case CategoryError:
		return "error"
	case CategoryToolUse:
		return "tool_use"
	case CategoryWorking:
		return "working"
	case CategoryCompletion:
		return "completion"
	case CategoryIdle:
		return "idle"
	case CategoryPlanFile:
		return "plan_file"
	default:
		return "unknown"
	}
}

// Extractor maps a regex submatch slice to a named field map.
// It may return nil when the match carries no extractable fields.
type Extractor func(match []string) map[string]string

// SignalPattern is one textual signature belonging to a category.
// Patterns are immutable after construction.
type SignalPattern struct {
	Category Category
	// Name is the subtype within the category, e.g. "bash" or "menu-numbered".
	Name    string
	re      *regexp.Regexp
	extract Extractor
}

// Match records a pattern hit within a text window.
type Match struct {
	Category Category
	Name     string
	// Raw is the full text matched by the pattern.
	Raw string
	// Fields holds extracted fields, if the pattern has an extractor.
	Fields map[string]string
}

// compile builds a SignalPattern from a regex source.
// Catalog sources are package constants, so compilation failures panic at init.
func compile(cat Category, name, expr string, extract Extractor) SignalPattern {
	return SignalPattern{
		Category: cat,
		Name:     name,
		re:       regexp.MustCompile(expr),
		extract:  extract,
	}
}

// MatchAll returns every pattern hit in text, in pattern order.
func MatchAll(text string, patterns []SignalPattern) []Match {
	var matches []Match
	for i := range patterns {
		p := &patterns[i]
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		hit := Match{
			Category: p.Category,
			Name:     p.Name,
			Raw:      m[0],
		}
		if p.extract != nil {
			hit.Fields = p.extract(m)
		}
		matches = append(matches, hit)
	}
	return matches
}

// HasAny reports whether text matches at least one of the patterns.
func HasAny(text string, patterns []SignalPattern) bool {
	for i := range patterns {
		if patterns[i].re.MatchString(text) {
			return true
		}
	}
	return false
}

// FirstMatch returns the first pattern hit in text, in pattern order.
func FirstMatch(text string, patterns []SignalPattern) (Match, bool) {
	for i := range patterns {
		p := &patterns[i]
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		hit := Match{
			Category: p.Category,
			Name:     p.Name,
			Raw:      m[0],
		}
		if p.extract != nil {
			hit.Fields = p.extract(m)
		}
		return hit, true
	}
	return Match{}, false
}

// StripANSI removes ANSI escape sequences from text.
// Captured terminal output arrives with colors and cursor movement intact;
// all catalog matching happens on the stripped form.
func StripANSI(text string) string {
	return ansi.Strip(text)
}

// LastLines returns the last n lines of text, preserving blank lines.
func LastLines(text string, n int) []string {
	lines := strings.Split(text, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}

// LastNonEmptyLines returns the last n non-empty lines of text, trimmed.
func LastNonEmptyLines(text string, n int) []string {
	lines := strings.Split(text, "\n")
	result := make([]string, 0, n)
	for i := len(lines) - 1; i >= 0 && len(result) < n; i-- {
		line := strings.TrimSpace(lines[i])
		if line != "" {
			result = append([]string{line}, result...)
		}
	}
	return result
}
