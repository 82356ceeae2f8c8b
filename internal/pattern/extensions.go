package pattern

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// extensionFile is the on-disk shape of a catalog extension.
// Example:
//
//	permission:
//	  - name: custom-approve
//	    pattern: '(?i)grant access\?'
//	error:
//	  - name: panic
//	    pattern: '(?im)^panic:\s*(.+)$'
//	    field: message
type extensionFile struct {
	Permission []extensionPattern `yaml:"permission"`
	Question   []extensionPattern `yaml:"question"`
	Error      []extensionPattern `yaml:"error"`
	ToolUse    []extensionPattern `yaml:"tool_use"`
	Working    []extensionPattern `yaml:"working"`
	Completion []extensionPattern `yaml:"completion"`
	Idle       []extensionPattern `yaml:"idle"`
}

type extensionPattern struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
	// Field names the map key for the pattern's first capture group.
	// Empty means the pattern extracts nothing.
	Field string `yaml:"field"`
}

// Catalog bundles every category's patterns for callers that want to extend
// the defaults without mutating the package-level tables.
type Catalog struct {
	Permission []SignalPattern
	Question   []SignalPattern
	Error      []SignalPattern
	ToolUse    []SignalPattern
	Working    []SignalPattern
	Completion []SignalPattern
	Idle       []SignalPattern
	PlanFile   []SignalPattern
}

// Default returns a copy of the built-in catalog.
func Default() Catalog {
	return Catalog{
		Permission: clonePatterns(Permission),
		Question:   clonePatterns(Question),
		Error:      clonePatterns(Error),
		ToolUse:    clonePatterns(ToolUse),
		Working:    clonePatterns(Working),
		Completion: clonePatterns(Completion),
		Idle:       clonePatterns(Idle),
		PlanFile:   clonePatterns(PlanFile),
	}
}

func clonePatterns(src []SignalPattern) []SignalPattern {
	out := make([]SignalPattern, len(src))
	copy(out, src)
	return out
}

// LoadExtensions reads a YAML catalog extension file and returns the default
// catalog with the user's patterns appended after the built-ins, so built-in
// subtype names stay stable. Patterns that fail to compile are skipped.
func LoadExtensions(path string) (Catalog, error) {
	cat := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cat, fmt.Errorf("failed to read pattern extensions: %w", err)
	}

	var ext extensionFile
	if err := yaml.Unmarshal(data, &ext); err != nil {
		return cat, fmt.Errorf("failed to parse pattern extensions: %w", err)
	}

	cat.Permission = append(cat.Permission, compileExtensions(CategoryPermission, ext.Permission)...)
	cat.Question = append(cat.Question, compileExtensions(CategoryQuestion, ext.Question)...)
	cat.Error = append(cat.Error, compileExtensions(CategoryError, ext.Error)...)
	cat.ToolUse = append(cat.ToolUse, compileExtensions(CategoryToolUse, ext.ToolUse)...)
	cat.Working = append(cat.Working, compileExtensions(CategoryWorking, ext.Working)...)
	cat.Completion = append(cat.Completion, compileExtensions(CategoryCompletion, ext.Completion)...)
	cat.Idle = append(cat.Idle, compileExtensions(CategoryIdle, ext.Idle)...)

	return cat, nil
}

// compileExtensions compiles user patterns, skipping invalid regexes.
func compileExtensions(cat Category, specs []extensionPattern) []SignalPattern {
	compiled := make([]SignalPattern, 0, len(specs))
	for _, spec := range specs {
		re, err := regexp.Compile(spec.Pattern)
		if err != nil {
			continue
		}
		p := SignalPattern{
			Category: cat,
			Name:     spec.Name,
			re:       re,
		}
		if spec.Field != "" {
			field := spec.Field
			p.extract = func(m []string) map[string]string {
				if len(m) < 2 || m[1] == "" {
					return nil
				}
				return map[string]string{field: m[1]}
			}
		}
		compiled = append(compiled, p)
	}
	return compiled
}
