package classify

import (
	"strings"
	"time"

	"github.com/Iron-Ham/agentwatch/internal/pattern"
)

// Confidence holds the per-category confidence assigned to a classification.
// The defaults are empirically chosen and intended to be tuned against real
// transcripts, not treated as precision guarantees.
type Confidence struct {
	Permission float64
	Question   float64
	Error      float64
	ToolUse    float64
	Working    float64
	Complete   float64
	Idle       float64
	// IdleSoft is used for the trailing-prompt fallback, which is a weaker
	// idle signal than an explicit idle marker.
	IdleSoft float64
}

// DefaultConfidence returns the default confidence assignments.
func DefaultConfidence() Confidence {
	return Confidence{
		Permission: 0.9,
		Question:   0.85,
		Error:      0.8,
		ToolUse:    0.75,
		Working:    0.7,
		Complete:   0.6,
		Idle:       0.7,
		IdleSoft:   0.65,
	}
}

// Config holds classifier tuning knobs.
type Config struct {
	// WindowLines bounds how much trailing output is considered (default 50).
	WindowLines int

	// MenuLines bounds menu-option extraction to the window's tail (default
	// 15). Numbered lines above the tail are stale history, not a live menu.
	MenuLines int

	// IdleLines bounds idle-marker matching to the window's tail (default 5).
	IdleLines int

	// MinConfidence is the floor confidence assigned to StateUnknown
	// (default 0.3).
	MinConfidence float64

	Confidence Confidence

	Catalog pattern.Catalog
}

// DefaultConfig returns the default classifier configuration.
func DefaultConfig() Config {
	return Config{
		WindowLines:   50,
		MenuLines:     15,
		IdleLines:     5,
		MinConfidence: 0.3,
		Confidence:    DefaultConfidence(),
		Catalog:       pattern.Default(),
	}
}

// Classify analyzes output with the default configuration.
func Classify(output string) State {
	return ClassifyWith(output, DefaultConfig())
}

// ClassifyWith analyzes output and returns the single best-guess state.
//
// The priority order is fixed and total:
// permission > question > error > tool_use > working > complete > idle > unknown.
// Earlier categories suppress later ones even if both match, because states
// that need human action must never be masked by idle-looking trailing text.
func ClassifyWith(output string, cfg Config) State {
	cfg = fillDefaults(cfg)

	window := strings.Join(pattern.LastLines(output, cfg.WindowLines), "\n")
	window = pattern.StripANSI(window)
	now := time.Now()

	if m, ok := pattern.FirstMatch(window, cfg.Catalog.Permission); ok {
		return State{
			Type:       StatePermission,
			Detail:     permissionDetail(m),
			Confidence: cfg.Confidence.Permission,
			Timestamp:  now,
			RawWindow:  window,
		}
	}

	if st, ok := classifyQuestion(window, cfg, now); ok {
		return st
	}

	if m, ok := pattern.FirstMatch(window, cfg.Catalog.Error); ok {
		return State{
			Type:       StateError,
			Detail:     m.Fields["message"],
			Confidence: cfg.Confidence.Error,
			Timestamp:  now,
			RawWindow:  window,
		}
	}

	if m, ok := pattern.FirstMatch(window, cfg.Catalog.ToolUse); ok {
		detail := m.Name
		if target := m.Fields["target"]; target != "" {
			detail = m.Name + ": " + target
		}
		return State{
			Type:       StateToolUse,
			Detail:     detail,
			Confidence: cfg.Confidence.ToolUse,
			Timestamp:  now,
			RawWindow:  window,
		}
	}

	if m, ok := pattern.FirstMatch(window, cfg.Catalog.Working); ok {
		return State{
			Type:       StateWorking,
			Detail:     m.Name,
			Confidence: cfg.Confidence.Working,
			Timestamp:  now,
			RawWindow:  window,
		}
	}

	if m, ok := pattern.FirstMatch(window, cfg.Catalog.Completion); ok {
		return State{
			Type:       StateComplete,
			Detail:     m.Name,
			Confidence: cfg.Confidence.Complete,
			Timestamp:  now,
			RawWindow:  window,
		}
	}

	if st, ok := classifyIdle(window, cfg, now); ok {
		return st
	}

	return State{
		Type:       StateUnknown,
		Confidence: cfg.MinConfidence,
		Timestamp:  now,
		RawWindow:  window,
	}
}

// classifyQuestion applies the menu rules: option extraction is restricted to
// the window's tail, and a menu must offer at least two distinct options (or
// be a plan-approval phrase) to count as a live question.
func classifyQuestion(window string, cfg Config, now time.Time) (State, bool) {
	m, ok := pattern.FirstMatch(window, cfg.Catalog.Question)
	if !ok {
		return State{}, false
	}

	st := State{
		Type:       StateQuestion,
		Detail:     m.Name,
		Confidence: cfg.Confidence.Question,
		Timestamp:  now,
		RawWindow:  window,
	}

	switch m.Name {
	case "plan-approval":
		st.Options = pattern.MenuOptions(window, cfg.MenuLines)
		return st, true
	case "yes-no":
		st.Options = []string{"Yes", "No"}
		return st, true
	default:
		options := pattern.MenuOptions(window, cfg.MenuLines)
		if pattern.DistinctCount(options) < 2 {
			// Fewer than two distinct options is noise, not a live prompt.
			return State{}, false
		}
		st.Options = options
		return st, true
	}
}

// classifyIdle matches idle markers against the window's last few lines only,
// with a softer fallback for a trailing bare prompt character.
func classifyIdle(window string, cfg Config, now time.Time) (State, bool) {
	tail := strings.Join(pattern.LastLines(window, cfg.IdleLines), "\n")

	if m, ok := pattern.FirstMatch(tail, cfg.Catalog.Idle); ok {
		return State{
			Type:       StateIdle,
			Detail:     m.Name,
			Confidence: cfg.Confidence.Idle,
			Timestamp:  now,
			RawWindow:  window,
		}, true
	}

	last := pattern.LastNonEmptyLines(tail, 1)
	if len(last) == 1 && pattern.TrailingPrompt.MatchString(last[0]) {
		return State{
			Type:       StateIdle,
			Detail:     "trailing-prompt",
			Confidence: cfg.Confidence.IdleSoft,
			Timestamp:  now,
			RawWindow:  window,
		}, true
	}

	return State{}, false
}

func permissionDetail(m pattern.Match) string {
	switch {
	case m.Fields["command"] != "":
		return m.Name + ": " + m.Fields["command"]
	case m.Fields["file"] != "":
		return m.Name + ": " + m.Fields["file"]
	case m.Fields["tool"] != "":
		return m.Name + ": " + m.Fields["tool"]
	default:
		return m.Name
	}
}

// fillDefaults backfills zero-valued knobs so a partially specified Config
// still classifies sensibly.
func fillDefaults(cfg Config) Config {
	def := DefaultConfig()
	if cfg.WindowLines <= 0 {
		cfg.WindowLines = def.WindowLines
	}
	if cfg.MenuLines <= 0 {
		cfg.MenuLines = def.MenuLines
	}
	if cfg.IdleLines <= 0 {
		cfg.IdleLines = def.IdleLines
	}
	if cfg.MinConfidence <= 0 {
		cfg.MinConfidence = def.MinConfidence
	}
	if cfg.Confidence == (Confidence{}) {
		cfg.Confidence = def.Confidence
	}
	if cfg.Catalog.Permission == nil {
		cfg.Catalog = def.Catalog
	}
	return cfg
}
