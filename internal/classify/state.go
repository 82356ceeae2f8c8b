// Package classify turns a bounded window of terminal output into a single
// best-guess interactive state with a confidence score.
//
// Classification is a pure function: identical input text produces an
// identical state on every call. It never fails; unclassifiable input yields
// StateUnknown at the configured floor confidence.
package classify

import "time"

// StateType enumerates the interactive states an agent session can be in.
type StateType string

const (
	StateIdle       StateType = "idle"
	StateWorking    StateType = "working"
	StatePermission StateType = "permission"
	StateQuestion   StateType = "question"
	StateError      StateType = "error"
	StateComplete   StateType = "complete"
	StateToolUse    StateType = "tool_use"
	StateUnknown    StateType = "unknown"
)

// RequiresHuman reports whether the state needs human action to make progress.
func (t StateType) RequiresHuman() bool {
	return t == StatePermission || t == StateQuestion
}

// Terminal reports whether the state suggests the task is no longer running.
func (t StateType) Terminal() bool {
	return t == StateComplete || t == StateError
}

// State is the classification of one text window.
// Produced fresh on every call and never mutated afterwards.
type State struct {
	Type StateType

	// Detail describes the matched subtype: the permission kind, the error
	// message, or "<tool>: <target>" for tool use.
	Detail string

	// Options holds menu choices in display order when Type is StateQuestion.
	Options []string

	// Confidence is in [0,1] for every state, including StateUnknown.
	Confidence float64

	Timestamp time.Time

	// RawWindow is the ANSI-stripped text window the state was derived from.
	RawWindow string
}
