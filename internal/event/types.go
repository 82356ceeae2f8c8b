// Package event defines the typed events a monitor emits and a synchronous
// pub-sub bus for delivering them. Events for one monitored target are
// delivered in poll order; subscribers must not assume ordering across
// targets.
package event

import (
	"time"

	"github.com/Iron-Ham/agentwatch/internal/classify"
)

// Event type identifiers. Subscriptions key on these strings.
const (
	TypeOutput       = "output"
	TypeActivity     = "activity"
	TypeStateChange  = "state_change"
	TypeSilence      = "silence"
	TypePermission   = "permission"
	TypeQuestion     = "question"
	TypeError        = "error"
	TypeComplete     = "complete"
	TypeCaptureError = "capture_error"
	TypePlanFile     = "plan_file"
)

// Event is the interface all monitor events implement.
type Event interface {
	// EventType returns the type identifier used for subscription routing.
	EventType() string

	// Target returns the monitored target the event belongs to.
	Target() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// baseEvent provides common fields for all events.
type baseEvent struct {
	eventType string
	target    string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Target() string       { return e.target }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType, target string) baseEvent {
	return baseEvent{
		eventType: eventType,
		target:    target,
		timestamp: time.Now(),
	}
}

// OutputEvent carries the newly appended text since the previous capture.
type OutputEvent struct {
	baseEvent
	Delta string
}

// NewOutputEvent creates an OutputEvent.
func NewOutputEvent(target, delta string) OutputEvent {
	return OutputEvent{baseEvent: newBaseEvent(TypeOutput, target), Delta: delta}
}

// ActivityEvent signals that the target produced new output.
type ActivityEvent struct {
	baseEvent
}

// NewActivityEvent creates an ActivityEvent.
func NewActivityEvent(target string) ActivityEvent {
	return ActivityEvent{baseEvent: newBaseEvent(TypeActivity, target)}
}

// StateChangeEvent signals that the classified state type changed.
type StateChangeEvent struct {
	baseEvent
	Old classify.State
	New classify.State
}

// NewStateChangeEvent creates a StateChangeEvent.
func NewStateChangeEvent(target string, old, new classify.State) StateChangeEvent {
	return StateChangeEvent{baseEvent: newBaseEvent(TypeStateChange, target), Old: old, New: new}
}

// SilenceEvent signals that no new output has arrived for at least the
// configured silence threshold. It fires once per threshold crossing, not on
// every poll while the target stays quiet.
type SilenceEvent struct {
	baseEvent
	Silence time.Duration
}

// NewSilenceEvent creates a SilenceEvent.
func NewSilenceEvent(target string, silence time.Duration) SilenceEvent {
	return SilenceEvent{baseEvent: newBaseEvent(TypeSilence, target), Silence: silence}
}

// PermissionEvent signals that the target is waiting on a permission prompt.
type PermissionEvent struct {
	baseEvent
	State classify.State
}

// NewPermissionEvent creates a PermissionEvent.
func NewPermissionEvent(target string, state classify.State) PermissionEvent {
	return PermissionEvent{baseEvent: newBaseEvent(TypePermission, target), State: state}
}

// QuestionEvent signals that the target is presenting a choice menu.
type QuestionEvent struct {
	baseEvent
	State classify.State
}

// NewQuestionEvent creates a QuestionEvent.
func NewQuestionEvent(target string, state classify.State) QuestionEvent {
	return QuestionEvent{baseEvent: newBaseEvent(TypeQuestion, target), State: state}
}

// ErrorEvent signals that the target's output shows an error state.
type ErrorEvent struct {
	baseEvent
	State classify.State
}

// NewErrorEvent creates an ErrorEvent.
func NewErrorEvent(target string, state classify.State) ErrorEvent {
	return ErrorEvent{baseEvent: newBaseEvent(TypeError, target), State: state}
}

// CompleteEvent signals that the monitor's completion heuristic fired.
type CompleteEvent struct {
	baseEvent
	State  classify.State
	Reason string
}

// NewCompleteEvent creates a CompleteEvent.
func NewCompleteEvent(target string, state classify.State, reason string) CompleteEvent {
	return CompleteEvent{baseEvent: newBaseEvent(TypeComplete, target), State: state, Reason: reason}
}

// CaptureErrorEvent surfaces a transient capture failure. It is diagnostic:
// polling continues and the monitor stays running.
type CaptureErrorEvent struct {
	baseEvent
	Err error
}

// NewCaptureErrorEvent creates a CaptureErrorEvent.
func NewCaptureErrorEvent(target string, err error) CaptureErrorEvent {
	return CaptureErrorEvent{baseEvent: newBaseEvent(TypeCaptureError, target), Err: err}
}

// PlanFileEvent signals that a plan document path appeared in output.
type PlanFileEvent struct {
	baseEvent
	Path string
}

// NewPlanFileEvent creates a PlanFileEvent.
func NewPlanFileEvent(target, path string) PlanFileEvent {
	return PlanFileEvent{baseEvent: newBaseEvent(TypePlanFile, target), Path: path}
}
