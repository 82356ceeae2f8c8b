// Package completion decides when a monitored agent has finished its task.
// It provides pluggable detection strategies (silence timeout, state
// detection, external signal, and a hybrid of two) plus per-strategy
// effectiveness metrics so operators can compare methods against real runs.
package completion

import (
	"context"
	"time"

	"github.com/Iron-Ham/agentwatch/internal/classify"
	"github.com/Iron-Ham/agentwatch/internal/event"
)

// Monitor is the narrow view of a running monitor that strategies consume.
// *monitor.Monitor satisfies it.
type Monitor interface {
	TargetID() string
	CurrentState() classify.State
	SilenceFor() time.Duration
	Subscribe(eventType string, handler event.Handler) string
	Unsubscribe(id string) bool
}

// Result is the outcome of one detection attempt.
type Result struct {
	// Complete reports whether the strategy concluded the task finished.
	// False means the detection window closed without a verdict.
	Complete bool

	// State is the monitor's state at the moment of the verdict.
	State classify.State

	// Reason is a human-readable explanation of the verdict.
	Reason string

	// Latency is how long detection took.
	Latency time.Duration

	// Method names the strategy that produced the verdict.
	Method string
}

// Strategy detects task completion on a running monitor.
//
// Detect blocks until it reaches a verdict, the timeout elapses, or ctx is
// cancelled. It never returns an error: an expired window is a Result with
// Complete=false, because "didn't finish in time" is a detection outcome,
// not a failure of the detector.
type Strategy interface {
	// Name identifies the strategy in results, metrics, and logs.
	Name() string

	// Detect waits for completion on m within timeout.
	Detect(ctx context.Context, m Monitor, timeout time.Duration) Result

	// RecordResult feeds ground truth back into the strategy's metrics.
	// correct reports whether the verdict matched reality; falsePositive
	// distinguishes "claimed done too early" from "missed the finish".
	RecordResult(latency time.Duration, correct, falsePositive bool)

	// Metrics returns a snapshot of the strategy's effectiveness so far.
	Metrics() MetricsSnapshot
}
