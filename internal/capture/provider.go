// Package capture defines the terminal capture provider consumed by the
// monitor, plus a tmux-backed implementation. The provider reads a target's
// current buffer text with ANSI codes included; stripping happens in the
// pattern layer.
package capture

import "context"

// Provider reads terminal output for monitored targets.
// Implementations must be safe for concurrent use.
type Provider interface {
	// CaptureOutput returns the last lines of the target's current buffer,
	// ANSI escape codes included. Context cancellation bounds the call so a
	// hung backend cannot stall a poll indefinitely.
	CaptureOutput(ctx context.Context, targetID string, lines int) (string, error)

	// WaitForSignal blocks until an out-of-band completion signal fires on
	// channel, or the context is done. Only the external-signal completion
	// strategy uses this.
	WaitForSignal(ctx context.Context, channel string) error
}

// Discoverer is implemented by providers that can enumerate capture targets.
// The monitor uses it to resolve a target when none was given explicitly.
type Discoverer interface {
	// ListTargets returns target IDs whose names match the glob pattern.
	ListTargets(pattern string) ([]string, error)
}
