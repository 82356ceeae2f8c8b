package completion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Iron-Ham/agentwatch/internal/capture"
)

// ExternalSignal waits for an out-of-band completion signal, e.g. a
// `tmux wait-for -S` fired by the agent's own exit hook. It is the most
// reliable strategy when the agent cooperates and useless when it doesn't.
type ExternalSignal struct {
	methodMetrics
	provider capture.Provider
	channel  string
}

// NewExternalSignal creates a strategy that waits on the named signal
// channel of the given provider.
func NewExternalSignal(provider capture.Provider, channel string) *ExternalSignal {
	s := &ExternalSignal{provider: provider, channel: channel}
	s.methodMetrics.name = s.Name()
	return s
}

// Name returns the strategy name, e.g. "signal-agent-done".
func (s *ExternalSignal) Name() string {
	return "signal-" + s.channel
}

// Detect blocks until the signal fires or the timeout elapses.
func (s *ExternalSignal) Detect(ctx context.Context, m Monitor, timeout time.Duration) Result {
	start := time.Now()

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := s.provider.WaitForSignal(waitCtx, s.channel)
	res := Result{
		State:   m.CurrentState(),
		Latency: time.Since(start),
		Method:  s.Name(),
	}

	switch {
	case err == nil:
		res.Complete = true
		res.Reason = fmt.Sprintf("signal received on %s", s.channel)
	case errors.Is(err, context.DeadlineExceeded):
		res.Reason = "timeout"
	case errors.Is(err, context.Canceled):
		res.Reason = "cancelled"
	default:
		res.Reason = fmt.Sprintf("signal wait failed: %v", err)
	}
	return res
}
