package completion

import (
	"context"
	"fmt"
	"time"

	"github.com/Iron-Ham/agentwatch/internal/event"
)

// SilenceTimeout treats a sustained absence of new output as completion.
// It is the cheapest strategy and the most prone to false positives: an
// agent stuck on a prompt is just as quiet as one that finished.
type SilenceTimeout struct {
	methodMetrics
	silence time.Duration
}

// NewSilenceTimeout creates a strategy that declares completion after the
// target stays quiet for the given duration.
func NewSilenceTimeout(silence time.Duration) *SilenceTimeout {
	s := &SilenceTimeout{silence: silence}
	s.methodMetrics.name = s.Name()
	return s
}

// Name returns the strategy name, e.g. "silence-3s".
func (s *SilenceTimeout) Name() string {
	return "silence-" + s.silence.String()
}

// Detect waits for the monitor's silence to reach the configured duration.
// Activity events reset the wait; the timeout bounds the whole attempt.
func (s *SilenceTimeout) Detect(ctx context.Context, m Monitor, timeout time.Duration) Result {
	start := time.Now()

	activity := make(chan struct{}, 1)
	id := m.Subscribe(event.TypeActivity, func(event.Event) {
		select {
		case activity <- struct{}{}:
		default:
		}
	})
	defer m.Unsubscribe(id)

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		remaining := s.silence - m.SilenceFor()
		if remaining <= 0 {
			return Result{
				Complete: true,
				State:    m.CurrentState(),
				Reason:   fmt.Sprintf("no output for %s", s.silence),
				Latency:  time.Since(start),
				Method:   s.Name(),
			}
		}

		wait := time.NewTimer(remaining)
		select {
		case <-wait.C:
			// Loop re-checks SilenceFor; activity may have landed between
			// the snapshot and the timer firing.
		case <-activity:
			wait.Stop()
		case <-deadline.C:
			wait.Stop()
			return Result{
				Complete: false,
				State:    m.CurrentState(),
				Reason:   "timeout",
				Latency:  time.Since(start),
				Method:   s.Name(),
			}
		case <-ctx.Done():
			wait.Stop()
			return Result{
				Complete: false,
				State:    m.CurrentState(),
				Reason:   "cancelled",
				Latency:  time.Since(start),
				Method:   s.Name(),
			}
		}
	}
}
