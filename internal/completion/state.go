package completion

import (
	"context"
	"fmt"
	"time"

	"github.com/Iron-Ham/agentwatch/internal/classify"
	"github.com/Iron-Ham/agentwatch/internal/event"
)

// DefaultSettleBuffer is how long an idle classification must hold before
// StateDetection trusts it. Agents routinely pause at a prompt-looking line
// mid-task; a brief hold filters those out.
const DefaultSettleBuffer = 2 * time.Second

// StateDetection declares completion from the classifier's verdict: an error
// or complete state is trusted immediately, an idle state only after it holds
// for a settle buffer.
type StateDetection struct {
	methodMetrics
	settle time.Duration
}

// NewStateDetection creates a state-detection strategy with the default
// settle buffer.
func NewStateDetection() *StateDetection {
	return NewStateDetectionWithSettle(DefaultSettleBuffer)
}

// NewStateDetectionWithSettle creates a state-detection strategy with a
// custom settle buffer. A non-positive settle trusts idle immediately.
func NewStateDetectionWithSettle(settle time.Duration) *StateDetection {
	s := &StateDetection{settle: settle}
	s.methodMetrics.name = s.Name()
	return s
}

// Name returns "state-detection".
func (s *StateDetection) Name() string { return "state-detection" }

// Detect watches the monitor's classified state until it settles into a
// terminal shape or the timeout elapses.
func (s *StateDetection) Detect(ctx context.Context, m Monitor, timeout time.Duration) Result {
	start := time.Now()

	changes := make(chan classify.State, 8)
	id := m.Subscribe(event.TypeStateChange, func(ev event.Event) {
		sc, ok := ev.(event.StateChangeEvent)
		if !ok {
			return
		}
		select {
		case changes <- sc.New:
		default:
		}
	})
	defer m.Unsubscribe(id)

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	st := m.CurrentState()
	for {
		if res, ok := s.verdict(ctx, m, st, start, deadline); ok {
			return res
		}

		select {
		case st = <-changes:
		case <-deadline.C:
			return s.timedOut(m, start, "timeout")
		case <-ctx.Done():
			return s.timedOut(m, start, "cancelled")
		}
	}
}

// verdict checks one state observation. Error and complete are immediate;
// idle must survive the settle buffer and still be idle afterwards.
func (s *StateDetection) verdict(ctx context.Context, m Monitor, st classify.State, start time.Time, deadline *time.Timer) (Result, bool) {
	switch st.Type {
	case classify.StateError:
		return Result{
			Complete: true,
			State:    st,
			Reason:   "error state detected",
			Latency:  time.Since(start),
			Method:   s.Name(),
		}, true

	case classify.StateComplete:
		return Result{
			Complete: true,
			State:    st,
			Reason:   "completion state detected",
			Latency:  time.Since(start),
			Method:   s.Name(),
		}, true

	case classify.StateIdle:
		if s.settle > 0 {
			hold := time.NewTimer(s.settle)
			select {
			case <-hold.C:
			case <-deadline.C:
				hold.Stop()
				return s.timedOut(m, start, "timeout"), true
			case <-ctx.Done():
				hold.Stop()
				return s.timedOut(m, start, "cancelled"), true
			}

			cur := m.CurrentState()
			if cur.Type != classify.StateIdle && cur.Type != classify.StateComplete {
				// Activity resumed during the settle window.
				return Result{}, false
			}
			st = cur
		}
		return Result{
			Complete: true,
			State:    st,
			Reason:   fmt.Sprintf("idle state held for %s", s.settle),
			Latency:  time.Since(start),
			Method:   s.Name(),
		}, true
	}
	return Result{}, false
}

func (s *StateDetection) timedOut(m Monitor, start time.Time, reason string) Result {
	return Result{
		Complete: false,
		State:    m.CurrentState(),
		Reason:   reason,
		Latency:  time.Since(start),
		Method:   s.Name(),
	}
}
