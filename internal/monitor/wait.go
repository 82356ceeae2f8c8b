package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/Iron-Ham/agentwatch/internal/classify"
	"github.com/Iron-Ham/agentwatch/internal/event"
)

// WaitForState blocks until the monitor's state satisfies pred, the timeout
// elapses, or the context is cancelled. The current state is checked first,
// so a condition already met returns immediately.
func WaitForState(ctx context.Context, m *Monitor, pred func(classify.State) bool, timeout time.Duration) (classify.State, error) {
	if cur := m.CurrentState(); pred(cur) {
		return cur, nil
	}

	ch := make(chan classify.State, 1)
	id := m.Subscribe(event.TypeStateChange, func(ev event.Event) {
		sc, ok := ev.(event.StateChangeEvent)
		if !ok || !pred(sc.New) {
			return
		}
		select {
		case ch <- sc.New:
		default:
		}
	})
	defer m.Unsubscribe(id)

	// Re-check after subscribing to close the race with a poll that changed
	// state between the first check and the subscription.
	if cur := m.CurrentState(); pred(cur) {
		return cur, nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case st := <-ch:
		return st, nil
	case <-timer.C:
		return classify.State{}, fmt.Errorf("timed out after %s waiting for state", timeout)
	case <-ctx.Done():
		return classify.State{}, ctx.Err()
	}
}

// WaitForStateType waits for the monitor to reach a specific state type.
func WaitForStateType(ctx context.Context, m *Monitor, want classify.StateType, timeout time.Duration) (classify.State, error) {
	return WaitForState(ctx, m, func(s classify.State) bool { return s.Type == want }, timeout)
}

// WaitForSilence blocks until the target has produced no new output for the
// monitor's silence threshold, the timeout elapses, or the context is
// cancelled.
func WaitForSilence(ctx context.Context, m *Monitor, timeout time.Duration) (time.Duration, error) {
	if s := m.SilenceFor(); s >= m.cfg.SilenceThreshold {
		return s, nil
	}

	ch := make(chan time.Duration, 1)
	id := m.Subscribe(event.TypeSilence, func(ev event.Event) {
		se, ok := ev.(event.SilenceEvent)
		if !ok {
			return
		}
		select {
		case ch <- se.Silence:
		default:
		}
	})
	defer m.Unsubscribe(id)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case s := <-ch:
		return s, nil
	case <-timer.C:
		return 0, fmt.Errorf("timed out after %s waiting for silence", timeout)
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// WaitForCompletion blocks until the monitor emits a complete event, the
// timeout elapses, or the context is cancelled.
func WaitForCompletion(ctx context.Context, m *Monitor, timeout time.Duration) (classify.State, error) {
	ch := make(chan classify.State, 1)
	id := m.Subscribe(event.TypeComplete, func(ev event.Event) {
		ce, ok := ev.(event.CompleteEvent)
		if !ok {
			return
		}
		select {
		case ch <- ce.State:
		default:
		}
	})
	defer m.Unsubscribe(id)

	if cur := m.CurrentState(); cur.Type == classify.StateComplete {
		return cur, nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case st := <-ch:
		return st, nil
	case <-timer.C:
		return classify.State{}, fmt.Errorf("timed out after %s waiting for completion", timeout)
	case <-ctx.Done():
		return classify.State{}, ctx.Err()
	}
}
