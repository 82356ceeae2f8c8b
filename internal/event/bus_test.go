package event

import (
	"testing"
	"time"
)

func TestBusSubscribePublish(t *testing.T) {
	bus := NewBus()

	var got []string
	bus.Subscribe(TypeOutput, func(ev Event) {
		got = append(got, ev.(OutputEvent).Delta)
	})

	bus.Publish(NewOutputEvent("sess", "hello"))
	bus.Publish(NewOutputEvent("sess", "world"))

	if len(got) != 2 || got[0] != "hello" || got[1] != "world" {
		t.Errorf("handler received %v, want [hello world]", got)
	}
}

func TestBusDeliveryOrder(t *testing.T) {
	bus := NewBus()

	var order []int
	bus.Subscribe(TypeActivity, func(Event) { order = append(order, 1) })
	bus.Subscribe(TypeActivity, func(Event) { order = append(order, 2) })
	bus.SubscribeAll(func(Event) { order = append(order, 3) })

	bus.Publish(NewActivityEvent("sess"))

	// Specific handlers in registration order, then wildcard.
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("delivery order = %v, want [1 2 3]", order)
	}
}

func TestBusTypeRouting(t *testing.T) {
	bus := NewBus()

	outputs := 0
	silences := 0
	bus.Subscribe(TypeOutput, func(Event) { outputs++ })
	bus.Subscribe(TypeSilence, func(Event) { silences++ })

	bus.Publish(NewOutputEvent("sess", "x"))
	bus.Publish(NewOutputEvent("sess", "y"))
	bus.Publish(NewSilenceEvent("sess", time.Second))

	if outputs != 2 {
		t.Errorf("output handler called %d times, want 2", outputs)
	}
	if silences != 1 {
		t.Errorf("silence handler called %d times, want 1", silences)
	}
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus()

	calls := 0
	id := bus.Subscribe(TypeOutput, func(Event) { calls++ })

	bus.Publish(NewOutputEvent("sess", "a"))
	if !bus.Unsubscribe(id) {
		t.Error("Unsubscribe() = false, want true")
	}
	bus.Publish(NewOutputEvent("sess", "b"))

	if calls != 1 {
		t.Errorf("handler called %d times after unsubscribe, want 1", calls)
	}
	if bus.Unsubscribe(id) {
		t.Error("Unsubscribe(removed id) = true, want false")
	}
}

func TestBusPanicRecovery(t *testing.T) {
	bus := NewBus()

	reached := false
	bus.Subscribe(TypeOutput, func(Event) { panic("handler bug") })
	bus.Subscribe(TypeOutput, func(Event) { reached = true })

	bus.Publish(NewOutputEvent("sess", "x"))

	if !reached {
		t.Error("panicking handler blocked delivery to later handlers")
	}
}

func TestBusClearAndCount(t *testing.T) {
	bus := NewBus()
	bus.Subscribe(TypeOutput, func(Event) {})
	bus.SubscribeAll(func(Event) {})

	if got := bus.SubscriptionCount(); got != 2 {
		t.Errorf("SubscriptionCount() = %d, want 2", got)
	}

	bus.Clear()
	if got := bus.SubscriptionCount(); got != 0 {
		t.Errorf("SubscriptionCount() after Clear = %d, want 0", got)
	}
}

func TestEventMetadata(t *testing.T) {
	before := time.Now()
	ev := NewSilenceEvent("sess-1", 3*time.Second)

	if ev.EventType() != TypeSilence {
		t.Errorf("EventType() = %q, want %q", ev.EventType(), TypeSilence)
	}
	if ev.Target() != "sess-1" {
		t.Errorf("Target() = %q, want sess-1", ev.Target())
	}
	if ev.Timestamp().Before(before) || ev.Timestamp().After(time.Now()) {
		t.Errorf("Timestamp() = %v, outside creation window", ev.Timestamp())
	}
	if ev.Silence != 3*time.Second {
		t.Errorf("Silence = %v, want 3s", ev.Silence)
	}
}
