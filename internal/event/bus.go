package event

import (
	"log"
	"runtime/debug"
	"sync"

	"github.com/google/uuid"
)

// Handler is a function that handles an event.
type Handler func(Event)

// Wildcard is the subscription key that receives every event type.
const Wildcard = "*"

type entry struct {
	id string
	fn Handler
}

// Bus routes published events to subscribed handlers. Dispatch is
// synchronous and ordered: handlers run in the publisher's goroutine, in
// registration order, so events published from a monitor's poll loop
// arrive in poll order.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]entry // event type (or Wildcard) -> entries
	byID     map[string]string  // subscription id -> event type
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[string][]entry),
		byID:     make(map[string]string),
	}
}

// Subscribe registers a handler for one event type.
// Returns a subscription ID for Unsubscribe.
func (b *Bus) Subscribe(eventType string, handler Handler) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.NewString()
	b.handlers[eventType] = append(b.handlers[eventType], entry{id: id, fn: handler})
	b.byID[id] = eventType
	return id
}

// SubscribeAll registers a handler for every event type.
// Returns a subscription ID for Unsubscribe.
func (b *Bus) SubscribeAll(handler Handler) string {
	return b.Subscribe(Wildcard, handler)
}

// Unsubscribe removes a subscription by ID.
// Returns true if the subscription was found and removed.
func (b *Bus) Unsubscribe(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	eventType, ok := b.byID[id]
	if !ok {
		return false
	}
	delete(b.byID, id)

	entries := b.handlers[eventType]
	for i := range entries {
		if entries[i].id == id {
			b.handlers[eventType] = append(entries[:i], entries[i+1:]...)
			break
		}
	}
	return true
}

// Publish delivers an event to the handlers subscribed to its type, then
// to wildcard handlers. A panicking handler is recovered and logged so it
// cannot block delivery to the rest.
func (b *Bus) Publish(ev Event) {
	for _, e := range b.deliveryList(ev.EventType()) {
		dispatch(e.fn, ev)
	}
}

// deliveryList copies the handlers for one event type under the read lock,
// specific entries first and wildcard entries after, so handlers can
// subscribe or unsubscribe during dispatch.
func (b *Bus) deliveryList(eventType string) []entry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]entry, 0, len(b.handlers[eventType])+len(b.handlers[Wildcard]))
	out = append(out, b.handlers[eventType]...)
	if eventType != Wildcard {
		out = append(out, b.handlers[Wildcard]...)
	}
	return out
}

func dispatch(fn Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("ERROR: %s handler panicked: %v\n%s", ev.EventType(), r, debug.Stack())
		}
	}()
	fn(ev)
}

// Clear drops every subscription.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = make(map[string][]entry)
	b.byID = make(map[string]string)
}

// SubscriptionCount returns the number of active subscriptions.
func (b *Bus) SubscriptionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.byID)
}
