package events

import "sync"

// Handler is a callback invoked for every matching event
type Handler func(event *Event)

type subscription struct {
	id int
	fn Handler
}

// Bus is a synchronous in-process publish/subscribe bus. Handlers run on
// the emitting goroutine, so they must not block.
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[EventType][]subscription
	all      []subscription
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]subscription),
	}
}

// Subscribe registers a handler for a specific event type. The returned
// function removes the subscription; long-lived components may ignore it.
func (b *Bus) Subscribe(eventType EventType, handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.handlers[eventType] = append(b.handlers[eventType], subscription{id: id, fn: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.handlers[eventType] = removeSubscription(b.handlers[eventType], id)
	}
}

// SubscribeAll registers a handler for every event type. The returned
// function removes the subscription.
func (b *Bus) SubscribeAll(handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.all = append(b.all, subscription{id: id, fn: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.all = removeSubscription(b.all, id)
	}
}

// Publish dispatches an event to all matching handlers
func (b *Bus) Publish(event *Event) {
	b.mu.RLock()
	typed := b.handlers[event.Type]
	all := b.all
	b.mu.RUnlock()

	for _, s := range typed {
		s.fn(event)
	}
	for _, s := range all {
		s.fn(event)
	}
}

// removeSubscription copies instead of shifting in place so a slice
// snapshot taken by a concurrent Publish stays intact.
func removeSubscription(subs []subscription, id int) []subscription {
	for i, s := range subs {
		if s.id != id {
			continue
		}
		out := make([]subscription, 0, len(subs)-1)
		out = append(out, subs[:i]...)
		return append(out, subs[i+1:]...)
	}
	return subs
}
