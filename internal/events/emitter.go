// Package events provides the typed event emitter shared by the document
// model, the scoped context service, and the menu service.
package events

import "sync"

// Emitter is a minimal typed event source. Listeners are invoked in
// registration order. Subscribe returns an unsubscribe func; callers are
// expected to pair every Subscribe with exactly one unsubscribe, typically
// by registering it into the resource scope that owns the subscription.
type Emitter[T any] struct {
	mu       sync.Mutex
	nextID   int
	handlers []handler[T]
}

type handler[T any] struct {
	id int
	fn func(T)
}

// Subscribe registers fn and returns its unsubscribe func. Unsubscribing
// twice is a no-op.
func (e *Emitter[T]) Subscribe(fn func(T)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextID
	e.nextID++
	e.handlers = append(e.handlers, handler[T]{id: id, fn: fn})

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, h := range e.handlers {
			if h.id == id {
				e.handlers = append(e.handlers[:i], e.handlers[i+1:]...)
				return
			}
		}
	}
}

// Fire delivers v to every current listener.
func (e *Emitter[T]) Fire(v T) {
	e.mu.Lock()
	snapshot := make([]handler[T], len(e.handlers))
	copy(snapshot, e.handlers)
	e.mu.Unlock()

	for _, h := range snapshot {
		h.fn(v)
	}
}

// ListenerCount reports the number of live subscriptions. Used by tests to
// verify that bind/unbind churn does not accumulate listeners.
func (e *Emitter[T]) ListenerCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.handlers)
}
