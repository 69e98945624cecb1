// Package event provides a small generic publish/subscribe helper.
package event

import "sync"

// Emitter delivers values of type E to subscribers. The zero value is ready
// to use and safe for concurrent use.
type Emitter[E any] struct {
	mu sync.RWMutex
	// +checklocks:mu
	next uint64
	// +checklocks:mu
	subs map[uint64]func(E)
	// +checklocks:mu
	order []uint64
}

// Subscribe registers fn and returns a function that removes it.
// Handlers run synchronously on the emitting goroutine, in subscription order.
// Calling cancel more than once is harmless.
func (e *Emitter[E]) Subscribe(fn func(E)) (cancel func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.subs == nil {
		e.subs = make(map[uint64]func(E))
	}
	e.next++
	id := e.next
	e.subs[id] = fn
	e.order = append(e.order, id)

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if _, ok := e.subs[id]; !ok {
			return
		}
		delete(e.subs, id)
		for i, v := range e.order {
			if v == id {
				e.order = append(e.order[:i:i], e.order[i+1:]...)
				break
			}
		}
	}
}

// Emit calls every current subscriber with ev. Subscriptions added or
// cancelled by a handler take effect from the next Emit.
// Must not be called with e.mu held.
func (e *Emitter[E]) Emit(ev E) {
	e.mu.RLock()
	handlers := make([]func(E), 0, len(e.order))
	for _, id := range e.order {
		handlers = append(handlers, e.subs[id])
	}
	e.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
}

// Len returns the number of active subscribers.
func (e *Emitter[E]) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.order)
}
