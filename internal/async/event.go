package async

import "sync"

// Event is a multicast notification. Listeners run synchronously on the
// goroutine that calls Raise, in registration order.
type Event[T any] struct {
	mu        sync.Mutex
	nextID    int
	listeners []listener[T]
}

type listener[T any] struct {
	id int
	fn func(T)
}

// AddListener registers fn and returns a function that removes it.
func (e *Event[T]) AddListener(fn func(T)) (remove func()) {
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.listeners = append(e.listeners, listener[T]{id: id, fn: fn})
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, l := range e.listeners {
			if l.id == id {
				e.listeners = append(e.listeners[:i:i], e.listeners[i+1:]...)
				return
			}
		}
	}
}

// NumberOfListeners returns the count of registered listeners.
func (e *Event[T]) NumberOfListeners() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners)
}

// Raise calls every listener with v.
func (e *Event[T]) Raise(v T) {
	e.mu.Lock()
	snapshot := append([]listener[T](nil), e.listeners...)
	e.mu.Unlock()

	for _, l := range snapshot {
		l.fn(v)
	}
}
