// Package events provides a minimal named-event dispatcher.
//
// Handlers are registered per event name and run synchronously, in
// registration order, on the goroutine that triggers the event. Handlers
// must not block.
package events

import "sync"

// Handler reacts to a triggered event
type Handler func()

// Subscription is returned by On and removes the handler when cancelled
type Subscription interface {
	Cancel()
}

// Dispatcher keeps the subscriber lists for a set of named events
type Dispatcher struct {
	mu       sync.RWMutex
	nextID   uint64
	handlers map[string][]entry // Protected by mu
}

type entry struct {
	id      uint64
	handler Handler
}

type subscription struct {
	dispatcher *Dispatcher
	event      string
	id         uint64
	once       sync.Once
}

// NewDispatcher creates an empty dispatcher
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string][]entry),
	}
}

// On registers handler for event
func (d *Dispatcher) On(event string, handler Handler) Subscription {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextID++
	d.handlers[event] = append(d.handlers[event], entry{id: d.nextID, handler: handler})

	return &subscription{dispatcher: d, event: event, id: d.nextID}
}

// Trigger runs every handler registered for event
func (d *Dispatcher) Trigger(event string) {
	d.mu.RLock()
	handlers := make([]Handler, 0, len(d.handlers[event]))
	for _, e := range d.handlers[event] {
		handlers = append(handlers, e.handler)
	}
	d.mu.RUnlock()

	for _, h := range handlers {
		h()
	}
}

// Count returns the number of handlers registered for event
func (d *Dispatcher) Count(event string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.handlers[event])
}

func (d *Dispatcher) remove(event string, id uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	entries := d.handlers[event]
	for i, e := range entries {
		if e.id == id {
			d.handlers[event] = append(entries[:i:i], entries[i+1:]...)
			break
		}
	}
	if len(d.handlers[event]) == 0 {
		delete(d.handlers, event)
	}
}

func (s *subscription) Cancel() {
	s.once.Do(func() {
		s.dispatcher.remove(s.event, s.id)
	})
}
