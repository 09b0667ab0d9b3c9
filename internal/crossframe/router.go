package crossframe

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// Handler serves one action. The returned value is encoded as the result.
type Handler func(ctx context.Context, params json.RawMessage) (any, error)

// Router maps action names to handlers for one frame
type Router struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRouter creates an empty router
func NewRouter() *Router {
	return &Router{handlers: make(map[string]Handler)}
}

// Handle registers h for action, replacing any previous handler
func (r *Router) Handle(action string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[action] = h
}

// Remove unregisters action
func (r *Router) Remove(action string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, action)
}

// Actions returns the registered action names in sorted order
func (r *Router) Actions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch runs the handler of action and encodes its result
func (r *Router) Dispatch(ctx context.Context, action string, params json.RawMessage) (json.RawMessage, error) {
	r.mu.RLock()
	h, ok := r.handlers[action]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}

	result, err := h(ctx, params)
	if err != nil {
		return nil, err
	}
	return Encode(result)
}
