package crossframe

import "sync/atomic"

// Lifecycle tracks whether the host is shutting down
type Lifecycle struct {
	unloaded atomic.Bool
}

// NewLifecycle creates a lifecycle in the loaded state
func NewLifecycle() *Lifecycle {
	return &Lifecycle{}
}

// MarkUnloaded sets the unloaded flag. It reports whether this call changed it.
func (l *Lifecycle) MarkUnloaded() bool {
	return l.unloaded.CompareAndSwap(false, true)
}

// IsUnloaded reports whether MarkUnloaded has been called
func (l *Lifecycle) IsUnloaded() bool {
	return l.unloaded.Load()
}
