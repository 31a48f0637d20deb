package magic

import "sync"

// Registry holds listeners the shell wants called after the controller changes
// what is on screen.
type Registry struct {
	mu        sync.Mutex
	listeners []func()
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a listener. Listeners run in registration order.
func (r *Registry) Register(listener func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, listener)
}

// Notify calls every registered listener
func (r *Registry) Notify() {
	r.mu.Lock()
	listeners := make([]func(), len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.Unlock()

	for _, l := range listeners {
		l()
	}
}
