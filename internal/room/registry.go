package room

import "sync"

// Registry maps a connection id to the username supplied at join time.
// At most one entry per connection; rejoin overwrites (last write wins).
type Registry struct {
	mu    sync.RWMutex
	names map[string]string
}

func NewRegistry() *Registry {
	return &Registry{names: map[string]string{}}
}

// Set records or overwrites the username for a connection.
func (r *Registry) Set(connID, username string) {
	r.mu.Lock()
	r.names[connID] = username
	r.mu.Unlock()
}

// Get looks up a connection's username. The second return is false
// when the connection has no entry (left, or never joined).
func (r *Registry) Get(connID string) (string, bool) {
	r.mu.RLock()
	name, ok := r.names[connID]
	r.mu.RUnlock()
	return name, ok
}

// Remove deletes the entry if present. Removing an absent entry is a
// no-op; leave and disconnect can race and both must succeed.
func (r *Registry) Remove(connID string) {
	r.mu.Lock()
	delete(r.names, connID)
	r.mu.Unlock()
}

// Len reports the number of registered connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.names)
}
