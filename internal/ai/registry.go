package ai

import "sync"

// Registry holds the active provider behind a read-write lock. Any number of
// in-flight extractions read the handle concurrently; a configuration change
// swaps it exclusively. A caller that acquired the handle before a swap
// finishes its calls against the old provider; the swap is never observed
// mid-request.
type Registry struct {
	mu       sync.RWMutex
	provider Provider
}

// NewRegistry creates a registry with the given initial provider
func NewRegistry(p Provider) *Registry {
	return &Registry{provider: p}
}

// Active returns the current provider handle
func (r *Registry) Active() Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.provider
}

// Swap atomically replaces the active provider. New calls after Swap returns
// use the new provider.
func (r *Registry) Swap(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.provider = p
}
