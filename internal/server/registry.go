package server

import (
	"context"
	"sync"

	"github.com/desertthunder/zipx/internal/shared"
)

// Registry tracks running extractions so they can be cancelled by id.
type Registry struct {
	mu      sync.Mutex
	running map[string]context.CancelFunc
}

func NewRegistry() *Registry {
	return &Registry{running: make(map[string]context.CancelFunc)}
}

// Register stores cancel under a new id.
func (r *Registry) Register(cancel context.CancelFunc) string {
	id := shared.GenerateID()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.running[id] = cancel
	return id
}

// Cancel stops the extraction with id and reports whether it was running.
func (r *Registry) Cancel(id string) bool {
	r.mu.Lock()
	cancel, ok := r.running[id]
	r.mu.Unlock()

	if ok {
		cancel()
	}
	return ok
}

// Remove forgets id.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.running, id)
}

// Len returns the number of running extractions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.running)
}

// CancelAll stops every running extraction and returns how many there were.
func (r *Registry) CancelAll() int {
	r.mu.Lock()
	cancels := make([]context.CancelFunc, 0, len(r.running))
	for _, cancel := range r.running {
		cancels = append(cancels, cancel)
	}
	r.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	return len(cancels)
}
