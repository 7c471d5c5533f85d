package world

import (
	"fmt"
	"sync"
)

// Registry maps object ids to roles across every map. Read by all
// partitions, written by the main goroutine on enter/leave.
type Registry struct {
	mu    sync.RWMutex
	roles map[ObjectID]Role
}

func NewRegistry() *Registry {
	return &Registry{roles: make(map[ObjectID]Role)}
}

// Register adds r. Fails if the id is already taken.
func (g *Registry) Register(r Role) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.roles[r.ID()]; ok {
		return fmt.Errorf("object %d already registered", r.ID())
	}
	g.roles[r.ID()] = r
	return nil
}

// Unregister removes id and returns the role it held, or nil.
func (g *Registry) Unregister(id ObjectID) Role {
	g.mu.Lock()
	defer g.mu.Unlock()
	r := g.roles[id]
	delete(g.roles, id)
	return r
}

// Resolve returns the role for id, or nil.
func (g *Registry) Resolve(id ObjectID) Role {
	if id == 0 {
		return nil
	}
	g.mu.RLock()
	r := g.roles[id]
	g.mu.RUnlock()
	return r
}

// Len returns the number of registered roles.
func (g *Registry) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.roles)
}
