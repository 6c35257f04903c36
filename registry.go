package tt

import "sync"

// Registry is the minimal hash table of ports by name the control-plane
// session consults when committing a schedule. Generic port lifecycle —
// creation, teardown, netlink attribute parsing — is out of scope;
// Registry only resolves the name carried in a FlowMod to the Port that
// owns its tables.
type Registry struct {
	mu    sync.RWMutex
	ports map[string]*Port
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{ports: make(map[string]*Port)}
}

// Add registers p under its Name, replacing any previous port of the
// same name.
func (r *Registry) Add(p *Port) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ports[p.Name] = p
}

// Remove drops the named port from the registry. It does not call
// Finish on it; callers that own the port's lifecycle are responsible
// for that.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.ports, name)
}

// Port looks up a port by name.
func (r *Registry) Port(name string) (*Port, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.ports[name]
	return p, ok
}
