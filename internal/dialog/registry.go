package dialog

import "sync"

// Registry maps webhook service names to their engines. Service versions
// are registered statically at startup; "latest" (and the empty name)
// resolve to the default engine.
type Registry struct {
	mu          sync.RWMutex
	defaultName string
	engines     map[string]*Engine
}

func NewRegistry(defaultName string) *Registry {
	return &Registry{
		defaultName: defaultName,
		engines:     make(map[string]*Engine),
	}
}

func (r *Registry) Register(name string, e *Engine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engines[name] = e
}

// Lookup resolves a service name to its engine.
func (r *Registry) Lookup(name string) (*Engine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if name == "" || name == "latest" {
		name = r.defaultName
	}
	e, ok := r.engines[name]
	return e, ok
}

// Default returns the engine behind the "latest" alias, or nil.
func (r *Registry) Default() *Engine {
	e, _ := r.Lookup("latest")
	return e
}

// Services lists the registered service names.
func (r *Registry) Services() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	return names
}
