package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/vk/modgridgo/internal/config"
	"github.com/vk/modgridgo/internal/dispatch"
)

// Module is the lifecycle contract every feature module implements.
type Module interface {
	Init(ctx context.Context) error
	Destroy(ctx context.Context) error
}

// Initialized is optionally implemented by modules that expose their init
// state as a synchronous query.
type Initialized interface {
	IsInitialized() bool
}

// Deps carries the collaborators handed to every module factory.
type Deps struct {
	Dispatcher *dispatch.Dispatcher
	Config     *config.Snapshot
}

// Factory constructs one module instance from its injected dependencies.
type Factory func(deps Deps) Module

// Registrar is the interface a module package implements to contribute its
// factory to the registry at startup.
type Registrar interface {
	Register(r *Registry)
}

// Instance is one loaded module together with the manifest it was loaded
// under.
type Instance struct {
	Name     string
	Manifest *config.ModuleManifest
	Module   Module
}

// Registry holds the factory table and the loaded instances for a single
// application instance.
type Registry struct {
	factories map[string]Factory

	mu        sync.RWMutex
	instances map[string]*Instance
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		instances: make(map[string]*Instance),
	}
}

// RegisterFactory registers a module factory under a name. Duplicate
// registration is a programmer error.
func (r *Registry) RegisterFactory(name string, factory Factory) {
	if _, exists := r.factories[name]; exists {
		panic(fmt.Sprintf("module factory with name '%s' already registered", name))
	}
	slog.Debug("Registering module factory.", "name", name)
	r.factories[name] = factory
}

// Factory returns the factory registered under name, if any.
func (r *Registry) Factory(name string) (Factory, bool) {
	factory, ok := r.factories[name]
	return factory, ok
}

// Add stores a loaded instance. At most one instance may exist per name.
func (r *Registry) Add(inst *Instance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.instances[inst.Name]; exists {
		return fmt.Errorf("module '%s' is already loaded", inst.Name)
	}
	r.instances[inst.Name] = inst
	return nil
}

// Get returns the loaded instance for name, or nothing. It never errors
// and never mutates state.
func (r *Registry) Get(name string) (*Instance, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.instances[name]
	return inst, ok
}

// Has reports whether a module with the given name is currently loaded.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.instances[name]
	return ok
}

// Remove drops the instance for name. Removing an absent name is a no-op.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.instances, name)
}

// Names returns the names of all loaded instances, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.instances))
	for name := range r.instances {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of loaded instances.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.instances)
}
