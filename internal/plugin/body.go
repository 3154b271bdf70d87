package plugin

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zclconf/go-cty/cty"
)

// Body is an instantiated plugin implementation. Every capability beyond
// bare existence is an optional interface the manager probes for.
type Body any

// Host is the handle handed to plugins on afterInit. It exposes the narrow
// slice of the composition core a plugin may touch.
type Host interface {
	// Dispatch routes a call through the host's dispatcher, portable unit
	// or simulation alike.
	Dispatch(ctx context.Context, method string, args ...any) (any, error)

	// PluginNames lists the currently loaded plugins.
	PluginNames() []string
}

// Lifecycle hook names. All hooks are optional.
const (
	HookBeforeInit       = "beforeInit"
	HookAfterInit        = "afterInit"
	HookBeforeModuleLoad = "beforeModuleLoad"
	HookAfterModuleLoad  = "afterModuleLoad"
	HookBeforeDestroy    = "beforeDestroy"
	HookAfterDestroy     = "afterDestroy"
)

// Optional capability interfaces a Body may implement. The manager invokes
// each at the matching lifecycle point.
type (
	BeforeIniter interface {
		BeforeInit(ctx context.Context, cfg map[string]cty.Value) error
	}
	AfterIniter interface {
		AfterInit(ctx context.Context, host Host) error
	}
	BeforeModuleLoader interface {
		BeforeModuleLoad(ctx context.Context, name, path string) error
	}
	AfterModuleLoader interface {
		AfterModuleLoad(ctx context.Context, name string) error
	}
	BeforeDestroyer interface {
		BeforeDestroy(ctx context.Context) error
	}
	AfterDestroyer interface {
		AfterDestroy(ctx context.Context) error
	}
	Activator interface {
		Activate(ctx context.Context) error
	}
	Deactivator interface {
		Deactivate(ctx context.Context) error
	}
	Destroyer interface {
		Destroy(ctx context.Context) error
	}

	// HookHandler receives every hook the plugin's manifest subscribes to,
	// by name.
	HookHandler interface {
		OnHook(ctx context.Context, name string, data ...any) (any, error)
	}
)

// BodyFactory constructs a native plugin body from its manifest.
type BodyFactory func(manifest *Manifest) (Body, error)

// BodyRegistry maps entry-point names to compiled-in body factories. It is
// populated once at startup; resolving an entry point is a map lookup,
// never reflection over name strings.
type BodyRegistry struct {
	factories map[string]BodyFactory
}

// NewBodyRegistry creates an empty body-factory registry.
func NewBodyRegistry() *BodyRegistry {
	return &BodyRegistry{factories: make(map[string]BodyFactory)}
}

// Register adds a factory under an entry-point name. Duplicate registration
// is a programmer error.
func (r *BodyRegistry) Register(entry string, factory BodyFactory) {
	if _, exists := r.factories[entry]; exists {
		panic(fmt.Sprintf("plugin body factory with entry '%s' already registered", entry))
	}
	slog.Debug("Registering plugin body factory.", "entry", entry)
	r.factories[entry] = factory
}

// Lookup returns the factory registered for entry, if any.
func (r *BodyRegistry) Lookup(entry string) (BodyFactory, bool) {
	factory, ok := r.factories[entry]
	return factory, ok
}
