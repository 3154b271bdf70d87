package loader

import (
	"context"
	"fmt"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/vk/modgridgo/internal/config"
	"github.com/vk/modgridgo/internal/ctxlog"
	"github.com/vk/modgridgo/internal/dispatch"
	"github.com/vk/modgridgo/internal/hcl"
	"github.com/vk/modgridgo/internal/registry"
)

// Loader instantiates and initializes first-party feature modules.
type Loader struct {
	registry    *registry.Registry
	dispatcher  *dispatch.Dispatcher
	cfg         *config.Snapshot
	modulesPath string
}

// New creates a Loader. modulesPath points at the directory that holds
// per-module manifest files; it may be empty, in which case every manifest
// is synthesized.
func New(reg *registry.Registry, disp *dispatch.Dispatcher, cfg *config.Snapshot, modulesPath string) *Loader {
	return &Loader{
		registry:    reg,
		dispatcher:  disp,
		cfg:         cfg,
		modulesPath: modulesPath,
	}
}

// Initialize loads every enabled module concurrently. The loads are joined
// as an all-or-fail batch: the first failure rejects the whole call, and
// loads that already completed are not rolled back.
func (l *Loader) Initialize(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	names := l.cfg.EnabledModules()
	logger.Debug("Module loader started.", "enabled", names)

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range names {
		name := name
		g.Go(func() error {
			return l.loadOne(gctx, name)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("module initialization failed: %w", err)
	}

	logger.Info("All enabled modules loaded.", "count", len(names))
	return nil
}

// loadOne runs the single-module load path: resolve the factory, read or
// synthesize the manifest, verify declared dependencies, construct, init,
// register.
func (l *Loader) loadOne(ctx context.Context, name string) error {
	logger := ctxlog.FromContext(ctx)

	factory, ok := l.registry.Factory(name)
	if !ok {
		return fmt.Errorf("module '%s' is enabled but no factory is registered for it", name)
	}

	manifest, err := l.resolveManifest(name)
	if err != nil {
		return fmt.Errorf("module '%s': %w", name, err)
	}

	for _, dep := range manifest.Dependencies {
		if l.registry.Has(dep) {
			continue
		}
		if l.cfg.StrictModuleDeps {
			return fmt.Errorf("module '%s' depends on '%s', which is not loaded", name, dep)
		}
		logger.Warn("Module dependency is not loaded; continuing anyway.",
			"module", name, "dependency", dep)
	}

	mod := factory(registry.Deps{
		Dispatcher: l.dispatcher,
		Config:     l.cfg,
	})
	if err := mod.Init(ctx); err != nil {
		return fmt.Errorf("module '%s' failed to initialize: %w", name, err)
	}

	if err := l.registry.Add(&registry.Instance{
		Name:     name,
		Manifest: manifest,
		Module:   mod,
	}); err != nil {
		return err
	}
	logger.Debug("Module loaded.", "module", name, "version", manifest.Version)
	return nil
}

// resolveManifest reads the module's manifest file when one exists and
// synthesizes defaults otherwise.
func (l *Loader) resolveManifest(name string) (*config.ModuleManifest, error) {
	if l.modulesPath == "" {
		return config.SynthesizeManifest(name), nil
	}
	manifest, err := hcl.LoadModuleManifest(filepath.Join(l.modulesPath, name, hcl.ModuleManifestFile))
	if err != nil {
		return nil, err
	}
	if manifest == nil {
		return config.SynthesizeManifest(name), nil
	}
	return manifest, nil
}

// Get returns the loaded module instance for name, or nothing.
func (l *Loader) Get(name string) (*registry.Instance, bool) {
	return l.registry.Get(name)
}

// Reload destroys any existing instance of name and re-runs the
// single-module load path if the name is still enabled. A no-op otherwise.
func (l *Loader) Reload(ctx context.Context, name string) error {
	logger := ctxlog.FromContext(ctx)

	if inst, ok := l.registry.Get(name); ok {
		if err := inst.Module.Destroy(ctx); err != nil {
			logger.Warn("Module destroy failed during reload; removing it anyway.",
				"module", name, "error", err)
		}
		l.registry.Remove(name)
	}

	if !l.cfg.ModuleEnabled(name) {
		logger.Debug("Reload requested for disabled module; nothing to do.", "module", name)
		return nil
	}
	return l.loadOne(ctx, name)
}

// TeardownResult is the outcome of destroying one module.
type TeardownResult struct {
	Name string
	Err  error
}

// Destroy tears down every loaded module, clears the registry, and destroys
// the dispatcher last. A single module's destroy failure is logged and
// reported in the results, never raised, so one broken module cannot block
// the others.
func (l *Loader) Destroy(ctx context.Context) []TeardownResult {
	logger := ctxlog.FromContext(ctx)

	names := l.registry.Names()
	results := make([]TeardownResult, 0, len(names)+1)
	for _, name := range names {
		inst, ok := l.registry.Get(name)
		if !ok {
			continue
		}
		err := inst.Module.Destroy(ctx)
		if err != nil {
			logger.Error("Module destroy failed.", "module", name, "error", err)
		}
		results = append(results, TeardownResult{Name: name, Err: err})
		l.registry.Remove(name)
	}

	err := l.dispatcher.Destroy(ctx)
	if err != nil {
		logger.Error("Dispatcher destroy failed.", "error", err)
	}
	results = append(results, TeardownResult{Name: "dispatcher", Err: err})

	logger.Info("Module ecosystem destroyed.", "modules", len(names))
	return results
}
