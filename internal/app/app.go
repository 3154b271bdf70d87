// Package app wires the composition core together: configuration,
// dispatcher, module loader, and plugin manager are owned by an explicitly
// constructed App instance. There is no ambient global composition state;
// everything flows from here.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/modgridgo/internal/config"
	"github.com/vk/modgridgo/internal/ctxlog"
	"github.com/vk/modgridgo/internal/dispatch"
	"github.com/vk/modgridgo/internal/loader"
	"github.com/vk/modgridgo/internal/plugin"
	"github.com/vk/modgridgo/internal/registry"
)

// ErrInitialization marks a failure of a required subsystem during startup.
// It is fatal and surfaced to the top-level caller.
var ErrInitialization = errors.New("initialization failure")

// App encapsulates one composition host instance: its configuration
// snapshot, dispatcher, registries, and managers.
type App struct {
	outW   io.Writer
	logger *slog.Logger

	snapshot   *config.Snapshot
	dispatcher *dispatch.Dispatcher
	registry   *registry.Registry
	loader     *loader.Loader
	plugins    *plugin.Manager
	bodies     *plugin.BodyRegistry
}

// NewApp is the constructor for the composition host. It returns a fully
// wired App with its own isolated logger; nothing is initialized yet.
// Configuration that cannot be loaded is a fatal startup error and panics,
// which the CLI entrypoint recovers into a clean exit.
func NewApp(outW io.Writer, appConfig *Config, cfgLoader config.Loader, registrars ...registry.Registrar) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	snapshot, err := cfgLoader.Load(ctx, appConfig.ConfigPath)
	if err != nil {
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	if appConfig.PluginsDir != "" {
		snapshot.Plugins.Dir = appConfig.PluginsDir
	}
	logger.Debug("Configuration loaded into immutable snapshot.",
		"enabled_modules", snapshot.EnabledModules())

	reg := registry.New()
	if len(registrars) == 0 {
		registrars = coreRegistrars
	}
	for _, registrar := range registrars {
		registrar.Register(reg)
	}
	logger.Debug("All module factories registered.", "count", len(registrars))

	dispatcher := dispatch.New(snapshot.Runtime)
	bodies := plugin.NewBodyRegistry()

	return &App{
		outW:       outW,
		logger:     logger,
		snapshot:   snapshot,
		dispatcher: dispatcher,
		registry:   reg,
		loader:     loader.New(reg, dispatcher, snapshot, appConfig.ModulesPath),
		plugins:    plugin.NewManager(snapshot.Plugins, bodies, dispatcher),
		bodies:     bodies,
	}
}

// Run brings the composition up: the dispatcher first (its failure is
// non-fatal by design), then the all-or-fail module batch, then best-effort
// plugin discovery. A module batch failure leaves the composition
// uninitialized and is surfaced as an ErrInitialization.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	a.dispatcher.Initialize(ctx)

	if err := a.loader.Initialize(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrInitialization, err)
	}

	results := a.plugins.DiscoverAll(ctx)
	for _, result := range results {
		rec, ok := a.plugins.Get(result.Name)
		if result.Err != nil || !ok || rec.Status != plugin.StatusLoaded {
			continue
		}
		if err := a.plugins.Activate(ctx, result.Name); err != nil {
			a.logger.Error("Failed to activate discovered plugin.",
				"plugin", result.Name, "error", err)
		}
	}

	a.logger.Info("Composition host running.",
		"modules", a.registry.Len(), "plugins", len(a.plugins.Names()))
	return nil
}

// ReloadModule reloads one module, broadcasting the module-load hooks to
// active plugins around the operation.
func (a *App) ReloadModule(ctx context.Context, name string) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	a.plugins.ExecuteHook(ctx, plugin.HookBeforeModuleLoad, name, a.snapshot.Runtime.UnitLocation)
	if err := a.loader.Reload(ctx, name); err != nil {
		return err
	}
	a.plugins.ExecuteHook(ctx, plugin.HookAfterModuleLoad, name)
	return nil
}

// Shutdown tears the composition down: plugins first, then modules, with
// the dispatcher destroyed last.
func (a *App) Shutdown(ctx context.Context) {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	a.plugins.UnloadAll(ctx)
	a.loader.Destroy(ctx)
	a.logger.Info("Composition host shut down.")
}

// Snapshot returns the immutable configuration snapshot.
func (a *App) Snapshot() *config.Snapshot {
	return a.snapshot
}

// Registry returns the application's module registry. Primarily for tests.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Loader returns the module loader.
func (a *App) Loader() *loader.Loader {
	return a.loader
}

// Plugins returns the plugin manager.
func (a *App) Plugins() *plugin.Manager {
	return a.plugins
}

// PluginBodies returns the body-factory registry so embedders can register
// native plugin implementations before Run.
func (a *App) PluginBodies() *plugin.BodyRegistry {
	return a.bodies
}

// Dispatcher returns the shared dispatcher.
func (a *App) Dispatcher() *dispatch.Dispatcher {
	return a.dispatcher
}
