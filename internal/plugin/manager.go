package plugin

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/vk/modgridgo/internal/config"
	"github.com/vk/modgridgo/internal/ctxlog"
	"github.com/vk/modgridgo/internal/dispatch"
)

// ErrNotFound is returned when an operation targets a plugin that has no
// record.
var ErrNotFound = errors.New("plugin not found")

// ErrMissingDependency is returned when a hard plugin dependency is not a
// loaded plugin.
var ErrMissingDependency = errors.New("missing plugin dependency")

// Manager loads, tracks, and drives the lifecycle of external plugins. At
// most one record exists per plugin name; read accessors never mutate
// state.
type Manager struct {
	dir        string
	policy     Policy
	bodies     *BodyRegistry
	dispatcher *dispatch.Dispatcher

	records map[string]*Record
}

// NewManager creates a Manager rooted at cfg.Dir with cfg's policy.
func NewManager(cfg config.Plugins, bodies *BodyRegistry, disp *dispatch.Dispatcher) *Manager {
	return &Manager{
		dir:        cfg.Dir,
		policy:     Policy{Whitelist: cfg.Whitelist, Blacklist: cfg.Blacklist},
		bodies:     bodies,
		dispatcher: disp,
		records:    make(map[string]*Record),
	}
}

// resolveDir turns a plugin identifier into its directory: bare names are
// joined with the manager's plugin root, anything with a path separator is
// used as-is.
func (m *Manager) resolveDir(identifier string) string {
	if strings.ContainsRune(identifier, os.PathSeparator) || strings.ContainsRune(identifier, '/') {
		return identifier
	}
	return filepath.Join(m.dir, identifier)
}

// Load resolves the manifest inside the plugin's directory, enforces
// policy, verifies dependencies, instantiates the body, and registers the
// record with status loaded. Loading an already loaded name returns the
// existing record untouched. Hook failures during loading park the plugin
// in error status without failing the call.
func (m *Manager) Load(ctx context.Context, identifier string) (*Record, error) {
	logger := ctxlog.FromContext(ctx)

	dir := m.resolveDir(identifier)
	manifest, err := LoadManifest(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, err
	}

	if rec, exists := m.records[manifest.Name]; exists {
		logger.Debug("Plugin already loaded; returning existing record.", "plugin", manifest.Name)
		return rec, nil
	}

	if err := m.policy.Check(manifest.Name); err != nil {
		return nil, err
	}

	for _, dep := range manifest.Dependencies {
		if _, ok := m.records[dep]; !ok {
			return nil, fmt.Errorf("plugin '%s' requires '%s', which is not loaded: %w",
				manifest.Name, dep, ErrMissingDependency)
		}
	}
	for _, peer := range manifest.PeerDependencies {
		if _, ok := m.records[peer]; !ok {
			logger.Warn("Plugin peer dependency is not loaded.",
				"plugin", manifest.Name, "peer", peer)
		}
	}

	start := time.Now()
	var body Body
	switch manifest.Kind {
	case KindNative:
		factory, ok := m.bodies.Lookup(manifest.Entry)
		if !ok {
			return nil, fmt.Errorf("plugin '%s': no body factory registered for entry '%s'",
				manifest.Name, manifest.Entry)
		}
		body, err = factory(manifest)
	case KindWasm:
		body, err = newWasmBody(ctx, dir, manifest)
	default:
		err = fmt.Errorf("unknown implementation kind %q", manifest.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("plugin '%s' failed to instantiate: %w", manifest.Name, err)
	}

	rec := &Record{
		Manifest:     manifest,
		Body:         body,
		Dir:          dir,
		Status:       StatusLoaded,
		LoadDuration: time.Since(start),
	}
	m.records[manifest.Name] = rec

	if err := m.invokeHook(ctx, rec, HookBeforeInit, manifest.Config); err != nil {
		m.parkInError(ctx, rec, HookBeforeInit, err)
		return rec, nil
	}
	if err := m.invokeHook(ctx, rec, HookAfterInit, nil); err != nil {
		m.parkInError(ctx, rec, HookAfterInit, err)
		return rec, nil
	}

	logger.Info("Plugin loaded.",
		"plugin", manifest.Name, "version", manifest.Version,
		"kind", manifest.Kind, "duration", rec.LoadDuration)
	return rec, nil
}

// parkInError records a swallowed hook failure and moves the plugin to
// error status.
func (m *Manager) parkInError(ctx context.Context, rec *Record, hook string, err error) {
	ctxlog.FromContext(ctx).Error("Plugin lifecycle hook failed.",
		"plugin", rec.Manifest.Name, "hook", hook, "error", err)
	rec.Status = StatusError
	rec.Err = err
}

// Unload invokes beforeDestroy, the body's own destroy, and afterDestroy,
// then removes the record. Unloading an absent name is a no-op. Teardown
// failures are logged, never raised.
func (m *Manager) Unload(ctx context.Context, name string) {
	logger := ctxlog.FromContext(ctx)

	rec, ok := m.records[name]
	if !ok {
		return
	}

	if err := m.invokeHook(ctx, rec, HookBeforeDestroy, nil); err != nil {
		logger.Error("beforeDestroy hook failed.", "plugin", name, "error", err)
	}
	if destroyer, ok := rec.Body.(Destroyer); ok {
		if err := destroyer.Destroy(ctx); err != nil {
			logger.Error("Plugin body destroy failed.", "plugin", name, "error", err)
		}
	}
	if err := m.invokeHook(ctx, rec, HookAfterDestroy, nil); err != nil {
		logger.Error("afterDestroy hook failed.", "plugin", name, "error", err)
	}

	delete(m.records, name)
	logger.Info("Plugin unloaded.", "plugin", name)
}

// Activate transitions the plugin to active. Activating an already active
// plugin is a no-op and does not re-run the hook. A hook failure moves the
// plugin to error status and, because the transition was explicitly
// requested, is returned to the caller.
func (m *Manager) Activate(ctx context.Context, name string) error {
	rec, ok := m.records[name]
	if !ok {
		return fmt.Errorf("cannot activate '%s': %w", name, ErrNotFound)
	}
	if rec.Status == StatusActive {
		ctxlog.FromContext(ctx).Debug("Plugin already active; nothing to do.", "plugin", name)
		return nil
	}
	if activator, ok := rec.Body.(Activator); ok {
		if err := activator.Activate(ctx); err != nil {
			rec.Status = StatusError
			rec.Err = err
			return fmt.Errorf("plugin '%s' failed to activate: %w", name, err)
		}
	}
	rec.Status = StatusActive
	rec.Err = nil
	return nil
}

// Deactivate transitions the plugin to inactive. Deactivating a plugin
// that was never activated is a successful no-op. A hook failure moves the
// plugin to error status and is returned to the caller.
func (m *Manager) Deactivate(ctx context.Context, name string) error {
	rec, ok := m.records[name]
	if !ok {
		return fmt.Errorf("cannot deactivate '%s': %w", name, ErrNotFound)
	}
	if rec.Status != StatusActive {
		ctxlog.FromContext(ctx).Debug("Plugin is not active; nothing to do.",
			"plugin", name, "status", rec.Status.String())
		return nil
	}
	if deactivator, ok := rec.Body.(Deactivator); ok {
		if err := deactivator.Deactivate(ctx); err != nil {
			rec.Status = StatusError
			rec.Err = err
			return fmt.Errorf("plugin '%s' failed to deactivate: %w", name, err)
		}
	}
	rec.Status = StatusInactive
	return nil
}

// HookResult is the outcome of delivering one hook to one plugin.
type HookResult struct {
	Plugin string
	Result any
	Err    error
}

// ExecuteHook delivers the named hook to every currently active plugin:
// first through the manifest-declared subscription, then through the
// body's same-named capability method. Per-plugin failures are logged and
// collected; iteration always continues.
func (m *Manager) ExecuteHook(ctx context.Context, name string, data ...any) []HookResult {
	logger := ctxlog.FromContext(ctx)

	results := make([]HookResult, 0, len(m.records))
	for _, pluginName := range m.Names() {
		rec := m.records[pluginName]
		if rec.Status != StatusActive {
			continue
		}
		rec.Invocations++

		var hookResult any
		var hookErr error
		if rec.Manifest.DeclaresHook(name) {
			if handler, ok := rec.Body.(HookHandler); ok {
				hookResult, hookErr = handler.OnHook(ctx, name, data...)
			}
		}
		if hookErr == nil {
			hookErr = m.invokeCapability(ctx, rec, name, data)
		}
		if hookErr != nil {
			logger.Error("Hook delivery failed; continuing with remaining plugins.",
				"plugin", pluginName, "hook", name, "error", hookErr)
		}
		results = append(results, HookResult{Plugin: pluginName, Result: hookResult, Err: hookErr})
	}
	return results
}

// invokeHook runs both delivery paths for one plugin and returns the first
// failure.
func (m *Manager) invokeHook(ctx context.Context, rec *Record, name string, data any) error {
	if rec.Manifest.DeclaresHook(name) {
		if handler, ok := rec.Body.(HookHandler); ok {
			if _, err := handler.OnHook(ctx, name, data); err != nil {
				return err
			}
		}
	}
	return m.invokeCapability(ctx, rec, name, []any{data})
}

// invokeCapability dispatches a hook name to the body's matching optional
// interface, if implemented.
func (m *Manager) invokeCapability(ctx context.Context, rec *Record, name string, data []any) error {
	switch name {
	case HookBeforeInit:
		if h, ok := rec.Body.(BeforeIniter); ok {
			return h.BeforeInit(ctx, rec.Manifest.Config)
		}
	case HookAfterInit:
		if h, ok := rec.Body.(AfterIniter); ok {
			return h.AfterInit(ctx, m)
		}
	case HookBeforeModuleLoad:
		if h, ok := rec.Body.(BeforeModuleLoader); ok && len(data) >= 2 {
			name, _ := data[0].(string)
			path, _ := data[1].(string)
			return h.BeforeModuleLoad(ctx, name, path)
		}
	case HookAfterModuleLoad:
		if h, ok := rec.Body.(AfterModuleLoader); ok && len(data) >= 1 {
			name, _ := data[0].(string)
			return h.AfterModuleLoad(ctx, name)
		}
	case HookBeforeDestroy:
		if h, ok := rec.Body.(BeforeDestroyer); ok {
			return h.BeforeDestroy(ctx)
		}
	case HookAfterDestroy:
		if h, ok := rec.Body.(AfterDestroyer); ok {
			return h.AfterDestroy(ctx)
		}
	}
	return nil
}

// Get returns the record for name, if any. Callers must treat the record
// as read-only.
func (m *Manager) Get(name string) (*Record, bool) {
	rec, ok := m.records[name]
	return rec, ok
}

// Names returns the names of all tracked plugins, sorted.
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.records))
	for name := range m.records {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch implements Host by routing through the manager's dispatcher.
func (m *Manager) Dispatch(ctx context.Context, method string, args ...any) (any, error) {
	return m.dispatcher.Call(ctx, method, args...)
}

// PluginNames implements Host.
func (m *Manager) PluginNames() []string {
	return m.Names()
}

// UnloadAll unloads every tracked plugin, best-effort, in sorted order.
func (m *Manager) UnloadAll(ctx context.Context) {
	for _, name := range m.Names() {
		m.Unload(ctx, name)
	}
}
