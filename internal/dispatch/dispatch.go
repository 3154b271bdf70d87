package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/vk/modgridgo/internal/config"
	"github.com/vk/modgridgo/internal/ctxlog"
)

// ErrUnsupportedOperation is returned by Call when a method is present in
// neither the unit's exports nor the simulation table.
var ErrUnsupportedOperation = errors.New("unsupported operation")

// Dispatcher routes method calls to the portable-bytecode unit when one is
// instantiated, and to the simulation table otherwise.
type Dispatcher struct {
	cfg config.Runtime

	runtime wazero.Runtime
	unit    api.Module
	sims    map[string]simFunc
}

// New creates an uninitialized Dispatcher for the given runtime settings.
func New(cfg config.Runtime) *Dispatcher {
	return &Dispatcher{
		cfg:  cfg,
		sims: defaultSimulations(),
	}
}

// Initialize fetches and instantiates the portable-bytecode unit. Any
// failure along the way (transport, decode, instantiation) logs a warning
// and leaves the dispatcher uninitialized; it never surfaces to the caller.
func (d *Dispatcher) Initialize(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)

	if !d.cfg.UsePortableRuntime {
		logger.Debug("Portable runtime disabled; dispatcher will simulate all calls.")
		return
	}
	if d.cfg.UnitLocation == "" {
		logger.Warn("Portable runtime enabled but no unit location configured; falling back to simulations.")
		return
	}

	data, err := fetchUnit(ctx, d.cfg.UnitLocation)
	if err != nil {
		logger.Warn("Failed to fetch portable-bytecode unit; falling back to simulations.",
			"location", d.cfg.UnitLocation, "error", err)
		return
	}

	runtime := wazero.NewRuntime(ctx)
	unit, err := runtime.Instantiate(ctx, data)
	if err != nil {
		logger.Warn("Failed to instantiate portable-bytecode unit; falling back to simulations.",
			"location", d.cfg.UnitLocation, "error", err)
		_ = runtime.Close(ctx)
		return
	}

	d.runtime = runtime
	d.unit = unit
	logger.Info("Portable-bytecode unit instantiated.", "location", d.cfg.UnitLocation)
}

// Initialized reports whether a unit is currently instantiated.
func (d *Dispatcher) Initialized() bool {
	return d.unit != nil
}

// Call invokes method on the unit when it exports one, otherwise serves the
// call from the simulation table. Any unit-side failure also falls back to
// the simulation, so a known method never fails. An unknown method fails
// with ErrUnsupportedOperation.
func (d *Dispatcher) Call(ctx context.Context, method string, args ...any) (any, error) {
	logger := ctxlog.FromContext(ctx)

	if d.unit != nil {
		if fn := d.unit.ExportedFunction(method); fn != nil {
			result, err := d.callUnit(ctx, fn, args)
			if err == nil {
				return result, nil
			}
			logger.Warn("Unit invocation failed; falling back to simulation.",
				"method", method, "error", err)
		}
	}

	sim, ok := d.sims[method]
	if !ok {
		return nil, fmt.Errorf("method %q: %w", method, ErrUnsupportedOperation)
	}
	return sim(args...), nil
}

// callUnit translates Go arguments into wasm parameters, invokes the export
// and returns the first result. Arguments the wire convention cannot carry
// cause an error, which the caller treats as a fallback trigger.
func (d *Dispatcher) callUnit(ctx context.Context, fn api.Function, args []any) (any, error) {
	params, err := EncodeParams(args)
	if err != nil {
		return nil, err
	}
	results, err := fn.Call(ctx, params...)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

// Destroy releases the unit and resets the dispatcher to uninitialized.
// Safe to call repeatedly.
func (d *Dispatcher) Destroy(ctx context.Context) error {
	if d.runtime == nil {
		return nil
	}
	err := d.runtime.Close(ctx)
	d.runtime = nil
	d.unit = nil
	if err != nil {
		return fmt.Errorf("failed to close portable runtime: %w", err)
	}
	return nil
}
