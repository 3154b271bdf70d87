package plugin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/vk/modgridgo/internal/dispatch"
)

// wasmBody is a plugin body instantiated inside its own sandboxed wasm
// runtime. Hooks map onto same-named exported functions; exports that do
// not exist are silently skipped.
type wasmBody struct {
	runtime wazero.Runtime
	module  api.Module
}

// newWasmBody compiles and instantiates the wasm file named by the manifest
// entry, relative to the plugin's directory.
func newWasmBody(ctx context.Context, dir string, manifest *Manifest) (Body, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifest.Entry))
	if err != nil {
		return nil, fmt.Errorf("failed to read wasm entry for plugin '%s': %w", manifest.Name, err)
	}

	runtime := wazero.NewRuntime(ctx)
	module, err := runtime.Instantiate(ctx, data)
	if err != nil {
		_ = runtime.Close(ctx)
		return nil, fmt.Errorf("failed to instantiate wasm body for plugin '%s': %w", manifest.Name, err)
	}

	return &wasmBody{runtime: runtime, module: module}, nil
}

// OnHook invokes the exported function named after the hook, when present.
func (b *wasmBody) OnHook(ctx context.Context, name string, data ...any) (any, error) {
	fn := b.module.ExportedFunction(name)
	if fn == nil {
		return nil, nil
	}
	params, err := dispatch.EncodeParams(data)
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

// Destroy closes the body's runtime and everything instantiated in it.
func (b *wasmBody) Destroy(ctx context.Context) error {
	return b.runtime.Close(ctx)
}
