package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/modgridgo/internal/hcl"
	"github.com/vk/modgridgo/internal/testutil"
	"github.com/vk/modgridgo/modules/textgen"
)

// newTestApp builds an App from an inline host config written to a temp
// dir.
func newTestApp(t *testing.T, hostConfig string) *App {
	t.Helper()
	dir := t.TempDir()
	configPath := filepath.Join(dir, "host.hcl")
	require.NoError(t, os.WriteFile(configPath, []byte(hostConfig), 0o644))

	appConfig, err := NewConfig(Config{
		ConfigPath: configPath,
		PluginsDir: filepath.Join(dir, "plugins"),
		LogFormat:  "text",
		LogLevel:   "debug",
	})
	require.NoError(t, err)

	return NewApp(&testutil.SafeBuffer{}, appConfig, hcl.NewLoader())
}

func TestRunLoadsEnabledModules(t *testing.T) {
	host := newTestApp(t, `
modules {
  textgen = true
  selfref = true
  mailer  = false
}
`)
	ctx := context.Background()
	require.NoError(t, host.Run(ctx))

	assert.Equal(t, []string{"selfref", "textgen"}, host.Registry().Names())

	inst, ok := host.Loader().Get("textgen")
	require.True(t, ok)
	service, ok := inst.Module.(*textgen.Service)
	require.True(t, ok)
	assert.True(t, service.IsInitialized())

	text, err := service.Generate(ctx, "hello")
	require.NoError(t, err)
	assert.Contains(t, text, "generated(hello)")

	host.Shutdown(ctx)
	assert.Equal(t, 0, host.Registry().Len())
	assert.False(t, service.IsInitialized())
}

func TestRunSurfacesModuleBatchFailure(t *testing.T) {
	host := newTestApp(t, `
modules {
  ghost = true
}
`)
	err := host.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInitialization)
}

func TestRunSurvivesBrokenPortableUnit(t *testing.T) {
	host := newTestApp(t, `
modules {
  filestore = true
}

runtime {
  use_portable_runtime = true
  unit_location        = "/definitely/not/there.wasm"
}
`)
	ctx := context.Background()
	require.NoError(t, host.Run(ctx))
	assert.False(t, host.Dispatcher().Initialized())

	result, err := host.Dispatcher().Call(ctx, "saveFile", "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "/virtual/storage/a.txt", result)
	host.Shutdown(ctx)
}

func TestReloadModule(t *testing.T) {
	host := newTestApp(t, `
modules {
  textgen = true
}
`)
	ctx := context.Background()
	require.NoError(t, host.Run(ctx))

	first, _ := host.Loader().Get("textgen")
	require.NoError(t, host.ReloadModule(ctx, "textgen"))
	second, ok := host.Loader().Get("textgen")
	require.True(t, ok)
	assert.NotSame(t, first, second)
	host.Shutdown(ctx)
}

func TestNewAppPanicsOnBadConfig(t *testing.T) {
	appConfig, err := NewConfig(Config{ConfigPath: "/no/such/config.hcl"})
	require.NoError(t, err)
	assert.Panics(t, func() {
		NewApp(&testutil.SafeBuffer{}, appConfig, hcl.NewLoader())
	})
}
