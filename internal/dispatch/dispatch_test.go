package dispatch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/modgridgo/internal/config"
)

func TestCallFallsBackWhenUnitDisabled(t *testing.T) {
	d := New(config.Runtime{UsePortableRuntime: false})
	ctx := context.Background()
	d.Initialize(ctx)
	assert.False(t, d.Initialized())

	result, err := d.Call(ctx, "saveFile", "report.txt")
	require.NoError(t, err)
	assert.Equal(t, "/virtual/storage/report.txt", result)
}

func TestCallFallsBackWhenUnitFailsToLoad(t *testing.T) {
	// A nonexistent unit path must leave the dispatcher uninitialized
	// without surfacing an error; known methods still work.
	d := New(config.Runtime{UsePortableRuntime: true, UnitLocation: "/does/not/exist.wasm"})
	ctx := context.Background()
	d.Initialize(ctx)
	assert.False(t, d.Initialized())

	result, err := d.Call(ctx, "login", "bob")
	require.NoError(t, err)
	assert.Contains(t, result, "token-")
}

func TestCallIsDeterministic(t *testing.T) {
	d := New(config.Runtime{})
	ctx := context.Background()

	first, err := d.Call(ctx, "login", "alice")
	require.NoError(t, err)
	second, err := d.Call(ctx, "login", "alice")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	other, err := d.Call(ctx, "login", "bob")
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestCallUnknownMethod(t *testing.T) {
	d := New(config.Runtime{})
	ctx := context.Background()

	_, err := d.Call(ctx, "teleport", 1, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedOperation)
}

func TestKnownMethodsNeverFail(t *testing.T) {
	d := New(config.Runtime{})
	ctx := context.Background()

	for _, method := range d.SimulatedMethods() {
		_, err := d.Call(ctx, method, "probe")
		assert.NoError(t, err, "method %s", method)
	}
}

func TestDestroyIsIdempotent(t *testing.T) {
	d := New(config.Runtime{})
	ctx := context.Background()

	require.NoError(t, d.Destroy(ctx))
	require.NoError(t, d.Destroy(ctx))
	assert.False(t, d.Initialized())

	// Calls keep working after destroy.
	_, err := d.Call(ctx, "checksum", "data")
	assert.NoError(t, err)
}

func TestEncodeParams(t *testing.T) {
	params, err := EncodeParams([]any{int(7), true, int64(-1), uint32(5), float64(0)})
	require.NoError(t, err)
	assert.Len(t, params, 5)
	assert.Equal(t, uint64(7), params[0])
	assert.Equal(t, uint64(1), params[1])

	_, err = EncodeParams([]any{"strings have no wire form"})
	assert.Error(t, err)
}

func TestInitializeWithEmptyUnit(t *testing.T) {
	// The smallest valid wasm module: magic and version, no sections. It
	// instantiates but exports nothing, so every call simulates.
	unit := filepath.Join(t.TempDir(), "core.wasm")
	require.NoError(t, os.WriteFile(unit, []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}, 0o644))

	d := New(config.Runtime{UsePortableRuntime: true, UnitLocation: unit})
	ctx := context.Background()
	d.Initialize(ctx)
	require.True(t, d.Initialized())

	result, err := d.Call(ctx, "saveFile", "report.txt")
	require.NoError(t, err)
	assert.Equal(t, "/virtual/storage/report.txt", result)

	require.NoError(t, d.Destroy(ctx))
	assert.False(t, d.Initialized())
	require.NoError(t, d.Destroy(ctx))
}

func TestSendMailSimulation(t *testing.T) {
	d := New(config.Runtime{})
	ctx := context.Background()

	id, err := d.Call(ctx, "sendMail", "ops@example.com", "weekly report")
	require.NoError(t, err)
	assert.Contains(t, id, "msg-")
}
