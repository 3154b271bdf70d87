package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/modgridgo/internal/config"
)

type fakeModule struct{ initialized bool }

func (m *fakeModule) Init(ctx context.Context) error    { m.initialized = true; return nil }
func (m *fakeModule) Destroy(ctx context.Context) error { m.initialized = false; return nil }
func (m *fakeModule) IsInitialized() bool               { return m.initialized }

func TestRegisterFactoryAndLookup(t *testing.T) {
	r := New()
	r.RegisterFactory("alpha", func(deps Deps) Module { return &fakeModule{} })

	factory, ok := r.Factory("alpha")
	require.True(t, ok)
	assert.NotNil(t, factory)

	_, ok = r.Factory("missing")
	assert.False(t, ok)
}

func TestRegisterFactoryDuplicatePanics(t *testing.T) {
	r := New()
	r.RegisterFactory("alpha", func(deps Deps) Module { return &fakeModule{} })
	assert.Panics(t, func() {
		r.RegisterFactory("alpha", func(deps Deps) Module { return &fakeModule{} })
	})
}

func TestInstanceLifecycle(t *testing.T) {
	r := New()
	inst := &Instance{
		Name:     "alpha",
		Manifest: config.SynthesizeManifest("alpha"),
		Module:   &fakeModule{},
	}
	require.NoError(t, r.Add(inst))

	got, ok := r.Get("alpha")
	require.True(t, ok)
	assert.Same(t, inst, got)
	assert.True(t, r.Has("alpha"))
	assert.Equal(t, []string{"alpha"}, r.Names())
	assert.Equal(t, 1, r.Len())

	// One instance per name.
	err := r.Add(&Instance{Name: "alpha", Module: &fakeModule{}})
	assert.Error(t, err)

	r.Remove("alpha")
	assert.False(t, r.Has("alpha"))
	assert.Equal(t, 0, r.Len())

	// Removing an absent name is a no-op.
	r.Remove("alpha")
}
