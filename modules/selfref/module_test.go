package selfref

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/modgridgo/internal/config"
	"github.com/vk/modgridgo/internal/registry"
	"github.com/vk/modgridgo/internal/testutil"
)

func TestRecursionBuildsSingleChain(t *testing.T) {
	ctx, _ := testutil.NewLogContext()
	root := NewNode(Options{EnableRecursion: true, MaxRecursionDepth: 3})
	require.NoError(t, root.Init(ctx))

	stats := root.Stats()
	assert.Equal(t, 4, stats.TotalNodes)
	assert.Equal(t, 3, stats.MaxDepth)
	assert.Equal(t, 0, stats.CurrentDepth)
	assert.True(t, stats.IsRecursive)

	// Exactly one child per level.
	node := root
	for depth := 0; depth < 3; depth++ {
		require.Len(t, node.Children(), 1)
		child := node.Children()[0]
		assert.Equal(t, depth+1, child.Depth())
		assert.Same(t, node, child.Parent())
		node = child
	}
	assert.Empty(t, node.Children())
}

func TestRecursionDisabledYieldsSingleNode(t *testing.T) {
	ctx, _ := testutil.NewLogContext()
	root := NewNode(Options{EnableRecursion: false, MaxRecursionDepth: 5})
	require.NoError(t, root.Init(ctx))

	stats := root.Stats()
	assert.Equal(t, 1, stats.TotalNodes)
	assert.Equal(t, 0, stats.MaxDepth)
	assert.False(t, stats.IsRecursive)
	assert.True(t, root.IsInitialized())
}

func TestZeroDepthWarnsAndSpawnsNothing(t *testing.T) {
	ctx, buf := testutil.NewLogContext()
	root := NewNode(Options{EnableRecursion: true, MaxRecursionDepth: 0})
	require.NoError(t, root.Init(ctx))

	assert.Equal(t, 1, root.Stats().TotalNodes)
	assert.Contains(t, buf.String(), "maximum recursion depth")
}

func TestNegativeDepthIsClamped(t *testing.T) {
	ctx, _ := testutil.NewLogContext()
	root := NewNode(Options{EnableRecursion: true, MaxRecursionDepth: -2})
	require.NoError(t, root.Init(ctx))
	assert.Equal(t, 1, root.Stats().TotalNodes)
}

func TestDestroyClearsHierarchy(t *testing.T) {
	ctx, _ := testutil.NewLogContext()
	root := NewNode(Options{EnableRecursion: true, MaxRecursionDepth: 2})
	require.NoError(t, root.Init(ctx))

	require.NoError(t, root.Destroy(ctx))
	assert.Empty(t, root.Children())
	assert.False(t, root.IsInitialized())
}

func TestDestroyToleratesFailingChild(t *testing.T) {
	ctx, buf := testutil.NewLogContext()
	root := NewNode(Options{EnableRecursion: true, MaxRecursionDepth: 2})
	require.NoError(t, root.Init(ctx))
	root.Children()[0].destroyErr = errors.New("wedged")

	require.NoError(t, root.Destroy(ctx))
	assert.Empty(t, root.Children())
	assert.False(t, root.IsInitialized())
	assert.Contains(t, buf.String(), "wedged")
}

func TestExecuteOnHierarchyIsSelfFirst(t *testing.T) {
	ctx, _ := testutil.NewLogContext()
	root := NewNode(Options{EnableRecursion: true, MaxRecursionDepth: 3})
	require.NoError(t, root.Init(ctx))

	results := root.ExecuteOnHierarchy(func(n *Node) any { return n.Depth() })
	assert.Equal(t, []any{0, 1, 2, 3}, results)
}

func TestMetadataTracking(t *testing.T) {
	ctx, _ := testutil.NewLogContext()
	root := NewNode(Options{EnableRecursion: true, MaxRecursionDepth: 1, TrackMetadata: true})
	require.NoError(t, root.Init(ctx))

	require.NotNil(t, root.Metadata())
	assert.Equal(t, "0", root.Metadata()["depth"])
	assert.Equal(t, "1", root.Children()[0].Metadata()["depth"])

	bare := NewNode(Options{})
	assert.Nil(t, bare.Metadata())
}

func TestRegistrar(t *testing.T) {
	ctx, _ := testutil.NewLogContext()
	r := registry.New()
	(&Module{}).Register(r)

	factory, ok := r.Factory("selfref")
	require.True(t, ok)
	mod := factory(registry.Deps{Config: &config.Snapshot{}})
	require.NoError(t, mod.Init(ctx))

	node, ok := mod.(*Node)
	require.True(t, ok)
	assert.Equal(t, DefaultMaxDepth+1, node.Stats().TotalNodes)
	assert.True(t, node.IsSelfReferencing)
}
