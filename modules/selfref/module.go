// Package selfref provides a module that recursively instantiates nested
// copies of itself, exercising the module lifecycle contract recursively.
// It exists for introspection and hierarchy testing: the composition core's
// most intricate correctness properties (depth bounds, children-first
// teardown) live here.
package selfref

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/vk/modgridgo/internal/ctxlog"
	"github.com/vk/modgridgo/internal/registry"
)

// DefaultMaxDepth bounds recursion when no explicit option is given.
const DefaultMaxDepth = 3

// Options controls how a node builds its hierarchy.
type Options struct {
	EnableRecursion   bool
	MaxRecursionDepth int
	TrackMetadata     bool
}

// Node is one level of the self-referencing hierarchy. A node owns its
// children; the parent pointer is non-owning and used purely for lookup.
type Node struct {
	Name        string
	Version     string
	Description string

	// IsSelfReferencing is always true; kept as a field so hierarchy
	// introspection tooling can treat the node like any other module.
	IsSelfReferencing bool

	opts      Options
	depth     int
	remaining int

	parent   *Node
	children []*Node

	metadata    map[string]string
	initialized bool

	// destroyErr simulates a failing teardown; injected by tests.
	destroyErr error
}

// NewNode constructs the root of a hierarchy. Children are created by Init,
// never directly.
func NewNode(opts Options) *Node {
	if opts.MaxRecursionDepth < 0 {
		opts.MaxRecursionDepth = 0
	}
	return newNodeAt(opts, 0, opts.MaxRecursionDepth, nil)
}

func newNodeAt(opts Options, depth, remaining int, parent *Node) *Node {
	n := &Node{
		Name:              "selfref",
		Version:           "1.0.0",
		Description:       "recursively self-instantiating module",
		IsSelfReferencing: true,
		opts:              opts,
		depth:             depth,
		remaining:         remaining,
		parent:            parent,
	}
	if opts.TrackMetadata {
		n.metadata = map[string]string{
			"depth": strconv.Itoa(depth),
		}
	}
	return n
}

// Init builds the next level of the hierarchy: exactly one child per level,
// with the depth budget decremented so termination is guaranteed. A node
// with no budget left spawns nothing and logs a warning.
func (n *Node) Init(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	if n.opts.EnableRecursion {
		if n.remaining > 0 {
			child := newNodeAt(n.opts, n.depth+1, n.remaining-1, n)
			if err := child.Init(ctx); err != nil {
				return err
			}
			n.children = append(n.children, child)
		} else {
			logger.Warn("Self-reference node reached maximum recursion depth; not spawning children.",
				"depth", n.depth, "max", n.opts.MaxRecursionDepth)
		}
	}

	n.initialized = true
	logger.Debug("Self-reference node initialized.", "depth", n.depth, "children", len(n.children))
	return nil
}

// IsInitialized reports whether Init completed on this node.
func (n *Node) IsInitialized() bool {
	return n.initialized
}

// Depth returns this node's depth in the hierarchy; the root is 0.
func (n *Node) Depth() int {
	return n.depth
}

// Children returns the node's direct children.
func (n *Node) Children() []*Node {
	return n.children
}

// Parent returns the non-owning parent reference, nil at the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Metadata returns the tracked metadata, nil unless TrackMetadata was set.
func (n *Node) Metadata() map[string]string {
	return n.metadata
}

// Destroy tears the hierarchy down children-before-parent. A child's
// destroy failure is logged and teardown continues; the child list and the
// parent back-reference are always cleared.
func (n *Node) Destroy(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	for _, child := range n.children {
		if err := child.Destroy(ctx); err != nil {
			logger.Error("Child node destroy failed; continuing teardown.",
				"depth", child.depth, "error", err)
		}
	}
	n.children = nil
	n.parent = nil
	n.initialized = false
	return n.destroyErr
}

// HierarchyStats is the aggregate view of a node and its descendants.
type HierarchyStats struct {
	TotalNodes   int
	MaxDepth     int
	CurrentDepth int
	IsRecursive  bool
}

// Stats aggregates the hierarchy below this node. It is pure: no state is
// mutated.
func (n *Node) Stats() HierarchyStats {
	stats := HierarchyStats{
		TotalNodes:   1,
		MaxDepth:     n.depth,
		CurrentDepth: n.depth,
		IsRecursive:  len(n.children) > 0,
	}
	for _, child := range n.children {
		childStats := child.Stats()
		stats.TotalNodes += childStats.TotalNodes
		if childStats.MaxDepth > stats.MaxDepth {
			stats.MaxDepth = childStats.MaxDepth
		}
	}
	return stats
}

// ExecuteOnHierarchy applies fn to this node first, then depth-first to
// every descendant, collecting results in that order.
func (n *Node) ExecuteOnHierarchy(fn func(*Node) any) []any {
	results := []any{fn(n)}
	for _, child := range n.children {
		results = append(results, child.ExecuteOnHierarchy(fn)...)
	}
	return results
}

// Module registers the selfref factory with the registry.
type Module struct{}

// Register implements registry.Registrar.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterFactory("selfref", func(deps registry.Deps) registry.Module {
		opts := Options{
			EnableRecursion:   true,
			MaxRecursionDepth: DefaultMaxDepth,
		}
		if deps.Config != nil {
			opts.TrackMetadata = deps.Config.Debug
		}
		slog.Debug("Constructing selfref root node.", "max_depth", opts.MaxRecursionDepth)
		return NewNode(opts)
	})
}
