package plugin

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// ManifestFile is the fixed name of the manifest document inside every
// plugin's directory.
const ManifestFile = "plugin.hcl"

// Kinds of plugin implementation.
const (
	// KindNative marks a body backed by a compiled-in Go factory.
	KindNative = "native"
	// KindWasm marks a body instantiated inside a sandboxed wasm runtime.
	KindWasm = "wasm"
)

// Manifest describes one plugin: identity, implementation kind, entry
// point, dependency edges, permissions, declared hooks, and configuration
// defaults.
type Manifest struct {
	Name        string
	Version     string
	Description string
	Author      string

	// Kind selects how Entry is interpreted: a body-factory name for
	// native plugins, a wasm file name (relative to the plugin dir) for
	// bytecode plugins.
	Kind  string
	Entry string

	// Dependencies are hard edges: every listed plugin must already be
	// loaded. PeerDependencies only produce warnings when absent.
	Dependencies     []string
	PeerDependencies []string

	Permissions []string

	// Hooks lists the lifecycle hook names this plugin subscribes to.
	Hooks []string

	// Config holds the plugin's configuration defaults as typed values.
	Config map[string]cty.Value

	Metadata map[string]string
}

// DeclaresHook reports whether the manifest subscribes to the named hook.
func (m *Manifest) DeclaresHook(name string) bool {
	for _, h := range m.Hooks {
		if h == name {
			return true
		}
	}
	return false
}

type manifestRoot struct {
	Plugin *pluginBlock `hcl:"plugin,block"`
}

type pluginBlock struct {
	Name             string            `hcl:"name,label"`
	Version          string            `hcl:"version"`
	Description      string            `hcl:"description,optional"`
	Author           string            `hcl:"author,optional"`
	Kind             string            `hcl:"kind"`
	Entry            string            `hcl:"entry"`
	Dependencies     []string          `hcl:"dependencies,optional"`
	PeerDependencies []string          `hcl:"peer_dependencies,optional"`
	Permissions      []string          `hcl:"permissions,optional"`
	Hooks            []string          `hcl:"hooks,optional"`
	Metadata         map[string]string `hcl:"metadata,optional"`
	Config           *configBlock      `hcl:"config,block"`
}

// configBlock keeps its body opaque so plugins can declare defaults of any
// HCL-expressible type.
type configBlock struct {
	Remain hcl.Body `hcl:",remain"`
}

// LoadManifest parses the manifest document at path.
func LoadManifest(path string) (*Manifest, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse plugin manifest %s: %w", path, diags)
	}

	var root manifestRoot
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode plugin manifest %s: %w", path, diags)
	}
	if root.Plugin == nil {
		return nil, fmt.Errorf("plugin manifest %s has no plugin block", path)
	}
	b := root.Plugin

	if b.Kind != KindNative && b.Kind != KindWasm {
		return nil, fmt.Errorf("plugin manifest %s: unknown kind %q", path, b.Kind)
	}
	if b.Entry == "" {
		return nil, fmt.Errorf("plugin manifest %s: entry must not be empty", path)
	}

	manifest := &Manifest{
		Name:             b.Name,
		Version:          b.Version,
		Description:      b.Description,
		Author:           b.Author,
		Kind:             b.Kind,
		Entry:            b.Entry,
		Dependencies:     b.Dependencies,
		PeerDependencies: b.PeerDependencies,
		Permissions:      b.Permissions,
		Hooks:            b.Hooks,
		Metadata:         b.Metadata,
		Config:           map[string]cty.Value{},
	}

	if b.Config != nil {
		attrs, diags := b.Config.Remain.JustAttributes()
		if diags.HasErrors() {
			return nil, fmt.Errorf("invalid config block in %s: %w", path, diags)
		}
		for name, attr := range attrs {
			val, diags := attr.Expr.Value(nil)
			if diags.HasErrors() {
				return nil, fmt.Errorf("invalid config default %q in %s: %w", name, path, diags)
			}
			manifest.Config[name] = val
		}
	}
	return manifest, nil
}
