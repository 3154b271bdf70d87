package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/modgridgo/internal/config"
	"github.com/vk/modgridgo/internal/ctxlog"
	"github.com/vk/modgridgo/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// fileRoot decodes all recognized top-level blocks and attributes from one
// configuration file.
type fileRoot struct {
	Framework        *string        `hcl:"framework,optional"`
	Debug            *bool          `hcl:"debug,optional"`
	StrictModuleDeps *bool          `hcl:"strict_module_deps,optional"`
	Modules          *modulesBlock  `hcl:"modules,block"`
	Runtime          *runtimeBlock  `hcl:"runtime,block"`
	Plugins          *pluginsBlock  `hcl:"plugins,block"`
	Remain           hcl.Body       `hcl:",remain"`
}

// modulesBlock keeps its body opaque: every attribute inside the block is a
// module name with a boolean enabled flag.
type modulesBlock struct {
	Remain hcl.Body `hcl:",remain"`
}

type runtimeBlock struct {
	UsePortableRuntime *bool   `hcl:"use_portable_runtime,optional"`
	UnitLocation       *string `hcl:"unit_location,optional"`
}

type pluginsBlock struct {
	Dir       *string  `hcl:"dir,optional"`
	Whitelist []string `hcl:"whitelist,optional"`
	Blacklist []string `hcl:"blacklist,optional"`
}

// Load orchestrates the HCL configuration loading process. It is agnostic
// to the origin of the paths and merges any valid block from any file.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Snapshot, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	snapshot := &config.Snapshot{
		Modules: make(map[string]bool),
	}

	var files []string
	for _, path := range paths {
		found, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config path %s: %w", path, err)
		}
		files = append(files, found...)
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		if err := l.mergeRoot(snapshot, &root, file); err != nil {
			return nil, err
		}
	}

	logger.Debug("HCL loading complete.",
		"modules", len(snapshot.Modules),
		"plugins_dir", snapshot.Plugins.Dir,
		"use_portable_runtime", snapshot.Runtime.UsePortableRuntime,
	)
	return snapshot, nil
}

// mergeRoot folds one decoded file into the snapshot being built.
func (l *Loader) mergeRoot(snapshot *config.Snapshot, root *fileRoot, file string) error {
	if root.Framework != nil {
		snapshot.Framework = *root.Framework
	}
	if root.Debug != nil {
		snapshot.Debug = *root.Debug
	}
	if root.StrictModuleDeps != nil {
		snapshot.StrictModuleDeps = *root.StrictModuleDeps
	}

	if root.Modules != nil {
		attrs, diags := root.Modules.Remain.JustAttributes()
		if diags.HasErrors() {
			return fmt.Errorf("invalid modules block in %s: %w", file, diags)
		}
		for name, attr := range attrs {
			val, diags := attr.Expr.Value(nil)
			if diags.HasErrors() {
				return fmt.Errorf("invalid value for module %q in %s: %w", name, file, diags)
			}
			var enabled bool
			if err := gocty.FromCtyValue(val, &enabled); err != nil {
				return fmt.Errorf("module %q in %s: enabled flag must be a bool: %w", name, file, err)
			}
			snapshot.Modules[name] = enabled
		}
	}

	if root.Runtime != nil {
		if root.Runtime.UsePortableRuntime != nil {
			snapshot.Runtime.UsePortableRuntime = *root.Runtime.UsePortableRuntime
		}
		if root.Runtime.UnitLocation != nil {
			snapshot.Runtime.UnitLocation = *root.Runtime.UnitLocation
		}
	}

	if root.Plugins != nil {
		if root.Plugins.Dir != nil {
			snapshot.Plugins.Dir = *root.Plugins.Dir
		}
		if root.Plugins.Whitelist != nil {
			snapshot.Plugins.Whitelist = root.Plugins.Whitelist
		}
		if root.Plugins.Blacklist != nil {
			snapshot.Plugins.Blacklist = root.Plugins.Blacklist
		}
	}
	return nil
}
