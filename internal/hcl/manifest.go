package hcl

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/modgridgo/internal/config"
)

// ModuleManifestFile is the fixed file name of a module manifest inside the
// module's directory under the modules path.
const ModuleManifestFile = "manifest.hcl"

// manifestRoot decodes a module manifest file.
type manifestRoot struct {
	Module *moduleBlock `hcl:"module,block"`
}

type moduleBlock struct {
	Name         string            `hcl:"name,label"`
	Version      string            `hcl:"version,optional"`
	Description  string            `hcl:"description,optional"`
	Author       string            `hcl:"author,optional"`
	Dependencies []string          `hcl:"dependencies,optional"`
	Exports      map[string]string `hcl:"exports,optional"`
	Kind         string            `hcl:"kind,optional"`
}

// LoadModuleManifest parses one module manifest file into the
// format-agnostic model. A missing file is not an error: the caller
// synthesizes defaults in that case.
func LoadModuleManifest(path string) (*config.ModuleManifest, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse module manifest %s: %w", path, diags)
	}

	var root manifestRoot
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode module manifest %s: %w", path, diags)
	}
	if root.Module == nil {
		return nil, fmt.Errorf("module manifest %s has no module block", path)
	}

	manifest := &config.ModuleManifest{
		Name:         root.Module.Name,
		Version:      root.Module.Version,
		Description:  root.Module.Description,
		Author:       root.Module.Author,
		Dependencies: root.Module.Dependencies,
		Exports:      root.Module.Exports,
		Kind:         root.Module.Kind,
	}
	if manifest.Version == "" {
		manifest.Version = "0.0.0"
	}
	if manifest.Kind == "" {
		manifest.Kind = "native"
	}
	return manifest, nil
}
