package config

import "sort"

// Snapshot is the unified, format-agnostic representation of a host
// configuration. It is replaced wholesale on update, never partially
// mutated.
type Snapshot struct {
	// Modules maps first-party module names to their enabled flag.
	Modules map[string]bool

	// Runtime configures the portable-bytecode execution unit.
	Runtime Runtime

	// Plugins configures the external plugin composition path.
	Plugins Plugins

	// Framework is a hint describing the embedding host, passed through to
	// modules and plugins untouched.
	Framework string

	// Debug enables verbose diagnostics in modules that honor it.
	Debug bool

	// StrictModuleDeps makes a missing module dependency fatal instead of a
	// warning, aligning module loading with the plugin manager's policy.
	StrictModuleDeps bool
}

// Runtime holds the settings for the portable-bytecode unit.
type Runtime struct {
	// UsePortableRuntime gates unit instantiation entirely; when false the
	// dispatcher serves every call from its simulation table.
	UsePortableRuntime bool

	// UnitLocation is where the compiled unit lives: an http(s) URL or a
	// filesystem path.
	UnitLocation string
}

// Plugins holds the plugin manager's settings.
type Plugins struct {
	// Dir is the root directory scanned for plugin subdirectories.
	Dir string

	// Whitelist restricts loading to the named plugins. Empty means
	// allow-all.
	Whitelist []string

	// Blacklist always wins over the whitelist.
	Blacklist []string
}

// EnabledModules returns the names of all enabled modules in a stable,
// sorted order.
func (s *Snapshot) EnabledModules() []string {
	names := make([]string, 0, len(s.Modules))
	for name, enabled := range s.Modules {
		if enabled {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// ModuleEnabled reports whether the named module is enabled in this
// snapshot.
func (s *Snapshot) ModuleEnabled(name string) bool {
	return s.Modules[name]
}
