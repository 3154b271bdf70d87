package config

// ModuleManifest is the format-agnostic representation of a first-party
// module's manifest. When no manifest file accompanies a module, the loader
// synthesizes one with defaults.
type ModuleManifest struct {
	Name        string
	Version     string
	Description string
	Author      string

	// Dependencies lists modules that should be registered before this one,
	// in declaration order.
	Dependencies []string

	// Exports maps a module's public operation names to the dispatcher
	// method backing each one.
	Exports map[string]string

	// Kind describes how the module executes: "native" for in-process Go,
	// "portable" for modules whose hot paths route through the
	// portable-bytecode unit.
	Kind string
}

// SynthesizeManifest returns the default manifest used for modules shipped
// without a manifest file.
func SynthesizeManifest(name string) *ModuleManifest {
	return &ModuleManifest{
		Name:    name,
		Version: "0.0.0",
		Kind:    "native",
		Exports: map[string]string{},
	}
}
