// Package registry provides the central "glue" for the module system.
//
// Two mappings live here. The factory registry maps module names to Go
// factory functions and is populated once at startup by each compiled-in
// module package; resolving a module is a map lookup, never reflection over
// name strings. The instance registry holds the currently loaded module
// instances, at most one per name, and is safe for the loader's concurrent
// batch initialization.
package registry
